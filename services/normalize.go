package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/hafizh-dev/portfolio_api/dto"
	"github.com/hafizh-dev/portfolio_api/shared"
)

const maxRecommendations = 5

var codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// FallbackInsights is the canonical payload substituted whenever model output
// fails validation. All-or-nothing: no partially patched responses.
func FallbackInsights() dto.InsightsResponse {
	return dto.InsightsResponse{
		Summary: "Maaf, terjadi kesalahan saat memproses data. Silakan coba lagi dalam beberapa saat.",
		Focus:   "Sistem sedang dalam perbaikan.",
		Recommendations: []string{
			"Coba klik \"Generate Insights\" lagi dalam 1-2 menit.",
			"Pastikan koneksi internet Anda stabil.",
			"Jika masalah berlanjut, cek konfigurasi API key di server.",
		},
		Alerts: []string{"Respons AI tidak valid — menggunakan fallback."},
		NextWeekGoal: dto.NextWeekGoal{
			Title:  "Retry",
			Target: "Coba generate ulang insights setelah beberapa saat.",
		},
	}
}

// NormalizeInsights is total: any input string yields a well-formed response.
// A schema violation is absorbed into the fallback payload and reported only
// through the log and the fallback counter, so operators can tell "model
// returned garbage" apart from "model unreachable".
func NormalizeInsights(raw string) dto.InsightsResponse {
	resp, err := parseInsights(raw)
	if err != nil {
		fallbackTotal.Inc()
		log.WithError(err).Warn("Model output failed validation, substituting fallback")
		return FallbackInsights()
	}
	return resp
}

func parseInsights(raw string) (dto.InsightsResponse, error) {
	jsonString := strings.TrimSpace(raw)
	if m := codeFencePattern.FindStringSubmatch(jsonString); m != nil {
		jsonString = strings.TrimSpace(m[1])
	}

	var parsed map[string]interface{}
	if err := shared.JSON.Unmarshal([]byte(jsonString), &parsed); err != nil {
		return dto.InsightsResponse{}, fmt.Errorf("parse: %w", err)
	}

	summary, ok := parsed["summary"].(string)
	if !ok {
		return dto.InsightsResponse{}, errors.New("summary must be a string")
	}

	focus, ok := parsed["focus"].(string)
	if !ok {
		return dto.InsightsResponse{}, errors.New("focus must be a string")
	}

	recommendations, ok := parsed["recommendations"].([]interface{})
	if !ok || len(recommendations) < 1 {
		return dto.InsightsResponse{}, errors.New("recommendations must be a non-empty array")
	}

	alerts, ok := parsed["alerts"].([]interface{})
	if !ok {
		return dto.InsightsResponse{}, errors.New("alerts must be an array")
	}

	goal, ok := parsed["next_week_goal"].(map[string]interface{})
	if !ok {
		return dto.InsightsResponse{}, errors.New("next_week_goal must be an object")
	}
	goalTitle, ok := goal["title"].(string)
	if !ok {
		return dto.InsightsResponse{}, errors.New("next_week_goal.title must be a string")
	}
	goalTarget, ok := goal["target"].(string)
	if !ok {
		return dto.InsightsResponse{}, errors.New("next_week_goal.target must be a string")
	}

	if len(recommendations) > maxRecommendations {
		// Extra model-generated recommendations are dropped, not an error.
		recommendations = recommendations[:maxRecommendations]
	}

	return dto.InsightsResponse{
		Summary:         summary,
		Focus:           focus,
		Recommendations: coerceStrings(recommendations),
		Alerts:          coerceStrings(alerts),
		NextWeekGoal: dto.NextWeekGoal{
			Title:  goalTitle,
			Target: goalTarget,
		},
	}, nil
}

func coerceStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
			continue
		}
		b, err := shared.JSON.Marshal(v)
		if err != nil {
			out = append(out, fmt.Sprintf("%v", v))
			continue
		}
		out = append(out, string(b))
	}
	return out
}
