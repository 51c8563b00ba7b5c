package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hafizh-dev/portfolio_api/dto"
	"github.com/hafizh-dev/portfolio_api/shared"
)

// BuildInsightsPrompt renders the analytics-report prompt sent to the LLM.
// Pure function: identical request, identical prompt.
func BuildInsightsPrompt(req dto.InsightsRequest) string {
	metrics := req.Metrics

	langs := make([]string, 0, len(metrics.TopLanguages7d))
	for _, l := range metrics.TopLanguages7d {
		langs = append(langs, fmt.Sprintf("%s (%s%%)", l.Name, formatNumber(l.Percent)))
	}

	projects := make([]string, 0, len(metrics.ProjectsTouched7d))
	for _, p := range metrics.ProjectsTouched7d {
		projects = append(projects, fmt.Sprintf("%s (%s jam)", p.Name, formatNumber(p.Hours)))
	}

	delta := ""
	if metrics.WeekOverWeekDelta != nil {
		codingChange := "N/A"
		if metrics.WeekOverWeekDelta.CodingTimeChangePercent != nil {
			codingChange = formatNumber(*metrics.WeekOverWeekDelta.CodingTimeChangePercent)
		}
		activeChange := "N/A"
		if metrics.WeekOverWeekDelta.ActiveDaysChange != nil {
			activeChange = formatNumber(*metrics.WeekOverWeekDelta.ActiveDaysChange)
		}
		delta = fmt.Sprintf("\n- Perubahan minggu lalu: coding time %s%%, active days %s", codingChange, activeChange)
	}

	rangeLabel := "7 hari terakhir"
	if req.Range == shared.Range30d {
		rangeLabel = "30 hari terakhir"
	}

	codingTime := "0"
	if metrics.CodingTime7d != nil {
		codingTime = formatNumber(*metrics.CodingTime7d)
	}

	return fmt.Sprintf(`Kamu adalah AI Analytics Reporter profesional untuk software engineer.
Analisis data aktivitas coding berikut untuk memberikan laporan wawasan yang cerdas dan strategis.

Data aktivitas %s:
- Waktu coding: %s jam
- Hari aktif: %s hari
- Bahasa pemrograman: %s
- Project: %s%s

INSTRUKSI GAYA BAHASA (PENTING):
1. Bahasa output HARUS bahasa Indonesia yang NETRAL, PROFESIONAL, dan PUBLIK (orang ketiga).
2. DILARANG menggunakan kata "Anda", "Kamu", atau "Saya".
3. Gunakan sapaan "Hafiz", "Pengguna", atau "Individu ini".
4. Gaya bahasa: Laporan AI analytics, formal ringan, tidak personal namun tidak kaku.
5. Gunakan data angka di atas secara kontekstual dalam analisis.
6. Berikan TEPAT 3 rekomendasi langkah konkret yang actionable.

Balas HANYA dengan JSON valid:
{
  "summary": "analisis laporan mendalam (contoh: Hafiz menunjukkan performa...)",
  "focus": "kalimat singkat fokus pengembangan (contoh: Pengguna saat ini berfokus pada...)",
  "recommendations": ["rekomendasi 1", "rekomendasi 2", "rekomendasi 3"],
  "alerts": ["insight menarik atau peringatan, kosongkan array jika tidak ada"],
  "next_week_goal": { "title": "judul goal", "target": "target spesifik" }
}`,
		rangeLabel,
		codingTime,
		formatNumber(metrics.ActiveDays7d),
		strings.Join(langs, ", "),
		strings.Join(projects, ", "),
		delta,
	)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
