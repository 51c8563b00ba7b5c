package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() InsightsRequest {
	codingTime := 14.0
	return InsightsRequest{
		Track: "data_engineer",
		Range: "7d",
		Metrics: &MetricsPayload{
			CodingTime7d: &codingTime,
		},
	}
}

func TestInsightsRequest_Validate(t *testing.T) {
	assert.NoError(t, validRequest().Validate())

	req := validRequest()
	req.Range = "30d"
	assert.NoError(t, req.Validate())
}

func TestInsightsRequest_RejectsBadRange(t *testing.T) {
	for _, r := range []string{"", "90d", "7D", "week"} {
		req := validRequest()
		req.Range = r
		assert.Error(t, req.Validate(), "range %q should be rejected", r)
	}
}

func TestInsightsRequest_RequiresMetrics(t *testing.T) {
	req := validRequest()
	req.Metrics = nil
	assert.Error(t, req.Validate())

	req = validRequest()
	req.Metrics.CodingTime7d = nil
	assert.Error(t, req.Validate())
}

func TestInsightsRequest_TrackIsTrusted(t *testing.T) {
	req := validRequest()
	req.Track = "anything goes"
	assert.NoError(t, req.Validate())
}

func TestFormatValidationErrors(t *testing.T) {
	req := validRequest()
	req.Range = "bad"

	err := req.Validate()
	require.Error(t, err)

	formatted := FormatValidationErrors(err)
	require.Len(t, formatted, 1)
	assert.Equal(t, "Range", formatted[0].Field)
	assert.Contains(t, formatted[0].Message, "must be one of")
}
