package dto

// Shapes mirror the wire contract of the portfolio frontend. Only range and
// metrics.coding_time_7d are enforced at the boundary; every other field is
// optional and passed through to the prompt as-is.

type LanguageStat struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

type ProjectStat struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

type WeekOverWeekDelta struct {
	CodingTimeChangePercent *float64 `json:"coding_time_change_percent,omitempty"`
	ActiveDaysChange        *float64 `json:"active_days_change,omitempty"`
}

type MetricsPayload struct {
	CodingTime7d      *float64           `json:"coding_time_7d" validate:"required"`
	ActiveDays7d      float64            `json:"active_days_7d"`
	TopLanguages7d    []LanguageStat     `json:"top_languages_7d"`
	ProjectsTouched7d []ProjectStat      `json:"projects_touched_7d"`
	WeekOverWeekDelta *WeekOverWeekDelta `json:"week_over_week_delta,omitempty"`
}

type InsightsRequest struct {
	Track   string          `json:"track"`
	Range   string          `json:"range" validate:"required,oneof=7d 30d"`
	Metrics *MetricsPayload `json:"metrics" validate:"required"`
}

func (r InsightsRequest) Validate() error {
	return GetValidator().Struct(r)
}

type NextWeekGoal struct {
	Title  string `json:"title"`
	Target string `json:"target"`
}

type InsightsResponse struct {
	Summary         string       `json:"summary"`
	Focus           string       `json:"focus"`
	Recommendations []string     `json:"recommendations"`
	Alerts          []string     `json:"alerts"`
	NextWeekGoal    NextWeekGoal `json:"next_week_goal"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type RateLimitErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

type ProviderErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// RateLimitResult is the limiter verdict for one request. RetryAfter is only
// meaningful when Allowed is false.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter int
}
