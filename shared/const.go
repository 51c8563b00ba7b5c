package shared

const (
	ServiceName = "portfolio_api"

	TrackDataEngineer = "data_engineer"
	TrackFullstack    = "fullstack"
	TrackMLEngineer   = "ml_engineer"

	Range7d  = "7d"
	Range30d = "30d"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	HeaderRetryAfter         = "Retry-After"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)
