package shared

import "errors"

// AppError is the error currency of the HTTP layer. The taxonomy is fixed:
// 400 input errors, 429 throttle errors, 500 provider errors. Malformed LLM
// output is not an AppError at all; it is absorbed by the normalizer.
type AppError struct {
	StatusCode int
	ErrorLabel string
	Message    string
	Details    string
	RetryAfter int

	err error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.err
}

func NewBadRequestError(label, message string) *AppError {
	return &AppError{
		StatusCode: 400,
		ErrorLabel: label,
		Message:    message,
	}
}

func NewRateLimitError(message string, retryAfter int) *AppError {
	return &AppError{
		StatusCode: 429,
		ErrorLabel: "Too many requests",
		Message:    message,
		RetryAfter: retryAfter,
	}
}

func NewProviderError(err error, message string) *AppError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &AppError{
		StatusCode: 500,
		ErrorLabel: "Internal server error",
		Message:    message,
		Details:    details,
		err:        err,
	}
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
