package models

// RateLimitExceededResponse is the 429 body.
type RateLimitExceededResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	RetryAfter       int    `json:"retry_after"`
}
