package models

import (
	"time"
)

// EndpointClass groups endpoints that share one limit.
type EndpointClass string

const (
	// ClassReport: anonymous report submission
	ClassReport EndpointClass = "report"
	// ClassLookup: public OB number lookup
	ClassLookup EndpointClass = "lookup"
	// ClassSignup: account signup and login
	ClassSignup EndpointClass = "signup"
)

func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassReport, ClassLookup, ClassSignup:
		return true
	}
	return false
}

// Limit is the number of requests allowed per window.
type Limit struct {
	RequestsPerWindow int
	Window            time.Duration
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}
