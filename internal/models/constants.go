package models

const (
	StatusWaiting  = "WAITING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Booking list filters.
const (
	StateAll      = "ALL"
	StateCurrent  = "CURRENT"
	StatePast     = "PAST"
	StateFuture   = "FUTURE"
	StateWaiting  = "WAITING"
	StateRejected = "REJECTED"
)

const (
	// DefaultPageSize is used when the size query param is absent.
	DefaultPageSize = 10

	// SearchCacheTTL is how long the gateway caches search responses.
	SearchCacheTTL = 60 // seconds

	// RateLimitRequests is the default per-user request budget per window.
	RateLimitRequests = 30

	// RateLimitWindow is the default throttling window in seconds.
	RateLimitWindow = 60
)

// ValidState reports whether s is a known booking list filter.
func ValidState(s string) bool {
	switch s {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return true
	}
	return false
}
