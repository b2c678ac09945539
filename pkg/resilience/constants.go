package resilience

import "time"

// Default circuit breaker settings shared by infrastructure clients
const (
	DefaultMaxRequests           uint32        = 5
	DefaultInterval              time.Duration = 60 * time.Second
	DefaultTimeout               time.Duration = 30 * time.Second
	DefaultFailureThreshold      uint32        = 5
	DefaultSuccessThreshold      uint32        = 2
	DefaultFailureRatioThreshold float64       = 0.5
	DefaultMinRequestsToTrip     uint32        = 10
)

// Circuit breaker states as reported to OnStateChange hooks. Values mirror
// gobreaker's State enum.
const (
	StateClosed   = 0
	StateHalfOpen = 1
	StateOpen     = 2
)
