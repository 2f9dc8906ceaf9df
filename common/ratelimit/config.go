package ratelimit

// SubmissionLimits bounds claim submission traffic. The per-client limit is
// generous for a human refreshing before a waiver deadline and tight for a
// script; the global limit protects the database.
type SubmissionLimits struct {
	PerClient     int64 // submissions per client key per window
	Global        int64 // submissions across all clients per window
	WindowSeconds int
}

// DefaultSubmissionLimits returns the production limits
func DefaultSubmissionLimits() SubmissionLimits {
	return SubmissionLimits{
		PerClient:     30,
		Global:        1000,
		WindowSeconds: 60,
	}
}
