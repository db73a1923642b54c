package httpx

import "time"

// Backoff implements the linear retry delay used by the gateway: the wait
// before resubmission number n is Delay * n.
type Backoff struct {
	Delay time.Duration
}

// NewBackoff returns a Backoff with the supplied base delay.
func NewBackoff(delay time.Duration) Backoff {
	if delay <= 0 {
		delay = time.Second
	}
	return Backoff{Delay: delay}
}

// ForAttempt returns the delay preceding the given attempt (1-indexed).
// Attempts at or below one wait the base delay.
func (b Backoff) ForAttempt(attempt int) time.Duration {
	if attempt <= 1 {
		return b.Delay
	}
	return b.Delay * time.Duration(attempt)
}
