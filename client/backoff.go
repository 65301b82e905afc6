package client

import "time"

// Schedule is a fixed, capped sequence of reconnect delays indexed by the
// number of consecutive failed attempts. Attempts beyond the end of the
// schedule reuse the final delay.
type Schedule []time.Duration

// DefaultSchedule is the schedule used when none is configured on a Client.
var DefaultSchedule = Schedule{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	15 * time.Second,
	30 * time.Second,
	60 * time.Second,
}

// Delay returns the wait before reconnect attempt number attempt.
func (s Schedule) Delay(attempt int) time.Duration {
	if len(s) == 0 {
		return 0
	}

	if attempt < 0 {
		attempt = 0
	}

	if attempt >= len(s) {
		attempt = len(s) - 1
	}

	return s[attempt]
}
