package core

import "time"

const secondsPerGraceDay = 86400

// EnforcementDue reports whether the grace window that started at the
// target's creation has elapsed. The window is exactly graceDays whole
// days; enforcement begins at the boundary instant itself.
func EnforcementDue(created time.Time, graceDays int, now time.Time) bool {
	deadline := enforcementDeadline(created, graceDays)
	return !now.Before(deadline)
}

// RemainingGrace returns how much of the grace window is left, or zero
// once enforcement is due.
func RemainingGrace(created time.Time, graceDays int, now time.Time) time.Duration {
	deadline := enforcementDeadline(created, graceDays)
	if !now.Before(deadline) {
		return 0
	}
	return deadline.Sub(now)
}

func enforcementDeadline(created time.Time, graceDays int) time.Time {
	if graceDays < 0 {
		graceDays = 0
	}
	return created.Add(time.Duration(graceDays) * secondsPerGraceDay * time.Second)
}
