package delivery

import "time"

// Policy holds the same-day cutoff rule. Hours are local to the placement time.
type Policy struct {
	CutoffHour  int
	SameDayHour int
	NextDayHour int
}

// DefaultPolicy: orders placed up to and including 15:00 go out at 18:00 the
// same day, later orders at 09:00 the next day.
func DefaultPolicy() Policy {
	return Policy{CutoffHour: 15, SameDayHour: 18, NextDayHour: 9}
}

// Schedule maps a placement time to the delivery slot and initial status.
// The cutoff instant itself counts as on time.
func (p Policy) Schedule(placedAt time.Time) (time.Time, Status) {
	y, m, d := placedAt.Date()
	loc := placedAt.Location()

	cutoff := time.Date(y, m, d, p.CutoffHour, 0, 0, 0, loc)
	if !placedAt.After(cutoff) {
		return time.Date(y, m, d, p.SameDayHour, 0, 0, 0, loc), StatusProcessing
	}
	return time.Date(y, m, d+1, p.NextDayHour, 0, 0, 0, loc), StatusPending
}

// Schedule applies DefaultPolicy.
func Schedule(placedAt time.Time) (time.Time, Status) {
	return DefaultPolicy().Schedule(placedAt)
}
