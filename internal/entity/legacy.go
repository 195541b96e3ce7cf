package entity

import "time"

// LegacyOrder is the first-generation schema view of an order. Deadline and
// blacklist data exist only here; the current schema wins everywhere else.
type LegacyOrder struct {
	OrderID               string
	CreatedAt             time.Time
	Deadline              *int64 // unix seconds
	IsBlacklisted         bool
	SourceInitiatedAt     *time.Time
	RequiredConfirmations int
	CurrentConfirmations  int
}

// DeadlineTime returns the recorded deadline as an absolute timestamp.
func (o *LegacyOrder) DeadlineTime() (time.Time, bool) {
	if o == nil || o.Deadline == nil {
		return time.Time{}, false
	}
	return time.Unix(*o.Deadline, 0).UTC(), true
}
