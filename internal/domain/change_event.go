package domain

import "time"

// StatusChange records one persisted status transition of a property.
type StatusChange struct {
	ID         int64
	PropertyID string
	From       Status
	To         Status
	OccurredAt time.Time
}
