package models

import "time"

// Activity represents a loggable account event, e.g. a login or a profile
// update.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "account.login", "account.update"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	AccountID *int      `json:"accountId,omitempty"` // Nullable for anonymous events
	CreatedAt time.Time `json:"createdAt"`
}
