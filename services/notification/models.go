package service

import (
	"encoding/json"
	"time"
)

// Notification is one row of a user's inbox feed. Data carries the payload
// the app needs to deep-link from the notification (wallet id, invite code).
type Notification struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	Type        string          `db:"type" json:"type"`
	Title       string          `db:"title" json:"title"`
	Body        string          `db:"body" json:"body"`
	Data        json.RawMessage `db:"data" json:"data,omitempty"`
	Read        bool            `db:"read" json:"read"`
	ActionTaken string          `db:"action_taken" json:"action_taken,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
