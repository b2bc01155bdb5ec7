package notification

import "time"

type DeviceToken struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Push is one user-facing unlock notification: a level-up, badge or
// achievement toast delivered outside the engine's atomic unit.
type Push struct {
	UserID string
	Title  string
	Body   string
	Data   map[string]any
}
