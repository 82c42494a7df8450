package models

import "time"

// Change actions carried by ChangeEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent is published after a write has been committed.
type ChangeEvent struct {
	Entity     string      `json:"entity"`
	Action     string      `json:"action"`
	Key        string      `json:"key"`
	Data       interface{} `json:"data,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}
