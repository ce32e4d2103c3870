package model

import "time"

// PushTask is the payload enqueued per (notification, recipient) pair.
// Data values are strings because the push gateway's payload contract is
// stringly typed.
type PushTask struct {
	NotificationID int64             `json:"notification_id"`
	UserID         int64             `json:"user_id"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Data           map[string]string `json:"data"`
}

// RealtimeEvent is what the in-app channel delivers to a connected user.
type RealtimeEvent struct {
	UserID         int64     `json:"-"`
	NotificationID int64     `json:"notification_id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sent_at"`
}

// PushFailure is an operator-visible record of a terminal push delivery
// failure. Best-effort delivery: these are never retried automatically.
type PushFailure struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	NotificationID int64     `json:"notification_id"`
	Reason         string    `json:"reason"`
	Detail         string    `json:"detail"`
	CreatedAt      time.Time `json:"created_at"`
}

type MulticastReport struct {
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
}
