package model

import "time"

type User struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsAdmin    bool      `json:"is_admin"`
	PushToken  *string   `json:"-"` // never exposed over the API
	DeviceType *string   `json:"device_type,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasPushToken reports whether the user can be addressed by the push channel.
func (u User) HasPushToken() bool {
	return u.PushToken != nil && *u.PushToken != ""
}

// Sender is the subset of User attached to notification payloads.
type Sender struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
