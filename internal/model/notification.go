package model

import "time"

// Notification is the immutable broadcast record. The recipient list is
// frozen at dispatch time; per-user state lives in UserNotification.
type Notification struct {
	ID           int64     `json:"id"`
	SenderID     int64     `json:"sender_id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	RecipientIDs []int64   `json:"recipient_ids"`
	SentAt       time.Time `json:"sent_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type NotificationWithSender struct {
	Notification
	Sender Sender `json:"sender"`
}

// UserNotification tracks one recipient's relationship to one notification.
// At most one row exists per (user, notification) pair.
type UserNotification struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	NotificationID int64      `json:"notification_id"`
	Read           bool       `json:"read"`
	ReadAt         *time.Time `json:"read_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// InboxItem is a delivery record joined with its notification content.
type InboxItem struct {
	UserNotification
	Notification NotificationWithSender `json:"notification"`
}

type DeliveryWithUser struct {
	UserNotification
	User User `json:"user"`
}

// NotificationStats is derived from the delivery set at query time.
type NotificationStats struct {
	TotalRecipients int `json:"total_recipients"`
	ReadCount       int `json:"read_count"`
	UnreadCount     int `json:"unread_count"`
}

type NotificationDetail struct {
	Notification NotificationWithSender `json:"notification"`
	Recipients   []DeliveryWithUser     `json:"recipients"`
	Stats        NotificationStats      `json:"stats"`
}

type DispatchResult struct {
	Notification    Notification `json:"notification"`
	RecipientsCount int          `json:"recipients_count"`
}
