package repository

import (
	"context"
	"time"

	"notify_hub/internal/model"
)

// NotificationRepository owns the notification rows and their transactional
// fan-out. CreateWithDeliveries must insert the notification and exactly one
// delivery row per recipient in a single transaction, or nothing at all.
type NotificationRepository interface {
	CreateWithDeliveries(ctx context.Context, n model.Notification, recipientIDs []int64) (model.Notification, error)
	ListAll(ctx context.Context, limit, offset int) ([]model.NotificationWithSender, int64, error)
	GetDetail(ctx context.Context, id int64) (*model.NotificationDetail, error)
	Delete(ctx context.Context, id int64) error
}

// DeliveryRepository is the recipient-facing view over delivery records.
// Every lookup is scoped by the owning user; a pair that does not exist for
// that user yields domain.ErrNotFound.
type DeliveryRepository interface {
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]model.InboxItem, int64, error)
	GetForUser(ctx context.Context, userID, notificationID int64) (*model.InboxItem, error)
	MarkRead(ctx context.Context, userID, notificationID int64, readAt time.Time) (*model.UserNotification, error)
	MarkAllRead(ctx context.Context, userID int64, readAt time.Time) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	DeleteForUser(ctx context.Context, userID, notificationID int64) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.User, error)
	ListNonAdmins(ctx context.Context) ([]model.User, error)
	UpdatePushToken(ctx context.Context, id int64, token, deviceType string) (*model.User, error)
	ClearPushToken(ctx context.Context, id int64) error
	ClearPushTokenByValue(ctx context.Context, token string) error
}

type PushFailureRepository interface {
	Record(ctx context.Context, failure model.PushFailure) error
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)
}
