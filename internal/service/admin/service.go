package admin

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notify_hub/internal/config"
	"notify_hub/internal/model"
	"notify_hub/internal/repository"
)

// Service serves the sender-facing queries: the full notification history,
// per-notification delivery status, and the recipient directory.
type Service struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	log           *zap.Logger
	pageSize      int
}

func NewService(cfg *config.Config, notifications repository.NotificationRepository, users repository.UserRepository, logger *zap.Logger) *Service {
	return &Service{
		notifications: notifications,
		users:         users,
		log:           logger,
		pageSize:      cfg.PageSize,
	}
}

func (s *Service) ListAll(ctx context.Context, page int) (model.Page[model.NotificationWithSender], error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * s.pageSize
	items, total, err := s.notifications.ListAll(ctx, s.pageSize, offset)
	if err != nil {
		return model.Page[model.NotificationWithSender]{}, fmt.Errorf("list notifications: %w", err)
	}
	return model.NewPage(items, page, s.pageSize, total), nil
}

// GetWithStats returns the notification, its delivery records with their
// owning users, and counts derived from the delivery set at query time.
func (s *Service) GetWithStats(ctx context.Context, id int64) (*model.NotificationDetail, error) {
	detail, err := s.notifications.GetDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get notification detail: %w", err)
	}
	return detail, nil
}

func (s *Service) DeleteNotification(ctx context.Context, id int64) error {
	if err := s.notifications.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	s.log.Info("notification deleted", zap.Int64("notification_id", id))
	return nil
}

// ListRecipients returns the addressable user directory for composing a
// notification: every non-admin user.
func (s *Service) ListRecipients(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListNonAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	return users, nil
}
