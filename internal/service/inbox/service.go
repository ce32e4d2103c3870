package inbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"notify_hub/internal/cache"
	"notify_hub/internal/config"
	"notify_hub/internal/model"
	"notify_hub/internal/repository"
)

// Service is the recipient-facing view over delivery records. Every
// operation is scoped to the requesting user; ownership is part of the
// lookup predicate, not a separate check.
type Service struct {
	deliveries repository.DeliveryRepository
	unread     cache.UnreadCounts
	log        *zap.Logger
	pageSize   int
}

func NewService(cfg *config.Config, deliveries repository.DeliveryRepository, unread cache.UnreadCounts, logger *zap.Logger) *Service {
	return &Service{
		deliveries: deliveries,
		unread:     unread,
		log:        logger,
		pageSize:   cfg.PageSize,
	}
}

func (s *Service) List(ctx context.Context, userID int64, page int) (model.Page[model.InboxItem], error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * s.pageSize
	items, total, err := s.deliveries.ListForUser(ctx, userID, s.pageSize, offset)
	if err != nil {
		return model.Page[model.InboxItem]{}, fmt.Errorf("list inbox: %w", err)
	}
	return model.NewPage(items, page, s.pageSize, total), nil
}

func (s *Service) Get(ctx context.Context, userID, notificationID int64) (*model.InboxItem, error) {
	item, err := s.deliveries.GetForUser(ctx, userID, notificationID)
	if err != nil {
		return nil, fmt.Errorf("get inbox item: %w", err)
	}
	return item, nil
}

// MarkRead is idempotent; re-marking an already-read record succeeds and
// refreshes read_at.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID int64) (*model.UserNotification, error) {
	record, err := s.deliveries.MarkRead(ctx, userID, notificationID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	s.invalidateUnread(ctx, userID)
	return record, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	updated, err := s.deliveries.MarkAllRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	s.invalidateUnread(ctx, userID)
	return updated, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if count, err := s.unread.Get(ctx, userID); err == nil {
		return count, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("unread cache read failed", zap.Int64("user_id", userID), zap.Error(err))
	}

	count, err := s.deliveries.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	if err := s.unread.Set(ctx, userID, count); err != nil {
		s.log.Warn("unread cache write failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	return count, nil
}

// Delete removes only the user's own delivery record; the shared
// notification survives for other recipients.
func (s *Service) Delete(ctx context.Context, userID, notificationID int64) error {
	if err := s.deliveries.DeleteForUser(ctx, userID, notificationID); err != nil {
		return fmt.Errorf("delete inbox item: %w", err)
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *Service) invalidateUnread(ctx context.Context, userID int64) {
	if err := s.unread.Invalidate(ctx, userID); err != nil {
		s.log.Warn("unread cache invalidation failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
