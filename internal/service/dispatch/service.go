package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"notify_hub/internal/cache"
	"notify_hub/internal/config"
	"notify_hub/internal/domain"
	"notify_hub/internal/metrics"
	"notify_hub/internal/model"
	"notify_hub/internal/queue"
	"notify_hub/internal/repository"
	"notify_hub/internal/sse"
)

// Service is the fan-out dispatch engine. It owns the transactional write
// (notification plus one delivery record per recipient) and the post-commit
// submission to both delivery channels. Channel failures after commit are
// channel-local and never roll anything back.
type Service struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	hub           *sse.Hub
	publisher     queue.Publisher
	unread        cache.UnreadCounts
	log           *zap.Logger
	routingKey    string
}

func NewService(cfg *config.Config, notifications repository.NotificationRepository, users repository.UserRepository, hub *sse.Hub, publisher queue.Publisher, unread cache.UnreadCounts, logger *zap.Logger) *Service {
	return &Service{
		notifications: notifications,
		users:         users,
		hub:           hub,
		publisher:     publisher,
		unread:        unread,
		log:           logger,
		routingKey:    cfg.RabbitPublishPrefix + "." + domain.DataTypeNotification,
	}
}

// Dispatch sends a notification to an explicit recipient list. Identifiers
// that resolve to no user are silently discarded; an empty resolved set is
// an error.
func (s *Service) Dispatch(ctx context.Context, senderID int64, title, body string, recipientIDs []int64) (model.DispatchResult, error) {
	if err := domain.ValidateContent(title, body); err != nil {
		return model.DispatchResult{}, err
	}

	recipients, err := s.users.FindByIDs(ctx, dedupe(recipientIDs))
	if err != nil {
		return model.DispatchResult{}, fmt.Errorf("resolve recipients: %w", err)
	}
	return s.dispatch(ctx, senderID, title, body, recipients)
}

// DispatchToAll broadcasts to every non-admin user.
func (s *Service) DispatchToAll(ctx context.Context, senderID int64, title, body string) (model.DispatchResult, error) {
	if err := domain.ValidateContent(title, body); err != nil {
		return model.DispatchResult{}, err
	}

	recipients, err := s.users.ListNonAdmins(ctx)
	if err != nil {
		return model.DispatchResult{}, fmt.Errorf("resolve recipients: %w", err)
	}
	return s.dispatch(ctx, senderID, title, body, recipients)
}

func (s *Service) dispatch(ctx context.Context, senderID int64, title, body string, recipients []model.User) (model.DispatchResult, error) {
	if len(recipients) == 0 {
		return model.DispatchResult{}, domain.ErrNoRecipients
	}

	ids := make([]int64, 0, len(recipients))
	for _, r := range recipients {
		ids = append(ids, r.ID)
	}

	notification := model.Notification{
		SenderID:     senderID,
		Title:        title,
		Body:         body,
		RecipientIDs: ids,
		SentAt:       time.Now().UTC(),
	}

	created, err := s.notifications.CreateWithDeliveries(ctx, notification, ids)
	if err != nil {
		s.log.Error("dispatch transaction failed",
			zap.Int64("sender_id", senderID),
			zap.Int("recipients", len(ids)),
			zap.Error(err),
		)
		return model.DispatchResult{}, errors.Join(domain.ErrDispatchFailed, err)
	}

	metrics.DispatchTotal.Inc()
	metrics.DispatchRecipients.Add(float64(len(ids)))

	s.fanOut(ctx, created, ids)

	return model.DispatchResult{Notification: created, RecipientsCount: len(ids)}, nil
}

// fanOut runs strictly after commit. Each submission is independent and
// best effort.
func (s *Service) fanOut(ctx context.Context, n model.Notification, recipientIDs []int64) {
	if err := s.unread.Invalidate(ctx, recipientIDs...); err != nil {
		s.log.Warn("unread cache invalidation failed", zap.Error(err))
	}

	for _, userID := range recipientIDs {
		s.hub.Publish(model.RealtimeEvent{
			UserID:         userID,
			NotificationID: n.ID,
			Title:          n.Title,
			Body:           n.Body,
			SentAt:         n.SentAt,
		})

		task := model.PushTask{
			NotificationID: n.ID,
			UserID:         userID,
			Title:          n.Title,
			Body:           n.Body,
			Data: map[string]string{
				"type":            domain.DataTypeNotification,
				"notification_id": strconv.FormatInt(n.ID, 10),
			},
		}
		payload, err := json.Marshal(task)
		if err != nil {
			s.log.Error("marshal push task failed", zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		if err := s.publisher.Publish(ctx, payload, s.routingKey); err != nil {
			s.log.Error("enqueue push task failed",
				zap.Int64("user_id", userID),
				zap.Int64("notification_id", n.ID),
				zap.Error(err),
			)
		}
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
