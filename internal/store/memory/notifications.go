package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"notify_hub/internal/domain"
	"notify_hub/internal/model"
)

func (s *Store) CreateWithDeliveries(_ context.Context, n model.Notification, recipientIDs []int64) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if n.SentAt.IsZero() {
		n.SentAt = now
	}
	n.ID = s.nextNotificationID
	n.CreatedAt = now
	n.UpdatedAt = now

	seen := make(map[int64]struct{}, len(recipientIDs))
	pending := make([]model.UserNotification, 0, len(recipientIDs))
	for _, userID := range recipientIDs {
		if _, ok := s.users[userID]; !ok {
			// Same failure mode as the SQL foreign key: the whole
			// transaction is discarded, nothing is committed.
			return model.Notification{}, fmt.Errorf("user %d does not exist", userID)
		}
		if _, dup := seen[userID]; dup {
			return model.Notification{}, fmt.Errorf("%w: user %d, notification %d", domain.ErrDuplicateDelivery, userID, n.ID)
		}
		seen[userID] = struct{}{}
		pending = append(pending, model.UserNotification{
			UserID:         userID,
			NotificationID: n.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	s.nextNotificationID++
	s.notifications[n.ID] = n
	for _, d := range pending {
		d.ID = s.nextDeliveryID
		s.nextDeliveryID++
		s.deliveries = append(s.deliveries, d)
	}
	return n, nil
}

func (s *Store) ListAll(_ context.Context, limit, offset int) ([]model.NotificationWithSender, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]model.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].SentAt.Equal(all[j].SentAt) {
			return all[i].SentAt.After(all[j].SentAt)
		}
		return all[i].ID > all[j].ID
	})

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	result := make([]model.NotificationWithSender, 0, end-offset)
	for _, n := range all[offset:end] {
		result = append(result, model.NotificationWithSender{Notification: n, Sender: s.senderOf(n)})
	}
	return result, total, nil
}

func (s *Store) GetDetail(_ context.Context, id int64) (*model.NotificationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	detail := &model.NotificationDetail{
		Notification: model.NotificationWithSender{Notification: n, Sender: s.senderOf(n)},
		Recipients:   []model.DeliveryWithUser{},
	}
	for _, d := range s.deliveries {
		if d.NotificationID != id {
			continue
		}
		detail.Recipients = append(detail.Recipients, model.DeliveryWithUser{
			UserNotification: d,
			User:             s.users[d.UserID],
		})
		detail.Stats.TotalRecipients++
		if d.Read {
			detail.Stats.ReadCount++
		} else {
			detail.Stats.UnreadCount++
		}
	}
	return detail, nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.notifications, id)
	kept := s.deliveries[:0]
	for _, d := range s.deliveries {
		if d.NotificationID != id {
			kept = append(kept, d)
		}
	}
	s.deliveries = kept
	return nil
}
