package memory

import (
	"context"
	"sort"
	"time"

	"notify_hub/internal/domain"
	"notify_hub/internal/model"
)

func (s *Store) ListForUser(_ context.Context, userID int64, limit, offset int) ([]model.InboxItem, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []model.UserNotification
	for _, d := range s.deliveries {
		if d.UserID == userID {
			owned = append(owned, d)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		return owned[i].ID > owned[j].ID
	})

	total := int64(len(owned))
	if offset >= len(owned) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}

	result := make([]model.InboxItem, 0, end-offset)
	for _, d := range owned[offset:end] {
		result = append(result, s.inboxItem(d))
	}
	return result, total, nil
}

func (s *Store) GetForUser(_ context.Context, userID, notificationID int64) (*model.InboxItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.deliveryIndex(userID, notificationID)
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	item := s.inboxItem(s.deliveries[idx])
	return &item, nil
}

func (s *Store) MarkRead(_ context.Context, userID, notificationID int64, readAt time.Time) (*model.UserNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.deliveryIndex(userID, notificationID)
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	d := s.deliveries[idx]
	d.Read = true
	d.ReadAt = &readAt
	d.UpdatedAt = readAt
	s.deliveries[idx] = d
	return &d, nil
}

func (s *Store) MarkAllRead(_ context.Context, userID int64, readAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for i, d := range s.deliveries {
		if d.UserID != userID || d.Read {
			continue
		}
		at := readAt
		d.Read = true
		d.ReadAt = &at
		d.UpdatedAt = readAt
		s.deliveries[i] = d
		updated++
	}
	return updated, nil
}

func (s *Store) UnreadCount(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, d := range s.deliveries {
		if d.UserID == userID && !d.Read {
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteForUser(_ context.Context, userID, notificationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.deliveryIndex(userID, notificationID)
	if idx < 0 {
		return domain.ErrNotFound
	}
	s.deliveries = append(s.deliveries[:idx], s.deliveries[idx+1:]...)
	return nil
}

func (s *Store) deliveryIndex(userID, notificationID int64) int {
	for i, d := range s.deliveries {
		if d.UserID == userID && d.NotificationID == notificationID {
			return i
		}
	}
	return -1
}

func (s *Store) inboxItem(d model.UserNotification) model.InboxItem {
	n := s.notifications[d.NotificationID]
	return model.InboxItem{
		UserNotification: d,
		Notification:     model.NotificationWithSender{Notification: n, Sender: s.senderOf(n)},
	}
}
