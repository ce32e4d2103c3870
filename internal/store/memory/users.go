package memory

import (
	"context"
	"sort"
	"time"

	"notify_hub/internal/domain"
	"notify_hub/internal/model"
)

func (s *Store) FindByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindByIDs(_ context.Context, ids []int64) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []model.User
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := s.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (s *Store) ListNonAdmins(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []model.User
	for _, u := range s.users {
		if !u.IsAdmin {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) UpdatePushToken(_ context.Context, id int64, token, deviceType string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.PushToken = &token
	u.DeviceType = &deviceType
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return &u, nil
}

func (s *Store) ClearPushToken(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil
	}
	u.PushToken = nil
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

func (s *Store) ClearPushTokenByValue(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.PushToken != nil && *u.PushToken == token {
			u.PushToken = nil
			u.UpdatedAt = time.Now().UTC()
			s.users[id] = u
		}
	}
	return nil
}
