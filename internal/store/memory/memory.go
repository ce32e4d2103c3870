package memory

import (
	"sync"

	"go.uber.org/zap"
	"notify_hub/internal/model"
)

// Store is an in-memory implementation of the repository interfaces. It is
// used when no MySQL DSN is configured and by the unit/e2e tests. It enforces
// the same invariants as the SQL schema: (user, notification) uniqueness and
// cascade deletion of delivery records.
type Store struct {
	mu sync.Mutex

	nextUserID         int64
	nextNotificationID int64
	nextDeliveryID     int64
	nextFailureID      int64

	users         map[int64]model.User
	notifications map[int64]model.Notification
	deliveries    []model.UserNotification
	failures      []model.PushFailure

	log *zap.Logger
}

func New(logger *zap.Logger) *Store {
	return &Store{
		nextUserID:         1,
		nextNotificationID: 1,
		nextDeliveryID:     1,
		nextFailureID:      1,
		users:              make(map[int64]model.User),
		notifications:      make(map[int64]model.Notification),
		log:                logger,
	}
}

// SeedUser inserts a user and returns it with an assigned ID. Users are an
// external entity in production; this exists for tests and local runs.
func (s *Store) SeedUser(user model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		user.ID = s.nextUserID
	}
	if user.ID >= s.nextUserID {
		s.nextUserID = user.ID + 1
	}
	s.users[user.ID] = user
	return user
}

// DeleteUser removes a user and cascades to their delivery records,
// mirroring the ON DELETE CASCADE foreign key.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	kept := s.deliveries[:0]
	for _, d := range s.deliveries {
		if d.UserID != id {
			kept = append(kept, d)
		}
	}
	s.deliveries = kept
}

func (s *Store) senderOf(n model.Notification) model.Sender {
	sender := model.Sender{ID: n.SenderID}
	if u, ok := s.users[n.SenderID]; ok {
		sender.Name = u.Name
		sender.Email = u.Email
	}
	return sender
}
