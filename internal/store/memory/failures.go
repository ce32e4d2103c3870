package memory

import (
	"context"
	"time"

	"notify_hub/internal/model"
)

func (s *Store) Record(_ context.Context, failure model.PushFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	failure.ID = s.nextFailureID
	s.nextFailureID++
	if failure.CreatedAt.IsZero() {
		failure.CreatedAt = time.Now().UTC()
	}
	s.failures = append(s.failures, failure)
	return nil
}

func (s *Store) DeleteOlderThan(_ context.Context, age time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-age)
	kept := s.failures[:0]
	var removed int64
	for _, f := range s.failures {
		if f.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	s.failures = kept
	return removed, nil
}

// Failures returns a snapshot of the recorded push failures, for tests and
// the operator endpoint.
func (s *Store) Failures() []model.PushFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PushFailure, len(s.failures))
	copy(out, s.failures)
	return out
}
