package mysql

import (
	"context"
	"time"

	"go.uber.org/zap"

	"notify_hub/internal/model"
)

func (s *Store) Record(ctx context.Context, failure model.PushFailure) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO push_failures (user_id, notification_id, reason, detail) VALUES (?, ?, ?, ?)",
		failure.UserID, failure.NotificationID, failure.Reason, failure.Detail,
	)
	if err != nil {
		s.log.Error("sql record push failure failed", zap.Int64("user_id", failure.UserID), zap.Error(err))
	}
	return translateErr(err)
}

func (s *Store) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM push_failures WHERE created_at < ?",
		time.Now().UTC().Add(-age),
	)
	if err != nil {
		return 0, translateErr(err)
	}
	return result.RowsAffected()
}
