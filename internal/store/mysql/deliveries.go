package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"notify_hub/internal/domain"
	"notify_hub/internal/model"
)

const inboxItemColumns = `
	un.id, un.user_id, un.notification_id, un.` + "`read`" + `, un.read_at, un.created_at, un.updated_at,
	n.id, n.sender_id, n.title, n.body, n.recipient_ids, n.sent_at, n.created_at, n.updated_at,
	u.id, u.name, u.email
`

func (s *Store) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]model.InboxItem, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_notifications WHERE user_id = ?", userID,
	).Scan(&total); err != nil {
		return nil, 0, translateErr(err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+inboxItemColumns+`
		FROM user_notifications un
		JOIN notifications n ON n.id = un.notification_id
		JOIN users u ON u.id = n.sender_id
		WHERE un.user_id = ?
		ORDER BY un.created_at DESC, un.id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		s.log.Error("sql list inbox failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, 0, translateErr(err)
	}
	defer rows.Close()

	var result []model.InboxItem
	for rows.Next() {
		item, err := scanInboxItem(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *Store) GetForUser(ctx context.Context, userID, notificationID int64) (*model.InboxItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+inboxItemColumns+`
		FROM user_notifications un
		JOIN notifications n ON n.id = un.notification_id
		JOIN users u ON u.id = n.sender_id
		WHERE un.user_id = ? AND un.notification_id = ?
	`, userID, notificationID)

	item, err := scanInboxItem(row)
	if err != nil {
		return nil, translateErr(err)
	}
	return &item, nil
}

func (s *Store) MarkRead(ctx context.Context, userID, notificationID int64, readAt time.Time) (*model.UserNotification, error) {
	var d model.UserNotification
	var prevReadAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, notification_id, `+"`read`"+`, read_at, created_at, updated_at
		FROM user_notifications
		WHERE user_id = ? AND notification_id = ?
	`, userID, notificationID).Scan(&d.ID, &d.UserID, &d.NotificationID, &d.Read, &prevReadAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, translateErr(err)
	}

	// read_at is overwritten even when the record is already read; marking
	// read twice is still an idempotent success.
	if _, err := s.db.ExecContext(ctx,
		"UPDATE user_notifications SET `read` = 1, read_at = ? WHERE id = ?",
		readAt, d.ID,
	); err != nil {
		s.log.Error("sql mark read failed",
			zap.Int64("user_id", userID),
			zap.Int64("notification_id", notificationID),
			zap.Error(err),
		)
		return nil, translateErr(err)
	}

	d.Read = true
	d.ReadAt = &readAt
	d.UpdatedAt = readAt
	return &d, nil
}

func (s *Store) MarkAllRead(ctx context.Context, userID int64, readAt time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE user_notifications SET `read` = 1, read_at = ? WHERE user_id = ? AND `read` = 0",
		readAt, userID,
	)
	if err != nil {
		s.log.Error("sql mark all read failed", zap.Int64("user_id", userID), zap.Error(err))
		return 0, translateErr(err)
	}
	return result.RowsAffected()
}

func (s *Store) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_notifications WHERE user_id = ? AND `read` = 0", userID,
	).Scan(&count)
	if err != nil {
		return 0, translateErr(err)
	}
	return count, nil
}

func (s *Store) DeleteForUser(ctx context.Context, userID, notificationID int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM user_notifications WHERE user_id = ? AND notification_id = ?",
		userID, notificationID,
	)
	if err != nil {
		return translateErr(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInboxItem(row rowScanner) (model.InboxItem, error) {
	var (
		item          model.InboxItem
		readAt        sql.NullTime
		recipientJSON []byte
	)
	if err := row.Scan(
		&item.ID, &item.UserID, &item.NotificationID, &item.Read, &readAt, &item.CreatedAt, &item.UpdatedAt,
		&item.Notification.ID, &item.Notification.SenderID, &item.Notification.Title, &item.Notification.Body,
		&recipientJSON, &item.Notification.SentAt, &item.Notification.CreatedAt, &item.Notification.UpdatedAt,
		&item.Notification.Sender.ID, &item.Notification.Sender.Name, &item.Notification.Sender.Email,
	); err != nil {
		return model.InboxItem{}, err
	}
	if readAt.Valid {
		item.ReadAt = &readAt.Time
	}
	if err := json.Unmarshal(recipientJSON, &item.Notification.RecipientIDs); err != nil {
		return model.InboxItem{}, fmt.Errorf("unmarshal recipient ids: %w", err)
	}
	return item, nil
}
