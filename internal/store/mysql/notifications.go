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

func (s *Store) CreateWithDeliveries(ctx context.Context, n model.Notification, recipientIDs []int64) (model.Notification, error) {
	now := time.Now().UTC()
	if n.SentAt.IsZero() {
		n.SentAt = now
	}

	recipientJSON, err := json.Marshal(recipientIDs)
	if err != nil {
		return model.Notification{}, fmt.Errorf("marshal recipient ids: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Notification{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		"INSERT INTO notifications (sender_id, title, body, recipient_ids, sent_at) VALUES (?, ?, ?, ?, ?)",
		n.SenderID, n.Title, n.Body, recipientJSON, n.SentAt,
	)
	if err != nil {
		s.log.Error("sql insert notification failed", zap.Int64("sender_id", n.SenderID), zap.Error(err))
		return model.Notification{}, translateErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Notification{}, fmt.Errorf("last insert id: %w", err)
	}

	for _, userID := range recipientIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_notifications (user_id, notification_id) VALUES (?, ?)",
			userID, id,
		); err != nil {
			s.log.Error("sql insert delivery failed",
				zap.Int64("user_id", userID),
				zap.Int64("notification_id", id),
				zap.Error(err),
			)
			return model.Notification{}, translateErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Notification{}, fmt.Errorf("commit: %w", err)
	}

	n.ID = id
	n.RecipientIDs = recipientIDs
	n.CreatedAt = now
	n.UpdatedAt = now
	return n, nil
}

func (s *Store) ListAll(ctx context.Context, limit, offset int) ([]model.NotificationWithSender, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications").Scan(&total); err != nil {
		return nil, 0, translateErr(err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.sender_id, n.title, n.body, n.recipient_ids, n.sent_at, n.created_at, n.updated_at,
		       u.id, u.name, u.email
		FROM notifications n
		JOIN users u ON u.id = n.sender_id
		ORDER BY n.sent_at DESC, n.id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		s.log.Error("sql list notifications failed", zap.Error(err))
		return nil, 0, translateErr(err)
	}
	defer rows.Close()

	var result []model.NotificationWithSender
	for rows.Next() {
		item, err := scanNotificationWithSender(rows)
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

func (s *Store) GetDetail(ctx context.Context, id int64) (*model.NotificationDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT n.id, n.sender_id, n.title, n.body, n.recipient_ids, n.sent_at, n.created_at, n.updated_at,
		       u.id, u.name, u.email
		FROM notifications n
		JOIN users u ON u.id = n.sender_id
		WHERE n.id = ?
	`, id)

	notification, err := scanNotificationWithSender(row)
	if err != nil {
		return nil, translateErr(err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT un.id, un.user_id, un.notification_id, un.`+"`read`"+`, un.read_at, un.created_at, un.updated_at,
		       u.id, u.name, u.email, u.is_admin, u.push_token, u.device_type, u.created_at, u.updated_at
		FROM user_notifications un
		JOIN users u ON u.id = un.user_id
		WHERE un.notification_id = ?
		ORDER BY un.id
	`, id)
	if err != nil {
		s.log.Error("sql list recipients failed", zap.Int64("notification_id", id), zap.Error(err))
		return nil, translateErr(err)
	}
	defer rows.Close()

	detail := &model.NotificationDetail{
		Notification: notification,
		Recipients:   []model.DeliveryWithUser{},
	}
	for rows.Next() {
		var (
			d      model.UserNotification
			u      model.User
			readAt sql.NullTime
			token  sql.NullString
			device sql.NullString
		)
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.NotificationID, &d.Read, &readAt, &d.CreatedAt, &d.UpdatedAt,
			&u.ID, &u.Name, &u.Email, &u.IsAdmin, &token, &device, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if readAt.Valid {
			d.ReadAt = &readAt.Time
		}
		if token.Valid {
			u.PushToken = &token.String
		}
		if device.Valid {
			u.DeviceType = &device.String
		}
		detail.Recipients = append(detail.Recipients, model.DeliveryWithUser{UserNotification: d, User: u})
		detail.Stats.TotalRecipients++
		if d.Read {
			detail.Stats.ReadCount++
		} else {
			detail.Stats.UnreadCount++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_notifications WHERE notification_id = ?", id); err != nil {
		return translateErr(err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", id)
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
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotificationWithSender(row rowScanner) (model.NotificationWithSender, error) {
	var (
		item          model.NotificationWithSender
		recipientJSON []byte
	)
	if err := row.Scan(
		&item.ID, &item.SenderID, &item.Title, &item.Body, &recipientJSON,
		&item.SentAt, &item.CreatedAt, &item.UpdatedAt,
		&item.Sender.ID, &item.Sender.Name, &item.Sender.Email,
	); err != nil {
		return model.NotificationWithSender{}, err
	}
	if err := json.Unmarshal(recipientJSON, &item.RecipientIDs); err != nil {
		return model.NotificationWithSender{}, fmt.Errorf("unmarshal recipient ids: %w", err)
	}
	return item, nil
}
