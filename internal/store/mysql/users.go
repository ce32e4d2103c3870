package mysql

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"notify_hub/internal/model"
)

const userColumns = "id, name, email, is_admin, push_token, device_type, created_at, updated_at"

func (s *Store) FindByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if err != nil {
		return nil, translateErr(err)
	}
	return &u, nil
}

func (s *Store) FindByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		s.log.Error("sql find users failed", zap.Error(err))
		return nil, translateErr(err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (s *Store) ListNonAdmins(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_admin = 0 ORDER BY name")
	if err != nil {
		s.log.Error("sql list users failed", zap.Error(err))
		return nil, translateErr(err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (s *Store) UpdatePushToken(ctx context.Context, id int64, token, deviceType string) (*model.User, error) {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET push_token = ?, device_type = ? WHERE id = ?",
		token, deviceType, id,
	); err != nil {
		s.log.Error("sql update push token failed", zap.Int64("user_id", id), zap.Error(err))
		return nil, translateErr(err)
	}
	return s.FindByID(ctx, id)
}

func (s *Store) ClearPushToken(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE users SET push_token = NULL WHERE id = ?", id)
	return translateErr(err)
}

func (s *Store) ClearPushTokenByValue(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE users SET push_token = NULL WHERE push_token = ?", token)
	return translateErr(err)
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u      model.User
		token  sql.NullString
		device sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.IsAdmin, &token, &device, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return model.User{}, err
	}
	if token.Valid {
		u.PushToken = &token.String
	}
	if device.Valid {
		u.DeviceType = &device.String
	}
	return u, nil
}

func scanUsers(rows *sql.Rows) ([]model.User, error) {
	var result []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
