package mysql

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"notify_hub/internal/domain"
)

type Store struct {
	db  *sql.DB
	log *zap.Logger
}

func New(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{db: db, log: logger}
}

const mysqlDuplicateEntry = 1062

// translateErr maps driver-level errors onto the domain sentinels so callers
// never see mysql error numbers.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return domain.ErrDuplicateDelivery
	}
	return err
}
