package store

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"notify_hub/internal/config"
	"notify_hub/internal/repository"
	"notify_hub/internal/store/memory"
	"notify_hub/internal/store/mysql"
)

// Stores bundles the repository implementations. A single backend serves all
// of them so the dispatch transaction and the cascade invariants hold across
// repositories.
type Stores struct {
	Notifications repository.NotificationRepository
	Deliveries    repository.DeliveryRepository
	Users         repository.UserRepository
	Failures      repository.PushFailureRepository
}

func New(cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if cfg.MySQLDSN == "" {
		mem := memory.New(logger)
		return &Stores{Notifications: mem, Deliveries: mem, Users: mem, Failures: mem}, nil
	}

	sqlDB, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Error("mysql open failed", zap.Error(err))
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Error("mysql ping failed", zap.Error(err))
		return nil, err
	}

	st := mysql.New(sqlDB, logger)
	return &Stores{Notifications: st, Deliveries: st, Users: st, Failures: st}, nil
}
