package pushtask

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"notify_hub/internal/config"
	"notify_hub/internal/domain"
	"notify_hub/internal/metrics"
	"notify_hub/internal/model"
	"notify_hub/internal/push"
	"notify_hub/internal/repository"
)

// Executor runs queued push delivery tasks, one task per
// (notification, recipient) pair. Delivery is best effort: transient
// gateway failures are retried a bounded number of times, terminal
// failures land in the push_failures table for operators.
type Executor struct {
	users       repository.UserRepository
	failures    repository.PushFailureRepository
	gateway     push.Gateway
	logger      *zap.Logger
	maxAttempts int
	backoff     time.Duration
}

func NewExecutor(cfg *config.Config, users repository.UserRepository, failures repository.PushFailureRepository, gateway push.Gateway, logger *zap.Logger) *Executor {
	return &Executor{
		users:       users,
		failures:    failures,
		gateway:     gateway,
		logger:      logger,
		maxAttempts: cfg.PushMaxAttempts,
		backoff:     cfg.PushBackoff,
	}
}

// Deliver executes one push task. A returned error means nothing was sent
// and the task is safe to redeliver; every post-send failure is terminal
// and handled here.
func (e *Executor) Deliver(ctx context.Context, task model.PushTask) error {
	user, err := e.users.FindByID(ctx, task.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Recipient deleted between dispatch and task execution.
			e.logger.Info("push skipped, user gone",
				zap.Int64("user_id", task.UserID),
				zap.Int64("notification_id", task.NotificationID),
			)
			metrics.PushDeliveryTotal.WithLabelValues("skipped").Inc()
			return nil
		}
		return fmt.Errorf("find push recipient: %w", err)
	}
	if !user.HasPushToken() {
		e.logger.Info("push skipped, no token",
			zap.Int64("user_id", task.UserID),
			zap.Int64("notification_id", task.NotificationID),
		)
		metrics.PushDeliveryTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	token := *user.PushToken
	var res push.Result
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		res = e.gateway.SendToToken(ctx, token, task.Title, task.Body, task.Data)
		if res.Outcome != push.OutcomeTransient || attempt == e.maxAttempts {
			break
		}
		e.logger.Warn("push attempt failed, retrying",
			zap.Int64("user_id", task.UserID),
			zap.Int("attempt", attempt),
			zap.Error(res.Err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.backoff):
		}
	}

	metrics.PushDeliveryTotal.WithLabelValues(res.Outcome.String()).Inc()

	switch res.Outcome {
	case push.OutcomeOK:
		return nil
	case push.OutcomeInvalidToken:
		if err := e.users.ClearPushToken(ctx, user.ID); err != nil {
			e.logger.Error("clear push token failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		e.recordFailure(ctx, task, res)
		return nil
	default:
		e.recordFailure(ctx, task, res)
		return nil
	}
}

// DeliverMulticast sends one message to a batch of tokens and clears any
// token the gateway reports as invalid.
func (e *Executor) DeliverMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (model.MulticastReport, error) {
	if len(tokens) == 0 {
		return model.MulticastReport{}, nil
	}
	res, err := e.gateway.SendMulticast(ctx, tokens, title, body, data)
	if err != nil {
		return model.MulticastReport{}, fmt.Errorf("multicast send: %w", err)
	}
	for _, f := range res.Failures {
		if f.Outcome != push.OutcomeInvalidToken {
			continue
		}
		if err := e.users.ClearPushTokenByValue(ctx, f.Token); err != nil {
			e.logger.Error("clear push token failed", zap.Error(err))
		}
	}
	return model.MulticastReport{
		SuccessCount: res.SuccessCount,
		FailureCount: res.FailureCount,
	}, nil
}

func (e *Executor) recordFailure(ctx context.Context, task model.PushTask, res push.Result) {
	detail := ""
	if res.Err != nil {
		detail = res.Err.Error()
	}
	e.logger.Error("push delivery failed",
		zap.Int64("user_id", task.UserID),
		zap.Int64("notification_id", task.NotificationID),
		zap.String("outcome", res.Outcome.String()),
		zap.Error(res.Err),
	)
	failure := model.PushFailure{
		UserID:         task.UserID,
		NotificationID: task.NotificationID,
		Reason:         res.Outcome.String(),
		Detail:         detail,
	}
	if err := e.failures.Record(ctx, failure); err != nil {
		e.logger.Error("record push failure failed", zap.Error(err))
	}
}
