package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"notify_hub/internal/config"
	"notify_hub/internal/queue"
	"notify_hub/internal/repository"
	"notify_hub/internal/sse"
	"notify_hub/internal/telemetry"
)

const retentionInterval = 12 * time.Hour

type App struct {
	cfg          *config.Config
	hub          *sse.Hub
	consumer     queue.Consumer
	failures     repository.PushFailureRepository
	server       *http.Server
	logger       *zap.Logger
	scheduler    gocron.Scheduler
	otelShutdown func(context.Context) error
	wg           sync.WaitGroup
}

func NewApp(cfg *config.Config, hub *sse.Hub, consumer queue.Consumer, failures repository.PushFailureRepository, router *gin.Engine, logger *zap.Logger) (*App, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:      cfg,
		hub:      hub,
		consumer: consumer,
		failures: failures,
		server: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: router,
		},
		logger:    logger,
		scheduler: scheduler,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	otelShutdown, err := telemetry.Init(ctx, a.cfg)
	if err != nil {
		return err
	}
	a.otelShutdown = otelShutdown

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.hub.Run(ctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.consumer.Start(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("consumer stopped", zap.Error(err))
		}
	}()

	if err := a.startRetentionJob(ctx); err != nil {
		return err
	}

	return a.server.ListenAndServe()
}

// startRetentionJob prunes old push failure records on an interval.
func (a *App) startRetentionJob(ctx context.Context) error {
	_, err := a.scheduler.NewJob(
		gocron.DurationJob(retentionInterval),
		gocron.NewTask(func() {
			deleted, err := a.failures.DeleteOlderThan(ctx, a.cfg.FailureRetention)
			if err != nil {
				a.logger.Error("push failure retention failed", zap.Error(err))
				return
			}
			if deleted > 0 {
				a.logger.Info("pruned push failures", zap.Int64("deleted", deleted))
			}
		}),
	)
	if err != nil {
		return err
	}
	a.scheduler.Start()
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("graceful shutdown started")
	shutdownErr := a.server.Shutdown(ctx)

	if err := a.scheduler.Shutdown(); err != nil {
		a.logger.Error("scheduler shutdown failed", zap.Error(err))
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.logger.Error("telemetry shutdown failed", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("graceful shutdown completed")
		return shutdownErr
	case <-ctx.Done():
		if shutdownErr != nil {
			return shutdownErr
		}
		return ctx.Err()
	}
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}
