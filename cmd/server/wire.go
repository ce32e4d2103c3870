//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"notify_hub/internal/app"
	"notify_hub/internal/cache"
	"notify_hub/internal/config"
	"notify_hub/internal/http"
	"notify_hub/internal/http/controller"
	"notify_hub/internal/logging"
	"notify_hub/internal/push"
	"notify_hub/internal/queue/rabbitmq"
	"notify_hub/internal/repository"
	"notify_hub/internal/service/admin"
	"notify_hub/internal/service/dispatch"
	"notify_hub/internal/service/inbox"
	"notify_hub/internal/service/pushtask"
	"notify_hub/internal/sse"
	"notify_hub/internal/store"
)

func InitializeApp() (*app.App, error) {
	wire.Build(
		config.New,
		logging.New,
		store.New,
		wire.FieldsOf(new(*store.Stores), "Notifications", "Deliveries", "Users", "Failures"),
		wire.Bind(new(controller.UserService), new(repository.UserRepository)),
		sse.NewHub,
		cache.NewUnreadCounts,
		push.NewGateway,
		pushtask.NewExecutor,
		rabbitmq.NewPublisher,
		rabbitmq.NewConsumer,
		dispatch.NewService,
		inbox.NewService,
		admin.NewService,
		controller.NewHandler,
		http.NewRouter,
		app.NewApp,
	)
	return &app.App{}, nil
}
