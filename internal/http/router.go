package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"notify_hub/internal/config"
	"notify_hub/internal/http/controller"
	"notify_hub/internal/http/middleware"
)

func NewRouter(cfg *config.Config, handler *controller.Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.ZapLogger(logger),
		middleware.ZapRecovery(logger),
		otelgin.Middleware(cfg.OTELServiceName),
	)

	router.GET("/health", func(c *gin.Context) {
		c.Status(200)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1", middleware.Auth(cfg.JWTSecret))

	api.PUT("/user/push-token", handler.UpdatePushToken)

	inbox := api.Group("/notifications")
	inbox.GET("", handler.ListInbox)
	inbox.GET("/unread-count", handler.UnreadCount)
	inbox.GET("/stream", handler.Stream)
	inbox.PUT("/read-all", handler.MarkAllRead)
	inbox.GET("/:id", handler.GetInboxItem)
	inbox.PUT("/:id/read", handler.MarkRead)
	inbox.DELETE("/:id", handler.DeleteInboxItem)

	admin := api.Group("/admin", middleware.RequireAdmin())
	admin.GET("/users", handler.ListUsers)
	admin.GET("/notifications", handler.ListNotifications)
	admin.POST("/notifications/send", handler.SendNotification)
	admin.POST("/notifications/send-all", handler.SendNotificationToAll)
	admin.GET("/notifications/:id", handler.GetNotification)
	admin.DELETE("/notifications/:id", handler.DeleteNotification)

	return router
}
