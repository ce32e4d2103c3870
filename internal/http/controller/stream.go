package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notify_hub/internal/http/dto"
	"notify_hub/internal/http/middleware"
	"notify_hub/internal/model"
	"notify_hub/internal/sse"
)

// Stream handles GET /api/v1/notifications/stream. It holds the connection
// open and forwards realtime events addressed to the authenticated user.
// There is no replay; missed events are only visible through the inbox.
func (h *Handler) Stream(c *gin.Context) {
	userID := middleware.UserID(c)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		h.log.Error("streaming unsupported", zap.Int64("user_id", userID))
		c.JSON(http.StatusInternalServerError, dto.Fail("streaming unsupported"))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	flusher.Flush()

	client := &sse.Client{
		UserID: userID,
		Ch:     make(chan model.RealtimeEvent, 16),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	heartbeat := time.NewTicker(h.cfg.SSEHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
				h.log.Error("heartbeat write failed", zap.Int64("user_id", userID), zap.Error(err))
				return
			}
			flusher.Flush()
		case event, ok := <-client.Ch:
			if !ok {
				return
			}
			if err := writeEvent(c.Writer, event); err != nil {
				h.log.Error("write event failed", zap.Int64("user_id", userID), zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event model.RealtimeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	// SSE frame mapping:
	// - id: the notification id (event id)
	// - event: "notification" (JS uses addEventListener("notification", ...))
	// - data: JSON payload with notification_id/title/body/sent_at
	_, err = fmt.Fprintf(w, "id: %d\nevent: notification\ndata: %s\n\n", event.NotificationID, payload)
	return err
}
