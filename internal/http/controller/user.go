package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notify_hub/internal/domain"
	"notify_hub/internal/http/dto"
	"notify_hub/internal/http/middleware"
	"notify_hub/internal/model"
)

// UserService is the slice of the user store the HTTP layer needs.
type UserService interface {
	UpdatePushToken(ctx context.Context, id int64, token, deviceType string) (*model.User, error)
}

// UpdatePushToken handles PUT /api/v1/user/push-token.
func (h *Handler) UpdatePushToken(c *gin.Context) {
	var req dto.UpdatePushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("invalid json"))
		return
	}
	if req.PushToken == "" {
		c.JSON(http.StatusBadRequest, dto.Fail("push_token is required"))
		return
	}
	if !domain.IsValidDeviceType(req.DeviceType) {
		c.JSON(http.StatusBadRequest, dto.Fail(domain.ErrInvalidDeviceType.Error()))
		return
	}

	userID := middleware.UserID(c)
	user, err := h.users.UpdatePushToken(c.Request.Context(), userID, req.PushToken, req.DeviceType)
	if err != nil {
		h.notFoundOr(c, err, "User not found", "failed to update push token")
		return
	}

	h.log.Info("push token updated", zap.Int64("user_id", userID), zap.String("device_type", req.DeviceType))
	c.JSON(http.StatusOK, dto.OK(user, "FCM token updated successfully"))
}
