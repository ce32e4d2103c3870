package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notify_hub/internal/domain"
	"notify_hub/internal/http/dto"
	"notify_hub/internal/http/middleware"
)

// ListNotifications handles GET /api/v1/admin/notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	page, err := h.admin.ListAll(c.Request.Context(), pageParam(c))
	if err != nil {
		h.log.Error("admin list notifications failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Fail("failed to retrieve notifications"))
		return
	}
	c.JSON(http.StatusOK, dto.OK(page, "Notifications retrieved successfully"))
}

// ListUsers handles GET /api/v1/admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListRecipients(c.Request.Context())
	if err != nil {
		h.log.Error("admin list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Fail("failed to retrieve users"))
		return
	}
	c.JSON(http.StatusOK, dto.OK(users, "Users retrieved successfully"))
}

// SendNotification handles POST /api/v1/admin/notifications/send.
func (h *Handler) SendNotification(c *gin.Context) {
	var req dto.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("invalid json"))
		return
	}
	if len(req.RecipientIDs) == 0 {
		c.JSON(http.StatusBadRequest, dto.Fail("recipient_ids is required"))
		return
	}

	result, err := h.dispatch.Dispatch(c.Request.Context(), middleware.UserID(c), req.Title, req.Body, req.RecipientIDs)
	if err != nil {
		h.dispatchError(c, err, "No valid users found")
		return
	}
	c.JSON(http.StatusCreated, dto.OK(result, "Notification sent successfully"))
}

// SendNotificationToAll handles POST /api/v1/admin/notifications/send-all.
func (h *Handler) SendNotificationToAll(c *gin.Context) {
	var req dto.SendAllNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("invalid json"))
		return
	}

	result, err := h.dispatch.DispatchToAll(c.Request.Context(), middleware.UserID(c), req.Title, req.Body)
	if err != nil {
		h.dispatchError(c, err, "No users found")
		return
	}
	c.JSON(http.StatusCreated, dto.OK(result, "Notification sent to all users"))
}

// GetNotification handles GET /api/v1/admin/notifications/:id.
func (h *Handler) GetNotification(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	detail, err := h.admin.GetWithStats(c.Request.Context(), id)
	if err != nil {
		h.notFoundOr(c, err, "Notification not found", "failed to retrieve notification")
		return
	}
	c.JSON(http.StatusOK, dto.OK(detail, "Notification retrieved successfully"))
}

// DeleteNotification handles DELETE /api/v1/admin/notifications/:id.
func (h *Handler) DeleteNotification(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.admin.DeleteNotification(c.Request.Context(), id); err != nil {
		h.notFoundOr(c, err, "Notification not found", "failed to delete notification")
		return
	}
	c.JSON(http.StatusOK, dto.OK(nil, "Notification deleted successfully"))
}

func (h *Handler) dispatchError(c *gin.Context, err error, noRecipientsMsg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidTitle), errors.Is(err, domain.ErrInvalidBody):
		c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
	case errors.Is(err, domain.ErrNoRecipients):
		c.JSON(http.StatusBadRequest, dto.Fail(noRecipientsMsg))
	default:
		h.log.Error("dispatch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Fail("Failed to send notification"))
	}
}
