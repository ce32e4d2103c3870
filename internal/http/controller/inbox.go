package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notify_hub/internal/http/dto"
	"notify_hub/internal/http/middleware"
)

// ListInbox handles GET /api/v1/notifications.
func (h *Handler) ListInbox(c *gin.Context) {
	userID := middleware.UserID(c)
	page, err := h.inbox.List(c.Request.Context(), userID, pageParam(c))
	if err != nil {
		h.log.Error("list inbox failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Fail("failed to retrieve notifications"))
		return
	}
	c.JSON(http.StatusOK, dto.OK(page, "Notifications retrieved successfully"))
}

// GetInboxItem handles GET /api/v1/notifications/:id.
func (h *Handler) GetInboxItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	item, err := h.inbox.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		h.notFoundOr(c, err, "Notification not found", "failed to retrieve notification")
		return
	}
	c.JSON(http.StatusOK, dto.OK(item, "Notification retrieved successfully"))
}

// MarkRead handles PUT /api/v1/notifications/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	record, err := h.inbox.MarkRead(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		h.notFoundOr(c, err, "Notification not found", "failed to mark notification as read")
		return
	}
	c.JSON(http.StatusOK, dto.OK(record, "Notification marked as read"))
}

// MarkAllRead handles PUT /api/v1/notifications/read-all.
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID := middleware.UserID(c)
	updated, err := h.inbox.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("mark all read failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Fail("failed to mark notifications as read"))
		return
	}
	c.JSON(http.StatusOK, dto.OK(gin.H{"updated": updated}, "All notifications marked as read"))
}

// UnreadCount handles GET /api/v1/notifications/unread-count.
func (h *Handler) UnreadCount(c *gin.Context) {
	userID := middleware.UserID(c)
	count, err := h.inbox.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("unread count failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Fail("failed to retrieve unread count"))
		return
	}
	c.JSON(http.StatusOK, dto.OK(gin.H{"unread_count": count}, "Unread count retrieved successfully"))
}

// DeleteInboxItem handles DELETE /api/v1/notifications/:id.
func (h *Handler) DeleteInboxItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.inbox.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		h.notFoundOr(c, err, "Notification not found", "failed to delete notification")
		return
	}
	c.JSON(http.StatusOK, dto.OK(nil, "Notification deleted successfully"))
}
