package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notify_hub/internal/config"
	"notify_hub/internal/domain"
	"notify_hub/internal/http/dto"
	"notify_hub/internal/service/admin"
	"notify_hub/internal/service/dispatch"
	"notify_hub/internal/service/inbox"
	"notify_hub/internal/sse"
)

type Handler struct {
	cfg      *config.Config
	dispatch *dispatch.Service
	inbox    *inbox.Service
	admin    *admin.Service
	users    UserService
	hub      *sse.Hub
	log      *zap.Logger
}

func NewHandler(cfg *config.Config, dispatchSvc *dispatch.Service, inboxSvc *inbox.Service, adminSvc *admin.Service, users UserService, hub *sse.Hub, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		dispatch: dispatchSvc,
		inbox:    inboxSvc,
		admin:    adminSvc,
		users:    users,
		hub:      hub,
		log:      logger,
	}
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.Fail("invalid notification id"))
		return 0, false
	}
	return id, true
}

// notFoundOr maps domain.ErrNotFound to 404 and everything else to 500.
func (h *Handler) notFoundOr(c *gin.Context, err error, notFoundMsg, failMsg string) {
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.Fail(notFoundMsg))
		return
	}
	h.log.Error(failMsg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.Fail(failMsg))
}
