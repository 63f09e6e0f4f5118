package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/studyhive/study_go_server/internal/api/middleware"
	"github.com/studyhive/study_go_server/internal/model/dto"
	"github.com/studyhive/study_go_server/internal/pkg/response"
	"github.com/studyhive/study_go_server/internal/service"
)

type NotificationHandler struct {
	notifService *service.NotificationService
}

func NewNotificationHandler(notifService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notifService: notifService,
	}
}

// List 通知列表，最新在前
// GET /api/v1/notifications?page&limit&unread_only
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, pageSize := parsePageQuery(c)
	unreadOnly := c.Query("unread_only") == "true"

	notifs, total, err := h.notifService.List(userID, unreadOnly, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, notifs)
}

// UnreadCount 未读通知数
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	count, err := h.notifService.UnreadCount(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, dto.UnreadCountResponse{Count: count})
}

// MarkRead 标记单条通知已读，幂等
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	notifID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.notifService.MarkRead(userID, notifID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "已标记为已读", nil)
}

// MarkAllRead 全部标记已读
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	affected, err := h.notifService.MarkAllRead(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"marked": affected})
}
