package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyhive/study_go_server/internal/api/middleware"
	"github.com/studyhive/study_go_server/internal/model/dto"
	"github.com/studyhive/study_go_server/internal/pkg/response"
	"github.com/studyhive/study_go_server/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

func parsePageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, pageSize
}

// Send 发送私信
// POST /api/v1/messages
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	msg, err := h.messageService.Send(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecipientNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrSelfMessage):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrEmptyContent), errors.Is(err, service.ErrContentTooLong):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "发送成功", msg)
}

// ListConversations 会话列表，最近活跃在前
// GET /api/v1/conversations?page&limit
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, pageSize := parsePageQuery(c)

	convs, total, err := h.messageService.ListConversations(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, convs)
}

// ListMessages 会话内消息，最新在前
// GET /api/v1/conversations/:id/messages?page&limit
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	convID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, pageSize := parsePageQuery(c)

	msgs, total, err := h.messageService.ListMessages(userID, convID, page, pageSize)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotParticipant):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessPage(c, total, page, pageSize, msgs)
}

// MarkRead 将会话内发给自己的消息标记已读
// PUT /api/v1/conversations/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	convID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	affected, err := h.messageService.MarkRead(userID, convID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotParticipant):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, gin.H{"marked": affected})
}

// UnreadCount 未读私信总数
// GET /api/v1/messages/unread-count
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	count, err := h.messageService.UnreadCount(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, dto.UnreadCountResponse{Count: count})
}
