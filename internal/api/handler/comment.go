package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/studyhive/study_go_server/internal/api/middleware"
	"github.com/studyhive/study_go_server/internal/model/dto"
	"github.com/studyhive/study_go_server/internal/pkg/response"
	"github.com/studyhive/study_go_server/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Create 发表评论或回复
// POST /api/v1/posts/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	comment, err := h.commentService.Create(userID, postID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrParentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrParentNotInPost):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrCommentDeleted):
			response.ConflictError(c, err.Error())
		case errors.Is(err, service.ErrCommentTooDeep):
			response.ConflictError(c, err.Error())
		case errors.Is(err, service.ErrEmptyContent), errors.Is(err, service.ErrContentTooLong):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "评论成功", comment)
}

// List 帖子的顶层评论列表，置顶评论在第一页最前
// GET /api/v1/posts/:id/comments?page&limit&sort
func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CommentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	viewerID, _ := middleware.GetUserID(c)

	comments, total, err := h.commentService.List(postID, viewerID, &req)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, req.Page, req.PageSize, comments)
}

// Replies 某条评论的直接回复，最早在前
// GET /api/v1/posts/:id/comments/:commentId/replies?page&limit
func (h *CommentHandler) Replies(c *gin.Context) {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}

	var req dto.CommentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	viewerID, _ := middleware.GetUserID(c)

	replies, total, err := h.commentService.Replies(commentID, viewerID, req.Page, req.PageSize)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, req.Page, req.PageSize, replies)
}

// Get 单条评论，context=true 时附带完整祖先链
// GET /api/v1/comments/:id?context=true|false
func (h *CommentHandler) Get(c *gin.Context) {
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	viewerID, _ := middleware.GetUserID(c)
	withContext := c.Query("context") == "true"

	ctx, err := h.commentService.Get(commentID, viewerID, withContext)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, ctx)
}

// Update 编辑评论，仅作者，学生有时间窗限制
// PUT /api/v1/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	comment, err := h.commentService.Edit(userID, commentID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCommentPermission):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrCommentDeleted):
			response.ConflictError(c, err.Error())
		case errors.Is(err, service.ErrEditWindowExpired):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrEmptyContent), errors.Is(err, service.ErrContentTooLong):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "更新成功", comment)
}

// Delete 删除评论（软删除，保留楼层占位）
// DELETE /api/v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(userID, commentID); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCommentPermission):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Like 点赞评论，幂等
// POST /api/v1/comments/:id/like
func (h *CommentHandler) Like(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.commentService.Like(userID, commentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCommentDeleted):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// Unlike 取消点赞，幂等
// DELETE /api/v1/comments/:id/like
func (h *CommentHandler) Unlike(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.commentService.Unlike(userID, commentID)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}

// Pin 置顶评论，仅帖子作者，同一帖子最多一条
// POST /api/v1/comments/:id/pin
func (h *CommentHandler) Pin(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.commentService.Pin(userID, commentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCommentPermission):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrCommentDeleted):
			response.ConflictError(c, err.Error())
		case errors.Is(err, service.ErrPinRootOnly):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// Unpin 取消置顶，幂等
// DELETE /api/v1/comments/:id/pin
func (h *CommentHandler) Unpin(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.commentService.Unpin(userID, commentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCommentPermission):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}
