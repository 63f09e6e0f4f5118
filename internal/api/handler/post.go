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

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "ID 无效")
		return 0, false
	}
	return id, true
}

// Create 发帖
// POST /api/v1/posts
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	post, err := h.postService.Create(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent), errors.Is(err, service.ErrContentTooLong):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "发布成功", post)
}

// List 帖子列表，最新在前
// GET /api/v1/posts?page&limit
func (h *PostHandler) List(c *gin.Context) {
	var req dto.PostListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	posts, total, err := h.postService.List(&req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, req.Page, req.PageSize, posts)
}

// Get 帖子详情
// GET /api/v1/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	viewerID, _ := middleware.GetUserID(c)

	post, err := h.postService.Get(postID, viewerID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, post)
}

// Update 编辑帖子，仅作者
// PUT /api/v1/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	post, err := h.postService.Update(userID, postID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPostPermission):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrEmptyContent), errors.Is(err, service.ErrContentTooLong):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "更新成功", post)
}

// Delete 删除帖子，作者或管理员
// DELETE /api/v1/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.postService.Delete(userID, postID); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPostPermission):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Like 点赞帖子，幂等
// POST /api/v1/posts/:id/like
func (h *PostHandler) Like(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.postService.Like(userID, postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}

// Unlike 取消点赞，幂等
// DELETE /api/v1/posts/:id/like
func (h *PostHandler) Unlike(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.postService.Unlike(userID, postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}
