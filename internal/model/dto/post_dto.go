package dto

// CreatePostRequest 发帖请求
type CreatePostRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required,max=10000"`
}

// UpdatePostRequest 编辑帖子请求
type UpdatePostRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=200"`
	Content *string `json:"content" binding:"omitempty,max=10000"`
}

// PostListRequest 帖子列表请求参数
type PostListRequest struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"limit,default=20"`
}

// PostItem 帖子项
type PostItem struct {
	ID            int64       `json:"id"`
	Author        *AuthorInfo `json:"author"`
	Title         string      `json:"title"`
	Content       string      `json:"content"`
	CommentsCount int         `json:"comments_count"`
	LikeCount     int         `json:"like_count"`
	LikedByMe     bool        `json:"liked_by_me"`
	CreatedAt     string      `json:"created_at"`
	UpdatedAt     string      `json:"updated_at"`
}

// PostLikeResponse 帖子点赞响应
type PostLikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
