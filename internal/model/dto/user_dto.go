package dto

// UserInfo 用户详情
type UserInfo struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	DisplayName  string `json:"display_name"`
	AvatarURL    string `json:"avatar_url"`
	Bio          string `json:"bio"`
	Role         string `json:"role"`
	PostCount    int    `json:"post_count"`
	CommentCount int    `json:"comment_count"`
	CreatedAt    string `json:"created_at"`
}

// UpdateProfileRequest 更新用户信息请求
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Bio         *string `json:"bio" binding:"omitempty,max=500"`
}

// AvatarResponse 头像上传响应
type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// AuthorInfo 嵌入在评论/帖子/通知中的作者快照
type AuthorInfo struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Role        string `json:"role"`
}
