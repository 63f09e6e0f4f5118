package dto

// 评论排序方式
const (
	CommentSortNewest    = "newest"
	CommentSortOldest    = "oldest"
	CommentSortMostLiked = "most_liked"
	CommentSortDiscussed = "most_discussed"
)

// CreateCommentRequest 创建评论请求
type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required,max=2000"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// UpdateCommentRequest 编辑评论请求
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// CommentListRequest 评论列表请求参数
type CommentListRequest struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"limit,default=20"`
	Sort     string `form:"sort,default=newest"` // newest, oldest, most_liked, most_discussed
}

// CommentItem 评论项
type CommentItem struct {
	ID              int64          `json:"id"`
	PostID          int64          `json:"post_id"`
	Author          *AuthorInfo    `json:"author"`
	Content         string         `json:"content"`
	ParentID        *int64         `json:"parent_id,omitempty"`
	RootID          int64          `json:"root_id"`
	Depth           int            `json:"depth"`
	LikeCount       int            `json:"like_count"`
	ReplyCount      int            `json:"reply_count"`
	TotalReplyCount int            `json:"total_reply_count"`
	IsPinned        bool           `json:"is_pinned"`
	IsEdited        bool           `json:"is_edited"`
	EditedAt        string         `json:"edited_at,omitempty"`
	IsDeleted       bool           `json:"is_deleted"`
	LikedByMe       bool           `json:"liked_by_me"`
	Replies         []*CommentItem `json:"replies,omitempty"`
	HasMoreReplies  bool           `json:"has_more_replies"`
	CreatedAt       string         `json:"created_at"`
}

// CommentContext 深链响应：目标评论及其完整祖先链
type CommentContext struct {
	Comment   *CommentItem   `json:"comment"`
	Ancestors []*CommentItem `json:"ancestors"`
}

// CommentLikeResponse 点赞响应
type CommentLikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// PinResponse 置顶响应
type PinResponse struct {
	Pinned bool `json:"pinned"`
}
