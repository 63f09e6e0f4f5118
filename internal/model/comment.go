package model

import (
	"time"
)

// 评论层级上限，回复到第 10 层后不再允许继续嵌套
const MaxCommentDepth = 10

type Comment struct {
	ID       int64     `gorm:"primaryKey" json:"id"`
	PostID   int64     `gorm:"not null;index" json:"post_id"`
	Author   UserStamp `gorm:"embedded;embeddedPrefix:author_" json:"author"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	ParentID *int64    `gorm:"index" json:"parent_id,omitempty"`
	// RootID 统一存顶层祖先 ID，根评论存自身 ID（创建后第二步回填）
	RootID int64    `gorm:"index" json:"root_id"`
	Path   TreePath `gorm:"size:255" json:"path"`
	Depth  int      `gorm:"default:0" json:"depth"`

	LikeCount       int `gorm:"default:0" json:"like_count"`
	ReplyCount      int `gorm:"default:0" json:"reply_count"`
	TotalReplyCount int `gorm:"default:0" json:"total_reply_count"`

	IsPinned  bool       `gorm:"default:false;index" json:"is_pinned"`
	IsEdited  bool       `gorm:"default:false" json:"is_edited"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	IsDeleted bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// CommentLike 点赞记录，(comment_id, user_id) 唯一，是计数器的真实来源
type CommentLike struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CommentID int64     `gorm:"not null;uniqueIndex:uk_comment_user" json:"comment_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_comment_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (CommentLike) TableName() string {
	return "comment_likes"
}

// CommentMention 评论中 @ 到的用户，编辑时整组重建
type CommentMention struct {
	CommentID int64     `gorm:"primaryKey;autoIncrement:false" json:"comment_id"`
	UserID    int64     `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (CommentMention) TableName() string {
	return "comment_mentions"
}
