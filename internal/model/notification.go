package model

import (
	"time"
)

// 通知类型
const (
	NotifyReply       = "reply"
	NotifyMention     = "mention"
	NotifyCommentLike = "comment_like"
	NotifyPostLike    = "post_like"
	NotifyPinned      = "pinned"
	NotifyMessage     = "message"
)

// 引用对象类型
const (
	RefComment = "comment"
	RefPost    = "post"
	RefMessage = "message"
)

type Notification struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	RecipientID int64     `gorm:"not null;index" json:"recipient_id"`
	Type        string    `gorm:"size:20;not null" json:"type"`
	Actor       UserStamp `gorm:"embedded;embeddedPrefix:actor_" json:"actor"`
	RefType     string    `gorm:"size:20" json:"ref_type"`
	RefID       int64     `json:"ref_id"`
	PostID      *int64    `json:"post_id,omitempty"`
	Preview     string    `gorm:"size:120" json:"preview"`
	IsRead      bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
