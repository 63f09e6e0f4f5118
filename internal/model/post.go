package model

import (
	"time"
)

type Post struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	Author        UserStamp  `gorm:"embedded;embeddedPrefix:author_" json:"author"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	CommentsCount int        `gorm:"default:0" json:"comments_count"`
	LikeCount     int        `gorm:"default:0" json:"like_count"`
	IsDeleted     bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

type PostLike struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	PostID    int64     `gorm:"not null;uniqueIndex:uk_post_user" json:"post_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostLike) TableName() string {
	return "post_likes"
}
