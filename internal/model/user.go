package model

import (
	"time"
)

// 用户角色
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        *string   `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	DisplayName  string    `gorm:"size:100" json:"display_name"`
	AvatarURL    string    `gorm:"size:500" json:"avatar_url"`
	Bio          string    `gorm:"type:text" json:"bio"`
	Role         string    `gorm:"size:20;default:student;index" json:"role"`
	IsActive     bool      `gorm:"default:true;index" json:"is_active"`
	GithubID     *string   `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`
	PostCount    int       `gorm:"default:0" json:"post_count"`
	CommentCount int       `gorm:"default:0" json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Stamp 生成当前用户的身份快照
func (u *User) Stamp() UserStamp {
	return UserStamp{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Role:        u.Role,
	}
}
