package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/studyhive/study_go_server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := nextSeq()
	email := fmt.Sprintf("test_%d@example.com", seq)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", seq),
		Email:        &email,
		PasswordHash: &passwordHash,
		DisplayName:  fmt.Sprintf("Test User %d", seq),
		Role:         model.RoleStudent,
		IsActive:     true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithDisplayName 设置昵称
func WithDisplayName(name string) func(*model.User) {
	return func(u *model.User) {
		u.DisplayName = name
	}
}

// WithInactive 设置为停用状态
func WithInactive() func(*model.User) {
	return func(u *model.User) {
		u.IsActive = false
	}
}

// TestPost 创建测试帖子
func TestPost(t *testing.T, db *gorm.DB, author *model.User, opts ...func(*model.Post)) *model.Post {
	t.Helper()

	post := &model.Post{
		Author:  author.Stamp(),
		Title:   fmt.Sprintf("Test Post %d", nextSeq()),
		Content: "post body",
	}

	for _, opt := range opts {
		opt(post)
	}

	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}

	return post
}

// WithTitle 设置帖子标题
func WithTitle(title string) func(*model.Post) {
	return func(p *model.Post) {
		p.Title = title
	}
}

// TestComment 创建根评论，路径与 root_id 按两段式写入回填
func TestComment(t *testing.T, db *gorm.DB, author *model.User, postID int64, content string) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		PostID:  postID,
		Author:  author.Stamp(),
		Content: content,
	}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	comment.RootID = comment.ID
	comment.Path = model.RootPath(comment.ID)
	comment.Depth = 0
	err := db.Model(&model.Comment{}).Where("id = ?", comment.ID).
		Updates(map[string]interface{}{
			"root_id": comment.RootID,
			"path":    comment.Path,
			"depth":   comment.Depth,
		}).Error
	if err != nil {
		t.Fatalf("Failed to patch test comment tree fields: %v", err)
	}

	return comment
}

// TestReply 在指定父评论下创建回复
func TestReply(t *testing.T, db *gorm.DB, author *model.User, parent *model.Comment, content string) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		PostID:   parent.PostID,
		Author:   author.Stamp(),
		Content:  content,
		ParentID: &parent.ID,
	}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test reply: %v", err)
	}

	comment.RootID = parent.RootID
	comment.Path = parent.Path.Child(comment.ID)
	comment.Depth = parent.Depth + 1
	err := db.Model(&model.Comment{}).Where("id = ?", comment.ID).
		Updates(map[string]interface{}{
			"root_id": comment.RootID,
			"path":    comment.Path,
			"depth":   comment.Depth,
		}).Error
	if err != nil {
		t.Fatalf("Failed to patch test reply tree fields: %v", err)
	}

	return comment
}

// TestConversation 创建已有最后一条消息的会话
func TestConversation(t *testing.T, db *gorm.DB, a, b *model.User) *model.Conversation {
	t.Helper()

	low, hi := model.ParticipantIDs(a.ID, b.ID)
	conv := &model.Conversation{
		UserLowID: low,
		UserHiID:  hi,
	}
	if err := db.Create(conv).Error; err != nil {
		t.Fatalf("Failed to create test conversation: %v", err)
	}

	return conv
}

// TestNotification 创建测试通知
func TestNotification(t *testing.T, db *gorm.DB, recipientID int64, actor *model.User, notifType string) *model.Notification {
	t.Helper()

	notif := &model.Notification{
		RecipientID: recipientID,
		Type:        notifType,
		Actor:       actor.Stamp(),
		RefType:     model.RefComment,
		RefID:       nextSeq(),
		Preview:     "preview",
	}
	if err := db.Create(notif).Error; err != nil {
		t.Fatalf("Failed to create test notification: %v", err)
	}

	return notif
}
