package model

import (
	"time"
)

// Conversation 两个用户之间的私信会话，参与者按 ID 升序归一化存储。
// 最后一条消息以快照形式冗余，避免列表页查询 messages 表。
type Conversation struct {
	ID        int64 `gorm:"primaryKey" json:"id"`
	UserLowID int64 `gorm:"not null;uniqueIndex:uk_conv_pair" json:"user_low_id"`
	UserHiID  int64 `gorm:"not null;uniqueIndex:uk_conv_pair" json:"user_hi_id"`

	LastSender  UserStamp  `gorm:"embedded;embeddedPrefix:last_sender_" json:"last_sender"`
	LastPreview string     `gorm:"size:200" json:"last_preview"`
	LastSentAt  *time.Time `gorm:"index" json:"last_sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// ParticipantIDs 归一化会话参与者
func ParticipantIDs(a, b int64) (low, hi int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// HasParticipant 判断用户是否属于该会话
func (c *Conversation) HasParticipant(userID int64) bool {
	return c.UserLowID == userID || c.UserHiID == userID
}

// PeerID 返回会话中另一方的用户 ID
func (c *Conversation) PeerID(userID int64) int64 {
	if c.UserLowID == userID {
		return c.UserHiID
	}
	return c.UserLowID
}
