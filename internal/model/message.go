package model

import (
	"time"
)

type Message struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	ConversationID int64     `gorm:"not null;index" json:"conversation_id"`
	Sender         UserStamp `gorm:"embedded;embeddedPrefix:sender_" json:"sender"`
	RecipientID    int64     `gorm:"not null;index" json:"recipient_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsRead         bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
