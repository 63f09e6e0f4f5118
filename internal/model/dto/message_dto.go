package dto

// SendMessageRequest 发送私信请求
type SendMessageRequest struct {
	RecipientID int64  `json:"recipient_id" binding:"required"`
	Content     string `json:"content" binding:"required,max=2000"`
}

// ConversationItem 会话项
type ConversationItem struct {
	ID          int64       `json:"id"`
	PeerID      int64       `json:"peer_id"`
	LastSender  *AuthorInfo `json:"last_sender,omitempty"`
	LastPreview string      `json:"last_preview"`
	LastSentAt  string      `json:"last_sent_at,omitempty"`
	UnreadCount int64       `json:"unread_count"`
}

// MessageItem 私信项
type MessageItem struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversation_id"`
	Sender         *AuthorInfo `json:"sender"`
	Content        string      `json:"content"`
	IsRead         bool        `json:"is_read"`
	CreatedAt      string      `json:"created_at"`
}
