package dto

// NotificationItem 通知项
type NotificationItem struct {
	ID        int64       `json:"id"`
	Type      string      `json:"type"`
	Actor     *AuthorInfo `json:"actor"`
	RefType   string      `json:"ref_type"`
	RefID     int64       `json:"ref_id"`
	PostID    *int64      `json:"post_id,omitempty"`
	Preview   string      `json:"preview"`
	IsRead    bool        `json:"is_read"`
	CreatedAt string      `json:"created_at"`
}

// UnreadCountResponse 未读通知数响应
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
