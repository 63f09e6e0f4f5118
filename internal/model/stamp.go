package model

// UserStamp 用户身份快照，写入时嵌入评论/帖子/私信/通知等记录，
// 读取时无需关联 users 表。快照不保证实时，仅由 fanout worker 异步刷新。
type UserStamp struct {
	UserID      int64  `gorm:"index" json:"user_id"`
	Username    string `gorm:"size:50" json:"username"`
	DisplayName string `gorm:"size:100" json:"display_name"`
	AvatarURL   string `gorm:"size:500" json:"avatar_url"`
	Role        string `gorm:"size:20" json:"role"`
}
