package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studyhive/study_go_server/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// GetOrCreateConversation 获取两人会话，不存在则创建。
// 并发下唯一索引兜底：插入冲突后重查一次。
func (r *MessageRepository) GetOrCreateConversation(a, b int64) (*model.Conversation, error) {
	low, hi := model.ParticipantIDs(a, b)

	var conv model.Conversation
	err := r.db.Where("user_low_id = ? AND user_hi_id = ?", low, hi).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = model.Conversation{UserLowID: low, UserHiID: hi}
	if createErr := r.db.Create(&conv).Error; createErr != nil {
		err = r.db.Where("user_low_id = ? AND user_hi_id = ?", low, hi).First(&conv).Error
		if err != nil {
			return nil, createErr
		}
	}
	return &conv, nil
}

// GetConversation 获取会话
func (r *MessageRepository) GetConversation(id int64) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.Where("id = ?", id).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations 用户的会话列表，按最后一条消息倒序
func (r *MessageRepository) ListConversations(userID int64, page, pageSize int) ([]*model.Conversation, int64, error) {
	var convs []*model.Conversation
	var total int64

	query := r.db.Model(&model.Conversation{}).
		Where("user_low_id = ? OR user_hi_id = ?", userID, userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("last_sent_at DESC").Offset(offset).Limit(pageSize).Find(&convs).Error
	if err != nil {
		return nil, 0, err
	}

	return convs, total, nil
}

// CreateMessage 写入消息并刷新会话的最后一条快照
func (r *MessageRepository) CreateMessage(msg *model.Message, preview string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&model.Conversation{}).Where("id = ?", msg.ConversationID).
			Updates(map[string]interface{}{
				"last_sender_user_id":      msg.Sender.UserID,
				"last_sender_username":     msg.Sender.Username,
				"last_sender_display_name": msg.Sender.DisplayName,
				"last_sender_avatar_url":   msg.Sender.AvatarURL,
				"last_sender_role":         msg.Sender.Role,
				"last_preview":             preview,
				"last_sent_at":             now,
			}).Error
	})
}

// ListMessages 会话内消息分页，最新在前
func (r *MessageRepository) ListMessages(conversationID int64, page, pageSize int) ([]*model.Message, int64, error) {
	var msgs []*model.Message
	var total int64

	query := r.db.Model(&model.Message{}).Where("conversation_id = ?", conversationID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&msgs).Error
	if err != nil {
		return nil, 0, err
	}

	return msgs, total, nil
}

// MarkConversationRead 把会话里发给该用户的未读消息全部置为已读
func (r *MessageRepository) MarkConversationRead(conversationID, userID int64) (int64, error) {
	result := r.db.Model(&model.Message{}).
		Where("conversation_id = ? AND recipient_id = ? AND is_read = ?", conversationID, userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// UnreadCount 用户的未读消息总数
func (r *MessageRepository) UnreadCount(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).Count(&count).Error
	return count, err
}

// UnreadCounts 按会话统计用户的未读消息数
func (r *MessageRepository) UnreadCounts(userID int64, conversationIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	if len(conversationIDs) == 0 {
		return counts, nil
	}

	type row struct {
		ConversationID int64
		Cnt            int64
	}
	var rows []row
	err := r.db.Model(&model.Message{}).
		Select("conversation_id, COUNT(*) AS cnt").
		Where("conversation_id IN ? AND recipient_id = ? AND is_read = ?", conversationIDs, userID, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.ConversationID] = r.Cnt
	}
	return counts, nil
}

// UpdateSenderStamp 刷新消息上的发送者身份快照
func (r *MessageRepository) UpdateSenderStamp(userID int64, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	result := r.db.Model(&model.Message{}).
		Where("sender_user_id = ?", userID).Updates(fields)
	return result.RowsAffected, result.Error
}

// UpdateConversationStamp 刷新会话上的最后发送者身份快照
func (r *MessageRepository) UpdateConversationStamp(userID int64, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	result := r.db.Model(&model.Conversation{}).
		Where("last_sender_user_id = ?", userID).Updates(fields)
	return result.RowsAffected, result.Error
}
