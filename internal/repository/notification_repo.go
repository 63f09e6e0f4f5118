package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/studyhive/study_go_server/internal/model"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create 写入通知
func (r *NotificationRepository) Create(notif *model.Notification) error {
	return r.db.Create(notif).Error
}

// GetByID 获取通知
func (r *NotificationRepository) GetByID(id int64) (*model.Notification, error) {
	var notif model.Notification
	err := r.db.Where("id = ?", id).First(&notif).Error
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

// List 用户的通知列表，最新在前，unreadOnly 时只取未读
func (r *NotificationRepository) List(recipientID int64, unreadOnly bool, page, pageSize int) ([]*model.Notification, int64, error) {
	var notifs []*model.Notification
	var total int64

	query := r.db.Model(&model.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&notifs).Error
	if err != nil {
		return nil, 0, err
	}

	return notifs, total, nil
}

// UnreadCount 未读通知数
func (r *NotificationRepository) UnreadCount(recipientID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).Count(&count).Error
	return count, err
}

// MarkRead 标记单条已读，归属校验放在 where 里
func (r *NotificationRepository) MarkRead(id, recipientID int64) (bool, error) {
	result := r.db.Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
		Update("is_read", true)
	return result.RowsAffected > 0, result.Error
}

// MarkAllRead 全部标记已读
func (r *NotificationRepository) MarkAllRead(recipientID int64) (int64, error) {
	result := r.db.Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// DeleteReadBefore 清理指定时间之前的已读通知，cleanup 任务用
func (r *NotificationRepository) DeleteReadBefore(before time.Time) (int64, error) {
	result := r.db.Where("is_read = ? AND created_at < ?", true, before).
		Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}

// UpdateActorStamp 刷新通知上的触发者身份快照
func (r *NotificationRepository) UpdateActorStamp(userID int64, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	result := r.db.Model(&model.Notification{}).
		Where("actor_user_id = ?", userID).Updates(fields)
	return result.RowsAffected, result.Error
}
