package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studyhive/study_go_server/internal/model"
	"github.com/studyhive/study_go_server/internal/model/dto"
	"github.com/studyhive/study_go_server/internal/repository"
)

var ErrNotificationNotFound = errors.New("通知不存在")

type NotificationService struct {
	notifRepo *repository.NotificationRepository
}

func NewNotificationService(notifRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifRepo: notifRepo}
}

// List 通知列表，最新在前
func (s *NotificationService) List(userID int64, unreadOnly bool, page, pageSize int) ([]*dto.NotificationItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	notifs, total, err := s.notifRepo.List(userID, unreadOnly, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.NotificationItem, len(notifs))
	for i, n := range notifs {
		items[i] = buildNotificationItem(n)
	}
	return items, total, nil
}

// UnreadCount 未读通知数
func (s *NotificationService) UnreadCount(userID int64) (int64, error) {
	return s.notifRepo.UnreadCount(userID)
}

// MarkRead 标记单条已读；非归属用户视作不存在
func (s *NotificationService) MarkRead(userID, notifID int64) error {
	marked, err := s.notifRepo.MarkRead(notifID, userID)
	if err != nil {
		return err
	}
	if marked {
		return nil
	}

	// 区分「不存在/不归属」和「已读重复标记」
	notif, err := s.notifRepo.GetByID(notifID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if notif.RecipientID != userID {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead 全部标记已读，返回本次标记的条数
func (s *NotificationService) MarkAllRead(userID int64) (int64, error) {
	return s.notifRepo.MarkAllRead(userID)
}

func buildNotificationItem(n *model.Notification) *dto.NotificationItem {
	return &dto.NotificationItem{
		ID:      n.ID,
		Type:    n.Type,
		Actor:   buildAuthorInfo(n.Actor),
		RefType: n.RefType,
		RefID:   n.RefID,
		PostID:  n.PostID,
		Preview: n.Preview,
		IsRead:  n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}
