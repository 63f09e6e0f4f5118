package cron

import (
	"log"
	"time"

	"github.com/studyhive/study_go_server/internal/repository"
)

type Service struct {
	notifRepo     *repository.NotificationRepository
	retentionDays int
	stopChan      chan struct{}
}

func NewService(notifRepo *repository.NotificationRepository, retentionDays int) *Service {
	return &Service{
		notifRepo:     notifRepo,
		retentionDays: retentionDays,
		stopChan:      make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runNotificationPrune()
	log.Println("Cron service started (notification prune)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runNotificationPrune 每日清理一次过期的已读通知
func (s *Service) runNotificationPrune() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.PruneNotifications()
			timer.Reset(24 * time.Hour)
		}
	}
}

// PruneNotifications 删除保留期之前的已读通知
func (s *Service) PruneNotifications() {
	if s.retentionDays <= 0 {
		return
	}

	cutoff := time.Now().Add(-time.Duration(s.retentionDays) * 24 * time.Hour)
	deleted, err := s.notifRepo.DeleteReadBefore(cutoff)
	if err != nil {
		log.Printf("Failed to prune notifications: %v", err)
		return
	}
	log.Printf("Pruned %d read notifications older than %d days", deleted, s.retentionDays)
}
