package worker

import (
	"context"
	"log"
	"time"

	"github.com/studyhive/study_go_server/config"
	"github.com/studyhive/study_go_server/internal/model"
	"github.com/studyhive/study_go_server/internal/pkg/email"
	"github.com/studyhive/study_go_server/internal/pkg/presence"
	"github.com/studyhive/study_go_server/internal/pkg/pubsub"
	"github.com/studyhive/study_go_server/internal/pkg/queue"
	"github.com/studyhive/study_go_server/internal/repository"
)

// Notifier 通知 worker：消费通知队列，落库、实时推送、
// 给离线用户补发邮件。
type Notifier struct {
	notifQueue *queue.Queue
	notifRepo  *repository.NotificationRepository
	userRepo   *repository.UserRepository
	publisher  *pubsub.Publisher
	presence   *presence.Tracker
	emailSvc   *email.Service
	cfg        *config.Config
}

func NewNotifier(
	notifQueue *queue.Queue,
	notifRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	publisher *pubsub.Publisher,
	tracker *presence.Tracker,
	emailSvc *email.Service,
	cfg *config.Config,
) *Notifier {
	return &Notifier{
		notifQueue: notifQueue,
		notifRepo:  notifRepo,
		userRepo:   userRepo,
		publisher:  publisher,
		presence:   tracker,
		emailSvc:   emailSvc,
		cfg:        cfg,
	}
}

// Run 消费循环，阻塞直到 ctx 取消
func (w *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg queue.NotificationMessage
			ok, err := w.notifQueue.Pop(ctx, 5*time.Second, &msg)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Notifier: failed to pop message: %v", err)
				continue
			}
			if !ok {
				continue
			}

			if err := w.Process(ctx, &msg); err != nil {
				log.Printf("Notifier: failed to process message (type=%s recipient=%d): %v",
					msg.Type, msg.RecipientID, err)
			}
		}
	}
}

// Process 处理单条通知事件
func (w *Notifier) Process(ctx context.Context, msg *queue.NotificationMessage) error {
	// 自己触发的事件不通知自己
	if msg.ActorID == msg.RecipientID {
		return nil
	}

	notif := &model.Notification{
		RecipientID: msg.RecipientID,
		Type:        msg.Type,
		Actor: model.UserStamp{
			UserID:      msg.ActorID,
			Username:    msg.ActorUsername,
			DisplayName: msg.ActorDisplayName,
			AvatarURL:   msg.ActorAvatarURL,
			Role:        msg.ActorRole,
		},
		RefType: msg.RefType,
		RefID:   msg.RefID,
		PostID:  msg.PostID,
		Preview: msg.Preview,
	}
	if err := w.notifRepo.Create(notif); err != nil {
		return err
	}

	// 实时推送，失败只记日志
	if w.publisher != nil {
		if err := w.publisher.PublishNotify(ctx, notif.RecipientID, notif); err != nil {
			log.Printf("Notifier: failed to publish push for user %d: %v", notif.RecipientID, err)
		}
	}

	w.maybeEmail(ctx, notif)
	return nil
}

// maybeEmail 收件人离线且开启补发时，发送邮件摘要
func (w *Notifier) maybeEmail(ctx context.Context, notif *model.Notification) {
	if !w.cfg.Notification.EmailOffline || w.emailSvc == nil || w.presence == nil {
		return
	}

	online, err := w.presence.IsOnline(ctx, notif.RecipientID)
	if err != nil {
		log.Printf("Notifier: failed to check presence for user %d: %v", notif.RecipientID, err)
		return
	}
	if online {
		return
	}

	recipient, err := w.userRepo.GetByID(notif.RecipientID)
	if err != nil || recipient.Email == nil {
		return
	}

	actorName := notif.Actor.DisplayName
	if actorName == "" {
		actorName = notif.Actor.Username
	}
	if err := w.emailSvc.SendNotification(*recipient.Email, actorName, notif.Type, notif.Preview); err != nil {
		log.Printf("Notifier: failed to email user %d: %v", notif.RecipientID, err)
	}
}
