package service

import (
	"context"
	"log"

	"github.com/studyhive/study_go_server/internal/model"
	"github.com/studyhive/study_go_server/internal/pkg/queue"
	"github.com/studyhive/study_go_server/internal/pkg/sanitize"
)

// 通知摘要的最大长度（rune）
const previewMaxRunes = 120

// Notifier 把通知事件推入 redis 队列，由 worker 消费。
// 推送失败只记日志，绝不影响主流程。
type Notifier struct {
	queue *queue.Queue
}

func NewNotifier(q *queue.Queue) *Notifier {
	return &Notifier{queue: q}
}

// Notify best-effort 入队
func (n *Notifier) Notify(msg *queue.NotificationMessage) {
	if n == nil || n.queue == nil {
		return
	}
	if err := n.queue.Push(context.Background(), msg); err != nil {
		log.Printf("Failed to push notification (type=%s recipient=%d): %v", msg.Type, msg.RecipientID, err)
	}
}

// buildNotification 用触发者快照组装通知事件
func buildNotification(recipientID int64, notifType string, actor model.UserStamp, refType string, refID int64, postID *int64, content string) *queue.NotificationMessage {
	return &queue.NotificationMessage{
		RecipientID:      recipientID,
		Type:             notifType,
		ActorID:          actor.UserID,
		ActorUsername:    actor.Username,
		ActorDisplayName: actor.DisplayName,
		ActorAvatarURL:   actor.AvatarURL,
		ActorRole:        actor.Role,
		RefType:          refType,
		RefID:            refID,
		PostID:           postID,
		Preview:          sanitize.Preview(content, previewMaxRunes),
	}
}
