package worker

import (
	"context"
	"log"
	"time"

	"github.com/studyhive/study_go_server/internal/pkg/queue"
	"github.com/studyhive/study_go_server/internal/repository"
)

// Fanout 资料扇出 worker：消费 ProfileFieldChanged 事件，
// 把用户身份快照的变更字段刷到所有冗余副本上。
// 每个集合独立更新且幂等，单个集合失败只记日志，不重试不回滚。
type Fanout struct {
	fanoutQueue *queue.Queue
	commentRepo *repository.CommentRepository
	postRepo    *repository.PostRepository
	messageRepo *repository.MessageRepository
	notifRepo   *repository.NotificationRepository
}

func NewFanout(
	fanoutQueue *queue.Queue,
	commentRepo *repository.CommentRepository,
	postRepo *repository.PostRepository,
	messageRepo *repository.MessageRepository,
	notifRepo *repository.NotificationRepository,
) *Fanout {
	return &Fanout{
		fanoutQueue: fanoutQueue,
		commentRepo: commentRepo,
		postRepo:    postRepo,
		messageRepo: messageRepo,
		notifRepo:   notifRepo,
	}
}

// Run 消费循环，阻塞直到 ctx 取消
func (w *Fanout) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg queue.FanoutMessage
			ok, err := w.fanoutQueue.Pop(ctx, 5*time.Second, &msg)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Fanout: failed to pop message: %v", err)
				continue
			}
			if !ok {
				continue
			}

			w.Process(&msg)
		}
	}
}

// Process 把变更字段逐个集合刷下去
func (w *Fanout) Process(msg *queue.FanoutMessage) {
	if len(msg.Fields) == 0 {
		return
	}

	run := func(collection string, updater func() (int64, error)) {
		affected, err := updater()
		if err != nil {
			log.Printf("Fanout: failed to update %s for user %d: %v", collection, msg.UserID, err)
			return
		}
		log.Printf("Fanout: updated %d rows in %s for user %d", affected, collection, msg.UserID)
	}

	run("comments", func() (int64, error) {
		return w.commentRepo.UpdateAuthorStamp(msg.UserID, prefixFields("author_", msg.Fields))
	})
	run("posts", func() (int64, error) {
		return w.postRepo.UpdateAuthorStamp(msg.UserID, prefixFields("author_", msg.Fields))
	})
	run("messages", func() (int64, error) {
		return w.messageRepo.UpdateSenderStamp(msg.UserID, prefixFields("sender_", msg.Fields))
	})
	run("conversations", func() (int64, error) {
		return w.messageRepo.UpdateConversationStamp(msg.UserID, prefixFields("last_sender_", msg.Fields))
	})
	run("notifications", func() (int64, error) {
		return w.notifRepo.UpdateActorStamp(msg.UserID, prefixFields("actor_", msg.Fields))
	})
}

// prefixFields 把快照字段名映射到对应集合的列名
func prefixFields(prefix string, fields map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[prefix+k] = v
	}
	return out
}
