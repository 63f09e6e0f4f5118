package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Queue struct {
	client    *redis.Client
	queueName string
}

// NotificationMessage 通知事件，由服务端 best-effort 入队，worker 消费落库并推送。
// Actor 快照在触发时刻采集，worker 不回查用户表。
type NotificationMessage struct {
	RecipientID      int64  `json:"recipient_id"`
	Type             string `json:"type"`
	ActorID          int64  `json:"actor_id"`
	ActorUsername    string `json:"actor_username"`
	ActorDisplayName string `json:"actor_display_name"`
	ActorAvatarURL   string `json:"actor_avatar_url"`
	ActorRole        string `json:"actor_role"`
	RefType          string `json:"ref_type"`
	RefID            int64  `json:"ref_id"`
	PostID           *int64 `json:"post_id,omitempty"`
	Preview          string `json:"preview"`
}

// FanoutMessage 用户资料变更事件（ProfileFieldChanged），
// Fields 只携带被修改的快照字段（display_name / avatar_url）。
type FanoutMessage struct {
	UserID int64             `json:"user_id"`
	Fields map[string]string `json:"fields"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push 将消息加入队列
func (q *Queue) Push(ctx context.Context, msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取消息（阻塞），超时返回 false
func (q *Queue) Pop(ctx context.Context, timeout time.Duration, out interface{}) (bool, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil // 超时，无消息
		}
		return false, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return false, nil
	}

	if err := json.Unmarshal([]byte(result[1]), out); err != nil {
		return false, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return true, nil
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
