package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelNotifyPush = "notify_push"
)

// PushMessage 实时推送消息，worker 落库后发布，API 进程订阅并转发到 WebSocket
type PushMessage struct {
	Type   string          `json:"type"`
	UserID int64           `json:"user_id"`
	Data   json.RawMessage `json:"data"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishNotify 发布通知推送消息
func (p *Publisher) PublishNotify(ctx context.Context, userID int64, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	msg := &PushMessage{
		Type:   "notification",
		UserID: userID,
		Data:   data,
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	return p.client.Publish(ctx, ChannelNotifyPush, raw).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅推送消息，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*PushMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelNotifyPush)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var pushMsg PushMessage
			if err := json.Unmarshal([]byte(msg.Payload), &pushMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&pushMsg)
		}
	}
}
