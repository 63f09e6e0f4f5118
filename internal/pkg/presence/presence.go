package presence

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const onlineKey = "online_users"

// 心跳续期时长，连接存活期间由 hub 定期刷新
const memberTTL = 5 * time.Minute

// Tracker 跨进程在线状态：API 进程维护，worker 查询，
// 用于决定离线用户是否补发邮件通知。
type Tracker struct {
	client *redis.Client
}

func NewTracker(client *redis.Client) *Tracker {
	return &Tracker{client: client}
}

// SetOnline 标记用户在线并续期整个集合
func (t *Tracker) SetOnline(ctx context.Context, userID int64) error {
	pipe := t.client.Pipeline()
	pipe.SAdd(ctx, onlineKey, strconv.FormatInt(userID, 10))
	pipe.Expire(ctx, onlineKey, memberTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// SetOffline 移除在线标记
func (t *Tracker) SetOffline(ctx context.Context, userID int64) error {
	return t.client.SRem(ctx, onlineKey, strconv.FormatInt(userID, 10)).Err()
}

// IsOnline 查询用户是否在线
func (t *Tracker) IsOnline(ctx context.Context, userID int64) (bool, error) {
	return t.client.SIsMember(ctx, onlineKey, strconv.FormatInt(userID, 10)).Result()
}
