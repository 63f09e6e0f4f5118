package worker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyhive/study_go_server/config"
	"github.com/studyhive/study_go_server/internal/model"
	"github.com/studyhive/study_go_server/internal/pkg/presence"
	"github.com/studyhive/study_go_server/internal/pkg/pubsub"
	"github.com/studyhive/study_go_server/internal/pkg/queue"
	"github.com/studyhive/study_go_server/internal/repository"
	"github.com/studyhive/study_go_server/internal/testutil"
)

func setupNotifier(t *testing.T) (*Notifier, *gorm.DB, *redis.Client, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	w := NewNotifier(
		queue.NewQueue(client, "notification_queue_test"),
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
		pubsub.NewPublisher(client),
		presence.NewTracker(client),
		nil, // 测试不发真实邮件
		&config.Config{},
	)

	cleanup := func() {
		client.Close()
		mr.Close()
		testutil.CleanupTestDB(t, db)
	}

	return w, db, client, cleanup
}

func notifMessage(recipientID int64, actor *model.User, notifType string) *queue.NotificationMessage {
	stamp := actor.Stamp()
	return &queue.NotificationMessage{
		RecipientID:      recipientID,
		Type:             notifType,
		ActorID:          stamp.UserID,
		ActorUsername:    stamp.Username,
		ActorDisplayName: stamp.DisplayName,
		ActorAvatarURL:   stamp.AvatarURL,
		ActorRole:        stamp.Role,
		RefType:          model.RefComment,
		RefID:            7,
		Preview:          "preview text",
	}
}

func TestNotifier_Process_Persists(t *testing.T) {
	w, db, _, cleanup := setupNotifier(t)
	defer cleanup()

	recipient := testutil.TestUser(t, db)
	actor := testutil.TestUser(t, db)

	err := w.Process(context.Background(), notifMessage(recipient.ID, actor, model.NotifyReply))
	require.NoError(t, err)

	var notifs []model.Notification
	require.NoError(t, db.Where("recipient_id = ?", recipient.ID).Find(&notifs).Error)
	require.Len(t, notifs, 1)
	assert.Equal(t, model.NotifyReply, notifs[0].Type)
	assert.Equal(t, actor.ID, notifs[0].Actor.UserID)
	assert.Equal(t, "preview text", notifs[0].Preview)
	assert.False(t, notifs[0].IsRead)
}

func TestNotifier_Process_SelfSuppressed(t *testing.T) {
	w, db, _, cleanup := setupNotifier(t)
	defer cleanup()

	actor := testutil.TestUser(t, db)

	// 自己给自己触发的事件被丢弃
	err := w.Process(context.Background(), notifMessage(actor.ID, actor, model.NotifyCommentLike))
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestNotifier_Process_PublishesPush(t *testing.T) {
	w, db, client, cleanup := setupNotifier(t)
	defer cleanup()

	recipient := testutil.TestUser(t, db)
	actor := testutil.TestUser(t, db)

	received := make(chan *pubsub.PushMessage, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := pubsub.NewSubscriber(client)
	go func() {
		_ = sub.Subscribe(ctx, func(msg *pubsub.PushMessage) {
			received <- msg
		})
	}()
	// 等订阅建立
	time.Sleep(50 * time.Millisecond)

	err := w.Process(ctx, notifMessage(recipient.ID, actor, model.NotifyMention))
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, "notification", msg.Type)
		assert.Equal(t, recipient.ID, msg.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a push message")
	}
}

func TestNotifier_QueueRoundTrip(t *testing.T) {
	w, db, client, cleanup := setupNotifier(t)
	defer cleanup()

	recipient := testutil.TestUser(t, db)
	actor := testutil.TestUser(t, db)

	q := queue.NewQueue(client, "notification_queue_test")
	require.NoError(t, q.Push(context.Background(), notifMessage(recipient.ID, actor, model.NotifyReply)))

	var msg queue.NotificationMessage
	ok, err := q.Pop(context.Background(), time.Second, &msg)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, w.Process(context.Background(), &msg))

	var count int64
	require.NoError(t, db.Model(&model.Notification{}).
		Where("recipient_id = ?", recipient.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
