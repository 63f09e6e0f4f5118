package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyhive/study_go_server/internal/model"
	"github.com/studyhive/study_go_server/internal/pkg/queue"
	"github.com/studyhive/study_go_server/internal/repository"
	"github.com/studyhive/study_go_server/internal/testutil"
)

func setupFanout(t *testing.T) (*Fanout, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	w := NewFanout(
		nil, // Process 不读队列
		repository.NewCommentRepository(db),
		repository.NewPostRepository(db),
		repository.NewMessageRepository(db),
		repository.NewNotificationRepository(db),
	)

	return w, db, func() { testutil.CleanupTestDB(t, db) }
}

func TestFanout_Process_RewritesAllCollections(t *testing.T) {
	w, db, cleanup := setupFanout(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	peer := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	comment := testutil.TestComment(t, db, author, post.ID, "hello")

	conv := testutil.TestConversation(t, db, author, peer)
	msgRepo := repository.NewMessageRepository(db)
	dm := &model.Message{
		ConversationID: conv.ID,
		Sender:         author.Stamp(),
		RecipientID:    peer.ID,
		Content:        "hi there",
	}
	require.NoError(t, msgRepo.CreateMessage(dm, "hi there"))

	notif := testutil.TestNotification(t, db, peer.ID, author, model.NotifyReply)

	w.Process(&queue.FanoutMessage{
		UserID: author.ID,
		Fields: map[string]string{
			"display_name": "New Name",
			"avatar_url":   "https://cdn.example.com/new.png",
		},
	})

	var gotComment model.Comment
	require.NoError(t, db.First(&gotComment, comment.ID).Error)
	assert.Equal(t, "New Name", gotComment.Author.DisplayName)
	assert.Equal(t, "https://cdn.example.com/new.png", gotComment.Author.AvatarURL)

	var gotPost model.Post
	require.NoError(t, db.First(&gotPost, post.ID).Error)
	assert.Equal(t, "New Name", gotPost.Author.DisplayName)

	var gotMsg model.Message
	require.NoError(t, db.First(&gotMsg, dm.ID).Error)
	assert.Equal(t, "New Name", gotMsg.Sender.DisplayName)

	var gotConv model.Conversation
	require.NoError(t, db.First(&gotConv, conv.ID).Error)
	assert.Equal(t, "New Name", gotConv.LastSender.DisplayName)

	var gotNotif model.Notification
	require.NoError(t, db.First(&gotNotif, notif.ID).Error)
	assert.Equal(t, "New Name", gotNotif.Actor.DisplayName)
}

func TestFanout_Process_OnlyChangedFields(t *testing.T) {
	w, db, cleanup := setupFanout(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	origAvatar := post.Author.AvatarURL

	w.Process(&queue.FanoutMessage{
		UserID: author.ID,
		Fields: map[string]string{"display_name": "Renamed"},
	})

	var got model.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.Equal(t, "Renamed", got.Author.DisplayName)
	assert.Equal(t, origAvatar, got.Author.AvatarURL)
}

func TestFanout_Process_OtherUsersUntouched(t *testing.T) {
	w, db, cleanup := setupFanout(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	otherPost := testutil.TestPost(t, db, other)

	w.Process(&queue.FanoutMessage{
		UserID: author.ID,
		Fields: map[string]string{"display_name": "Renamed"},
	})

	var got model.Post
	require.NoError(t, db.First(&got, otherPost.ID).Error)
	assert.Equal(t, other.DisplayName, got.Author.DisplayName)
}

func TestFanout_Process_EmptyFieldsNoop(t *testing.T) {
	w, db, cleanup := setupFanout(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)

	w.Process(&queue.FanoutMessage{UserID: author.ID, Fields: map[string]string{}})

	var got model.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.Equal(t, post.Author.DisplayName, got.Author.DisplayName)
}
