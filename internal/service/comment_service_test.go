package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyhive/study_go_server/internal/model"
	"github.com/studyhive/study_go_server/internal/model/dto"
	"github.com/studyhive/study_go_server/internal/pkg/queue"
	"github.com/studyhive/study_go_server/internal/repository"
	"github.com/studyhive/study_go_server/internal/testutil"
)

func setupCommentService(t *testing.T) (*CommentService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	commentRepo := repository.NewCommentRepository(db)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)

	service := NewCommentService(commentRepo, postRepo, userRepo, NewNotifier(nil))

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, cleanup
}

// setupCommentServiceWithQueue 带真实 redis 队列，用于断言通知入队
func setupCommentServiceWithQueue(t *testing.T) (*CommentService, *gorm.DB, *queue.Queue, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := queue.NewQueue(client, "notification_queue_test")

	commentRepo := repository.NewCommentRepository(db)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	service := NewCommentService(commentRepo, postRepo, userRepo, NewNotifier(q))

	cleanup := func() {
		client.Close()
		mr.Close()
		testutil.CleanupTestDB(t, db)
	}

	return service, db, q, cleanup
}

func popNotification(t *testing.T, q *queue.Queue) *queue.NotificationMessage {
	t.Helper()

	var msg queue.NotificationMessage
	ok, err := q.Pop(context.Background(), time.Second, &msg)
	require.NoError(t, err)
	require.True(t, ok, "expected a queued notification")
	return &msg
}

func TestCommentService_Create_Root(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	commenter := testutil.TestUser(t, db, testutil.WithUsername("commenter"))
	post := testutil.TestPost(t, db, author)

	item, err := service.Create(commenter.ID, post.ID, &dto.CreateCommentRequest{
		Content: "This is a test comment",
	})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "This is a test comment", item.Content)
	assert.Equal(t, "commenter", item.Author.Username)

	// 根评论 root_id 统一为自身 ID
	assert.Equal(t, item.ID, item.RootID)
	assert.Equal(t, 0, item.Depth)
	assert.Nil(t, item.ParentID)

	// 计数级联
	var updatedPost model.Post
	require.NoError(t, db.First(&updatedPost, post.ID).Error)
	assert.Equal(t, 1, updatedPost.CommentsCount)

	var updatedUser model.User
	require.NoError(t, db.First(&updatedUser, commenter.ID).Error)
	assert.Equal(t, 1, updatedUser.CommentCount)
}

func TestCommentService_Create_Reply(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	root := testutil.TestComment(t, db, author, post.ID, "root")

	item, err := service.Create(author.ID, post.ID, &dto.CreateCommentRequest{
		Content:  "a reply",
		ParentID: &root.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, root.ID, item.RootID)
	assert.Equal(t, 1, item.Depth)
	require.NotNil(t, item.ParentID)
	assert.Equal(t, root.ID, *item.ParentID)

	var updatedRoot model.Comment
	require.NoError(t, db.First(&updatedRoot, root.ID).Error)
	assert.Equal(t, 1, updatedRoot.ReplyCount)
	assert.Equal(t, 1, updatedRoot.TotalReplyCount)
}

func TestCommentService_Create_NestedReplyCascade(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	root := testutil.TestComment(t, db, author, post.ID, "root")
	mid := testutil.TestReply(t, db, author, root, "mid")

	_, err := service.Create(author.ID, post.ID, &dto.CreateCommentRequest{
		Content:  "deep reply",
		ParentID: &mid.ID,
	})
	require.NoError(t, err)

	// 直接父级 reply_count +1，根只有 total_reply_count +1
	var updatedRoot, updatedMid model.Comment
	require.NoError(t, db.First(&updatedRoot, root.ID).Error)
	require.NoError(t, db.First(&updatedMid, mid.ID).Error)
	assert.Equal(t, 0, updatedRoot.ReplyCount)
	assert.Equal(t, 1, updatedRoot.TotalReplyCount)
	assert.Equal(t, 1, updatedMid.ReplyCount)
	assert.Equal(t, 1, updatedMid.TotalReplyCount)
}

func TestCommentService_Create_DepthLimit(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)

	current := testutil.TestComment(t, db, author, post.ID, "depth 0")
	for i := 1; i <= model.MaxCommentDepth; i++ {
		current = testutil.TestReply(t, db, author, current, fmt.Sprintf("depth %d", i))
	}
	require.Equal(t, model.MaxCommentDepth, current.Depth)

	_, err := service.Create(author.ID, post.ID, &dto.CreateCommentRequest{
		Content:  "one too deep",
		ParentID: &current.ID,
	})
	assert.Equal(t, ErrCommentTooDeep, err)
}

func TestCommentService_Create_PostNotFound(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	_, err := service.Create(user.ID, 99999, &dto.CreateCommentRequest{Content: "hello"})
	assert.Equal(t, ErrPostNotFound, err)
}

func TestCommentService_Create_ParentInOtherPost(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post1 := testutil.TestPost(t, db, author)
	post2 := testutil.TestPost(t, db, author)
	parent := testutil.TestComment(t, db, author, post1.ID, "in post1")

	_, err := service.Create(author.ID, post2.ID, &dto.CreateCommentRequest{
		Content:  "cross-post reply",
		ParentID: &parent.ID,
	})
	assert.Equal(t, ErrParentNotInPost, err)
}

func TestCommentService_Create_ParentDeleted(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	parent := testutil.TestComment(t, db, author, post.ID, "soon gone")
	require.NoError(t, service.Delete(author.ID, parent.ID))

	_, err := service.Create(author.ID, post.ID, &dto.CreateCommentRequest{
		Content:  "reply to tombstone",
		ParentID: &parent.ID,
	})
	assert.Equal(t, ErrCommentDeleted, err)
}

func TestCommentService_Create_SanitizesMarkup(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)

	item, err := service.Create(author.ID, post.ID, &dto.CreateCommentRequest{
		Content: `hello <script>alert("x")</script>world`,
	})
	require.NoError(t, err)
	assert.NotContains(t, item.Content, "<script>")

	// 纯标记内容清洗后为空，拒绝
	_, err = service.Create(author.ID, post.ID, &dto.CreateCommentRequest{
		Content: "<b></b>",
	})
	assert.Equal(t, ErrEmptyContent, err)
}

func TestCommentService_Create_OversizedAfterClean(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)

	// 1900 个 "<" 低于请求体粗筛上限，但每个会被转义成 4 字符实体，
	// 清洗后 7600 字符，超出入库上限
	_, err := service.Create(author.ID, post.ID, &dto.CreateCommentRequest{
		Content: strings.Repeat("<", 1900),
	})
	assert.Equal(t, ErrContentTooLong, err)

	var count int64
	require.NoError(t, db.Model(&model.Comment{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCommentService_Create_Notifications(t *testing.T) {
	service, db, q, cleanup := setupCommentServiceWithQueue(t)
	defer cleanup()

	postAuthor := testutil.TestUser(t, db)
	mentioned := testutil.TestUser(t, db, testutil.WithUsername("helper_1"))
	commenter := testutil.TestUser(t, db, testutil.WithUsername("asker"))
	post := testutil.TestPost(t, db, postAuthor)

	item, err := service.Create(commenter.ID, post.ID, &dto.CreateCommentRequest{
		Content: "thanks @helper_1 for the tip",
	})
	require.NoError(t, err)

	// 回复通知给帖子作者
	reply := popNotification(t, q)
	assert.Equal(t, model.NotifyReply, reply.Type)
	assert.Equal(t, postAuthor.ID, reply.RecipientID)
	assert.Equal(t, commenter.ID, reply.ActorID)
	assert.Equal(t, item.ID, reply.RefID)

	// 提及通知给被 @ 的用户
	mention := popNotification(t, q)
	assert.Equal(t, model.NotifyMention, mention.Type)
	assert.Equal(t, mentioned.ID, mention.RecipientID)

	// 提及记录落库
	var count int64
	require.NoError(t, db.Model(&model.CommentMention{}).
		Where("comment_id = ? AND user_id = ?", item.ID, mentioned.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCommentService_Edit_Author(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	comment := testutil.TestComment(t, db, author, post.ID, "before edit")

	item, err := service.Edit(author.ID, comment.ID, &dto.UpdateCommentRequest{Content: "after edit"})
	require.NoError(t, err)
	assert.Equal(t, "after edit", item.Content)
	assert.True(t, item.IsEdited)
	assert.NotEmpty(t, item.EditedAt)
}

func TestCommentService_Edit_NotAuthor(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	comment := testutil.TestComment(t, db, author, post.ID, "mine")

	_, err := service.Edit(other.ID, comment.ID, &dto.UpdateCommentRequest{Content: "hijack"})
	assert.Equal(t, ErrCommentPermission, err)
}

func TestCommentService_Edit_StudentWindowExpired(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	student := testutil.TestUser(t, db, testutil.WithRole(model.RoleStudent))
	post := testutil.TestPost(t, db, student)
	comment := testutil.TestComment(t, db, student, post.ID, "old comment")

	// 把创建时间拨回窗口之外
	stale := time.Now().Add(-studentEditWindow - time.Minute)
	require.NoError(t, db.Model(&model.Comment{}).Where("id = ?", comment.ID).
		Update("created_at", stale).Error)

	_, err := service.Edit(student.ID, comment.ID, &dto.UpdateCommentRequest{Content: "too late"})
	assert.Equal(t, ErrEditWindowExpired, err)
}

func TestCommentService_Edit_StudentInsideWindow(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	student := testutil.TestUser(t, db, testutil.WithRole(model.RoleStudent))
	post := testutil.TestPost(t, db, student)
	comment := testutil.TestComment(t, db, student, post.ID, "recent comment")

	// 发布 14 分钟后仍在窗口内
	aged := time.Now().Add(-14 * time.Minute)
	require.NoError(t, db.Model(&model.Comment{}).Where("id = ?", comment.ID).
		Update("created_at", aged).Error)

	item, err := service.Edit(student.ID, comment.ID, &dto.UpdateCommentRequest{Content: "still in time"})
	require.NoError(t, err)
	assert.Equal(t, "still in time", item.Content)
	assert.True(t, item.IsEdited)
}

func TestCommentService_Edit_OversizedAfterClean(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	comment := testutil.TestComment(t, db, author, post.ID, "short")

	_, err := service.Edit(author.ID, comment.ID, &dto.UpdateCommentRequest{
		Content: strings.Repeat("<", 1900),
	})
	assert.Equal(t, ErrContentTooLong, err)

	var got model.Comment
	require.NoError(t, db.First(&got, comment.ID).Error)
	assert.Equal(t, "short", got.Content)
	assert.False(t, got.IsEdited)
}

func TestCommentService_Edit_TeacherNoWindow(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	teacher := testutil.TestUser(t, db, testutil.WithRole(model.RoleTeacher))
	post := testutil.TestPost(t, db, teacher)
	comment := testutil.TestComment(t, db, teacher, post.ID, "old comment")

	stale := time.Now().Add(-24 * time.Hour)
	require.NoError(t, db.Model(&model.Comment{}).Where("id = ?", comment.ID).
		Update("created_at", stale).Error)

	item, err := service.Edit(teacher.ID, comment.ID, &dto.UpdateCommentRequest{Content: "still editable"})
	require.NoError(t, err)
	assert.Equal(t, "still editable", item.Content)
}

func TestCommentService_Edit_Deleted(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	comment := testutil.TestComment(t, db, author, post.ID, "gone soon")
	require.NoError(t, service.Delete(author.ID, comment.ID))

	_, err := service.Edit(author.ID, comment.ID, &dto.UpdateCommentRequest{Content: "necromancy"})
	assert.Equal(t, ErrCommentDeleted, err)
}

func TestCommentService_Delete_Idempotent(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	comment := testutil.TestComment(t, db, author, post.ID, "delete me")

	require.NoError(t, service.Delete(author.ID, comment.ID))
	// 重复删除仍然成功
	require.NoError(t, service.Delete(author.ID, comment.ID))

	var found model.Comment
	require.NoError(t, db.First(&found, comment.ID).Error)
	assert.True(t, found.IsDeleted)
}

func TestCommentService_Delete_NotAuthor(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	comment := testutil.TestComment(t, db, author, post.ID, "mine")

	err := service.Delete(other.ID, comment.ID)
	assert.Equal(t, ErrCommentPermission, err)
}

func TestCommentService_LikeUnlike(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	liker := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	comment := testutil.TestComment(t, db, author, post.ID, "like me")

	resp, err := service.Like(liker.ID, comment.ID)
	require.NoError(t, err)
	assert.True(t, resp.Liked)
	assert.Equal(t, 1, resp.LikeCount)

	// 重复点赞幂等
	resp, err = service.Like(liker.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.LikeCount)

	resp, err = service.Unlike(liker.ID, comment.ID)
	require.NoError(t, err)
	assert.False(t, resp.Liked)
	assert.Equal(t, 0, resp.LikeCount)

	// 重复取消幂等
	resp, err = service.Unlike(liker.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.LikeCount)
}

func TestCommentService_Like_NotFound(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	_, err := service.Like(user.ID, 99999)
	assert.Equal(t, ErrCommentNotFound, err)
}

func TestCommentService_Pin_ReplacesExisting(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	postAuthor := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, postAuthor)
	c1 := testutil.TestComment(t, db, postAuthor, post.ID, "first pin")
	c2 := testutil.TestComment(t, db, postAuthor, post.ID, "second pin")

	_, err := service.Pin(postAuthor.ID, c1.ID)
	require.NoError(t, err)

	_, err = service.Pin(postAuthor.ID, c2.ID)
	require.NoError(t, err)

	// 单置顶不变量
	var pinnedCount int64
	require.NoError(t, db.Model(&model.Comment{}).
		Where("post_id = ? AND is_pinned = ?", post.ID, true).Count(&pinnedCount).Error)
	assert.Equal(t, int64(1), pinnedCount)
}

func TestCommentService_Pin_NotPostAuthor(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	postAuthor := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, postAuthor)
	comment := testutil.TestComment(t, db, other, post.ID, "pin me")

	_, err := service.Pin(other.ID, comment.ID)
	assert.Equal(t, ErrCommentPermission, err)
}

func TestCommentService_Pin_RootOnly(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	postAuthor := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, postAuthor)
	root := testutil.TestComment(t, db, postAuthor, post.ID, "root")
	reply := testutil.TestReply(t, db, postAuthor, root, "reply")

	_, err := service.Pin(postAuthor.ID, reply.ID)
	assert.Equal(t, ErrPinRootOnly, err)
}

func TestCommentService_List_PinnedFirst(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	testutil.TestComment(t, db, author, post.ID, "first")
	pinned := testutil.TestComment(t, db, author, post.ID, "pin target")
	testutil.TestComment(t, db, author, post.ID, "latest")

	_, err := service.Pin(author.ID, pinned.ID)
	require.NoError(t, err)

	items, total, err := service.List(post.ID, 0, &dto.CommentListRequest{Page: 1, PageSize: 10, Sort: dto.CommentSortNewest})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)
	assert.Equal(t, pinned.ID, items[0].ID)
	assert.True(t, items[0].IsPinned)
}

func TestCommentService_List_RepliesPreview(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	root := testutil.TestComment(t, db, author, post.ID, "root")
	for i := 0; i < 5; i++ {
		_, err := service.Create(author.ID, post.ID, &dto.CreateCommentRequest{
			Content:  fmt.Sprintf("reply %d", i),
			ParentID: &root.ID,
		})
		require.NoError(t, err)
	}

	items, _, err := service.List(post.ID, 0, &dto.CommentListRequest{Page: 1, PageSize: 10, Sort: dto.CommentSortNewest})
	require.NoError(t, err)
	require.Len(t, items, 1)

	// 预览 3 条，最早在前，还有更多
	require.Len(t, items[0].Replies, repliesPreviewCount)
	assert.Equal(t, "reply 0", items[0].Replies[0].Content)
	assert.True(t, items[0].HasMoreReplies)
}

func TestCommentService_List_LikedByMe(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	viewer := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	liked := testutil.TestComment(t, db, author, post.ID, "liked one")
	testutil.TestComment(t, db, author, post.ID, "other one")

	_, err := service.Like(viewer.ID, liked.ID)
	require.NoError(t, err)

	items, _, err := service.List(post.ID, viewer.ID, &dto.CommentListRequest{Page: 1, PageSize: 10, Sort: dto.CommentSortOldest})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].LikedByMe)
	assert.False(t, items[1].LikedByMe)

	// 未登录视角不计算
	anon, _, err := service.List(post.ID, 0, &dto.CommentListRequest{Page: 1, PageSize: 10, Sort: dto.CommentSortOldest})
	require.NoError(t, err)
	assert.False(t, anon[0].LikedByMe)
}

func TestCommentService_List_PageSizeCapped(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	testutil.TestComment(t, db, author, post.ID, "only one")

	_, _, err := service.List(post.ID, 0, &dto.CommentListRequest{Page: 1, PageSize: 500, Sort: dto.CommentSortNewest})
	require.NoError(t, err)
}

func TestCommentService_List_TombstoneMasked(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	root := testutil.TestComment(t, db, author, post.ID, "secret content")
	testutil.TestReply(t, db, author, root, "still here")
	require.NoError(t, service.Delete(author.ID, root.ID))

	items, _, err := service.List(post.ID, 0, &dto.CommentListRequest{Page: 1, PageSize: 10, Sort: dto.CommentSortNewest})
	require.NoError(t, err)
	require.Len(t, items, 1)

	// 墓碑：正文和作者被抹掉，树结构保留
	assert.True(t, items[0].IsDeleted)
	assert.Empty(t, items[0].Content)
	assert.Nil(t, items[0].Author)
	require.Len(t, items[0].Replies, 1)
	assert.Equal(t, "still here", items[0].Replies[0].Content)
}

func TestCommentService_Replies_Pagination(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	root := testutil.TestComment(t, db, author, post.ID, "root")
	for i := 0; i < 3; i++ {
		testutil.TestReply(t, db, author, root, fmt.Sprintf("reply %d", i))
	}

	items, total, err := service.Replies(root.ID, 0, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, "reply 0", items[0].Content)
}

func TestCommentService_Get_WithContext(t *testing.T) {
	service, db, cleanup := setupCommentService(t)
	defer cleanup()

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author)
	root := testutil.TestComment(t, db, author, post.ID, "root")
	mid := testutil.TestReply(t, db, author, root, "mid")
	leaf := testutil.TestReply(t, db, author, mid, "leaf")

	result, err := service.Get(leaf.ID, 0, true)
	require.NoError(t, err)
	assert.Equal(t, leaf.ID, result.Comment.ID)

	// 祖先链按根到父排列
	require.Len(t, result.Ancestors, 2)
	assert.Equal(t, root.ID, result.Ancestors[0].ID)
	assert.Equal(t, mid.ID, result.Ancestors[1].ID)

	// 不带 context 时无祖先
	bare, err := service.Get(leaf.ID, 0, false)
	require.NoError(t, err)
	assert.Empty(t, bare.Ancestors)
}

func TestCommentService_Get_NotFound(t *testing.T) {
	service, _, cleanup := setupCommentService(t)
	defer cleanup()

	_, err := service.Get(99999, 0, false)
	assert.Equal(t, ErrCommentNotFound, err)
}
