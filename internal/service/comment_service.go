package service

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/studyhive/study_go_server/internal/model"
	"github.com/studyhive/study_go_server/internal/model/dto"
	"github.com/studyhive/study_go_server/internal/pkg/sanitize"
	"github.com/studyhive/study_go_server/internal/repository"
)

var (
	ErrCommentNotFound   = errors.New("评论不存在")
	ErrCommentPermission = errors.New("无权操作此评论")
	ErrCommentDeleted    = errors.New("评论已被删除")
	ErrParentNotFound    = errors.New("父评论不存在")
	ErrParentNotInPost   = errors.New("父评论不属于该帖子")
	ErrCommentTooDeep    = errors.New("评论嵌套层级已达上限")
	ErrEditWindowExpired = errors.New("评论已超出可编辑时间")
	ErrPinRootOnly       = errors.New("只能置顶顶层评论")
)

// 学生角色发布评论后的可编辑时长
const studentEditWindow = 15 * time.Minute

// 列表页每条顶层评论预览的回复数
const repliesPreviewCount = 3

// 列表页一次性拉取的回复上限
const repliesFetchLimit = 100

// 评论正文长度上限，按清洗后的入库文本计
const maxCommentLen = 2000

type CommentService struct {
	commentRepo *repository.CommentRepository
	postRepo    *repository.PostRepository
	userRepo    *repository.UserRepository
	notifier    *Notifier
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	postRepo *repository.PostRepository,
	userRepo *repository.UserRepository,
	notifier *Notifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// Create 创建评论。树字段两段式写入：先插入拿自增 ID，再回填 root_id / path / depth。
func (s *CommentService) Create(userID, postID int64, req *dto.CreateCommentRequest) (*dto.CommentItem, error) {
	post, err := s.postRepo.GetActive(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	content, err := cleanContent(req.Content, maxCommentLen)
	if err != nil {
		return nil, err
	}

	var parent *model.Comment
	if req.ParentID != nil {
		parent, err = s.commentRepo.GetByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, ErrParentNotInPost
		}
		if parent.IsDeleted {
			return nil, ErrCommentDeleted
		}
		if parent.Depth+1 > model.MaxCommentDepth {
			return nil, ErrCommentTooDeep
		}
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	comment := &model.Comment{
		PostID:   postID,
		Author:   user.Stamp(),
		Content:  content,
		ParentID: req.ParentID,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	// 回填树字段：根评论 root_id 统一存自身 ID
	if parent != nil {
		comment.RootID = parent.RootID
		comment.Path = parent.Path.Child(comment.ID)
		comment.Depth = parent.Depth + 1
	} else {
		comment.RootID = comment.ID
		comment.Path = model.RootPath(comment.ID)
		comment.Depth = 0
	}
	if err := s.commentRepo.UpdateTreeFields(comment.ID, comment.RootID, comment.Path, comment.Depth); err != nil {
		return nil, err
	}

	// 计数级联，失败只记日志
	if parent != nil {
		if err := s.commentRepo.IncrementReplyCounts(parent.ID, comment.Path.AncestorIDs()); err != nil {
			log.Printf("Failed to cascade reply counts for comment %d: %v", comment.ID, err)
		}
	}
	if err := s.postRepo.IncrementCommentsCount(postID, 1); err != nil {
		log.Printf("Failed to increment comments count for post %d: %v", postID, err)
	}
	if err := s.userRepo.IncrementCommentCount(userID, 1); err != nil {
		log.Printf("Failed to increment comment count for user %d: %v", userID, err)
	}

	mentionedIDs := s.saveMentions(comment, content)

	// 回复通知：回复发给父评论作者，顶层评论发给帖子作者
	replyRecipient := post.Author.UserID
	if parent != nil {
		replyRecipient = parent.Author.UserID
	}
	s.notifier.Notify(buildNotification(
		replyRecipient, model.NotifyReply, user.Stamp(),
		model.RefComment, comment.ID, &postID, content,
	))

	// 提及通知，跳过已收到回复通知的用户
	for _, mid := range mentionedIDs {
		if mid == replyRecipient {
			continue
		}
		s.notifier.Notify(buildNotification(
			mid, model.NotifyMention, user.Stamp(),
			model.RefComment, comment.ID, &postID, content,
		))
	}

	return s.buildCommentItem(comment, nil), nil
}

// Edit 编辑评论：仅作者本人，学生角色限发布后 15 分钟内
func (s *CommentService) Edit(userID, commentID int64, req *dto.UpdateCommentRequest) (*dto.CommentItem, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if comment.IsDeleted {
		return nil, ErrCommentDeleted
	}
	if comment.Author.UserID != userID {
		return nil, ErrCommentPermission
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Role == model.RoleStudent && time.Since(comment.CreatedAt) > studentEditWindow {
		return nil, ErrEditWindowExpired
	}

	content, err := cleanContent(req.Content, maxCommentLen)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.commentRepo.UpdateContent(commentID, content, now); err != nil {
		return nil, err
	}
	comment.Content = content
	comment.IsEdited = true
	comment.EditedAt = &now

	// 重新提取提及，只给新增的用户发通知
	previous, _ := s.commentRepo.GetMentionUserIDs(commentID)
	known := make(map[int64]bool, len(previous))
	for _, id := range previous {
		known[id] = true
	}

	mentionedIDs := s.saveMentions(comment, content)
	for _, mid := range mentionedIDs {
		if known[mid] {
			continue
		}
		s.notifier.Notify(buildNotification(
			mid, model.NotifyMention, user.Stamp(),
			model.RefComment, comment.ID, &comment.PostID, content,
		))
	}

	return s.buildCommentItem(comment, nil), nil
}

// Delete 软删除为墓碑，仅作者本人，幂等
func (s *CommentService) Delete(userID, commentID int64) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.Author.UserID != userID {
		return ErrCommentPermission
	}

	deleted, err := s.commentRepo.SoftDelete(commentID)
	if err != nil {
		return err
	}
	if !deleted {
		// 已是墓碑，重复删除视作成功
		return nil
	}

	if err := s.postRepo.IncrementCommentsCount(comment.PostID, -1); err != nil {
		log.Printf("Failed to decrement comments count for post %d: %v", comment.PostID, err)
	}
	if err := s.userRepo.IncrementCommentCount(comment.Author.UserID, -1); err != nil {
		log.Printf("Failed to decrement comment count for user %d: %v", comment.Author.UserID, err)
	}
	return nil
}

// Like 点赞，幂等；首次点赞给评论作者发通知
func (s *CommentService) Like(userID, commentID int64) (*dto.CommentLikeResponse, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.IsDeleted {
		return nil, ErrCommentDeleted
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	inserted, err := s.commentRepo.AddLike(commentID, userID)
	if err != nil {
		return nil, err
	}

	if inserted {
		s.notifier.Notify(buildNotification(
			comment.Author.UserID, model.NotifyCommentLike, user.Stamp(),
			model.RefComment, comment.ID, &comment.PostID, comment.Content,
		))
	}

	updated, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}
	return &dto.CommentLikeResponse{Liked: true, LikeCount: updated.LikeCount}, nil
}

// Unlike 取消点赞，幂等
func (s *CommentService) Unlike(userID, commentID int64) (*dto.CommentLikeResponse, error) {
	_, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if _, err := s.commentRepo.RemoveLike(commentID, userID); err != nil {
		return nil, err
	}

	updated, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}
	return &dto.CommentLikeResponse{Liked: false, LikeCount: updated.LikeCount}, nil
}

// Pin 置顶：仅帖子作者，只允许顶层评论，同一帖子最多一条
func (s *CommentService) Pin(userID, commentID int64) (*dto.PinResponse, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.IsDeleted {
		return nil, ErrCommentDeleted
	}
	if comment.ParentID != nil {
		return nil, ErrPinRootOnly
	}

	post, err := s.postRepo.GetActive(comment.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.Author.UserID != userID {
		return nil, ErrCommentPermission
	}

	if err := s.commentRepo.Pin(comment.PostID, commentID); err != nil {
		return nil, err
	}

	s.notifier.Notify(buildNotification(
		comment.Author.UserID, model.NotifyPinned, post.Author,
		model.RefComment, comment.ID, &comment.PostID, comment.Content,
	))

	return &dto.PinResponse{Pinned: true}, nil
}

// Unpin 取消置顶：仅帖子作者，幂等
func (s *CommentService) Unpin(userID, commentID int64) (*dto.PinResponse, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	post, err := s.postRepo.GetByID(comment.PostID)
	if err != nil {
		return nil, err
	}
	if post.Author.UserID != userID {
		return nil, ErrCommentPermission
	}

	if _, err := s.commentRepo.Unpin(commentID); err != nil {
		return nil, err
	}
	return &dto.PinResponse{Pinned: false}, nil
}

// List 帖子的顶层评论分页。置顶评论在第一页最前面、不参与常规排序；
// 每条顶层评论附带最早的 3 条直接回复预览。viewerID 为 0 表示未登录。
func (s *CommentService) List(postID, viewerID int64, req *dto.CommentListRequest) ([]*dto.CommentItem, int64, error) {
	if _, err := s.postRepo.GetActive(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrPostNotFound
		}
		return nil, 0, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var pinned *model.Comment
	var pinnedID int64
	if p, err := s.commentRepo.GetPinned(postID); err == nil {
		pinned = p
		pinnedID = p.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, err
	}

	roots, total, err := s.commentRepo.ListRoots(postID, req.Sort, page, pageSize, pinnedID)
	if err != nil {
		return nil, 0, err
	}

	if pinned != nil {
		total++
		if page == 1 {
			roots = append([]*model.Comment{pinned}, roots...)
		}
	}

	if len(roots) == 0 {
		return []*dto.CommentItem{}, total, nil
	}

	rootIDs := make([]int64, len(roots))
	for i, c := range roots {
		rootIDs[i] = c.ID
	}

	// 一趟批量拉取回复，再在内存里分组截断
	replies, err := s.commentRepo.GetRepliesByParentIDs(rootIDs, repliesFetchLimit)
	if err != nil {
		return nil, 0, err
	}
	repliesMap := make(map[int64][]*model.Comment)
	for _, r := range replies {
		if r.ParentID != nil {
			repliesMap[*r.ParentID] = append(repliesMap[*r.ParentID], r)
		}
	}

	liked := s.likedSet(viewerID, roots, replies)

	items := make([]*dto.CommentItem, len(roots))
	for i, c := range roots {
		items[i] = s.buildCommentItem(c, liked)

		children := repliesMap[c.ID]
		if len(children) > repliesPreviewCount {
			children = children[:repliesPreviewCount]
		}
		for _, r := range children {
			items[i].Replies = append(items[i].Replies, s.buildCommentItem(r, liked))
		}
		items[i].HasMoreReplies = c.ReplyCount > len(items[i].Replies)
	}

	return items, total, nil
}

// Replies 某条评论的直接回复分页，最早在前
func (s *CommentService) Replies(commentID, viewerID int64, page, pageSize int) ([]*dto.CommentItem, int64, error) {
	if _, err := s.commentRepo.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrCommentNotFound
		}
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	replies, total, err := s.commentRepo.ListReplies(commentID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	liked := s.likedSet(viewerID, replies, nil)

	items := make([]*dto.CommentItem, len(replies))
	for i, r := range replies {
		items[i] = s.buildCommentItem(r, liked)
	}
	return items, total, nil
}

// Get 评论详情；withContext 时附带按 path 批量取回的完整祖先链（深链展开）
func (s *CommentService) Get(commentID, viewerID int64, withContext bool) (*dto.CommentContext, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	liked := s.likedSet(viewerID, []*model.Comment{comment}, nil)
	result := &dto.CommentContext{Comment: s.buildCommentItem(comment, liked)}

	if withContext {
		ancestorIDs := comment.Path.AncestorIDs()
		ancestors, err := s.commentRepo.GetByIDs(ancestorIDs)
		if err != nil {
			return nil, err
		}
		// 按 path 顺序排列：根在前
		byID := make(map[int64]*model.Comment, len(ancestors))
		for _, a := range ancestors {
			byID[a.ID] = a
		}
		ancestorLiked := s.likedSet(viewerID, ancestors, nil)
		for _, id := range ancestorIDs {
			if a, ok := byID[id]; ok {
				result.Ancestors = append(result.Ancestors, s.buildCommentItem(a, ancestorLiked))
			}
		}
	}

	return result, nil
}

// saveMentions 从正文提取 @用户名，解析为活跃用户后整组重建提及记录
func (s *CommentService) saveMentions(comment *model.Comment, content string) []int64 {
	usernames := sanitize.Mentions(content)
	if len(usernames) == 0 {
		if err := s.commentRepo.ReplaceMentions(comment.ID, nil); err != nil {
			log.Printf("Failed to clear mentions for comment %d: %v", comment.ID, err)
		}
		return nil
	}

	users, err := s.userRepo.GetByUsernames(usernames)
	if err != nil {
		log.Printf("Failed to resolve mentions for comment %d: %v", comment.ID, err)
		return nil
	}

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		if !u.IsActive || u.ID == comment.Author.UserID {
			continue
		}
		ids = append(ids, u.ID)
	}

	if err := s.commentRepo.ReplaceMentions(comment.ID, ids); err != nil {
		log.Printf("Failed to save mentions for comment %d: %v", comment.ID, err)
	}
	return ids
}

// likedSet 计算 viewer 点赞过的评论集合，未登录返回 nil
func (s *CommentService) likedSet(viewerID int64, comments []*model.Comment, extra []*model.Comment) map[int64]bool {
	if viewerID <= 0 {
		return nil
	}

	ids := make([]int64, 0, len(comments)+len(extra))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	for _, c := range extra {
		ids = append(ids, c.ID)
	}

	liked, err := s.commentRepo.LikedCommentIDs(viewerID, ids)
	if err != nil {
		log.Printf("Failed to load liked comments for user %d: %v", viewerID, err)
		return nil
	}
	return liked
}

// buildCommentItem 组装评论项，墓碑只保留树结构信息
func (s *CommentService) buildCommentItem(c *model.Comment, liked map[int64]bool) *dto.CommentItem {
	item := &dto.CommentItem{
		ID:              c.ID,
		PostID:          c.PostID,
		ParentID:        c.ParentID,
		RootID:          c.RootID,
		Depth:           c.Depth,
		LikeCount:       c.LikeCount,
		ReplyCount:      c.ReplyCount,
		TotalReplyCount: c.TotalReplyCount,
		IsPinned:        c.IsPinned,
		IsEdited:        c.IsEdited,
		IsDeleted:       c.IsDeleted,
		LikedByMe:       liked[c.ID],
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}

	if c.IsDeleted {
		return item
	}

	item.Author = buildAuthorInfo(c.Author)
	item.Content = c.Content
	if c.EditedAt != nil {
		item.EditedAt = c.EditedAt.Format(time.RFC3339)
	}
	return item
}
