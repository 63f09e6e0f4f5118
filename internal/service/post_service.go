package service

import (
	"errors"
	"log"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/studyhive/study_go_server/internal/model"
	"github.com/studyhive/study_go_server/internal/model/dto"
	"github.com/studyhive/study_go_server/internal/pkg/sanitize"
	"github.com/studyhive/study_go_server/internal/repository"
)

var (
	ErrPostNotFound   = errors.New("帖子不存在")
	ErrPostPermission = errors.New("无权操作此帖子")
	ErrEmptyContent   = errors.New("内容不能为空")
	ErrContentTooLong = errors.New("内容长度超出上限")
)

const maxPageSize = 50

// 标题和正文的长度上限，按清洗后的入库文本计
const (
	maxTitleLen = 200
	maxPostLen  = 10000
)

// cleanContent 清洗用户文本并校验清洗后的长度。
// 严格策略会把 < > & 等字符转义成实体，清洗结果可能比原始输入长数倍，
// 所以长度上限必须检查入库文本，请求体上的校验只是粗筛。
func cleanContent(raw string, maxRunes int) (string, error) {
	content := sanitize.Clean(raw)
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > maxRunes {
		return "", ErrContentTooLong
	}
	return content, nil
}

type PostService struct {
	postRepo *repository.PostRepository
	userRepo *repository.UserRepository
	notifier *Notifier
}

func NewPostService(postRepo *repository.PostRepository, userRepo *repository.UserRepository, notifier *Notifier) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// Create 发帖
func (s *PostService) Create(userID int64, req *dto.CreatePostRequest) (*dto.PostItem, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	title, err := cleanContent(req.Title, maxTitleLen)
	if err != nil {
		return nil, err
	}
	content, err := cleanContent(req.Content, maxPostLen)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Author:  user.Stamp(),
		Title:   title,
		Content: content,
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}

	if err := s.userRepo.IncrementPostCount(userID, 1); err != nil {
		log.Printf("Failed to increment post count for user %d: %v", userID, err)
	}

	return s.buildPostItem(post, false), nil
}

// Get 帖子详情，viewerID 为 0 表示未登录
func (s *PostService) Get(postID, viewerID int64) (*dto.PostItem, error) {
	post, err := s.postRepo.GetActive(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	likedByMe := false
	if viewerID > 0 {
		likedByMe, _ = s.postRepo.HasLiked(postID, viewerID)
	}

	return s.buildPostItem(post, likedByMe), nil
}

// List 帖子列表
func (s *PostService) List(req *dto.PostListRequest) ([]*dto.PostItem, int64, error) {
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

	posts, total, err := s.postRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.PostItem, len(posts))
	for i, p := range posts {
		items[i] = s.buildPostItem(p, false)
	}
	return items, total, nil
}

// Update 编辑帖子，仅作者本人
func (s *PostService) Update(userID, postID int64, req *dto.UpdatePostRequest) (*dto.PostItem, error) {
	post, err := s.postRepo.GetActive(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if post.Author.UserID != userID {
		return nil, ErrPostPermission
	}

	fields := make(map[string]interface{})
	if req.Title != nil {
		title, err := cleanContent(*req.Title, maxTitleLen)
		if err != nil {
			return nil, err
		}
		post.Title = title
		fields["title"] = title
	}
	if req.Content != nil {
		content, err := cleanContent(*req.Content, maxPostLen)
		if err != nil {
			return nil, err
		}
		post.Content = content
		fields["content"] = content
	}

	if len(fields) > 0 {
		if err := s.postRepo.UpdateFields(postID, fields); err != nil {
			return nil, err
		}
	}

	return s.buildPostItem(post, false), nil
}

// Delete 软删除，作者或管理员
func (s *PostService) Delete(userID, postID int64) error {
	post, err := s.postRepo.GetActive(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if post.Author.UserID != userID {
		user, err := s.userRepo.GetByID(userID)
		if err != nil || user.Role != model.RoleAdmin {
			return ErrPostPermission
		}
	}

	deleted, err := s.postRepo.SoftDelete(postID)
	if err != nil {
		return err
	}
	if !deleted {
		// 并发下已被删，视作成功
		return nil
	}

	if err := s.userRepo.IncrementPostCount(post.Author.UserID, -1); err != nil {
		log.Printf("Failed to decrement post count for user %d: %v", post.Author.UserID, err)
	}
	return nil
}

// Like 点赞，幂等；首次点赞给作者发通知
func (s *PostService) Like(userID, postID int64) (*dto.PostLikeResponse, error) {
	post, err := s.postRepo.GetActive(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	inserted, err := s.postRepo.AddLike(postID, userID)
	if err != nil {
		return nil, err
	}

	if inserted {
		s.notifier.Notify(buildNotification(
			post.Author.UserID, model.NotifyPostLike, user.Stamp(),
			model.RefPost, post.ID, &post.ID, post.Title,
		))
	}

	updated, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	return &dto.PostLikeResponse{Liked: true, LikeCount: updated.LikeCount}, nil
}

// Unlike 取消点赞，幂等
func (s *PostService) Unlike(userID, postID int64) (*dto.PostLikeResponse, error) {
	_, err := s.postRepo.GetActive(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if _, err := s.postRepo.RemoveLike(postID, userID); err != nil {
		return nil, err
	}

	updated, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	return &dto.PostLikeResponse{Liked: false, LikeCount: updated.LikeCount}, nil
}

func (s *PostService) buildPostItem(p *model.Post, likedByMe bool) *dto.PostItem {
	return &dto.PostItem{
		ID:            p.ID,
		Author:        buildAuthorInfo(p.Author),
		Title:         p.Title,
		Content:       p.Content,
		CommentsCount: p.CommentsCount,
		LikeCount:     p.LikeCount,
		LikedByMe:     likedByMe,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}

func buildAuthorInfo(stamp model.UserStamp) *dto.AuthorInfo {
	return &dto.AuthorInfo{
		UserID:      stamp.UserID,
		Username:    stamp.Username,
		DisplayName: stamp.DisplayName,
		AvatarURL:   stamp.AvatarURL,
		Role:        stamp.Role,
	}
}
