package service

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/studyhive/study_go_server/config"
	"github.com/studyhive/study_go_server/internal/model/dto"
	"github.com/studyhive/study_go_server/internal/pkg/oss"
	"github.com/studyhive/study_go_server/internal/pkg/queue"
	"github.com/studyhive/study_go_server/internal/pkg/sanitize"
	"github.com/studyhive/study_go_server/internal/repository"
)

// 昵称和简介的长度上限，按清洗后的入库文本计
const (
	maxDisplayNameLen = 100
	maxBioLen         = 500
)

type UserService struct {
	userRepo    *repository.UserRepository
	ossClient   *oss.Client
	fanoutQueue *queue.Queue
	cfg         *config.Config
}

func NewUserService(userRepo *repository.UserRepository, ossClient *oss.Client, fanoutQueue *queue.Queue, cfg *config.Config) *UserService {
	return &UserService{
		userRepo:    userRepo,
		ossClient:   ossClient,
		fanoutQueue: fanoutQueue,
		cfg:         cfg,
	}
}

// GetProfile 获取本人详情
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return buildUserInfo(user, true), nil
}

// GetPublicProfile 获取他人主页，不含邮箱
func (s *UserService) GetPublicProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return buildUserInfo(user, false), nil
}

// UpdateProfile 更新用户资料。display_name 属于身份快照字段，
// 变更后发布 fanout 事件异步刷新各处冗余副本。
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	changedStampFields := make(map[string]string)

	if req.DisplayName != nil {
		name, err := cleanContent(*req.DisplayName, maxDisplayNameLen)
		if err != nil {
			return nil, err
		}
		if name != user.DisplayName {
			user.DisplayName = name
			changedStampFields["display_name"] = name
		}
	}

	if req.Bio != nil {
		// 简介允许清空，只限制清洗后的长度
		bio := sanitize.Clean(*req.Bio)
		if utf8.RuneCountInString(bio) > maxBioLen {
			return nil, ErrContentTooLong
		}
		user.Bio = bio
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	s.publishFanout(userID, changedStampFields)

	return buildUserInfo(user, true), nil
}

// UploadAvatar 上传头像到 OSS 并刷新身份快照
func (s *UserService) UploadAvatar(userID int64, file io.Reader, filename string) (string, error) {
	if s.ossClient == nil {
		return "", errors.New("OSS 客户端未配置")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}

	avatarURL, err := s.ossClient.UploadAvatar(userID, data, ext)
	if err != nil {
		return "", err
	}

	err = s.userRepo.UpdateFields(userID, map[string]interface{}{
		"avatar_url": avatarURL,
	})
	if err != nil {
		return "", err
	}

	s.publishFanout(userID, map[string]string{"avatar_url": avatarURL})

	return avatarURL, nil
}

// publishFanout best-effort 发布资料变更事件，失败只记日志
func (s *UserService) publishFanout(userID int64, fields map[string]string) {
	if len(fields) == 0 || s.fanoutQueue == nil {
		return
	}

	msg := &queue.FanoutMessage{UserID: userID, Fields: fields}
	if err := s.fanoutQueue.Push(context.Background(), msg); err != nil {
		log.Printf("Failed to push fanout event for user %d: %v", userID, err)
	}
}
