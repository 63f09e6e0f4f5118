package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studyhive/study_go_server/internal/model"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create 创建帖子
func (r *PostRepository) Create(post *model.Post) error {
	return r.db.Create(post).Error
}

// GetByID 获取帖子，包含已删除的
func (r *PostRepository) GetByID(id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetActive 获取未删除的帖子
func (r *PostRepository) GetActive(id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List 帖子列表，最新在前
func (r *PostRepository) List(page, pageSize int) ([]*model.Post, int64, error) {
	var posts []*model.Post
	var total int64

	query := r.db.Model(&model.Post{}).Where("is_deleted = ?", false)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// ListByAuthor 用户发布的帖子
func (r *PostRepository) ListByAuthor(userID int64, page, pageSize int) ([]*model.Post, int64, error) {
	var posts []*model.Post
	var total int64

	query := r.db.Model(&model.Post{}).
		Where("author_user_id = ? AND is_deleted = ?", userID, false)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// UpdateFields 更新帖子字段
func (r *PostRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

// SoftDelete 软删除，仅对未删除的记录生效
func (r *PostRepository) SoftDelete(id int64) (bool, error) {
	now := time.Now()
	result := r.db.Model(&model.Post{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
		})
	return result.RowsAffected > 0, result.Error
}

// IncrementCommentsCount 调整帖子评论计数
func (r *PostRepository) IncrementCommentsCount(id int64, delta int) error {
	return r.db.Model(&model.Post{}).Where("id = ?", id).
		Update("comments_count", gorm.Expr("comments_count + ?", delta)).Error
}

// AddLike 点赞，唯一索引保证幂等；只在本次真正插入时递增计数
func (r *PostRepository) AddLike(postID, userID int64) (bool, error) {
	var inserted bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.PostLike{PostID: postID, UserID: userID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		inserted = true
		return tx.Model(&model.Post{}).Where("id = ?", postID).
			Update("like_count", gorm.Expr("like_count + 1")).Error
	})
	return inserted, err
}

// RemoveLike 取消点赞，只在本次真正删除时递减计数
func (r *PostRepository) RemoveLike(postID, userID int64) (bool, error) {
	var removed bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&model.PostLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&model.Post{}).Where("id = ? AND like_count > 0", postID).
			Update("like_count", gorm.Expr("like_count - 1")).Error
	})
	return removed, err
}

// HasLiked 用户是否已点赞
func (r *PostRepository) HasLiked(postID, userID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error
	return count > 0, err
}

// UpdateAuthorStamp 刷新帖子上的作者身份快照
func (r *PostRepository) UpdateAuthorStamp(userID int64, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	result := r.db.Model(&model.Post{}).
		Where("author_user_id = ?", userID).Updates(fields)
	return result.RowsAffected, result.Error
}
