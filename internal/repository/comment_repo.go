package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studyhive/study_go_server/internal/model"
	"github.com/studyhive/study_go_server/internal/model/dto"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 创建评论（第一步：插入拿到自增 ID，树字段由 UpdateTreeFields 回填）
func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

// UpdateTreeFields 创建的第二步：用自增 ID 回填 root_id / path / depth
func (r *CommentRepository) UpdateTreeFields(id, rootID int64, path model.TreePath, depth int) error {
	return r.db.Model(&model.Comment{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"root_id": rootID,
			"path":    path,
			"depth":   depth,
		}).Error
}

// GetByID 获取评论，包含已删除的
func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByIDs 批量获取评论，保持调用方自行排序
func (r *CommentRepository) GetByIDs(ids []int64) ([]*model.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var comments []*model.Comment
	err := r.db.Where("id IN ?", ids).Find(&comments).Error
	return comments, err
}

// ListRoots 帖子的顶层评论分页，excludeID 用于把置顶评论从常规排序里剔除
func (r *CommentRepository) ListRoots(postID int64, sort string, page, pageSize int, excludeID int64) ([]*model.Comment, int64, error) {
	var comments []*model.Comment
	var total int64

	query := r.db.Model(&model.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", postID)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch sort {
	case dto.CommentSortOldest:
		query = query.Order("created_at ASC, id ASC")
	case dto.CommentSortMostLiked:
		query = query.Order("like_count DESC, created_at DESC")
	case dto.CommentSortDiscussed:
		query = query.Order("total_reply_count DESC, created_at DESC")
	default: // newest
		query = query.Order("created_at DESC, id DESC")
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// GetPinned 帖子当前的置顶评论，没有则返回 gorm.ErrRecordNotFound
func (r *CommentRepository) GetPinned(postID int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("post_id = ? AND is_pinned = ? AND parent_id IS NULL", postID, true).
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetRepliesByParentIDs 批量拉取直接回复，列表页预览用
func (r *CommentRepository) GetRepliesByParentIDs(parentIDs []int64, limit int) ([]*model.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	var replies []*model.Comment
	query := r.db.Where("parent_id IN ?", parentIDs).Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&replies).Error
	return replies, err
}

// ListReplies 某条评论的直接回复分页，最早在前
func (r *CommentRepository) ListReplies(parentID int64, page, pageSize int) ([]*model.Comment, int64, error) {
	var replies []*model.Comment
	var total int64

	query := r.db.Model(&model.Comment{}).Where("parent_id = ?", parentID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at ASC, id ASC").Offset(offset).Limit(pageSize).Find(&replies).Error
	if err != nil {
		return nil, 0, err
	}

	return replies, total, nil
}

// UpdateContent 编辑评论正文并标记编辑状态
func (r *CommentRepository) UpdateContent(id int64, content string, editedAt time.Time) error {
	return r.db.Model(&model.Comment{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":   content,
			"is_edited": true,
			"edited_at": editedAt,
		}).Error
}

// SoftDelete 软删除为墓碑，子树保留；仅对未删除的记录生效
func (r *CommentRepository) SoftDelete(id int64) (bool, error) {
	now := time.Now()
	result := r.db.Model(&model.Comment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
		})
	return result.RowsAffected > 0, result.Error
}

// IncrementReplyCounts 新回复落库后调整父链计数：
// 直接父级 reply_count +1，全部祖先 total_reply_count +1
func (r *CommentRepository) IncrementReplyCounts(parentID int64, ancestorIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Comment{}).Where("id = ?", parentID).
			Update("reply_count", gorm.Expr("reply_count + 1")).Error
		if err != nil {
			return err
		}
		if len(ancestorIDs) == 0 {
			return nil
		}
		return tx.Model(&model.Comment{}).Where("id IN ?", ancestorIDs).
			Update("total_reply_count", gorm.Expr("total_reply_count + 1")).Error
	})
}

// AddLike 点赞，唯一索引保证幂等；只在本次真正插入时递增计数
func (r *CommentRepository) AddLike(commentID, userID int64) (bool, error) {
	var inserted bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.CommentLike{CommentID: commentID, UserID: userID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		inserted = true
		return tx.Model(&model.Comment{}).Where("id = ?", commentID).
			Update("like_count", gorm.Expr("like_count + 1")).Error
	})
	return inserted, err
}

// RemoveLike 取消点赞，只在本次真正删除时递减计数
func (r *CommentRepository) RemoveLike(commentID, userID int64) (bool, error) {
	var removed bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).
			Delete(&model.CommentLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&model.Comment{}).Where("id = ? AND like_count > 0", commentID).
			Update("like_count", gorm.Expr("like_count - 1")).Error
	})
	return removed, err
}

// LikedCommentIDs 过滤出用户点赞过的评论 ID
func (r *CommentRepository) LikedCommentIDs(userID int64, commentIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool)
	if len(commentIDs) == 0 {
		return liked, nil
	}

	var ids []int64
	err := r.db.Model(&model.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// Pin 置顶评论，同一帖子最多一条，先清掉旧的再设置新的
func (r *CommentRepository) Pin(postID, commentID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Comment{}).
			Where("post_id = ? AND is_pinned = ?", postID, true).
			Update("is_pinned", false).Error
		if err != nil {
			return err
		}
		return tx.Model(&model.Comment{}).Where("id = ?", commentID).
			Update("is_pinned", true).Error
	})
}

// Unpin 取消置顶，仅对当前置顶的记录生效
func (r *CommentRepository) Unpin(commentID int64) (bool, error) {
	result := r.db.Model(&model.Comment{}).
		Where("id = ? AND is_pinned = ?", commentID, true).
		Update("is_pinned", false)
	return result.RowsAffected > 0, result.Error
}

// ReplaceMentions 整组重建评论的 @ 提及
func (r *CommentRepository) ReplaceMentions(commentID int64, userIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("comment_id = ?", commentID).
			Delete(&model.CommentMention{}).Error
		if err != nil {
			return err
		}
		for _, uid := range userIDs {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&model.CommentMention{CommentID: commentID, UserID: uid}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetMentionUserIDs 评论当前的 @ 提及
func (r *CommentRepository) GetMentionUserIDs(commentID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.CommentMention{}).
		Where("comment_id = ?", commentID).Pluck("user_id", &ids).Error
	return ids, err
}

// CountByPost 帖子的评论总数（含回复，不含已删除）
func (r *CommentRepository) CountByPost(postID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).
		Where("post_id = ? AND is_deleted = ?", postID, false).Count(&count).Error
	return count, err
}

// UpdateAuthorStamp 刷新评论上的作者身份快照
func (r *CommentRepository) UpdateAuthorStamp(userID int64, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	result := r.db.Model(&model.Comment{}).
		Where("author_user_id = ?", userID).Updates(fields)
	return result.RowsAffected, result.Error
}
