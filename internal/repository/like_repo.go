package repository

import (
	"context"
	"time"

	"YourTube/internal/model"
	"YourTube/pkg/logger"

	"gorm.io/gorm"
)

// LikeRepository 点赞是多态的：(target_type, target_id) 指向视频、评论或推文
type LikeRepository interface {
	Create(ctx context.Context, like *model.Like) error
	// Delete 返回删除的行数，0表示本来就没点赞
	Delete(ctx context.Context, likedBy uint64, targetType string, targetID uint64) (int64, error)
	Exists(ctx context.Context, likedBy uint64, targetType string, targetID uint64) (bool, error)
	Count(ctx context.Context, targetType string, targetID uint64) (int64, error)
	CountByTargets(ctx context.Context, targetType string, targetIDs []uint64) (map[uint64]int64, error)
	// CountTotal 一批目标收到的点赞总数，since不为nil时只算之后的点赞
	CountTotal(ctx context.Context, targetType string, targetIDs []uint64, since *time.Time) (int64, error)
	LikedTargets(ctx context.Context, likedBy uint64, targetType string, targetIDs []uint64) (map[uint64]bool, error)
	DeleteByTargets(ctx context.Context, targetType string, targetIDs []uint64) error

	WithTx(tx *gorm.DB) LikeRepository
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) WithTx(tx *gorm.DB) LikeRepository {
	return &likeRepository{db: tx}
}

func (r *likeRepository) Create(ctx context.Context, like *model.Like) error {
	result := r.db.WithContext(ctx).Create(like)
	if result.Error != nil {
		logger.Log.WithError(result.Error).Error("MySQL添加点赞失败")
		return result.Error
	}
	return nil
}

// Like没有DeletedAt字段，所以这里的Delete就是真正的DELETE，而不是UPDATE deleted_at
func (r *likeRepository) Delete(ctx context.Context, likedBy uint64, targetType string, targetID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("liked_by = ? AND target_type = ? AND target_id = ?", likedBy, targetType, targetID).
		Delete(&model.Like{})
	if result.Error != nil {
		logger.Log.WithError(result.Error).Error("MySQL删除点赞失败")
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *likeRepository) Exists(ctx context.Context, likedBy uint64, targetType string, targetID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("liked_by = ? AND target_type = ? AND target_id = ?", likedBy, targetType, targetID).
		Count(&count).Error
	return count > 0, err
}

func (r *likeRepository) Count(ctx context.Context, targetType string, targetID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Count(&count).Error
	return count, err
}

func (r *likeRepository) CountByTargets(ctx context.Context, targetType string, targetIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(targetIDs))
	if len(targetIDs) == 0 {
		return counts, nil
	}
	var rows []idCount
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Select("target_id AS id, COUNT(*) AS count").
		Where("target_type = ? AND target_id IN ?", targetType, targetIDs).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func (r *likeRepository) CountTotal(ctx context.Context, targetType string, targetIDs []uint64, since *time.Time) (int64, error) {
	if len(targetIDs) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("target_type = ? AND target_id IN ?", targetType, targetIDs)
	if since != nil {
		tx = tx.Where("created_at >= ?", *since)
	}
	var count int64
	err := tx.Count(&count).Error
	return count, err
}

func (r *likeRepository) LikedTargets(ctx context.Context, likedBy uint64, targetType string, targetIDs []uint64) (map[uint64]bool, error) {
	liked := make(map[uint64]bool, len(targetIDs))
	if likedBy == 0 || len(targetIDs) == 0 {
		return liked, nil
	}
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("liked_by = ? AND target_type = ? AND target_id IN ?", likedBy, targetType, targetIDs).
		Pluck("target_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (r *likeRepository) DeleteByTargets(ctx context.Context, targetType string, targetIDs []uint64) error {
	if len(targetIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("target_type = ? AND target_id IN ?", targetType, targetIDs).
		Delete(&model.Like{}).Error
}
