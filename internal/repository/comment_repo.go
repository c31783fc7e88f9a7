package repository

import (
	"context"

	"YourTube/internal/model"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, commentID uint64) (*model.Comment, error)
	// 分页获取视频的评论，最新的在前
	ListByVideo(ctx context.Context, videoID uint64, offset, limit int) ([]model.Comment, int64, error)
	ListIDsByVideo(ctx context.Context, videoID uint64) ([]uint64, error)
	CountByVideos(ctx context.Context, videoIDs []uint64) (map[uint64]int64, error)
	Update(ctx context.Context, comment *model.Comment, columns ...string) error
	Delete(ctx context.Context, commentID uint64) error
	DeleteByVideo(ctx context.Context, videoID uint64) error

	WithTx(tx *gorm.DB) CommentRepository
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// WithTx 返回一个新的、使用事务的 commentRepository 实例
func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{
		db: tx,
	}
}

// Create 方法现在对事务和非事务场景通用
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// 利用commentID找comment，并顺便将结构体中的Owner给Preload进去
func (r *commentRepository) FindByID(ctx context.Context, commentID uint64) (*model.Comment, error) {
	var result model.Comment
	err := r.db.WithContext(ctx).Preload("Owner").First(&result, commentID).Error
	if err != nil {
		return nil, err // 如果有错（包括没找到），直接返回
	}
	return &result, nil
}

func (r *commentRepository) ListByVideo(ctx context.Context, videoID uint64, offset, limit int) ([]model.Comment, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Comment{}).Where("video_id = ?", videoID)
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var comments []model.Comment
	err := tx.
		Preload("Owner"). // 预加载评论的作者信息
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error
	return comments, total, err
}

func (r *commentRepository) ListIDsByVideo(ctx context.Context, videoID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("video_id = ?", videoID).Pluck("id", &ids).Error
	return ids, err
}

type idCount struct {
	ID    uint64
	Count int64
}

// 一次GROUP BY查出多个视频各自的评论数，没有评论的视频不在map里
func (r *commentRepository) CountByVideos(ctx context.Context, videoIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(videoIDs))
	if len(videoIDs) == 0 {
		return counts, nil
	}
	var rows []idCount
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Select("video_id AS id, COUNT(*) AS count").
		Where("video_id IN ?", videoIDs).
		Group("video_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *model.Comment, columns ...string) error {
	return r.db.WithContext(ctx).Model(comment).Select(columns).Updates(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, commentID uint64) error {
	return r.db.WithContext(ctx).Delete(&model.Comment{}, commentID).Error
}

func (r *commentRepository) DeleteByVideo(ctx context.Context, videoID uint64) error {
	return r.db.WithContext(ctx).Where("video_id = ?", videoID).Delete(&model.Comment{}).Error
}
