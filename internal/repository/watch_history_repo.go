package repository

import (
	"context"
	"time"

	"YourTube/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchProgress 一次观看进度上报
type WatchProgress struct {
	UserID         uint64
	VideoID        uint64
	WatchedSeconds float64
	Completed      bool
	WatchedAt      time.Time
}

type WatchHistoryRepository interface {
	// Upsert 按(user, video)合并：观看秒数取较大值，完成标记一旦为true就不再变回false
	Upsert(ctx context.Context, p WatchProgress) error
	// ListRecent 最近观看的在前，预加载视频和视频作者；limit<=0表示不限制
	ListRecent(ctx context.Context, userID uint64, limit int) ([]model.WatchHistory, error)
	Delete(ctx context.Context, userID, videoID uint64) (int64, error)
	DeleteByUser(ctx context.Context, userID uint64) error
	DeleteByVideo(ctx context.Context, videoID uint64) error

	WithTx(tx *gorm.DB) WatchHistoryRepository
}

type watchHistoryRepository struct {
	db *gorm.DB
}

func NewWatchHistoryRepository(db *gorm.DB) WatchHistoryRepository {
	return &watchHistoryRepository{db: db}
}

func (r *watchHistoryRepository) WithTx(tx *gorm.DB) WatchHistoryRepository {
	return &watchHistoryRepository{db: tx}
}

// INSERT ... ON DUPLICATE KEY UPDATE，靠idx_user_video唯一索引保证一对(user, video)只有一行
// 重复消费同一条消息结果不变
func (r *watchHistoryRepository) Upsert(ctx context.Context, p WatchProgress) error {
	row := &model.WatchHistory{
		UserID:        p.UserID,
		VideoID:       p.VideoID,
		WatchDuration: p.WatchedSeconds,
		IsCompleted:   p.Completed,
		LastWatchedAt: p.WatchedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"watch_duration":  gorm.Expr("GREATEST(watch_duration, VALUES(watch_duration))"),
			"is_completed":    gorm.Expr("is_completed OR VALUES(is_completed)"),
			"last_watched_at": gorm.Expr("GREATEST(last_watched_at, VALUES(last_watched_at))"),
			"updated_at":      gorm.Expr("VALUES(updated_at)"),
		}),
	}).Create(row).Error
}

func (r *watchHistoryRepository) ListRecent(ctx context.Context, userID uint64, limit int) ([]model.WatchHistory, error) {
	tx := r.db.WithContext(ctx).
		Preload("Video.Owner").
		Where("user_id = ?", userID).
		Order("last_watched_at desc")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var rows []model.WatchHistory
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	// 视频被删除（软删除）后Preload不出来，直接跳过
	out := rows[:0]
	for _, row := range rows {
		if row.Video.ID != 0 {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *watchHistoryRepository) Delete(ctx context.Context, userID, videoID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Delete(&model.WatchHistory{})
	return result.RowsAffected, result.Error
}

func (r *watchHistoryRepository) DeleteByUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.WatchHistory{}).Error
}

func (r *watchHistoryRepository) DeleteByVideo(ctx context.Context, videoID uint64) error {
	return r.db.WithContext(ctx).Where("video_id = ?", videoID).Delete(&model.WatchHistory{}).Error
}
