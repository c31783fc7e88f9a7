package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"YourTube/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const keyTagCounts = "video:tag_counts"

// 允许排序的列，前端传来的其他值一律回退到created_at
var videoSortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"views":      "views",
	"duration":   "duration",
	"title":      "title",
}

// VideoQuery 视频列表的筛选、排序和分页条件
type VideoQuery struct {
	Search        string // 标题或简介包含
	OwnerID       uint64
	PublishedOnly bool
	SortBy        string
	SortAsc       bool
	Offset        int
	Limit         int
}

type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	// FindByID 直接查库，预加载Owner，不区分是否发布
	FindByID(ctx context.Context, videoID uint64) (*model.Video, error)
	FindByIDs(ctx context.Context, videoIDs []uint64) ([]model.Video, error)
	List(ctx context.Context, q VideoQuery) ([]model.Video, int64, error)
	// ListPublished 取出全部已发布视频，推荐打分需要完整的候选池
	ListPublished(ctx context.Context) ([]model.Video, error)
	ListPublishedTags(ctx context.Context) ([][]string, error)
	ListTrending(ctx context.Context, since time.Time, limit int) ([]model.Video, error)
	// ListLikedBy 用户点赞过的已发布视频，最近点赞的在前
	ListLikedBy(ctx context.Context, userID uint64, offset, limit int) ([]model.Video, int64, error)
	ListIDsByOwner(ctx context.Context, ownerID uint64, since *time.Time) ([]uint64, error)
	Update(ctx context.Context, video *model.Video, columns ...string) error
	Delete(ctx context.Context, videoID uint64) error
	// IncrementViews 原子地+1，并返回更新后的播放量
	IncrementViews(ctx context.Context, videoID uint64) (uint64, error)
	SumViews(ctx context.Context, ownerID uint64, since *time.Time) (uint64, error)
	TopByViews(ctx context.Context, ownerID uint64) (*model.Video, error)

	GetVideoCache(ctx context.Context, videoID uint64) (*model.Video, error)
	SetVideoCache(ctx context.Context, video *model.Video) error
	DeleteVideoCache(ctx context.Context, videoID uint64) error
	GetTagCountsCache(ctx context.Context) (map[string]int64, error)
	SetTagCountsCache(ctx context.Context, counts map[string]int64) error
	DeleteTagCountsCache(ctx context.Context) error

	WithTx(tx *gorm.DB) VideoRepository
}

type videoRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewVideoRepository(db *gorm.DB, rdb *redis.Client) VideoRepository {
	return &videoRepository{
		db:  db,
		rdb: rdb,
	}
}

// WithTx 返回一个新的、使用事务的 videoRepository 实例，缓存客户端沿用
func (r *videoRepository) WithTx(tx *gorm.DB) VideoRepository {
	return &videoRepository{
		db:  tx,
		rdb: r.rdb,
	}
}

func (r *videoRepository) Create(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

// 利用videoID找视频，preload其中的Owner结构
func (r *videoRepository) FindByID(ctx context.Context, videoID uint64) (*model.Video, error) {
	var video model.Video
	if err := r.db.WithContext(ctx).Preload("Owner").First(&video, videoID).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) FindByIDs(ctx context.Context, videoIDs []uint64) ([]model.Video, error) {
	var videos []model.Video
	if len(videoIDs) == 0 {
		return videos, nil
	}
	err := r.db.WithContext(ctx).Preload("Owner").Where("id IN ?", videoIDs).Find(&videos).Error
	return videos, err
}

// MySQL的LIKE默认用反斜杠转义，搜索词里的%和_按字面匹配
var likeEscaper = strings.NewReplacer("\\", "\\\\", "%", "\\%", "_", "\\_")

func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

// 列表查询：1、拼筛选条件 2、Count总数 3、排序+分页取当前页
func (r *videoRepository) List(ctx context.Context, q VideoQuery) ([]model.Video, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Video{})
	if q.PublishedOnly {
		tx = tx.Where("is_published = ?", true)
	}
	if q.OwnerID != 0 {
		tx = tx.Where("owner_id = ?", q.OwnerID)
	}
	if q.Search != "" {
		like := containsPattern(q.Search)
		tx = tx.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := videoSortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "desc"
	if q.SortAsc {
		direction = "asc"
	}

	var videos []model.Video
	err := tx.Preload("Owner").
		Order(fmt.Sprintf("%s %s", column, direction)).
		Order("id desc").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&videos).Error
	return videos, total, err
}

// 按id升序返回，保证打分前候选池的顺序是确定的
func (r *videoRepository) ListPublished(ctx context.Context) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("is_published = ?", true).
		Order("id asc").
		Find(&videos).Error
	return videos, err
}

func (r *videoRepository) ListPublishedTags(ctx context.Context) ([][]string, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).
		Select("id", "tags").
		Where("is_published = ?", true).
		Find(&videos).Error
	if err != nil {
		return nil, err
	}
	tags := make([][]string, 0, len(videos))
	for _, v := range videos {
		tags = append(tags, v.Tags)
	}
	return tags, nil
}

func (r *videoRepository) ListTrending(ctx context.Context, since time.Time, limit int) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("is_published = ? AND created_at >= ?", true, since).
		Order("views desc").
		Order("id asc").
		Limit(limit).
		Find(&videos).Error
	return videos, err
}

func (r *videoRepository) ListLikedBy(ctx context.Context, userID uint64, offset, limit int) ([]model.Video, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Video{}).
		Joins("JOIN likes ON likes.target_id = videos.id AND likes.target_type = ?", model.TargetVideo).
		Where("likes.liked_by = ? AND videos.is_published = ?", userID, true)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var videos []model.Video
	// 两张表都有id和created_at，只取videos的列
	err := tx.Select("videos.*").
		Preload("Owner").
		Order("likes.created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&videos).Error
	return videos, total, err
}

func (r *videoRepository) ListIDsByOwner(ctx context.Context, ownerID uint64, since *time.Time) ([]uint64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Video{}).Where("owner_id = ?", ownerID)
	if since != nil {
		tx = tx.Where("created_at >= ?", *since)
	}
	var ids []uint64
	err := tx.Pluck("id", &ids).Error
	return ids, err
}

func (r *videoRepository) Update(ctx context.Context, video *model.Video, columns ...string) error {
	return r.db.WithContext(ctx).Model(video).Select(columns).Updates(video).Error
}

// 视频是软删除，评论、点赞这些关联数据由调用方在同一个事务里清理
func (r *videoRepository) Delete(ctx context.Context, videoID uint64) error {
	return r.db.WithContext(ctx).Delete(&model.Video{}, videoID).Error
}

func (r *videoRepository) IncrementViews(ctx context.Context, videoID uint64) (uint64, error) {
	// UPDATE `videos` SET `views` = `views` + 1 WHERE id = ?
	result := r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", videoID).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var views uint64
	err := r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", videoID).Pluck("views", &views).Error
	return views, err
}

func (r *videoRepository) SumViews(ctx context.Context, ownerID uint64, since *time.Time) (uint64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Video{}).Where("owner_id = ?", ownerID)
	if since != nil {
		tx = tx.Where("created_at >= ?", *since)
	}
	var total uint64
	err := tx.Select("COALESCE(SUM(views), 0)").Scan(&total).Error
	return total, err
}

// 没有视频时返回 (nil, nil)
func (r *videoRepository) TopByViews(ctx context.Context, ownerID uint64) (*model.Video, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("views desc").
		Limit(1).
		Find(&videos).Error
	if err != nil || len(videos) == 0 {
		return nil, err
	}
	return &videos[0], nil
}

// 返回存储单个视频信息的字符串Key
func (r *videoRepository) keyVideoInfo(videoID uint64) string {
	return fmt.Sprintf("video:info:%d", videoID)
}

// 设置过期时间，再加上随机性防止缓存雪崩
func cacheTTL(base time.Duration) time.Duration {
	return base + time.Duration(rand.Intn(60))*time.Second
}

// 从Redis缓存中获取单个Video信息：1、利用VideoID组装key 2、拿key去rdb中寻找videoJSON 3、利用json.Unmarshal将拿到的videoJSON反序列化
// 缓存不存在时返回 (nil, nil)
func (r *videoRepository) GetVideoCache(ctx context.Context, videoID uint64) (*model.Video, error) {
	videoJSON, err := r.rdb.Get(ctx, r.keyVideoInfo(videoID)).Result()
	if err == redis.Nil {
		return nil, nil // 如果缓存不存在，但是Redis正常工作
	} else if err != nil {
		return nil, err // Redis本身出错了
	}
	var video model.Video
	if err := json.Unmarshal([]byte(videoJSON), &video); err != nil {
		return nil, err // JSON反序列化失败
	}
	return &video, nil
}

// 将单个视频信息存入Redis缓存，JSON里不包含对象存储的key和用户的敏感字段
func (r *videoRepository) SetVideoCache(ctx context.Context, video *model.Video) error {
	videoJSON, err := json.Marshal(video)
	if err != nil {
		return err // JSON序列化失败
	}
	return r.rdb.Set(ctx, r.keyVideoInfo(video.ID), videoJSON, cacheTTL(5*time.Minute)).Err()
}

// 视频被修改或删除后删掉缓存，下次读取时重建
func (r *videoRepository) DeleteVideoCache(ctx context.Context, videoID uint64) error {
	return r.rdb.Del(ctx, r.keyVideoInfo(videoID)).Err()
}

func (r *videoRepository) GetTagCountsCache(ctx context.Context) (map[string]int64, error) {
	raw, err := r.rdb.Get(ctx, keyTagCounts).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	if err := json.Unmarshal([]byte(raw), &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *videoRepository) SetTagCountsCache(ctx context.Context, counts map[string]int64) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, keyTagCounts, raw, cacheTTL(10*time.Minute)).Err()
}

func (r *videoRepository) DeleteTagCountsCache(ctx context.Context) error {
	return r.rdb.Del(ctx, keyTagCounts).Err()
}
