package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"YourTube/internal/apperror"
	"YourTube/internal/dto"
	"YourTube/internal/model"
	"YourTube/internal/recommend"
	"YourTube/internal/repository"
	"YourTube/pkg/logger"
	"YourTube/pkg/metrics"

	"gorm.io/gorm"
)

const (
	defaultTrendingLimit = 10
	maxTrendingLimit     = 50
)

type RecommendationService interface {
	// GetFeed viewerID为0表示匿名访问
	GetFeed(ctx context.Context, viewerID uint64, page, limit int) (*dto.FeedResponse, error)
	GetTags(ctx context.Context) (*dto.TagsResponse, error)
	GetTrending(ctx context.Context, limit int) ([]dto.VideoResponse, error)
	SavePreferences(ctx context.Context, userID uint64, selectedTags []string) (*model.User, error)
}

type recommendationService struct {
	videoRepo     repository.VideoRepository
	watchRepo     repository.WatchHistoryRepository
	userRepo      repository.UserRepository
	historyWindow int
	now           func() time.Time
}

func NewRecommendationService(videoRepo repository.VideoRepository, watchRepo repository.WatchHistoryRepository, userRepo repository.UserRepository, historyWindow int) RecommendationService {
	return &recommendationService{
		videoRepo:     videoRepo,
		watchRepo:     watchRepo,
		userRepo:      userRepo,
		historyWindow: historyWindow,
		now:           time.Now,
	}
}

// 推荐流：1、取全部已发布视频作为候选池 2、登录用户再取最近的观看记录和偏好标签 3、打分排序 4、排好序之后再分页
func (s *recommendationService) GetFeed(ctx context.Context, viewerID uint64, page, limit int) (*dto.FeedResponse, error) {
	p := dto.NewPagination(page, limit)

	videos, err := s.videoRepo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.Video, len(videos))
	candidates := make([]recommend.Candidate, 0, len(videos))
	for i := range videos {
		v := &videos[i]
		byID[v.ID] = v
		candidates = append(candidates, recommend.Candidate{
			ID:          v.ID,
			Tags:        v.Tags,
			Views:       v.Views,
			PublishedAt: v.CreatedAt,
		})
	}

	in := recommend.Input{Anonymous: true, Candidates: candidates, Now: s.now()}
	var viewer *model.User
	if viewerID != 0 {
		viewer, err = s.userRepo.FindByID(ctx, viewerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if viewer != nil {
		history, err := s.watchRepo.ListRecent(ctx, viewer.ID, s.historyWindow)
		if err != nil {
			return nil, err
		}
		in.Anonymous = false
		in.History = toWatchRecords(history)
		in.PreferenceTags = viewer.PreferredTags
	}

	start := time.Now()
	ranked := recommend.Rank(in)
	metrics.FeedRankDuration.WithLabelValues(string(ranked.FeedType)).Observe(time.Since(start).Seconds())

	pageItems := recommend.Paginate(ranked.Items, p.Page, p.Limit)
	docs := make([]dto.RankedVideo, 0, len(pageItems))
	for _, item := range pageItems {
		docs = append(docs, dto.RankedVideo{
			VideoResponse: dto.ToVideoResponse(byID[item.ID]),
			Score:         item.Score,
		})
	}
	topTags := ranked.TopTags
	if topTags == nil {
		topTags = []recommend.TagScore{}
	}

	logger.Log.WithField("viewer_id", viewerID).
		WithField("feed_type", ranked.FeedType).
		WithField("candidates", len(candidates)).
		Debug("推荐流生成完成")

	return &dto.FeedResponse{
		Docs:                   docs,
		TotalDocs:              len(ranked.Items),
		Page:                   p.Page,
		Limit:                  p.Limit,
		IsPersonalized:         ranked.Personalized,
		FeedType:               ranked.FeedType,
		UserTopTags:            topTags,
		NeedsOnboarding:        ranked.NeedsOnboarding,
		HasCompletedOnboarding: viewer != nil && viewer.HasCompletedOnboarding,
	}, nil
}

func toWatchRecords(rows []model.WatchHistory) []recommend.WatchRecord {
	records := make([]recommend.WatchRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, recommend.WatchRecord{
			Tags:           row.Video.Tags,
			WatchedSeconds: row.WatchDuration,
			Duration:       row.Video.Duration,
			Completed:      row.IsCompleted,
		})
	}
	return records
}

// 标签统计：先读Redis，未命中再扫一遍已发布视频的标签
func (s *recommendationService) GetTags(ctx context.Context) (*dto.TagsResponse, error) {
	counts, err := s.videoRepo.GetTagCountsCache(ctx)
	if err != nil {
		metrics.CacheRequests.WithLabelValues("tag_counts", "error").Inc()
		logger.Log.WithError(err).Warn("读取标签统计缓存失败")
	}
	if counts == nil {
		if err == nil {
			metrics.CacheRequests.WithLabelValues("tag_counts", "miss").Inc()
		}
		allTags, err := s.videoRepo.ListPublishedTags(ctx)
		if err != nil {
			return nil, err
		}
		counts = CountTags(allTags)
		if err := s.videoRepo.SetTagCountsCache(ctx, counts); err != nil {
			logger.Log.WithError(err).Warn("写入标签统计缓存失败")
		}
	} else {
		metrics.CacheRequests.WithLabelValues("tag_counts", "hit").Inc()
	}

	return &dto.TagsResponse{
		AvailableTags: recommend.AvailableTags,
		TagCounts:     SortTagCounts(counts),
	}, nil
}

// CountTags 统计每个标签出现在多少个视频里
func CountTags(allTags [][]string) map[string]int64 {
	counts := make(map[string]int64)
	for _, tags := range allTags {
		for _, tag := range recommend.NormalizeTags(tags) {
			counts[tag]++
		}
	}
	return counts
}

// SortTagCounts 数量从多到少，数量相同按字母序
func SortTagCounts(counts map[string]int64) []dto.TagCount {
	out := make([]dto.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, dto.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func (s *recommendationService) GetTrending(ctx context.Context, limit int) ([]dto.VideoResponse, error) {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	if limit > maxTrendingLimit {
		limit = maxTrendingLimit
	}
	videos, err := s.videoRepo.ListTrending(ctx, s.now().Add(-recommend.RecentWindow), limit)
	if err != nil {
		return nil, err
	}
	return dto.ToVideoResponses(videos), nil
}

// 保存新用户引导时选的标签：只保留平台预定义的标签，并标记引导完成
func (s *recommendationService) SavePreferences(ctx context.Context, userID uint64, selectedTags []string) (*model.User, error) {
	if len(selectedTags) == 0 {
		return nil, apperror.BadRequest("请至少选择一个标签")
	}
	valid := recommend.FilterAvailable(selectedTags)
	if len(valid) == 0 {
		return nil, apperror.BadRequest("没有有效的标签")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	user.PreferredTags = valid
	user.HasCompletedOnboarding = true
	if err := s.userRepo.Update(ctx, user, "preferred_tags", "has_completed_onboarding"); err != nil {
		return nil, err
	}
	return user, nil
}
