package service

import (
	"context"
	"time"

	"YourTube/internal/dto"
	"YourTube/internal/model"
	"YourTube/internal/repository"

	"golang.org/x/sync/errgroup"
)

// RecentPeriod 创作者后台“最近”数据的统计窗口
const RecentPeriod = 30 * 24 * time.Hour

type DashboardVideosInput struct {
	Page  int
	Limit int
}

type DashboardService interface {
	GetChannelStats(ctx context.Context, userID uint64) (*dto.ChannelStats, error)
	// GetChannelVideos 作者自己的视频，包括未发布的
	GetChannelVideos(ctx context.Context, userID uint64, in DashboardVideosInput) (dto.Page[dto.DashboardVideo], error)
}

type dashboardService struct {
	videoRepo   repository.VideoRepository
	likeRepo    repository.LikeRepository
	commentRepo repository.CommentRepository
	subRepo     repository.SubscriptionRepository
	now         func() time.Time
}

func NewDashboardService(videoRepo repository.VideoRepository, likeRepo repository.LikeRepository, commentRepo repository.CommentRepository, subRepo repository.SubscriptionRepository) DashboardService {
	return &dashboardService{
		videoRepo:   videoRepo,
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
		subRepo:     subRepo,
		now:         time.Now,
	}
}

// 频道统计：先查出作者的全部视频ID，其余的统计互不依赖，用errgroup并发查，任何一个失败整体失败
func (s *dashboardService) GetChannelStats(ctx context.Context, userID uint64) (*dto.ChannelStats, error) {
	videoIDs, err := s.videoRepo.ListIDsByOwner(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	since := s.now().Add(-RecentPeriod)

	stats := &dto.ChannelStats{TotalVideos: int64(len(videoIDs))}
	var top *model.Video

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalViews, err = s.videoRepo.SumViews(gctx, userID, nil)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalLikes, err = s.likeRepo.CountTotal(gctx, model.TargetVideo, videoIDs, nil)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalSubscribers, err = s.subRepo.CountSubscribers(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalSubscribedTo, err = s.subRepo.CountSubscribedTo(gctx, userID)
		return err
	})
	g.Go(func() error {
		recentIDs, err := s.videoRepo.ListIDsByOwner(gctx, userID, &since)
		if err != nil {
			return err
		}
		stats.RecentVideos = int64(len(recentIDs))
		return nil
	})
	g.Go(func() (err error) {
		stats.RecentViews, err = s.videoRepo.SumViews(gctx, userID, &since)
		return err
	})
	g.Go(func() (err error) {
		stats.RecentLikes, err = s.likeRepo.CountTotal(gctx, model.TargetVideo, videoIDs, &since)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.videoRepo.TopByViews(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.AverageViews = averageViews(stats.TotalViews, stats.TotalVideos)
	if top != nil {
		resp := dto.ToVideoResponse(top)
		stats.TopVideo = &resp
	}
	return stats, nil
}

// averageViews 四舍五入，没有视频时为0
func averageViews(totalViews uint64, totalVideos int64) uint64 {
	if totalVideos <= 0 {
		return 0
	}
	n := uint64(totalVideos)
	return (totalViews + n/2) / n
}

func (s *dashboardService) GetChannelVideos(ctx context.Context, userID uint64, in DashboardVideosInput) (dto.Page[dto.DashboardVideo], error) {
	p := dto.NewPagination(in.Page, in.Limit)
	videos, total, err := s.videoRepo.List(ctx, repository.VideoQuery{
		OwnerID: userID,
		SortBy:  "created_at",
		Offset:  p.Offset(),
		Limit:   p.Limit,
	})
	if err != nil {
		return dto.Page[dto.DashboardVideo]{}, err
	}

	ids := make([]uint64, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	var likes, comments map[uint64]int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		likes, err = s.likeRepo.CountByTargets(gctx, model.TargetVideo, ids)
		return err
	})
	g.Go(func() (err error) {
		comments, err = s.commentRepo.CountByVideos(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return dto.Page[dto.DashboardVideo]{}, err
	}

	docs := make([]dto.DashboardVideo, 0, len(videos))
	for i := range videos {
		docs = append(docs, dto.DashboardVideo{
			VideoResponse: dto.ToVideoResponse(&videos[i]),
			LikesCount:    likes[videos[i].ID],
			CommentsCount: comments[videos[i].ID],
		})
	}
	return dto.NewPage(docs, total, p.Page, p.Limit), nil
}
