package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"YourTube/internal/apperror"
	"YourTube/internal/data"
	"YourTube/internal/dto"
	"YourTube/internal/model"
	"YourTube/internal/recommend"
	"YourTube/internal/repository"
	"YourTube/pkg/logger"
	"YourTube/pkg/metrics"
	"YourTube/pkg/rabbitmq"
	"YourTube/pkg/storage"

	"golang.org/x/sync/singleflight"
)

type ListVideosInput struct {
	Query    string
	UserID   uint64
	SortBy   string
	SortType string
	Page     int
	Limit    int
}

type PublishVideoInput struct {
	OwnerID       uint64
	Title         string
	Description   string
	Tags          []string
	VideoPath     string
	ThumbnailPath string
}

// UpdateVideoInput 为空的字段不修改，Tags为nil表示不修改标签
type UpdateVideoInput struct {
	Title         string
	Description   string
	Tags          []string
	ThumbnailPath string
}

type WatchUpdateInput struct {
	VideoID        uint64
	WatchedSeconds float64
	Completed      bool
}

type VideoService interface {
	ListVideos(ctx context.Context, in ListVideosInput) (dto.Page[dto.VideoResponse], error)
	PublishVideo(ctx context.Context, in PublishVideoInput) (*model.Video, error)
	// GetVideoByID 每次调用播放量+1，返回的views是自增后的值
	GetVideoByID(ctx context.Context, videoID, viewerID uint64) (*dto.VideoDetail, error)
	UpdateVideo(ctx context.Context, videoID, userID uint64, in UpdateVideoInput) (*model.Video, error)
	DeleteVideo(ctx context.Context, videoID, userID uint64) error
	TogglePublish(ctx context.Context, videoID, userID uint64) (*model.Video, error)
	// UpdateWatchProgress 只投递消息，watch_histories由consumer异步合并
	UpdateWatchProgress(ctx context.Context, userID uint64, in WatchUpdateInput) error
}

type videoService struct {
	sf singleflight.Group

	videoRepo repository.VideoRepository
	likeRepo  repository.LikeRepository
	uow       data.UnitOfWork
	media     storage.MediaHost
	publisher rabbitmq.Publisher
	now       func() time.Time
}

func NewVideoService(videoRepo repository.VideoRepository, likeRepo repository.LikeRepository, uow data.UnitOfWork, media storage.MediaHost, publisher rabbitmq.Publisher) VideoService {
	return &videoService{
		videoRepo: videoRepo,
		likeRepo:  likeRepo,
		uow:       uow,
		media:     media,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *videoService) ListVideos(ctx context.Context, in ListVideosInput) (dto.Page[dto.VideoResponse], error) {
	p := dto.NewPagination(in.Page, in.Limit)
	videos, total, err := s.videoRepo.List(ctx, repository.VideoQuery{
		Search:        strings.TrimSpace(in.Query),
		OwnerID:       in.UserID,
		PublishedOnly: true,
		SortBy:        in.SortBy,
		SortAsc:       strings.EqualFold(in.SortType, "asc"),
		Offset:        p.Offset(),
		Limit:         p.Limit,
	})
	if err != nil {
		return dto.Page[dto.VideoResponse]{}, err
	}
	return dto.NewPage(dto.ToVideoResponses(videos), total, p.Page, p.Limit), nil
}

// 发布视频：1、校验标题、简介和两个文件 2、上传视频（时长由媒体托管返回） 3、上传封面，失败则删掉已上传的视频 4、写库
func (s *videoService) PublishVideo(ctx context.Context, in PublishVideoInput) (*model.Video, error) {
	if err := requireFields("标题和简介都是必填的", "title", in.Title, "description", in.Description); err != nil {
		return nil, err
	}
	if in.VideoPath == "" {
		return nil, apperror.BadRequest("视频文件是必需的")
	}
	if in.ThumbnailPath == "" {
		return nil, apperror.BadRequest("封面是必需的")
	}
	logCtx := logger.Log.WithField("owner_id", in.OwnerID)

	videoFile, err := s.media.Upload(ctx, in.VideoPath, storage.KindVideo)
	if err != nil {
		logCtx.WithError(err).Error("视频文件上传失败")
		return nil, apperror.Internal("视频文件上传失败")
	}
	thumbnail, err := s.media.Upload(ctx, in.ThumbnailPath, storage.KindImage)
	if err != nil {
		logCtx.WithError(err).Error("封面上传失败")
		s.removeObjects(ctx, videoFile.ObjectKey)
		return nil, apperror.Internal("封面上传失败")
	}

	video := &model.Video{
		VideoFile:    videoFile.URL,
		VideoKey:     videoFile.ObjectKey,
		Thumbnail:    thumbnail.URL,
		ThumbnailKey: thumbnail.ObjectKey,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Duration:     videoFile.Duration,
		IsPublished:  true,
		OwnerID:      in.OwnerID,
		Tags:         publishTags(in.Tags, in.Description),
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		s.removeObjects(ctx, videoFile.ObjectKey, thumbnail.ObjectKey)
		return nil, err
	}
	s.invalidateTagCounts(ctx)
	return video, nil
}

// 根据videoID查找视频：1、查找Redis缓存 2、通过SingleFlight进行数据库查找 3、未发布的视频只有作者能看 4、播放量+1 5、点赞信息
func (s *videoService) GetVideoByID(ctx context.Context, videoID, viewerID uint64) (*dto.VideoDetail, error) {
	cached, err := s.loadVideo(ctx, videoID)
	if err != nil {
		return nil, notFoundOr(err, "视频不存在")
	}
	// singleflight的结果是多个请求共享的同一个指针，拷贝一份再改
	video := *cached
	if !canView(&video, viewerID) {
		return nil, apperror.NotFound("视频不存在")
	}

	views, err := s.videoRepo.IncrementViews(ctx, videoID)
	if err != nil {
		return nil, notFoundOr(err, "视频不存在")
	}
	video.Views = views

	likes, err := s.likeRepo.Count(ctx, model.TargetVideo, videoID)
	if err != nil {
		return nil, err
	}
	isLiked := false
	if viewerID != 0 {
		if isLiked, err = s.likeRepo.Exists(ctx, viewerID, model.TargetVideo, videoID); err != nil {
			return nil, err
		}
	}
	return &dto.VideoDetail{
		VideoResponse: dto.ToVideoResponse(&video),
		LikesCount:    likes,
		IsLiked:       isLiked,
	}, nil
}

func (s *videoService) loadVideo(ctx context.Context, videoID uint64) (*model.Video, error) {
	video, err := s.videoRepo.GetVideoCache(ctx, videoID)
	if err == nil && video != nil {
		metrics.CacheRequests.WithLabelValues("video", "hit").Inc()
		return video, nil
	}
	if err != nil {
		// Redis本身出错了，记录日志后直接查库，不影响请求
		metrics.CacheRequests.WithLabelValues("video", "error").Inc()
		logger.Log.WithError(err).WithField("video_id", videoID).Warn("读取视频缓存失败")
	} else {
		metrics.CacheRequests.WithLabelValues("video", "miss").Inc()
	}

	// 缓存未命中，通过SingleFlight查找，同一时间同一个视频只有一个请求会打到数据库
	key := fmt.Sprintf("get_video_%d", videoID)
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		dbVideo, dbErr := s.videoRepo.FindByID(ctx, videoID)
		if dbErr != nil {
			return nil, dbErr
		}
		// 查询成功后，将返回的dbVideo写回缓存
		if cacheErr := s.videoRepo.SetVideoCache(ctx, dbVideo); cacheErr != nil {
			logger.Log.WithError(cacheErr).WithField("video_id", videoID).Warn("写入视频缓存失败")
		}
		return dbVideo, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.Video), nil
}

// findOwned 直接查库（需要对象存储key），并校验是否是作者本人
func (s *videoService) findOwned(ctx context.Context, videoID, userID uint64, forbiddenMsg string) (*model.Video, error) {
	video, err := s.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return nil, notFoundOr(err, "视频不存在")
	}
	if err := ensureOwner(video.OwnerID, userID, forbiddenMsg); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *videoService) UpdateVideo(ctx context.Context, videoID, userID uint64, in UpdateVideoInput) (*model.Video, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" && description == "" && in.Tags == nil && in.ThumbnailPath == "" {
		return nil, apperror.BadRequest("没有需要更新的字段")
	}
	video, err := s.findOwned(ctx, videoID, userID, "只有作者才能修改视频")
	if err != nil {
		return nil, err
	}

	var columns []string
	tagsChanged := false
	if in.Tags != nil {
		video.Tags = recommend.NormalizeTags(in.Tags)
		tagsChanged = true
	} else if description != "" && slices.Equal(video.Tags, recommend.HashtagTags(video.Description)) {
		// 标签原本就是从简介的#话题里提取的，简介改了标签跟着改
		if derived := recommend.HashtagTags(description); !slices.Equal(derived, video.Tags) {
			video.Tags = derived
			tagsChanged = true
		}
	}
	if title != "" {
		video.Title = title
		columns = append(columns, "title")
	}
	if description != "" {
		video.Description = description
		columns = append(columns, "description")
	}
	if tagsChanged {
		columns = append(columns, "tags")
	}
	var oldThumbnailKey, newThumbnailKey string
	if in.ThumbnailPath != "" {
		thumbnail, err := s.media.Upload(ctx, in.ThumbnailPath, storage.KindImage)
		if err != nil {
			logger.Log.WithError(err).WithField("video_id", videoID).Error("封面上传失败")
			return nil, apperror.Internal("封面上传失败")
		}
		oldThumbnailKey = video.ThumbnailKey
		newThumbnailKey = thumbnail.ObjectKey
		video.Thumbnail = thumbnail.URL
		video.ThumbnailKey = thumbnail.ObjectKey
		columns = append(columns, "thumbnail", "thumbnail_key")
	}

	if err := s.videoRepo.Update(ctx, video, columns...); err != nil {
		// 新封面已经传上去了，写库失败就没人引用它
		if newThumbnailKey != "" {
			s.removeObjects(ctx, newThumbnailKey)
		}
		return nil, err
	}
	s.invalidateVideo(ctx, videoID)
	if tagsChanged {
		s.invalidateTagCounts(ctx)
	}
	if oldThumbnailKey != "" {
		s.publishCleanup(ctx, videoID, oldThumbnailKey)
	}
	return video, nil
}

// 删除视频：1、校验作者 2、事务中删除视频本身、它的评论、评论的点赞、视频的点赞、观看记录 3、清缓存 4、投递媒体清理消息
func (s *videoService) DeleteVideo(ctx context.Context, videoID, userID uint64) error {
	video, err := s.findOwned(ctx, videoID, userID, "只有作者才能删除视频")
	if err != nil {
		return err
	}

	err = s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		commentIDs, err := repos.CommentRepo.ListIDsByVideo(ctx, videoID)
		if err != nil {
			return err
		}
		if err := repos.LikeRepo.DeleteByTargets(ctx, model.TargetComment, commentIDs); err != nil {
			return err
		}
		if err := repos.LikeRepo.DeleteByTargets(ctx, model.TargetVideo, []uint64{videoID}); err != nil {
			return err
		}
		if err := repos.CommentRepo.DeleteByVideo(ctx, videoID); err != nil {
			return err
		}
		if err := repos.WatchHistoryRepo.DeleteByVideo(ctx, videoID); err != nil {
			return err
		}
		// 函数正常返回nil，UoW会帮我们提交事务，否则回滚整个事务
		return repos.VideoRepo.Delete(ctx, videoID)
	})
	if err != nil {
		return err
	}

	s.invalidateVideo(ctx, videoID)
	s.invalidateTagCounts(ctx)
	s.publishCleanup(ctx, videoID, video.VideoKey, video.ThumbnailKey)
	return nil
}

func (s *videoService) TogglePublish(ctx context.Context, videoID, userID uint64) (*model.Video, error) {
	video, err := s.findOwned(ctx, videoID, userID, "只有作者才能修改视频")
	if err != nil {
		return nil, err
	}
	video.IsPublished = !video.IsPublished
	if err := s.videoRepo.Update(ctx, video, "is_published"); err != nil {
		return nil, err
	}
	s.invalidateVideo(ctx, videoID)
	s.invalidateTagCounts(ctx)
	return video, nil
}

func (s *videoService) UpdateWatchProgress(ctx context.Context, userID uint64, in WatchUpdateInput) error {
	if in.VideoID == 0 {
		return apperror.BadRequest("videoId不能为空")
	}
	if in.WatchedSeconds < 0 {
		return apperror.BadRequest("观看时长不能为负数")
	}
	if _, err := findVisibleVideo(ctx, s.videoRepo, in.VideoID, userID); err != nil {
		return err
	}

	msg := WatchProgressMessage{
		UserID:         userID,
		VideoID:        in.VideoID,
		WatchedSeconds: in.WatchedSeconds,
		Completed:      in.Completed,
		WatchedAt:      s.now(),
	}
	if err := s.publisher.Publish(rabbitmq.QueueWatchProgress, msg); err != nil {
		logger.Log.WithError(err).
			WithField("user_id", userID).
			WithField("video_id", in.VideoID).
			Error("观看进度消息投递失败")
		return apperror.Internal("系统繁忙，请稍后再试")
	}
	return nil
}

func (s *videoService) invalidateVideo(ctx context.Context, videoID uint64) {
	if err := s.videoRepo.DeleteVideoCache(ctx, videoID); err != nil {
		logger.Log.WithError(err).WithField("video_id", videoID).Warn("删除视频缓存失败")
	}
}

func (s *videoService) invalidateTagCounts(ctx context.Context) {
	if err := s.videoRepo.DeleteTagCountsCache(ctx); err != nil {
		logger.Log.WithError(err).Warn("删除标签统计缓存失败")
	}
}

// 媒体清理走消息队列，投递失败只记日志，对象存储里多一个孤儿文件不影响业务
func (s *videoService) publishCleanup(ctx context.Context, videoID uint64, keys ...string) {
	var objectKeys []string
	for _, k := range keys {
		if k != "" {
			objectKeys = append(objectKeys, k)
		}
	}
	if len(objectKeys) == 0 {
		return
	}
	msg := MediaCleanupMessage{VideoID: videoID, ObjectKeys: objectKeys}
	if err := s.publisher.Publish(rabbitmq.QueueMediaCleanup, msg); err != nil {
		logger.Log.WithError(err).WithField("video_id", videoID).WithField("object_keys", objectKeys).
			Error("媒体清理消息投递失败，需人工清理")
	}
}

// 发布流程中途失败时同步删除已经上传的对象
// publishTags 没给标签时用简介里的#话题
func publishTags(tags []string, description string) []string {
	if normalized := recommend.NormalizeTags(tags); len(normalized) > 0 {
		return normalized
	}
	return recommend.HashtagTags(description)
}

func (s *videoService) removeObjects(ctx context.Context, keys ...string) {
	for _, k := range keys {
		if err := s.media.Remove(ctx, k); err != nil {
			logger.Log.WithError(err).WithField("object_key", k).Warn("删除已上传的媒体对象失败")
		}
	}
}
