package service

import (
	"context"

	"YourTube/internal/apperror"
	"YourTube/internal/dto"
	"YourTube/internal/model"
	"YourTube/internal/repository"
	"YourTube/pkg/logger"
)

// 点赞是“读-写”两步的切换，没有乐观锁，并发的两次切换可能互相覆盖，唯一索引保证不会出现重复行
type LikeService interface {
	ToggleVideoLike(ctx context.Context, userID, videoID uint64) (bool, error)
	ToggleCommentLike(ctx context.Context, userID, commentID uint64) (bool, error)
	ToggleTweetLike(ctx context.Context, userID, tweetID uint64) (bool, error)
	GetVideoLikeStatus(ctx context.Context, userID, videoID uint64) (*dto.LikeStatus, error)
	GetLikedVideos(ctx context.Context, userID uint64, page, limit int) (dto.Page[dto.VideoResponse], error)
}

type likeService struct {
	likeRepo    repository.LikeRepository
	videoRepo   repository.VideoRepository
	commentRepo repository.CommentRepository
	tweetRepo   repository.TweetRepository
}

func NewLikeService(likeRepo repository.LikeRepository, videoRepo repository.VideoRepository, commentRepo repository.CommentRepository, tweetRepo repository.TweetRepository) LikeService {
	return &likeService{
		likeRepo:    likeRepo,
		videoRepo:   videoRepo,
		commentRepo: commentRepo,
		tweetRepo:   tweetRepo,
	}
}

func (s *likeService) ToggleVideoLike(ctx context.Context, userID, videoID uint64) (bool, error) {
	if _, err := findVisibleVideo(ctx, s.videoRepo, videoID, userID); err != nil {
		return false, err
	}
	return s.toggle(ctx, userID, model.TargetVideo, videoID)
}

func (s *likeService) ToggleCommentLike(ctx context.Context, userID, commentID uint64) (bool, error) {
	if _, err := s.commentRepo.FindByID(ctx, commentID); err != nil {
		return false, notFoundOr(err, "评论不存在")
	}
	return s.toggle(ctx, userID, model.TargetComment, commentID)
}

func (s *likeService) ToggleTweetLike(ctx context.Context, userID, tweetID uint64) (bool, error) {
	if _, err := s.tweetRepo.FindByID(ctx, tweetID); err != nil {
		return false, notFoundOr(err, "推文不存在")
	}
	return s.toggle(ctx, userID, model.TargetTweet, tweetID)
}

// 切换点赞：1、先尝试删除，删掉了说明之前点过赞，结果是“未点赞” 2、否则插入一条 3、插入撞上唯一索引说明并发请求已经点过了
func (s *likeService) toggle(ctx context.Context, userID uint64, targetType string, targetID uint64) (bool, error) {
	logCtx := logger.Log.WithField("user_id", userID).WithField("target_type", targetType).WithField("target_id", targetID)

	removed, err := s.likeRepo.Delete(ctx, userID, targetType, targetID)
	if err != nil {
		return false, err
	}
	if removed > 0 {
		logCtx.Info("取消点赞成功")
		return false, nil
	}

	like := &model.Like{LikedBy: userID, TargetType: targetType, TargetID: targetID}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		if apperror.IsDuplicateKey(err) {
			logCtx.Warn("重复点赞，视为已点赞")
			return true, nil
		}
		return false, err
	}
	logCtx.Info("点赞成功")
	return true, nil
}

func (s *likeService) GetVideoLikeStatus(ctx context.Context, userID, videoID uint64) (*dto.LikeStatus, error) {
	if _, err := findVisibleVideo(ctx, s.videoRepo, videoID, userID); err != nil {
		return nil, err
	}
	isLiked, err := s.likeRepo.Exists(ctx, userID, model.TargetVideo, videoID)
	if err != nil {
		return nil, err
	}
	count, err := s.likeRepo.Count(ctx, model.TargetVideo, videoID)
	if err != nil {
		return nil, err
	}
	return &dto.LikeStatus{IsLiked: isLiked, LikesCount: count}, nil
}

func (s *likeService) GetLikedVideos(ctx context.Context, userID uint64, page, limit int) (dto.Page[dto.VideoResponse], error) {
	p := dto.NewPagination(page, limit)
	videos, total, err := s.videoRepo.ListLikedBy(ctx, userID, p.Offset(), p.Limit)
	if err != nil {
		return dto.Page[dto.VideoResponse]{}, err
	}
	return dto.NewPage(dto.ToVideoResponses(videos), total, p.Page, p.Limit), nil
}
