package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"YourTube/internal/apperror"
	"YourTube/internal/data"
	"YourTube/internal/dto"
	"YourTube/internal/model"
	"YourTube/internal/repository"
)

type TweetService interface {
	CreateTweet(ctx context.Context, userID uint64, content string) (*dto.TweetResponse, error)
	GetUserTweets(ctx context.Context, userID, viewerID uint64) ([]dto.TweetResponse, error)
	UpdateTweet(ctx context.Context, tweetID, userID uint64, content string) (*dto.TweetResponse, error)
	DeleteTweet(ctx context.Context, tweetID, userID uint64) error
}

type tweetService struct {
	tweetRepo repository.TweetRepository
	userRepo  repository.UserRepository
	likeRepo  repository.LikeRepository
	uow       data.UnitOfWork
}

func NewTweetService(tweetRepo repository.TweetRepository, userRepo repository.UserRepository, likeRepo repository.LikeRepository, uow data.UnitOfWork) TweetService {
	return &tweetService{
		tweetRepo: tweetRepo,
		userRepo:  userRepo,
		likeRepo:  likeRepo,
		uow:       uow,
	}
}

// 长度按字符数算，不按字节
func validateTweet(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperror.BadRequest("推文内容不能为空")
	}
	if utf8.RuneCountInString(content) > model.TweetMaxLength {
		return "", apperror.BadRequest("推文内容不能超过280个字符")
	}
	return content, nil
}

func (s *tweetService) CreateTweet(ctx context.Context, userID uint64, content string) (*dto.TweetResponse, error) {
	content, err := validateTweet(content)
	if err != nil {
		return nil, err
	}
	tweet := &model.Tweet{OwnerID: userID, Content: content}
	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, err
	}
	resp := dto.ToTweetResponse(tweet)
	return &resp, nil
}

func (s *tweetService) GetUserTweets(ctx context.Context, userID, viewerID uint64) ([]dto.TweetResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	tweets, err := s.tweetRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(tweets))
	for _, t := range tweets {
		ids = append(ids, t.ID)
	}
	counts, err := s.likeRepo.CountByTargets(ctx, model.TargetTweet, ids)
	if err != nil {
		return nil, err
	}
	liked, err := s.likeRepo.LikedTargets(ctx, viewerID, model.TargetTweet, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.TweetResponse, 0, len(tweets))
	for i := range tweets {
		resp := dto.ToTweetResponse(&tweets[i])
		resp.LikesCount = counts[tweets[i].ID]
		resp.IsLiked = liked[tweets[i].ID]
		out = append(out, resp)
	}
	return out, nil
}

func (s *tweetService) UpdateTweet(ctx context.Context, tweetID, userID uint64, content string) (*dto.TweetResponse, error) {
	content, err := validateTweet(content)
	if err != nil {
		return nil, err
	}
	tweet, err := s.tweetRepo.FindByID(ctx, tweetID)
	if err != nil {
		return nil, notFoundOr(err, "推文不存在")
	}
	if err := ensureOwner(tweet.OwnerID, userID, "只能修改自己的推文"); err != nil {
		return nil, err
	}
	tweet.Content = content
	if err := s.tweetRepo.Update(ctx, tweet, "content"); err != nil {
		return nil, err
	}
	resp := dto.ToTweetResponse(tweet)
	return &resp, nil
}

func (s *tweetService) DeleteTweet(ctx context.Context, tweetID, userID uint64) error {
	tweet, err := s.tweetRepo.FindByID(ctx, tweetID)
	if err != nil {
		return notFoundOr(err, "推文不存在")
	}
	if err := ensureOwner(tweet.OwnerID, userID, "只能删除自己的推文"); err != nil {
		return err
	}
	return s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		if err := repos.LikeRepo.DeleteByTargets(ctx, model.TargetTweet, []uint64{tweetID}); err != nil {
			return err
		}
		return repos.TweetRepo.Delete(ctx, tweetID)
	})
}
