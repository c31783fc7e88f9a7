package service

import (
	"context"

	"YourTube/internal/apperror"
	"YourTube/internal/dto"
	"YourTube/internal/model"
	"YourTube/internal/repository"
	"YourTube/pkg/logger"
)

type SubscriptionService interface {
	// ToggleSubscription 返回切换后的状态，true表示已订阅
	ToggleSubscription(ctx context.Context, subscriberID, channelID uint64) (bool, error)
	GetChannelSubscribers(ctx context.Context, channelID uint64) (*dto.SubscriberList, error)
	GetSubscribedChannels(ctx context.Context, subscriberID uint64) (*dto.ChannelList, error)
	GetSubscriptionStatus(ctx context.Context, subscriberID, channelID uint64) (*dto.SubscriptionStatus, error)
}

type subscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository, userRepo repository.UserRepository) SubscriptionService {
	return &subscriptionService{subRepo: subRepo, userRepo: userRepo}
}

// 切换订阅：1、不能订阅自己 2、频道必须存在 3、删掉了就是取消订阅，否则新建
func (s *subscriptionService) ToggleSubscription(ctx context.Context, subscriberID, channelID uint64) (bool, error) {
	if subscriberID == channelID {
		return false, apperror.BadRequest("不能订阅自己的频道")
	}
	if _, err := s.userRepo.FindByID(ctx, channelID); err != nil {
		return false, notFoundOr(err, "频道不存在")
	}

	removed, err := s.subRepo.Delete(ctx, subscriberID, channelID)
	if err != nil {
		return false, err
	}
	if removed > 0 {
		return false, nil
	}
	sub := &model.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		if apperror.IsDuplicateKey(err) {
			return true, nil
		}
		return false, err
	}
	logger.Log.WithField("subscriber_id", subscriberID).WithField("channel_id", channelID).Info("订阅成功")
	return true, nil
}

func (s *subscriptionService) GetChannelSubscribers(ctx context.Context, channelID uint64) (*dto.SubscriberList, error) {
	if _, err := s.userRepo.FindByID(ctx, channelID); err != nil {
		return nil, notFoundOr(err, "频道不存在")
	}
	users, err := s.subRepo.ListSubscribers(ctx, channelID)
	if err != nil {
		return nil, err
	}
	subscribers := dto.ToOwnerInfos(users)
	return &dto.SubscriberList{Subscribers: subscribers, SubscribersCount: len(subscribers)}, nil
}

func (s *subscriptionService) GetSubscribedChannels(ctx context.Context, subscriberID uint64) (*dto.ChannelList, error) {
	if _, err := s.userRepo.FindByID(ctx, subscriberID); err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	users, err := s.subRepo.ListChannels(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	channels := dto.ToOwnerInfos(users)
	return &dto.ChannelList{Channels: channels, ChannelsCount: len(channels)}, nil
}

func (s *subscriptionService) GetSubscriptionStatus(ctx context.Context, subscriberID, channelID uint64) (*dto.SubscriptionStatus, error) {
	isSubscribed, err := s.subRepo.Exists(ctx, subscriberID, channelID)
	if err != nil {
		return nil, err
	}
	count, err := s.subRepo.CountSubscribers(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionStatus{IsSubscribed: isSubscribed, SubscribersCount: count}, nil
}
