package repository

import (
	"context"

	"YourTube/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) error
	Delete(ctx context.Context, subscriberID, channelID uint64) (int64, error)
	Exists(ctx context.Context, subscriberID, channelID uint64) (bool, error)
	CountSubscribers(ctx context.Context, channelID uint64) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriberID uint64) (int64, error)
	// 最新订阅的在前
	ListSubscribers(ctx context.Context, channelID uint64) ([]model.User, error)
	ListChannels(ctx context.Context, subscriberID uint64) ([]model.User, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepository) Delete(ctx context.Context, subscriberID, channelID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&model.Subscription{})
	return result.RowsAffected, result.Error
}

func (r *subscriptionRepository) Exists(ctx context.Context, subscriberID, channelID uint64) (bool, error) {
	if subscriberID == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Count(&count).Error
	return count > 0, err
}

func (r *subscriptionRepository) CountSubscribers(ctx context.Context, channelID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).Where("channel_id = ?", channelID).Count(&count).Error
	return count, err
}

func (r *subscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).Where("subscriber_id = ?", subscriberID).Count(&count).Error
	return count, err
}

func (r *subscriptionRepository) ListSubscribers(ctx context.Context, channelID uint64) ([]model.User, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).
		Preload("Subscriber").
		Where("channel_id = ?", channelID).
		Order("created_at desc").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(subs))
	for _, s := range subs {
		// 被软删除的用户Preload不出来
		if s.Subscriber.ID != 0 {
			users = append(users, s.Subscriber)
		}
	}
	return users, nil
}

func (r *subscriptionRepository) ListChannels(ctx context.Context, subscriberID uint64) ([]model.User, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).
		Preload("Channel").
		Where("subscriber_id = ?", subscriberID).
		Order("created_at desc").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(subs))
	for _, s := range subs {
		if s.Channel.ID != 0 {
			users = append(users, s.Channel)
		}
	}
	return users, nil
}
