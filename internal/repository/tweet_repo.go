package repository

import (
	"context"

	"YourTube/internal/model"

	"gorm.io/gorm"
)

type TweetRepository interface {
	Create(ctx context.Context, tweet *model.Tweet) error
	FindByID(ctx context.Context, tweetID uint64) (*model.Tweet, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Tweet, error)
	Update(ctx context.Context, tweet *model.Tweet, columns ...string) error
	Delete(ctx context.Context, tweetID uint64) error

	WithTx(tx *gorm.DB) TweetRepository
}

type tweetRepository struct {
	db *gorm.DB
}

func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) WithTx(tx *gorm.DB) TweetRepository {
	return &tweetRepository{db: tx}
}

func (r *tweetRepository) Create(ctx context.Context, tweet *model.Tweet) error {
	return r.db.WithContext(ctx).Create(tweet).Error
}

func (r *tweetRepository) FindByID(ctx context.Context, tweetID uint64) (*model.Tweet, error) {
	var t model.Tweet
	if err := r.db.WithContext(ctx).Preload("Owner").First(&t, tweetID).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tweetRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Tweet, error) {
	var tweets []model.Tweet
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&tweets).Error
	return tweets, err
}

func (r *tweetRepository) Update(ctx context.Context, tweet *model.Tweet, columns ...string) error {
	return r.db.WithContext(ctx).Model(tweet).Select(columns).Updates(tweet).Error
}

func (r *tweetRepository) Delete(ctx context.Context, tweetID uint64) error {
	return r.db.WithContext(ctx).Delete(&model.Tweet{}, tweetID).Error
}
