package service

import (
	"context"
	"testing"
	"time"

	"YourTube/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageViews(t *testing.T) {
	tests := []struct {
		views  uint64
		videos int64
		want   uint64
	}{
		{views: 0, videos: 0, want: 0},
		{views: 10, videos: 0, want: 0},
		{views: 10, videos: 4, want: 3},
		{views: 10, videos: 3, want: 3},
		{views: 11, videos: 2, want: 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, averageViews(tt.views, tt.videos), "%d/%d", tt.views, tt.videos)
	}
}

func TestGetChannelStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	old := publishedVideo(1, 7)
	old.Views = 100
	old.CreatedAt = now.Add(-60 * 24 * time.Hour)
	recent := publishedVideo(2, 7)
	recent.Views = 5
	recent.CreatedAt = now.Add(-24 * time.Hour)
	other := publishedVideo(3, 8)
	other.Views = 1000

	videos := newFakeVideoRepo(old, recent, other)
	likes := newFakeLikeRepo()
	likes.add(9, model.TargetVideo, 1)
	likes.add(9, model.TargetVideo, 3)
	subs := newFakeSubRepo()
	require.NoError(t, subs.Create(ctx, &model.Subscription{SubscriberID: 9, ChannelID: 7}))
	require.NoError(t, subs.Create(ctx, &model.Subscription{SubscriberID: 7, ChannelID: 8}))

	svc := NewDashboardService(videos, likes, newFakeCommentRepo(), subs).(*dashboardService)
	svc.now = func() time.Time { return now }

	stats, err := svc.GetChannelStats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalVideos)
	assert.Equal(t, uint64(105), stats.TotalViews)
	assert.Equal(t, uint64(53), stats.AverageViews)
	assert.Equal(t, int64(1), stats.TotalLikes)
	assert.Equal(t, int64(1), stats.TotalSubscribers)
	assert.Equal(t, int64(1), stats.TotalSubscribedTo)
	assert.Equal(t, int64(1), stats.RecentVideos)
	assert.Equal(t, uint64(5), stats.RecentViews)
	require.NotNil(t, stats.TopVideo)
	assert.Equal(t, uint64(1), stats.TopVideo.ID)
}

func TestGetChannelStatsEmptyChannel(t *testing.T) {
	svc := NewDashboardService(newFakeVideoRepo(), newFakeLikeRepo(), newFakeCommentRepo(), newFakeSubRepo())
	stats, err := svc.GetChannelStats(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalVideos)
	assert.Zero(t, stats.AverageViews)
	assert.Nil(t, stats.TopVideo)
}
