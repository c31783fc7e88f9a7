package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"YourTube/internal/data"
	"YourTube/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTweetService() (TweetService, *fakeTweetRepo, *fakeLikeRepo) {
	author := &model.User{Username: "author"}
	author.ID = 7
	tweets := newFakeTweetRepo()
	likes := newFakeLikeRepo()
	uow := &fakeUnitOfWork{repos: data.TransactionalRepositories{TweetRepo: tweets, LikeRepo: likes}}
	return NewTweetService(tweets, newFakeUserRepo(author), likes, uow), tweets, likes
}

func TestTweetLength(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ok      bool
	}{
		{name: "空", content: "   ", ok: false},
		{name: "一个字符", content: "a", ok: true},
		{name: "280个汉字按字符计", content: strings.Repeat("字", 280), ok: true},
		{name: "281个字符", content: strings.Repeat("a", 281), ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestTweetService()
			_, err := svc.CreateTweet(context.Background(), 7, tt.content)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				requireAppError(t, err, http.StatusBadRequest)
			}
		})
	}
}

func TestTweetLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, tweets, likes := newTestTweetService()

	first, err := svc.CreateTweet(ctx, 7, "first")
	require.NoError(t, err)
	second, err := svc.CreateTweet(ctx, 7, "second")
	require.NoError(t, err)
	likes.add(9, model.TargetTweet, first.ID)

	list, err := svc.GetUserTweets(ctx, 7, 9)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, int64(1), list[1].LikesCount)
	assert.True(t, list[1].IsLiked)

	_, err = svc.UpdateTweet(ctx, first.ID, 9, "hijack")
	requireAppError(t, err, http.StatusForbidden)
	updated, err := svc.UpdateTweet(ctx, first.ID, 7, " edited ")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	require.NoError(t, svc.DeleteTweet(ctx, first.ID, 7))
	assert.NotContains(t, tweets.tweets, first.ID)
	assert.Empty(t, likes.likes)

	_, err = svc.GetUserTweets(ctx, 404, 9)
	requireAppError(t, err, http.StatusNotFound)
}
