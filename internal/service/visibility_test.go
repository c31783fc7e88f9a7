package service

import (
	"context"
	"net/http"
	"testing"

	"YourTube/internal/data"
	"YourTube/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftVideo(id, owner uint64) *model.Video {
	v := publishedVideo(id, owner)
	v.IsPublished = false
	return v
}

// 未发布的视频对作者以外的人和不存在一样：评论、点赞、加入播放列表、上报进度都返回404
func TestDraftVideoHiddenFromOthers(t *testing.T) {
	const author, stranger = 7, 9
	ctx := context.Background()

	newComments := func() CommentService {
		comments := newFakeCommentRepo()
		likes := newFakeLikeRepo()
		uow := &fakeUnitOfWork{repos: data.TransactionalRepositories{CommentRepo: comments, LikeRepo: likes}}
		return NewCommentService(comments, newFakeVideoRepo(draftVideo(1, author)), likes, uow)
	}
	newLikes := func() LikeService {
		return NewLikeService(newFakeLikeRepo(), newFakeVideoRepo(draftVideo(1, author)), newFakeCommentRepo(), newFakeTweetRepo())
	}

	tests := []struct {
		name string
		call func(viewerID uint64) error
	}{
		{name: "详情", call: func(viewerID uint64) error {
			_, err := newVideoFixture(draftVideo(1, author)).svc.GetVideoByID(ctx, 1, viewerID)
			return err
		}},
		{name: "评论列表", call: func(viewerID uint64) error {
			_, err := newComments().GetVideoComments(ctx, 1, viewerID, 1, 10)
			return err
		}},
		{name: "发表评论", call: func(viewerID uint64) error {
			_, err := newComments().AddComment(ctx, 1, viewerID, "hello")
			return err
		}},
		{name: "点赞", call: func(viewerID uint64) error {
			_, err := newLikes().ToggleVideoLike(ctx, viewerID, 1)
			return err
		}},
		{name: "点赞状态", call: func(viewerID uint64) error {
			_, err := newLikes().GetVideoLikeStatus(ctx, viewerID, 1)
			return err
		}},
		{name: "加入播放列表", call: func(viewerID uint64) error {
			svc := NewPlaylistService(newFakePlaylistRepo(), newFakeVideoRepo(draftVideo(1, author)), newFakeUserRepo())
			playlist, err := svc.CreatePlaylist(ctx, viewerID, "later", "watch later")
			require.NoError(t, err)
			_, err = svc.AddVideo(ctx, playlist.ID, 1, viewerID)
			return err
		}},
		{name: "观看进度", call: func(viewerID uint64) error {
			return newVideoFixture(draftVideo(1, author)).svc.UpdateWatchProgress(ctx, viewerID, WatchUpdateInput{VideoID: 1, WatchedSeconds: 30})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.call(author))
			appErr := requireAppError(t, tt.call(stranger), http.StatusNotFound)
			assert.Equal(t, "视频不存在", appErr.Message)
			// 匿名用户也看不到
			requireAppError(t, tt.call(0), http.StatusNotFound)
		})
	}
}

func TestPlaylistDetailSkipsOthersDrafts(t *testing.T) {
	ctx := context.Background()
	svc, playlists, videos := newTestPlaylistService()
	videos.videos[4] = draftVideo(4, 8)

	created, err := svc.CreatePlaylist(ctx, 7, "mixed", "drafts and more")
	require.NoError(t, err)
	for _, id := range []uint64{1, 4} {
		_, err = svc.AddVideo(ctx, created.ID, id, 7)
		if id == 4 {
			// 作者7加不了别人的草稿
			requireAppError(t, err, http.StatusNotFound)
			continue
		}
		require.NoError(t, err)
	}
	// 视频发布后被加入，之后又被作者撤回
	playlists.playlists[created.ID].VideoIDs = append(playlists.playlists[created.ID].VideoIDs, 4)

	detail, err := svc.GetPlaylistByID(ctx, created.ID, 7)
	require.NoError(t, err)
	require.Len(t, detail.Videos, 1)
	assert.Equal(t, uint64(1), detail.Videos[0].ID)

	detail, err = svc.GetPlaylistByID(ctx, created.ID, 8)
	require.NoError(t, err)
	require.Len(t, detail.Videos, 2)
	assert.Equal(t, 2, detail.TotalVideos)
}
