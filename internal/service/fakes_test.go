package service

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"YourTube/internal/apperror"
	"YourTube/internal/data"
	"YourTube/internal/model"
	"YourTube/internal/repository"
	"YourTube/pkg/storage"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 内存版的repository，只实现测试用到的方法，其余方法走嵌入的nil接口，被调用就会panic

var errDuplicate = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

func requireAppError(t *testing.T, err error, code int) *apperror.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr), "期望业务错误，实际是: %v", err)
	require.Equal(t, code, appErr.StatusCode, appErr.Message)
	return appErr
}

type fakeUserRepo struct {
	repository.UserRepository
	users  map[uint64]*model.User
	nextID uint64
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uint64]*model.User{}}
	for _, u := range users {
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return errDuplicate
		}
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint64) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*model.User, error) {
	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// Update 和真实实现一样只写指定的列
func (r *fakeUserRepo) Update(_ context.Context, u *model.User, columns ...string) error {
	stored, ok := r.users[u.ID]
	if !ok {
		return nil
	}
	for _, c := range columns {
		switch c {
		case "refresh_token":
			stored.RefreshToken = u.RefreshToken
		case "password":
			stored.Password = u.Password
		case "full_name":
			stored.FullName = u.FullName
		case "email":
			stored.Email = u.Email
		case "avatar":
			stored.Avatar = u.Avatar
		case "cover_image":
			stored.CoverImage = u.CoverImage
		case "preferred_tags":
			stored.PreferredTags = u.PreferredTags
		case "has_completed_onboarding":
			stored.HasCompletedOnboarding = u.HasCompletedOnboarding
		}
	}
	return nil
}

type fakeVideoRepo struct {
	repository.VideoRepository
	videos map[uint64]*model.Video
	nextID uint64

	cache        map[uint64]*model.Video
	cacheErr     error
	updateErr    error
	tagCounts    map[string]int64
	findCalls    int
	cacheDeletes int
	tagDeletes   int
}

func newFakeVideoRepo(videos ...*model.Video) *fakeVideoRepo {
	r := &fakeVideoRepo{videos: map[uint64]*model.Video{}, cache: map[uint64]*model.Video{}}
	for _, v := range videos {
		if v.ID > r.nextID {
			r.nextID = v.ID
		}
		r.videos[v.ID] = v
	}
	return r
}

func (r *fakeVideoRepo) WithTx(*gorm.DB) repository.VideoRepository { return r }

func (r *fakeVideoRepo) Create(_ context.Context, v *model.Video) error {
	r.nextID++
	v.ID = r.nextID
	cp := *v
	r.videos[v.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) FindByID(_ context.Context, id uint64) (*model.Video, error) {
	r.findCalls++
	v, ok := r.videos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVideoRepo) FindByIDs(_ context.Context, ids []uint64) ([]model.Video, error) {
	var out []model.Video
	for _, id := range ids {
		if v, ok := r.videos[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) sorted() []model.Video {
	out := make([]model.Video, 0, len(r.videos))
	for _, v := range r.videos {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeVideoRepo) ListPublished(context.Context) ([]model.Video, error) {
	var out []model.Video
	for _, v := range r.sorted() {
		if v.IsPublished {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) ListPublishedTags(ctx context.Context) ([][]string, error) {
	videos, _ := r.ListPublished(ctx)
	out := make([][]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.Tags)
	}
	return out, nil
}

func (r *fakeVideoRepo) Update(_ context.Context, v *model.Video, _ ...string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	cp := *v
	r.videos[v.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) Delete(_ context.Context, id uint64) error {
	delete(r.videos, id)
	return nil
}

func (r *fakeVideoRepo) IncrementViews(_ context.Context, id uint64) (uint64, error) {
	v, ok := r.videos[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	v.Views++
	return v.Views, nil
}

func (r *fakeVideoRepo) ListIDsByOwner(_ context.Context, owner uint64, since *time.Time) ([]uint64, error) {
	var ids []uint64
	for _, v := range r.sorted() {
		if v.OwnerID == owner && (since == nil || !v.CreatedAt.Before(*since)) {
			ids = append(ids, v.ID)
		}
	}
	return ids, nil
}

func (r *fakeVideoRepo) SumViews(_ context.Context, owner uint64, since *time.Time) (uint64, error) {
	var total uint64
	for _, v := range r.videos {
		if v.OwnerID == owner && (since == nil || !v.CreatedAt.Before(*since)) {
			total += v.Views
		}
	}
	return total, nil
}

func (r *fakeVideoRepo) TopByViews(_ context.Context, owner uint64) (*model.Video, error) {
	var top *model.Video
	for _, v := range r.sorted() {
		v := v
		if v.OwnerID == owner && (top == nil || v.Views > top.Views) {
			top = &v
		}
	}
	return top, nil
}

func (r *fakeVideoRepo) GetVideoCache(_ context.Context, id uint64) (*model.Video, error) {
	if r.cacheErr != nil {
		return nil, r.cacheErr
	}
	return r.cache[id], nil
}

func (r *fakeVideoRepo) SetVideoCache(_ context.Context, v *model.Video) error {
	r.cache[v.ID] = v
	return nil
}

func (r *fakeVideoRepo) DeleteVideoCache(_ context.Context, id uint64) error {
	r.cacheDeletes++
	delete(r.cache, id)
	return nil
}

func (r *fakeVideoRepo) GetTagCountsCache(context.Context) (map[string]int64, error) {
	return r.tagCounts, nil
}

func (r *fakeVideoRepo) SetTagCountsCache(_ context.Context, counts map[string]int64) error {
	r.tagCounts = counts
	return nil
}

func (r *fakeVideoRepo) DeleteTagCountsCache(context.Context) error {
	r.tagDeletes++
	r.tagCounts = nil
	return nil
}

type likeKey struct {
	by     uint64
	target string
	id     uint64
}

type fakeLikeRepo struct {
	repository.LikeRepository
	likes map[likeKey]time.Time
	// raceOnCreate 模拟并发：Delete时还没有，Create时已经被别的请求插入
	raceOnCreate bool
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: map[likeKey]time.Time{}}
}

func (r *fakeLikeRepo) WithTx(*gorm.DB) repository.LikeRepository { return r }

func (r *fakeLikeRepo) add(by uint64, target string, id uint64) {
	r.likes[likeKey{by, target, id}] = time.Now()
}

func (r *fakeLikeRepo) Create(_ context.Context, l *model.Like) error {
	k := likeKey{l.LikedBy, l.TargetType, l.TargetID}
	if _, ok := r.likes[k]; ok || r.raceOnCreate {
		return errDuplicate
	}
	r.likes[k] = time.Now()
	return nil
}

func (r *fakeLikeRepo) Delete(_ context.Context, by uint64, target string, id uint64) (int64, error) {
	k := likeKey{by, target, id}
	if _, ok := r.likes[k]; !ok {
		return 0, nil
	}
	delete(r.likes, k)
	return 1, nil
}

func (r *fakeLikeRepo) Exists(_ context.Context, by uint64, target string, id uint64) (bool, error) {
	_, ok := r.likes[likeKey{by, target, id}]
	return ok, nil
}

func (r *fakeLikeRepo) Count(_ context.Context, target string, id uint64) (int64, error) {
	var n int64
	for k := range r.likes {
		if k.target == target && k.id == id {
			n++
		}
	}
	return n, nil
}

func (r *fakeLikeRepo) CountByTargets(ctx context.Context, target string, ids []uint64) (map[uint64]int64, error) {
	out := map[uint64]int64{}
	for _, id := range ids {
		n, _ := r.Count(ctx, target, id)
		if n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (r *fakeLikeRepo) CountTotal(_ context.Context, target string, ids []uint64, since *time.Time) (int64, error) {
	set := map[uint64]bool{}
	for _, id := range ids {
		set[id] = true
	}
	var n int64
	for k, at := range r.likes {
		if k.target == target && set[k.id] && (since == nil || !at.Before(*since)) {
			n++
		}
	}
	return n, nil
}

func (r *fakeLikeRepo) LikedTargets(_ context.Context, by uint64, target string, ids []uint64) (map[uint64]bool, error) {
	out := map[uint64]bool{}
	for _, id := range ids {
		if _, ok := r.likes[likeKey{by, target, id}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r *fakeLikeRepo) DeleteByTargets(_ context.Context, target string, ids []uint64) error {
	for _, id := range ids {
		for k := range r.likes {
			if k.target == target && k.id == id {
				delete(r.likes, k)
			}
		}
	}
	return nil
}

type fakeCommentRepo struct {
	repository.CommentRepository
	comments map[uint64]*model.Comment
	nextID   uint64
}

func newFakeCommentRepo(comments ...*model.Comment) *fakeCommentRepo {
	r := &fakeCommentRepo{comments: map[uint64]*model.Comment{}}
	for _, c := range comments {
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
		r.comments[c.ID] = c
	}
	return r
}

func (r *fakeCommentRepo) WithTx(*gorm.DB) repository.CommentRepository { return r }

func (r *fakeCommentRepo) Create(_ context.Context, c *model.Comment) error {
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) FindByID(_ context.Context, id uint64) (*model.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) ListByVideo(_ context.Context, videoID uint64, offset, limit int) ([]model.Comment, int64, error) {
	var all []model.Comment
	for _, c := range r.comments {
		if c.VideoID == videoID {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Comment{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeCommentRepo) ListIDsByVideo(_ context.Context, videoID uint64) ([]uint64, error) {
	var ids []uint64
	for id, c := range r.comments {
		if c.VideoID == videoID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeCommentRepo) Update(_ context.Context, c *model.Comment, _ ...string) error {
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id uint64) error {
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) DeleteByVideo(_ context.Context, videoID uint64) error {
	for id, c := range r.comments {
		if c.VideoID == videoID {
			delete(r.comments, id)
		}
	}
	return nil
}

func (r *fakeCommentRepo) CountByVideos(_ context.Context, ids []uint64) (map[uint64]int64, error) {
	out := map[uint64]int64{}
	for _, c := range r.comments {
		for _, id := range ids {
			if c.VideoID == id {
				out[id]++
			}
		}
	}
	return out, nil
}

type fakeWatchRepo struct {
	repository.WatchHistoryRepository
	rows []model.WatchHistory
	// lastLimit 记录ListRecent收到的limit
	lastLimit int
}

func (r *fakeWatchRepo) WithTx(*gorm.DB) repository.WatchHistoryRepository { return r }

func (r *fakeWatchRepo) ListRecent(_ context.Context, userID uint64, limit int) ([]model.WatchHistory, error) {
	r.lastLimit = limit
	var out []model.WatchHistory
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeWatchRepo) Delete(_ context.Context, userID, videoID uint64) (int64, error) {
	var n int64
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.UserID == userID && row.VideoID == videoID {
			n++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return n, nil
}

func (r *fakeWatchRepo) DeleteByUser(_ context.Context, userID uint64) error {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.UserID != userID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *fakeWatchRepo) DeleteByVideo(_ context.Context, videoID uint64) error {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.VideoID != videoID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

type fakeSubRepo struct {
	repository.SubscriptionRepository
	// subs[订阅者][频道]
	subs map[uint64]map[uint64]bool
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{subs: map[uint64]map[uint64]bool{}}
}

func (r *fakeSubRepo) Create(_ context.Context, s *model.Subscription) error {
	if r.subs[s.SubscriberID][s.ChannelID] {
		return errDuplicate
	}
	if r.subs[s.SubscriberID] == nil {
		r.subs[s.SubscriberID] = map[uint64]bool{}
	}
	r.subs[s.SubscriberID][s.ChannelID] = true
	return nil
}

func (r *fakeSubRepo) Delete(_ context.Context, subscriber, channel uint64) (int64, error) {
	if !r.subs[subscriber][channel] {
		return 0, nil
	}
	delete(r.subs[subscriber], channel)
	return 1, nil
}

func (r *fakeSubRepo) Exists(_ context.Context, subscriber, channel uint64) (bool, error) {
	return r.subs[subscriber][channel], nil
}

func (r *fakeSubRepo) CountSubscribers(_ context.Context, channel uint64) (int64, error) {
	var n int64
	for _, channels := range r.subs {
		if channels[channel] {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubRepo) CountSubscribedTo(_ context.Context, subscriber uint64) (int64, error) {
	return int64(len(r.subs[subscriber])), nil
}

type fakePlaylistRepo struct {
	repository.PlaylistRepository
	playlists map[uint64]*model.Playlist
	nextID    uint64
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{playlists: map[uint64]*model.Playlist{}}
}

func (r *fakePlaylistRepo) Create(_ context.Context, p *model.Playlist) error {
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.playlists[p.ID] = &cp
	return nil
}

func (r *fakePlaylistRepo) FindByID(_ context.Context, id uint64) (*model.Playlist, error) {
	p, ok := r.playlists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.VideoIDs = append([]uint64(nil), p.VideoIDs...)
	return &cp, nil
}

func (r *fakePlaylistRepo) ListByOwner(_ context.Context, owner uint64) ([]model.Playlist, error) {
	var out []model.Playlist
	for id := uint64(1); id <= r.nextID; id++ {
		if p, ok := r.playlists[id]; ok && p.OwnerID == owner {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlaylistRepo) Update(_ context.Context, p *model.Playlist, _ ...string) error {
	cp := *p
	r.playlists[p.ID] = &cp
	return nil
}

func (r *fakePlaylistRepo) Delete(_ context.Context, id uint64) error {
	delete(r.playlists, id)
	return nil
}

type fakeTweetRepo struct {
	repository.TweetRepository
	tweets map[uint64]*model.Tweet
	nextID uint64
}

func newFakeTweetRepo() *fakeTweetRepo {
	return &fakeTweetRepo{tweets: map[uint64]*model.Tweet{}}
}

func (r *fakeTweetRepo) WithTx(*gorm.DB) repository.TweetRepository { return r }

func (r *fakeTweetRepo) Create(_ context.Context, tw *model.Tweet) error {
	r.nextID++
	tw.ID = r.nextID
	cp := *tw
	r.tweets[tw.ID] = &cp
	return nil
}

func (r *fakeTweetRepo) FindByID(_ context.Context, id uint64) (*model.Tweet, error) {
	tw, ok := r.tweets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *tw
	return &cp, nil
}

func (r *fakeTweetRepo) ListByOwner(_ context.Context, owner uint64) ([]model.Tweet, error) {
	var out []model.Tweet
	for id := r.nextID; id >= 1; id-- {
		if tw, ok := r.tweets[id]; ok && tw.OwnerID == owner {
			out = append(out, *tw)
		}
	}
	return out, nil
}

func (r *fakeTweetRepo) Update(_ context.Context, tw *model.Tweet, _ ...string) error {
	cp := *tw
	r.tweets[tw.ID] = &cp
	return nil
}

func (r *fakeTweetRepo) Delete(_ context.Context, id uint64) error {
	delete(r.tweets, id)
	return nil
}

// fakeUnitOfWork 不开事务，直接把同一组repo交给回调
type fakeUnitOfWork struct {
	repos data.TransactionalRepositories
	calls int
}

func (u *fakeUnitOfWork) Execute(_ context.Context, fn func(repos *data.TransactionalRepositories) error) error {
	u.calls++
	return fn(&u.repos)
}

type fakeMedia struct {
	uploaded []string
	removed  []string
	// failOn 上传这些本地路径时返回错误
	failOn map[string]bool
}

func (m *fakeMedia) Upload(_ context.Context, localPath string, kind storage.Kind) (*storage.UploadResult, error) {
	if m.failOn[localPath] {
		return nil, errors.New("upload failed")
	}
	m.uploaded = append(m.uploaded, localPath)
	key := string(kind) + "/" + filepath.Base(localPath)
	res := &storage.UploadResult{URL: "http://media.local/" + key, ObjectKey: key}
	if kind == storage.KindVideo {
		res.Duration = 120
	}
	return res, nil
}

func (m *fakeMedia) Remove(_ context.Context, objectKey string) error {
	m.removed = append(m.removed, objectKey)
	return nil
}

type publishedMessage struct {
	queue string
	msg   interface{}
}

type fakePublisher struct {
	messages []publishedMessage
	err      error
}

func (p *fakePublisher) Publish(queue string, msg interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedMessage{queue: queue, msg: msg})
	return nil
}
