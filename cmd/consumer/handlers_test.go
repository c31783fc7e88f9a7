package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"YourTube/internal/repository"
	"YourTube/pkg/storage"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWatchRepo struct {
	repository.WatchHistoryRepository
	err error
	got []repository.WatchProgress
}

func (f *fakeWatchRepo) Upsert(_ context.Context, p repository.WatchProgress) error {
	f.got = append(f.got, p)
	return f.err
}

type fakeHost struct {
	storage.MediaHost
	fail    map[string]bool
	removed []string
}

func (f *fakeHost) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	if f.fail[key] {
		return errors.New("remove failed")
	}
	return nil
}

type fakeDelivery struct {
	acked, nacked, requeued bool
}

func (d *fakeDelivery) Ack(bool) error { d.acked = true; return nil }
func (d *fakeDelivery) Nack(_ bool, requeue bool) error {
	d.nacked = true
	d.requeued = requeue
	return nil
}

func TestHandleWatchProgress(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		repoErr error
		want    outcome
		upserts int
	}{
		{name: "ok", body: `{"user_id":1,"video_id":2,"watched_seconds":30.5,"completed":true,"watched_at":"2026-10-15T12:00:00Z"}`, want: outcomeAck, upserts: 1},
		{name: "malformed json", body: `{"user_id":`, want: outcomeReject},
		{name: "missing ids", body: `{"user_id":1}`, want: outcomeReject},
		{name: "duplicate key", body: `{"user_id":1,"video_id":2}`, repoErr: &mysql.MySQLError{Number: 1062}, want: outcomeAck, upserts: 1},
		{name: "transient error", body: `{"user_id":1,"video_id":2}`, repoErr: errors.New("connection reset"), want: outcomeRequeue, upserts: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeWatchRepo{err: tt.repoErr}
			assert.Equal(t, tt.want, handleWatchProgress(context.Background(), repo, []byte(tt.body)))
			assert.Len(t, repo.got, tt.upserts)
		})
	}
}

func TestHandleWatchProgressFields(t *testing.T) {
	repo := &fakeWatchRepo{}
	body := `{"user_id":1,"video_id":2,"watched_seconds":30.5,"completed":true,"watched_at":"2026-10-15T12:00:00Z"}`
	require.Equal(t, outcomeAck, handleWatchProgress(context.Background(), repo, []byte(body)))
	require.Len(t, repo.got, 1)
	assert.Equal(t, repository.WatchProgress{
		UserID:         1,
		VideoID:        2,
		WatchedSeconds: 30.5,
		Completed:      true,
		WatchedAt:      time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}, repo.got[0])

	// 没带时间的消息用当前时间
	repo = &fakeWatchRepo{}
	require.Equal(t, outcomeAck, handleWatchProgress(context.Background(), repo, []byte(`{"user_id":1,"video_id":2}`)))
	assert.WithinDuration(t, time.Now(), repo.got[0].WatchedAt, time.Minute)
}

func TestHandleMediaCleanup(t *testing.T) {
	host := &fakeHost{fail: map[string]bool{"videos/a.mp4": true}}
	body := `{"video_id":7,"object_keys":["videos/a.mp4","images/b.png"]}`
	assert.Equal(t, outcomeAck, handleMediaCleanup(context.Background(), host, []byte(body)))
	assert.Equal(t, []string{"videos/a.mp4", "images/b.png"}, host.removed)

	assert.Equal(t, outcomeReject, handleMediaCleanup(context.Background(), host, []byte("nope")))
}

func TestSettle(t *testing.T) {
	d := &fakeDelivery{}
	settle(d, outcomeAck)
	assert.True(t, d.acked)
	assert.False(t, d.nacked)

	d = &fakeDelivery{}
	settle(d, outcomeReject)
	assert.True(t, d.nacked)
	assert.False(t, d.requeued)

	d = &fakeDelivery{}
	settle(d, outcomeRequeue)
	assert.True(t, d.nacked)
	assert.True(t, d.requeued)
}
