package service

import "time"

// WatchProgressMessage 观看进度事件，由consumer合并进watch_histories表
type WatchProgressMessage struct {
	UserID         uint64    `json:"user_id"`
	VideoID        uint64    `json:"video_id"`
	WatchedSeconds float64   `json:"watched_seconds"`
	Completed      bool      `json:"completed"`
	WatchedAt      time.Time `json:"watched_at"`
}

// MediaCleanupMessage 视频删除后需要从对象存储里移除的对象
type MediaCleanupMessage struct {
	VideoID    uint64   `json:"video_id"`
	ObjectKeys []string `json:"object_keys"`
}
