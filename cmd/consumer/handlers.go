package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"YourTube/internal/repository"
	"YourTube/internal/service"
	"YourTube/pkg/logger"
	"YourTube/pkg/storage"

	"github.com/go-sql-driver/mysql"
)

// outcome 决定一条消息最终怎么确认
type outcome int

const (
	outcomeAck     outcome = iota
	outcomeReject          // 坏消息，直接丢弃
	outcomeRequeue         // 临时错误，重新入队重试
)

// acknowledger 是amqp.Delivery上确认相关的那两个方法
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(d acknowledger, o outcome) {
	var err error
	switch o {
	case outcomeAck:
		err = d.Ack(false)
	case outcomeReject:
		err = d.Nack(false, false)
	case outcomeRequeue:
		err = d.Nack(false, true)
	}
	if err != nil {
		logger.Log.WithError(err).Error("消息确认失败")
	}
}

// handleWatchProgress 1、解析消息 2、按(user, video)合并进观看记录 3、根据错误类型决定Ack还是重试
func handleWatchProgress(ctx context.Context, repo repository.WatchHistoryRepository, body []byte) outcome {
	logCtx := logger.Log.WithField("queue", "watch_progress")

	var msg service.WatchProgressMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// 对于无法解析的“坏消息”，应该通知mq处理失败，并直接删除
		logCtx.WithError(err).WithField("body", string(body)).Error("消息JSON解析失败")
		return outcomeReject
	}
	if msg.UserID == 0 || msg.VideoID == 0 {
		logCtx.WithField("body", string(body)).Error("消息缺少用户或视频ID")
		return outcomeReject
	}
	logCtx = logCtx.WithField("user_id", msg.UserID).WithField("video_id", msg.VideoID)

	watchedAt := msg.WatchedAt
	if watchedAt.IsZero() {
		watchedAt = time.Now()
	}
	err := repo.Upsert(ctx, repository.WatchProgress{
		UserID:         msg.UserID,
		VideoID:        msg.VideoID,
		WatchedSeconds: msg.WatchedSeconds,
		Completed:      msg.Completed,
		WatchedAt:      watchedAt,
	})
	if err != nil {
		var mysqlErr *mysql.MySQLError
		// 用errors.As来检查错误的“根”是不是一个MySQLError，1062即"Duplicate entry"
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			logCtx.WithError(err).Warn("处理消息时出现重复键错误，可能是一次重复消费，消息将被确认为成功。")
			return outcomeAck
		}
		logCtx.WithError(err).Error("处理消息失败，将进行重试")
		return outcomeRequeue
	}
	return outcomeAck
}

// handleMediaCleanup 逐个删除对象，单个失败只记日志，整条消息总是Ack
func handleMediaCleanup(ctx context.Context, host storage.MediaHost, body []byte) outcome {
	logCtx := logger.Log.WithField("queue", "media_cleanup")

	var msg service.MediaCleanupMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logCtx.WithError(err).WithField("body", string(body)).Error("消息JSON解析失败")
		return outcomeReject
	}
	for _, key := range msg.ObjectKeys {
		if err := host.Remove(ctx, key); err != nil {
			logCtx.WithError(err).WithField("video_id", msg.VideoID).WithField("object_key", key).Warn("媒体对象删除失败")
		}
	}
	return outcomeAck
}
