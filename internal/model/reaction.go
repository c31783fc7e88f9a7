package model

import "time"

// 点赞的三种目标
const (
	TargetVideo   = "video"
	TargetComment = "comment"
	TargetTweet   = "tweet"
)

// Like 一条点赞记录正好指向一个目标，uniqueIndex利用的是MySQL数据库的“自动查重”能力，而不是gorm的
type Like struct {
	RecordModel
	LikedBy    uint64 `gorm:"not null;uniqueIndex:idx_like_target,priority:1" json:"likedBy"`
	TargetType string `gorm:"type:varchar(16);not null;uniqueIndex:idx_like_target,priority:2;index:idx_like_lookup,priority:1" json:"targetType"`
	TargetID   uint64 `gorm:"not null;uniqueIndex:idx_like_target,priority:3;index:idx_like_lookup,priority:2" json:"targetId"`
}

// 想精确控制表名，或表名不符合GORM的复数规则，就必须实现TableName()方法规定表名
func (Like) TableName() string {
	return "likes"
}

// Subscription 订阅者 -> 频道（也是一个用户），同一对只能存在一行
type Subscription struct {
	RecordModel
	SubscriberID uint64 `gorm:"not null;uniqueIndex:idx_subscriber_channel,priority:1" json:"subscriberId"`
	ChannelID    uint64 `gorm:"not null;uniqueIndex:idx_subscriber_channel,priority:2;index" json:"channelId"`

	Subscriber User `gorm:"foreignKey:SubscriberID" json:"subscriber"`
	Channel    User `gorm:"foreignKey:ChannelID" json:"channel"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// WatchHistory 每个(用户, 视频)只有一行，重复观看只更新这一行
type WatchHistory struct {
	RecordModel
	UserID        uint64    `gorm:"not null;uniqueIndex:idx_user_video,priority:1" json:"userId"`
	VideoID       uint64    `gorm:"not null;uniqueIndex:idx_user_video,priority:2;index" json:"videoId"`
	WatchDuration float64   `gorm:"default:0" json:"watchDuration"` // 秒
	IsCompleted   bool      `gorm:"default:false" json:"isCompleted"`
	LastWatchedAt time.Time `gorm:"index" json:"lastWatchedAt"`

	Video Video `gorm:"foreignKey:VideoID" json:"video"`
}

func (WatchHistory) TableName() string {
	return "watch_histories"
}
