package dto

import (
	"time"

	"YourTube/internal/model"
)

// OwnerInfo 是嵌在视频、评论、推文里的简化用户信息
type OwnerInfo struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

type UserResponse struct {
	ID                     uint64    `json:"id"`
	Username               string    `json:"username"`
	Email                  string    `json:"email"`
	FullName               string    `json:"fullname"`
	Avatar                 string    `json:"avatar"`
	CoverImage             string    `json:"coverImage"`
	PreferredTags          []string  `json:"preferredTags"`
	HasCompletedOnboarding bool      `json:"hasCompletedOnboarding"`
	CreatedAt              time.Time `json:"createdAt"`
}

// ChannelProfile 频道主页：用户信息 + 订阅关系统计
type ChannelProfile struct {
	UserResponse
	SubscribersCount          int64 `json:"subscribersCount"`
	ChannelsSubscribedToCount int64 `json:"channelsSubscribedToCount"`
	IsSubscribed              bool  `json:"isSubscribed"`
}

type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type WatchHistoryItem struct {
	Video         VideoResponse `json:"video"`
	WatchDuration float64       `json:"watchDuration"`
	IsCompleted   bool          `json:"isCompleted"`
	LastWatchedAt time.Time     `json:"lastWatchedAt"`
}

func ToOwnerInfo(u *model.User) OwnerInfo {
	return OwnerInfo{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}

// ToUserResponse 转换时永远不带密码和refresh token
func ToUserResponse(u *model.User) UserResponse {
	tags := u.PreferredTags
	if tags == nil {
		tags = []string{}
	}
	return UserResponse{
		ID:                     u.ID,
		Username:               u.Username,
		Email:                  u.Email,
		FullName:               u.FullName,
		Avatar:                 u.Avatar,
		CoverImage:             u.CoverImage,
		PreferredTags:          tags,
		HasCompletedOnboarding: u.HasCompletedOnboarding,
		CreatedAt:              u.CreatedAt,
	}
}

// ToWatchHistoryItems 依赖Preload出来的Video和Video.Owner
func ToWatchHistoryItems(rows []model.WatchHistory) []WatchHistoryItem {
	items := make([]WatchHistoryItem, 0, len(rows))
	for i := range rows {
		items = append(items, WatchHistoryItem{
			Video:         ToVideoResponse(&rows[i].Video),
			WatchDuration: rows[i].WatchDuration,
			IsCompleted:   rows[i].IsCompleted,
			LastWatchedAt: rows[i].LastWatchedAt,
		})
	}
	return items
}
