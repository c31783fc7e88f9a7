package dto

import (
	"time"

	"YourTube/internal/model"
)

type TweetResponse struct {
	ID         uint64    `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Owner      OwnerInfo `json:"owner"`
	LikesCount int64     `json:"likesCount"`
	IsLiked    bool      `json:"isLiked"`
}

func ToTweetResponse(t *model.Tweet) TweetResponse {
	resp := TweetResponse{
		ID:        t.ID,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Owner.ID != 0 {
		resp.Owner = ToOwnerInfo(&t.Owner)
	} else {
		resp.Owner.ID = t.OwnerID
	}
	return resp
}

type PlaylistResponse struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	OwnerID       uint64    `json:"ownerId"`
	TotalVideos   int       `json:"totalVideos"`
	TotalDuration float64   `json:"totalDuration"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PlaylistDetail 播放列表详情，Videos按播放列表中的顺序排列
type PlaylistDetail struct {
	PlaylistResponse
	Owner  OwnerInfo       `json:"owner"`
	Videos []VideoResponse `json:"videos"`
}

func ToPlaylistResponse(p *model.Playlist) PlaylistResponse {
	return PlaylistResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		TotalVideos: len(p.VideoIDs),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type SubscriberList struct {
	Subscribers      []OwnerInfo `json:"subscribers"`
	SubscribersCount int         `json:"subscribersCount"`
}

type ChannelList struct {
	Channels      []OwnerInfo `json:"channels"`
	ChannelsCount int         `json:"channelsCount"`
}

type SubscriptionStatus struct {
	IsSubscribed     bool  `json:"isSubscribed"`
	SubscribersCount int64 `json:"subscribersCount"`
}

type LikeStatus struct {
	IsLiked    bool  `json:"isLiked"`
	LikesCount int64 `json:"likesCount"`
}

// ChannelStats 创作者后台的统计数据
type ChannelStats struct {
	TotalVideos       int64          `json:"totalVideos"`
	TotalViews        uint64         `json:"totalViews"`
	TotalLikes        int64          `json:"totalLikes"`
	AverageViews      uint64         `json:"averageViews"`
	TotalSubscribers  int64          `json:"totalSubscribers"`
	TotalSubscribedTo int64          `json:"totalSubscribedTo"`
	RecentVideos      int64          `json:"recentVideos"`
	RecentViews       uint64         `json:"recentViews"`
	RecentLikes       int64          `json:"recentLikes"`
	TopVideo          *VideoResponse `json:"topVideo"`
}

func ToOwnerInfos(users []model.User) []OwnerInfo {
	out := make([]OwnerInfo, 0, len(users))
	for i := range users {
		out = append(out, ToOwnerInfo(&users[i]))
	}
	return out
}
