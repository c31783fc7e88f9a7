package dto

import (
	"time"

	"YourTube/internal/model"
	"YourTube/internal/recommend"
)

type VideoResponse struct {
	ID          uint64    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       uint64    `json:"views"`
	IsPublished bool      `json:"isPublished"`
	Tags        []string  `json:"tags"`
	Owner       OwnerInfo `json:"owner"`
}

// VideoDetail 视频详情页，多了点赞数和当前用户是否点赞
type VideoDetail struct {
	VideoResponse
	LikesCount int64 `json:"likesCount"`
	IsLiked    bool  `json:"isLiked"`
}

// DashboardVideo 创作者后台的视频列表项
type DashboardVideo struct {
	VideoResponse
	LikesCount    int64 `json:"likesCount"`
	CommentsCount int64 `json:"commentsCount"`
}

// ToVideoResponse 是一个转换函数，把DB模型转换为API响应模型，并且正确利用preload返回的数据，增强返回数据的健壮性
func ToVideoResponse(video *model.Video) VideoResponse {
	tags := video.Tags
	if tags == nil {
		tags = []string{}
	}
	resp := VideoResponse{
		ID:          video.ID,
		CreatedAt:   video.CreatedAt,
		VideoFile:   video.VideoFile,
		Thumbnail:   video.Thumbnail,
		Title:       video.Title,
		Description: video.Description,
		Duration:    video.Duration,
		Views:       video.Views,
		IsPublished: video.IsPublished,
		Tags:        tags,
	}
	// 检查Owner是否被成功preload
	if video.Owner.ID != 0 {
		resp.Owner = ToOwnerInfo(&video.Owner)
	} else {
		// 如果没有preload，就返回video结构体本身的
		resp.Owner.ID = video.OwnerID
	}
	return resp
}

func ToVideoResponses(videos []model.Video) []VideoResponse {
	out := make([]VideoResponse, 0, len(videos))
	for i := range videos {
		out = append(out, ToVideoResponse(&videos[i]))
	}
	return out
}

// RankedVideo 推荐流中的一项，带上打分
type RankedVideo struct {
	VideoResponse
	Score float64 `json:"score"`
}

// FeedResponse 推荐流，docs已经是排好序、分好页的结果
type FeedResponse struct {
	Docs                   []RankedVideo        `json:"docs"`
	TotalDocs              int                  `json:"totalDocs"`
	Page                   int                  `json:"page"`
	Limit                  int                  `json:"limit"`
	IsPersonalized         bool                 `json:"isPersonalized"`
	FeedType               recommend.FeedType   `json:"feedType"`
	UserTopTags            []recommend.TagScore `json:"userTopTags"`
	NeedsOnboarding        bool                 `json:"needsOnboarding"`
	HasCompletedOnboarding bool                 `json:"hasCompletedOnboarding"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

type TagsResponse struct {
	AvailableTags []string   `json:"availableTags"`
	TagCounts     []TagCount `json:"tagCounts"`
}
