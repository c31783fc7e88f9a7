package dto

import (
	"time"

	"YourTube/internal/model"
)

type CommentResponse struct {
	ID         uint64    `json:"id"`
	VideoID    uint64    `json:"videoId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	Owner      OwnerInfo `json:"owner"`
	LikesCount int64     `json:"likesCount"`
	IsLiked    bool      `json:"isLiked"`
}

func ToCommentResponse(comment *model.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        comment.ID,
		VideoID:   comment.VideoID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
	// 安全地填充作者信息
	if comment.Owner.ID != 0 {
		resp.Owner = ToOwnerInfo(&comment.Owner)
	} else {
		resp.Owner.ID = comment.OwnerID
	}
	return resp
}
