package handler

import (
	"context"
	"net/http"

	"YourTube/internal/middleware"
	"YourTube/internal/service"
	"YourTube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type LikeHandler interface {
	ToggleVideoLike(c *gin.Context)
	ToggleCommentLike(c *gin.Context)
	ToggleTweetLike(c *gin.Context)
	GetVideoLikeStatus(c *gin.Context)
	GetLikedVideos(c *gin.Context)
}

type likeHandler struct {
	LikeService service.LikeService
}

func NewLikeHandler(likeService service.LikeService) LikeHandler {
	return &likeHandler{LikeService: likeService}
}

// 三种目标的切换流程一样，只是service方法和路径参数不同
func (h *likeHandler) toggle(c *gin.Context, param, label string, fn func(ctx context.Context, userID, targetID uint64) (bool, error)) {
	targetID, ok := parseID(c, param, label)
	if !ok {
		return
	}
	userID := middleware.UserID(c)
	liked, err := fn(c.Request.Context(), userID, targetID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).WithField(param, targetID).Warn("切换点赞失败")
		sendErrorResponse(c, err)
		return
	}
	message := "取消点赞成功"
	if liked {
		message = "点赞成功"
	}
	sendResponse(c, http.StatusOK, gin.H{"isLiked": liked}, message)
}

func (h *likeHandler) ToggleVideoLike(c *gin.Context) {
	h.toggle(c, "video_id", "视频ID", h.LikeService.ToggleVideoLike)
}

func (h *likeHandler) ToggleCommentLike(c *gin.Context) {
	h.toggle(c, "comment_id", "评论ID", h.LikeService.ToggleCommentLike)
}

func (h *likeHandler) ToggleTweetLike(c *gin.Context) {
	h.toggle(c, "tweet_id", "推文ID", h.LikeService.ToggleTweetLike)
}

func (h *likeHandler) GetVideoLikeStatus(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	status, err := h.LikeService.GetVideoLikeStatus(c.Request.Context(), middleware.UserID(c), videoID)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, status, "成功获取点赞状态")
}

func (h *likeHandler) GetLikedVideos(c *gin.Context) {
	page, limit := pageQuery(c)
	videos, err := h.LikeService.GetLikedVideos(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, videos, "成功获取点赞过的视频")
}
