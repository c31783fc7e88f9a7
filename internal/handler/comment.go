package handler

import (
	"net/http"

	"YourTube/internal/middleware"
	"YourTube/internal/service"
	"YourTube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CommentHandler interface {
	GetVideoComments(c *gin.Context)
	AddComment(c *gin.Context)
	UpdateComment(c *gin.Context)
	DeleteComment(c *gin.Context)
}

type commentHandler struct {
	CommentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) CommentHandler {
	return &commentHandler{CommentService: commentService}
}

type CommentRequest struct {
	Content string `json:"content"`
}

func (h *commentHandler) GetVideoComments(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	page, limit := pageQuery(c)
	comments, err := h.CommentService.GetVideoComments(c.Request.Context(), videoID, middleware.UserID(c), page, limit)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, comments, "成功获取评论")
}

// 视频评论：1、解析URL中的videoID参数 2、解析Body 3、获取context中的userID（jwt） 4、创建评论并返回201
func (h *commentHandler) AddComment(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := middleware.UserID(c)
	// 正式进入业务前，将logger格式整理好
	logCtx := logger.Log.WithField("user_id", userID).WithField("video_id", videoID)

	comment, err := h.CommentService.AddComment(c.Request.Context(), videoID, userID, req.Content)
	if err != nil {
		logCtx.WithError(err).Warn("创建评论失败")
		sendErrorResponse(c, err)
		return
	}
	logCtx.WithField("comment_id", comment.ID).Info("评论成功")
	sendResponse(c, http.StatusCreated, comment, "评论成功")
}

func (h *commentHandler) UpdateComment(c *gin.Context) {
	commentID, ok := parseID(c, "comment_id", "评论ID")
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.CommentService.UpdateComment(c.Request.Context(), commentID, middleware.UserID(c), req.Content)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, comment, "评论已更新")
}

func (h *commentHandler) DeleteComment(c *gin.Context) {
	commentID, ok := parseID(c, "comment_id", "评论ID")
	if !ok {
		return
	}
	if err := h.CommentService.DeleteComment(c.Request.Context(), commentID, middleware.UserID(c)); err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{}, "评论已删除")
}
