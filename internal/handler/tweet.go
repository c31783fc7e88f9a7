package handler

import (
	"net/http"

	"YourTube/internal/middleware"
	"YourTube/internal/service"

	"github.com/gin-gonic/gin"
)

type TweetHandler interface {
	CreateTweet(c *gin.Context)
	GetUserTweets(c *gin.Context)
	UpdateTweet(c *gin.Context)
	DeleteTweet(c *gin.Context)
}

type tweetHandler struct {
	TweetService service.TweetService
}

func NewTweetHandler(tweetService service.TweetService) TweetHandler {
	return &tweetHandler{TweetService: tweetService}
}

type TweetRequest struct {
	Content string `json:"content"`
}

func (h *tweetHandler) CreateTweet(c *gin.Context) {
	var req TweetRequest
	if !bindJSON(c, &req) {
		return
	}
	tweet, err := h.TweetService.CreateTweet(c.Request.Context(), middleware.UserID(c), req.Content)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusCreated, tweet, "推文发布成功")
}

func (h *tweetHandler) GetUserTweets(c *gin.Context) {
	userID, ok := parseID(c, "user_id", "用户ID")
	if !ok {
		return
	}
	tweets, err := h.TweetService.GetUserTweets(c.Request.Context(), userID, middleware.UserID(c))
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, tweets, "成功获取推文")
}

func (h *tweetHandler) UpdateTweet(c *gin.Context) {
	tweetID, ok := parseID(c, "tweet_id", "推文ID")
	if !ok {
		return
	}
	var req TweetRequest
	if !bindJSON(c, &req) {
		return
	}
	tweet, err := h.TweetService.UpdateTweet(c.Request.Context(), tweetID, middleware.UserID(c), req.Content)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, tweet, "推文已更新")
}

func (h *tweetHandler) DeleteTweet(c *gin.Context) {
	tweetID, ok := parseID(c, "tweet_id", "推文ID")
	if !ok {
		return
	}
	if err := h.TweetService.DeleteTweet(c.Request.Context(), tweetID, middleware.UserID(c)); err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{}, "推文已删除")
}
