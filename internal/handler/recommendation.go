package handler

import (
	"net/http"
	"strconv"

	"YourTube/internal/dto"
	"YourTube/internal/middleware"
	"YourTube/internal/service"

	"github.com/gin-gonic/gin"
)

type RecommendationHandler interface {
	GetFeed(c *gin.Context)
	GetTags(c *gin.Context)
	GetTrending(c *gin.Context)
	SavePreferences(c *gin.Context)
}

type recommendationHandler struct {
	RecommendationService service.RecommendationService
}

func NewRecommendationHandler(recommendationService service.RecommendationService) RecommendationHandler {
	return &recommendationHandler{RecommendationService: recommendationService}
}

type PreferencesRequest struct {
	SelectedTags []string `json:"selectedTags"`
}

// 可以无限向下滑动、不断出现新内容的主界面，就是最典型的Feed流
// 登录用户按观看历史或偏好个性化，匿名用户按播放量
func (h *recommendationHandler) GetFeed(c *gin.Context) {
	page, limit := pageQuery(c)
	feed, err := h.RecommendationService.GetFeed(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, feed, "成功获取推荐视频")
}

func (h *recommendationHandler) GetTags(c *gin.Context) {
	tags, err := h.RecommendationService.GetTags(c.Request.Context())
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, tags, "成功获取标签")
}

func (h *recommendationHandler) GetTrending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	videos, err := h.RecommendationService.GetTrending(c.Request.Context(), limit)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, videos, "成功获取热门视频")
}

func (h *recommendationHandler) SavePreferences(c *gin.Context) {
	var req PreferencesRequest
	// selectedTags不是数组时绑定失败，返回400
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.RecommendationService.SavePreferences(c.Request.Context(), middleware.UserID(c), req.SelectedTags)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, dto.ToUserResponse(user), "偏好标签已保存")
}
