package handler

import (
	"net/http"

	"YourTube/internal/middleware"
	"YourTube/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler interface {
	GetChannelStats(c *gin.Context)
	GetChannelVideos(c *gin.Context)
}

type dashboardHandler struct {
	DashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) DashboardHandler {
	return &dashboardHandler{DashboardService: dashboardService}
}

func (h *dashboardHandler) GetChannelStats(c *gin.Context) {
	stats, err := h.DashboardService.GetChannelStats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, stats, "成功获取频道统计")
}

func (h *dashboardHandler) GetChannelVideos(c *gin.Context) {
	page, limit := pageQuery(c)
	videos, err := h.DashboardService.GetChannelVideos(c.Request.Context(), middleware.UserID(c), service.DashboardVideosInput{Page: page, Limit: limit})
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, videos, "成功获取频道视频")
}
