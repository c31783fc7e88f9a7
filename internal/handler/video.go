package handler

import (
	"net/http"
	"strconv"
	"strings"

	"YourTube/internal/dto"
	"YourTube/internal/middleware"
	"YourTube/internal/recommend"
	"YourTube/internal/service"
	"YourTube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type VideoHandler interface {
	ListVideos(c *gin.Context)
	PublishVideo(c *gin.Context)
	GetVideoByID(c *gin.Context)
	UpdateVideo(c *gin.Context)
	DeleteVideo(c *gin.Context)
	TogglePublish(c *gin.Context)
	UpdateWatchProgress(c *gin.Context)
}

type videoHandler struct {
	VideoService service.VideoService
}

func NewVideoHandler(videoService service.VideoService) VideoHandler {
	return &videoHandler{VideoService: videoService}
}

// UpdateVideoRequest JSON方式更新时使用，tags不传表示不修改
type UpdateVideoRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type WatchUpdateRequest struct {
	VideoID              uint64  `json:"videoId"`
	WatchDurationSeconds float64 `json:"watchDurationSeconds"`
	IsCompleted          bool    `json:"isCompleted"`
}

// 表单里的tags既可以是逗号分隔的一个字段，也可以是重复的多个字段
func formTags(c *gin.Context) ([]string, bool) {
	values, ok := c.GetPostFormArray("tags")
	if !ok {
		return nil, false
	}
	return recommend.ParseTagList(strings.Join(values, ",")), true
}

func (h *videoHandler) ListVideos(c *gin.Context) {
	page, limit := pageQuery(c)
	userID, _ := strconv.ParseUint(c.Query("userId"), 10, 64)
	result, err := h.VideoService.ListVideos(c.Request.Context(), service.ListVideosInput{
		Query:    c.Query("query"),
		UserID:   userID,
		SortBy:   c.Query("sortBy"),
		SortType: c.Query("sortType"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, result, "成功获取视频列表")
}

// 发布视频：1、取表单字段和上传中间件保存的两个文件 2、service层上传到媒体托管并写库 3、返回201
func (h *videoHandler) PublishVideo(c *gin.Context) {
	authorID := middleware.UserID(c)
	// 蛇形命名法（日志聚合平台ELK、前端JavaScript）
	logCtx := logger.Log.WithField("author_id", authorID)
	logCtx.Info("开始处理发布视频请求")

	tags, _ := formTags(c)
	video, err := h.VideoService.PublishVideo(c.Request.Context(), service.PublishVideoInput{
		OwnerID:       authorID,
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		Tags:          tags,
		VideoPath:     middleware.UploadedFile(c, "videoFile"),
		ThumbnailPath: middleware.UploadedFile(c, "thumbnail"),
	})
	if err != nil {
		logCtx.WithError(err).Warn("发布视频失败")
		sendErrorResponse(c, err)
		return
	}
	// 没有赋值，临时追加上下文，避免污染后续其他日志
	logCtx.WithField("video_id", video.ID).Info("视频发布成功")
	sendResponse(c, http.StatusCreated, dto.ToVideoResponse(video), "视频发布成功")
}

func (h *videoHandler) GetVideoByID(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	video, err := h.VideoService.GetVideoByID(c.Request.Context(), videoID, middleware.UserID(c))
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, video, "成功获取视频")
}

// 更新视频：multipart表单（可带新封面）或者JSON都可以
func (h *videoHandler) UpdateVideo(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	var in service.UpdateVideoInput
	if c.ContentType() == gin.MIMEJSON {
		var req UpdateVideoRequest
		if !bindJSON(c, &req) {
			return
		}
		in = service.UpdateVideoInput{Title: req.Title, Description: req.Description, Tags: req.Tags}
	} else {
		in = service.UpdateVideoInput{
			Title:         c.PostForm("title"),
			Description:   c.PostForm("description"),
			ThumbnailPath: middleware.UploadedFile(c, "thumbnail"),
		}
		if tags, ok := formTags(c); ok {
			in.Tags = tags
		}
	}

	video, err := h.VideoService.UpdateVideo(c.Request.Context(), videoID, middleware.UserID(c), in)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, dto.ToVideoResponse(video), "视频信息已更新")
}

func (h *videoHandler) DeleteVideo(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	if err := h.VideoService.DeleteVideo(c.Request.Context(), videoID, middleware.UserID(c)); err != nil {
		sendErrorResponse(c, err)
		return
	}
	logger.Log.WithField("video_id", videoID).Info("视频已删除")
	sendResponse(c, http.StatusOK, gin.H{}, "视频已删除")
}

func (h *videoHandler) TogglePublish(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	video, err := h.VideoService.TogglePublish(c.Request.Context(), videoID, middleware.UserID(c))
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{"isPublished": video.IsPublished}, "发布状态已切换")
}

func (h *videoHandler) UpdateWatchProgress(c *gin.Context) {
	var req WatchUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.VideoService.UpdateWatchProgress(c.Request.Context(), middleware.UserID(c), service.WatchUpdateInput{
		VideoID:        req.VideoID,
		WatchedSeconds: req.WatchDurationSeconds,
		Completed:      req.IsCompleted,
	})
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{}, "观看进度已记录")
}
