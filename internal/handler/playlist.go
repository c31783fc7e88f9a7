package handler

import (
	"net/http"

	"YourTube/internal/middleware"
	"YourTube/internal/service"

	"github.com/gin-gonic/gin"
)

type PlaylistHandler interface {
	CreatePlaylist(c *gin.Context)
	GetUserPlaylists(c *gin.Context)
	GetPlaylistByID(c *gin.Context)
	AddVideo(c *gin.Context)
	RemoveVideo(c *gin.Context)
	UpdatePlaylist(c *gin.Context)
	DeletePlaylist(c *gin.Context)
}

type playlistHandler struct {
	PlaylistService service.PlaylistService
}

func NewPlaylistHandler(playlistService service.PlaylistService) PlaylistHandler {
	return &playlistHandler{PlaylistService: playlistService}
}

type PlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *playlistHandler) CreatePlaylist(c *gin.Context) {
	var req PlaylistRequest
	if !bindJSON(c, &req) {
		return
	}
	playlist, err := h.PlaylistService.CreatePlaylist(c.Request.Context(), middleware.UserID(c), req.Name, req.Description)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusCreated, playlist, "播放列表创建成功")
}

func (h *playlistHandler) GetUserPlaylists(c *gin.Context) {
	userID, ok := parseID(c, "user_id", "用户ID")
	if !ok {
		return
	}
	playlists, err := h.PlaylistService.GetUserPlaylists(c.Request.Context(), userID)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, playlists, "成功获取播放列表")
}

func (h *playlistHandler) GetPlaylistByID(c *gin.Context) {
	playlistID, ok := parseID(c, "playlist_id", "播放列表ID")
	if !ok {
		return
	}
	playlist, err := h.PlaylistService.GetPlaylistByID(c.Request.Context(), playlistID, middleware.UserID(c))
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, playlist, "成功获取播放列表")
}

// 路径形如 /add/:video_id/:playlist_id
func (h *playlistHandler) AddVideo(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	playlistID, ok := parseID(c, "playlist_id", "播放列表ID")
	if !ok {
		return
	}
	playlist, err := h.PlaylistService.AddVideo(c.Request.Context(), playlistID, videoID, middleware.UserID(c))
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, playlist, "视频已加入播放列表")
}

func (h *playlistHandler) RemoveVideo(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	playlistID, ok := parseID(c, "playlist_id", "播放列表ID")
	if !ok {
		return
	}
	playlist, err := h.PlaylistService.RemoveVideo(c.Request.Context(), playlistID, videoID, middleware.UserID(c))
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, playlist, "视频已从播放列表移除")
}

func (h *playlistHandler) UpdatePlaylist(c *gin.Context) {
	playlistID, ok := parseID(c, "playlist_id", "播放列表ID")
	if !ok {
		return
	}
	var req PlaylistRequest
	if !bindJSON(c, &req) {
		return
	}
	playlist, err := h.PlaylistService.UpdatePlaylist(c.Request.Context(), playlistID, middleware.UserID(c), req.Name, req.Description)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, playlist, "播放列表已更新")
}

func (h *playlistHandler) DeletePlaylist(c *gin.Context) {
	playlistID, ok := parseID(c, "playlist_id", "播放列表ID")
	if !ok {
		return
	}
	if err := h.PlaylistService.DeletePlaylist(c.Request.Context(), playlistID, middleware.UserID(c)); err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{}, "播放列表已删除")
}
