package service

import (
	"context"
	"strings"

	"YourTube/internal/apperror"
	"YourTube/internal/dto"
	"YourTube/internal/model"
	"YourTube/internal/repository"
)

type PlaylistService interface {
	CreatePlaylist(ctx context.Context, userID uint64, name, description string) (*dto.PlaylistResponse, error)
	GetUserPlaylists(ctx context.Context, userID uint64) ([]dto.PlaylistResponse, error)
	GetPlaylistByID(ctx context.Context, playlistID, viewerID uint64) (*dto.PlaylistDetail, error)
	AddVideo(ctx context.Context, playlistID, videoID, userID uint64) (*dto.PlaylistResponse, error)
	RemoveVideo(ctx context.Context, playlistID, videoID, userID uint64) (*dto.PlaylistResponse, error)
	UpdatePlaylist(ctx context.Context, playlistID, userID uint64, name, description string) (*dto.PlaylistResponse, error)
	DeletePlaylist(ctx context.Context, playlistID, userID uint64) error
}

type playlistService struct {
	playlistRepo repository.PlaylistRepository
	videoRepo    repository.VideoRepository
	userRepo     repository.UserRepository
}

func NewPlaylistService(playlistRepo repository.PlaylistRepository, videoRepo repository.VideoRepository, userRepo repository.UserRepository) PlaylistService {
	return &playlistService{
		playlistRepo: playlistRepo,
		videoRepo:    videoRepo,
		userRepo:     userRepo,
	}
}

func (s *playlistService) CreatePlaylist(ctx context.Context, userID uint64, name, description string) (*dto.PlaylistResponse, error) {
	if err := requireFields("名称和描述都是必填的", "name", name, "description", description); err != nil {
		return nil, err
	}
	playlist := &model.Playlist{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		OwnerID:     userID,
		VideoIDs:    []uint64{},
	}
	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, err
	}
	resp := dto.ToPlaylistResponse(playlist)
	return &resp, nil
}

// 获取用户的播放列表：所有列表里的视频一次查出来，再按列表累加总时长
func (s *playlistService) GetUserPlaylists(ctx context.Context, userID uint64) ([]dto.PlaylistResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	playlists, err := s.playlistRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	var allIDs []uint64
	for _, p := range playlists {
		allIDs = append(allIDs, p.VideoIDs...)
	}
	videos, err := s.videoRepo.FindByIDs(ctx, allIDs)
	if err != nil {
		return nil, err
	}
	durations := make(map[uint64]float64, len(videos))
	for _, v := range videos {
		durations[v.ID] = v.Duration
	}

	out := make([]dto.PlaylistResponse, 0, len(playlists))
	for i := range playlists {
		resp := dto.ToPlaylistResponse(&playlists[i])
		for _, id := range playlists[i].VideoIDs {
			resp.TotalDuration += durations[id]
		}
		out = append(out, resp)
	}
	return out, nil
}

// 播放列表详情：视频按列表里的顺序返回，已被删除的和当前用户看不到的视频跳过
func (s *playlistService) GetPlaylistByID(ctx context.Context, playlistID, viewerID uint64) (*dto.PlaylistDetail, error) {
	playlist, err := s.playlistRepo.FindByID(ctx, playlistID)
	if err != nil {
		return nil, notFoundOr(err, "播放列表不存在")
	}
	videos, err := s.videoRepo.FindByIDs(ctx, playlist.VideoIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.Video, len(videos))
	for i := range videos {
		byID[videos[i].ID] = &videos[i]
	}

	detail := &dto.PlaylistDetail{
		PlaylistResponse: dto.ToPlaylistResponse(playlist),
		Owner:            dto.ToOwnerInfo(&playlist.Owner),
		Videos:           make([]dto.VideoResponse, 0, len(playlist.VideoIDs)),
	}
	for _, id := range playlist.VideoIDs {
		v, ok := byID[id]
		if !ok || !canView(v, viewerID) {
			continue
		}
		detail.Videos = append(detail.Videos, dto.ToVideoResponse(v))
		detail.TotalDuration += v.Duration
	}
	detail.TotalVideos = len(detail.Videos)
	return detail, nil
}

func (s *playlistService) findOwned(ctx context.Context, playlistID, userID uint64) (*model.Playlist, error) {
	playlist, err := s.playlistRepo.FindByID(ctx, playlistID)
	if err != nil {
		return nil, notFoundOr(err, "播放列表不存在")
	}
	if err := ensureOwner(playlist.OwnerID, userID, "只能修改自己的播放列表"); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *playlistService) AddVideo(ctx context.Context, playlistID, videoID, userID uint64) (*dto.PlaylistResponse, error) {
	playlist, err := s.findOwned(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := findVisibleVideo(ctx, s.videoRepo, videoID, userID); err != nil {
		return nil, err
	}
	if playlist.Contains(videoID) {
		return nil, apperror.BadRequest("视频已在播放列表中")
	}
	playlist.VideoIDs = append(playlist.VideoIDs, videoID)
	if err := s.playlistRepo.Update(ctx, playlist, "video_ids"); err != nil {
		return nil, err
	}
	resp := dto.ToPlaylistResponse(playlist)
	return &resp, nil
}

func (s *playlistService) RemoveVideo(ctx context.Context, playlistID, videoID, userID uint64) (*dto.PlaylistResponse, error) {
	playlist, err := s.findOwned(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}
	if !playlist.Remove(videoID) {
		return nil, apperror.BadRequest("视频不在播放列表中")
	}
	if err := s.playlistRepo.Update(ctx, playlist, "video_ids"); err != nil {
		return nil, err
	}
	resp := dto.ToPlaylistResponse(playlist)
	return &resp, nil
}

func (s *playlistService) UpdatePlaylist(ctx context.Context, playlistID, userID uint64, name, description string) (*dto.PlaylistResponse, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" && description == "" {
		return nil, apperror.BadRequest("名称和描述至少填写一个")
	}
	playlist, err := s.findOwned(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}
	var columns []string
	if name != "" {
		playlist.Name = name
		columns = append(columns, "name")
	}
	if description != "" {
		playlist.Description = description
		columns = append(columns, "description")
	}
	if err := s.playlistRepo.Update(ctx, playlist, columns...); err != nil {
		return nil, err
	}
	resp := dto.ToPlaylistResponse(playlist)
	return &resp, nil
}

func (s *playlistService) DeletePlaylist(ctx context.Context, playlistID, userID uint64) error {
	if _, err := s.findOwned(ctx, playlistID, userID); err != nil {
		return err
	}
	return s.playlistRepo.Delete(ctx, playlistID)
}
