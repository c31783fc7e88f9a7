package repository

import (
	"context"

	"YourTube/internal/model"

	"gorm.io/gorm"
)

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	FindByID(ctx context.Context, playlistID uint64) (*model.Playlist, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Playlist, error)
	Update(ctx context.Context, playlist *model.Playlist, columns ...string) error
	Delete(ctx context.Context, playlistID uint64) error
}

type playlistRepository struct {
	db *gorm.DB
}

func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Create(playlist).Error
}

func (r *playlistRepository) FindByID(ctx context.Context, playlistID uint64) (*model.Playlist, error) {
	var p model.Playlist
	if err := r.db.WithContext(ctx).Preload("Owner").First(&p, playlistID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *playlistRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Playlist, error) {
	var playlists []model.Playlist
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("updated_at desc").Find(&playlists).Error
	return playlists, err
}

// video_ids是JSON列，必须走struct更新才会经过serializer
func (r *playlistRepository) Update(ctx context.Context, playlist *model.Playlist, columns ...string) error {
	return r.db.WithContext(ctx).Model(playlist).Select(columns).Updates(playlist).Error
}

func (r *playlistRepository) Delete(ctx context.Context, playlistID uint64) error {
	return r.db.WithContext(ctx).Delete(&model.Playlist{}, playlistID).Error
}
