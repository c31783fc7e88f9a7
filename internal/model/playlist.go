package model

type Playlist struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text;not null" json:"description"`
	OwnerID     uint64 `gorm:"not null;index" json:"ownerId"`
	// 有序的视频ID列表，按加入顺序排列，不允许重复
	VideoIDs []uint64 `gorm:"type:json;serializer:json" json:"videos"`

	Owner User `gorm:"foreignKey:OwnerID" json:"owner"`
}

func (Playlist) TableName() string {
	return "playlists"
}

// Contains 视频是否已在播放列表中
func (p *Playlist) Contains(videoID uint64) bool {
	for _, id := range p.VideoIDs {
		if id == videoID {
			return true
		}
	}
	return false
}

// Remove 移除一个视频，返回是否真的移除了
func (p *Playlist) Remove(videoID uint64) bool {
	for i, id := range p.VideoIDs {
		if id == videoID {
			p.VideoIDs = append(p.VideoIDs[:i:i], p.VideoIDs[i+1:]...)
			return true
		}
	}
	return false
}
