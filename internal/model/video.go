package model

type Video struct {
	BaseModel
	VideoFile string `gorm:"not null" json:"videoFile"`
	// 对象存储中的key，删除视频时用来清理媒体文件
	VideoKey     string  `json:"-"`
	Thumbnail    string  `gorm:"not null" json:"thumbnail"`
	ThumbnailKey string  `json:"-"`
	Title        string  `gorm:"type:varchar(255);not null;index" json:"title"`
	Description  string  `gorm:"type:text;not null" json:"description"`
	Duration     float64 `gorm:"not null" json:"duration"` // 秒
	Views        uint64  `gorm:"default:0;index" json:"views"`
	IsPublished  bool    `gorm:"default:true;index" json:"isPublished"`
	OwnerID      uint64  `gorm:"not null;index" json:"ownerId"`
	// 小写、去重后的标签，推荐打分只看它
	Tags []string `gorm:"type:json;serializer:json" json:"tags"`

	// 外键OwnerID和User表的ID
	Owner User `gorm:"foreignKey:OwnerID;references:ID" json:"owner"`
}

func (Video) TableName() string {
	return "videos"
}
