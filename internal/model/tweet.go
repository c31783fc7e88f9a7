package model

// TweetMaxLength 推文最多280个字符（按rune计）
const TweetMaxLength = 280

type Tweet struct {
	BaseModel
	OwnerID uint64 `gorm:"not null;index" json:"ownerId"`
	Content string `gorm:"type:varchar(1200);not null" json:"content"`

	Owner User `gorm:"foreignKey:OwnerID" json:"owner"`
}

func (Tweet) TableName() string {
	return "tweets"
}

// AllModels AutoMigrate和seeder共用的模型列表，被依赖的表排在前面
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &Video{}, &Comment{}, &Like{}, &Subscription{}, &Playlist{}, &WatchHistory{}, &Tweet{},
	}
}
