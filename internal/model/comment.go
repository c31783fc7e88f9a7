package model

type Comment struct {
	BaseModel
	VideoID uint64 `gorm:"not null;index" json:"videoId"` // index索引，极大地加速基于该列的查询、过滤和排序操作
	OwnerID uint64 `gorm:"not null;index" json:"ownerId"`
	// TEXT是MySQL中的一种文本类型，专门用于存储非常长的字符串，最大长度可达65,535个字符
	Content string `gorm:"type:text;not null" json:"content"`

	Owner User `gorm:"foreignKey:OwnerID" json:"owner"`
}

func (Comment) TableName() string {
	return "comments"
}
