package model

type User struct {
	BaseModel // 包括 ID, CreatedAt, UpdatedAt, DeleteAt
	// 用户名和邮箱写入前统一转小写
	Username   string `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email      string `gorm:"type:varchar(128);uniqueIndex;not null" json:"email"`
	FullName   string `gorm:"type:varchar(128);not null;index" json:"fullname"`
	Avatar     string `gorm:"not null" json:"avatar"`
	CoverImage string `json:"coverImage"`
	Password   string `gorm:"not null" json:"-"`
	// 数据库里只保存最新签发的那一个refresh token，轮换后旧的立即失效
	RefreshToken string `gorm:"type:text" json:"-"`

	PreferredTags          []string `gorm:"type:json;serializer:json" json:"preferredTags"`
	HasCompletedOnboarding bool     `gorm:"default:false" json:"hasCompletedOnboarding"`
}

func (User) TableName() string {
	return "users"
}
