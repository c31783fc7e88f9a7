package repository

import (
	"context"

	"YourTube/internal/model"

	"gorm.io/gorm"
)

// 用户仓库接口：1、将用户插入用户表 2、按ID/用户名/邮箱查找 3、按列更新
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID uint64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// 用户名或邮箱任意一个命中即返回，注册查重和登录都用它
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	// Update 只更新columns中列出的列，零值也会写入
	Update(ctx context.Context, user *model.User, columns ...string) error
}

// 数据库接口封装
type userRepository struct {
	db *gorm.DB
}

// 封装函数
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// 用户插入表
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, userID uint64) (*model.User, error) {
	var result model.User
	if err := r.db.WithContext(ctx).First(&result, userID).Error; err != nil {
		return nil, err // 如果有错（包括没找到），直接返回
	}
	return &result, nil
}

// 根据用户名找用户
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var result model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	var result model.User
	err := r.db.WithContext(ctx).Where("username = ? OR email = ?", username, email).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Select之后，struct里的零值（比如清空refresh token时的""）也会被写进去
func (r *userRepository) Update(ctx context.Context, user *model.User, columns ...string) error {
	return r.db.WithContext(ctx).Model(user).Select(columns).Updates(user).Error
}
