package service

import (
	"context"
	"errors"
	"strings"

	"YourTube/internal/apperror"
	"YourTube/internal/dto"
	"YourTube/internal/model"
	"YourTube/internal/repository"
	"YourTube/pkg/logger"
	"YourTube/pkg/storage"
	"YourTube/pkg/token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// LoginResult 登录成功后的用户和一对新令牌
type LoginResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// 用户服务接口：注册、登录、令牌轮换、账号资料、频道主页、观看历史
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, username, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, userID uint64) error
	RefreshToken(ctx context.Context, incoming string) (*dto.TokenPair, error)
	ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error
	GetCurrentUser(ctx context.Context, userID uint64) (*model.User, error)
	UpdateAccount(ctx context.Context, userID uint64, fullName, email string) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID uint64, localPath string) (*model.User, error)
	UpdateCoverImage(ctx context.Context, userID uint64, localPath string) (*model.User, error)
	GetChannelProfile(ctx context.Context, username string, viewerID uint64) (*dto.ChannelProfile, error)
	GetWatchHistory(ctx context.Context, userID uint64) ([]dto.WatchHistoryItem, error)
	RemoveFromHistory(ctx context.Context, userID, videoID uint64) error
	ClearHistory(ctx context.Context, userID uint64) error
}

// 用户服务包装
type userService struct {
	userRepo  repository.UserRepository
	subRepo   repository.SubscriptionRepository
	watchRepo repository.WatchHistoryRepository
	media     storage.MediaHost
	tokens    *token.Manager
}

// 包装函数
func NewUserService(userRepo repository.UserRepository, subRepo repository.SubscriptionRepository, watchRepo repository.WatchHistoryRepository, media storage.MediaHost, tokens *token.Manager) UserService {
	return &userService{
		userRepo:  userRepo,
		subRepo:   subRepo,
		watchRepo: watchRepo,
		media:     media,
		tokens:    tokens,
	}
}

func normalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// 注册逻辑：1、检查必填项和头像 2、检查用户名/邮箱是否重复 3、上传头像（封面可选） 4、密码加密存储 5、插入数据库
func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := requireFields("所有字段都是必填的",
		"fullname", in.FullName, "email", in.Email, "username", in.Username, "password", in.Password); err != nil {
		return nil, err
	}
	if in.AvatarPath == "" {
		return nil, apperror.BadRequest("头像文件是必需的")
	}
	username := normalizeIdentity(in.Username)
	email := normalizeIdentity(in.Email)

	_, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return nil, apperror.Conflict("用户名或邮箱已存在")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	avatar, err := s.media.Upload(ctx, in.AvatarPath, storage.KindImage)
	if err != nil {
		logger.Log.WithError(err).WithField("username", username).Warn("头像上传失败")
		return nil, apperror.BadRequest("头像文件是必需的")
	}
	var coverURL string
	if in.CoverImagePath != "" {
		cover, err := s.media.Upload(ctx, in.CoverImagePath, storage.KindImage)
		if err != nil {
			// 封面是可选的，上传失败就当没传
			logger.Log.WithError(err).WithField("username", username).Warn("封面上传失败")
		} else {
			coverURL = cover.URL
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Username:      username,
		Email:         email,
		FullName:      strings.TrimSpace(in.FullName),
		Avatar:        avatar.URL,
		CoverImage:    coverURL,
		Password:      string(hashedPassword),
		PreferredTags: []string{},
	}
	// 查重和插入之间有竞争，并发注册时由唯一索引兜底，1062会被翻译成409
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

// 登录逻辑：1、用户名或邮箱必须有一个 2、检查库中是否有该用户 3、加密后密码和输入密码比对 4、签发令牌并保存refresh token
func (s *userService) Login(ctx context.Context, username, email, password string) (*LoginResult, error) {
	username = normalizeIdentity(username)
	email = normalizeIdentity(email)
	if username == "" && email == "" {
		return nil, apperror.BadRequest("用户名或邮箱必须填写一个")
	}
	if password == "" {
		return nil, apperror.BadRequest("密码不能为空")
	}

	user, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperror.Unauthorized("用户名或密码错误")
	}

	access, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// 签发新的一对令牌，并把refresh token存库，旧的随之失效
func (s *userService) issueTokens(ctx context.Context, user *model.User) (string, string, error) {
	access, refresh, err := s.tokens.GeneratePair(token.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	})
	if err != nil {
		return "", "", err
	}
	user.RefreshToken = refresh
	if err := s.userRepo.Update(ctx, user, "refresh_token"); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *userService) Logout(ctx context.Context, userID uint64) error {
	user := &model.User{}
	user.ID = userID
	user.RefreshToken = ""
	return s.userRepo.Update(ctx, user, "refresh_token")
}

// 刷新令牌：1、校验签名和过期 2、用户还在 3、和库里保存的一致（只能用一次） 4、轮换出新的一对
func (s *userService) RefreshToken(ctx context.Context, incoming string) (*dto.TokenPair, error) {
	if incoming == "" {
		return nil, apperror.Unauthorized("未授权的请求")
	}
	claims, err := s.tokens.ParseRefresh(incoming)
	if err != nil {
		return nil, apperror.Unauthorized("无效的刷新令牌")
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("无效的刷新令牌")
		}
		return nil, err
	}
	if user.RefreshToken == "" || user.RefreshToken != incoming {
		return nil, apperror.Unauthorized("刷新令牌已过期或已被使用")
	}

	access, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	if err := requireFields("旧密码和新密码都是必填的",
		"oldPassword", oldPassword, "newPassword", newPassword); err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "用户不存在")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return apperror.BadRequest("旧密码错误")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user, "password")
}

func (s *userService) GetCurrentUser(ctx context.Context, userID uint64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	return user, nil
}

func (s *userService) UpdateAccount(ctx context.Context, userID uint64, fullName, email string) (*model.User, error) {
	if err := requireFields("所有字段都是必填的", "fullname", fullName, "email", email); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	user.FullName = strings.TrimSpace(fullName)
	user.Email = normalizeIdentity(email)
	if err := s.userRepo.Update(ctx, user, "full_name", "email"); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID uint64, localPath string) (*model.User, error) {
	return s.updateImage(ctx, userID, localPath, "缺少头像文件", "avatar", func(u *model.User, url string) {
		u.Avatar = url
	})
}

func (s *userService) UpdateCoverImage(ctx context.Context, userID uint64, localPath string) (*model.User, error) {
	return s.updateImage(ctx, userID, localPath, "缺少封面图片文件", "cover_image", func(u *model.User, url string) {
		u.CoverImage = url
	})
}

// 头像和封面的更新流程一样：上传新图片，写回对应的列
func (s *userService) updateImage(ctx context.Context, userID uint64, localPath, missingMsg, column string, set func(*model.User, string)) (*model.User, error) {
	if localPath == "" {
		return nil, apperror.BadRequest(missingMsg)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "用户不存在")
	}
	uploaded, err := s.media.Upload(ctx, localPath, storage.KindImage)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("图片上传失败")
		return nil, apperror.BadRequest("图片上传失败")
	}
	set(user, uploaded.URL)
	if err := s.userRepo.Update(ctx, user, column); err != nil {
		return nil, err
	}
	return user, nil
}

// 频道主页：用户信息 + 订阅者数 + 订阅了多少频道 + 当前用户是否已订阅
func (s *userService) GetChannelProfile(ctx context.Context, username string, viewerID uint64) (*dto.ChannelProfile, error) {
	username = normalizeIdentity(username)
	if username == "" {
		return nil, apperror.BadRequest("缺少用户名")
	}
	channel, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "频道不存在")
	}
	subscribers, err := s.subRepo.CountSubscribers(ctx, channel.ID)
	if err != nil {
		return nil, err
	}
	subscribedTo, err := s.subRepo.CountSubscribedTo(ctx, channel.ID)
	if err != nil {
		return nil, err
	}
	isSubscribed, err := s.subRepo.Exists(ctx, viewerID, channel.ID)
	if err != nil {
		return nil, err
	}
	return &dto.ChannelProfile{
		UserResponse:              dto.ToUserResponse(channel),
		SubscribersCount:          subscribers,
		ChannelsSubscribedToCount: subscribedTo,
		IsSubscribed:              isSubscribed,
	}, nil
}

func (s *userService) GetWatchHistory(ctx context.Context, userID uint64) ([]dto.WatchHistoryItem, error) {
	rows, err := s.watchRepo.ListRecent(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return dto.ToWatchHistoryItems(rows), nil
}

func (s *userService) RemoveFromHistory(ctx context.Context, userID, videoID uint64) error {
	n, err := s.watchRepo.Delete(ctx, userID, videoID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("观看历史中没有该视频")
	}
	return nil
}

func (s *userService) ClearHistory(ctx context.Context, userID uint64) error {
	return s.watchRepo.DeleteByUser(ctx, userID)
}
