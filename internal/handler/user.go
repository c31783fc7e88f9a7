package handler

import (
	"net/http"

	"YourTube/internal/dto"
	"YourTube/internal/middleware"
	"YourTube/internal/service"
	"YourTube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type UserHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	RefreshToken(c *gin.Context)
	ChangePassword(c *gin.Context)
	GetCurrentUser(c *gin.Context)
	UpdateAccount(c *gin.Context)
	UpdateAvatar(c *gin.Context)
	UpdateCoverImage(c *gin.Context)
	GetChannelProfile(c *gin.Context)
	GetWatchHistory(c *gin.Context)
	RemoveFromHistory(c *gin.Context)
	ClearHistory(c *gin.Context)
}

// 对Service进行封装
type userHandler struct {
	UserService service.UserService
	cookies     CookieOptions
}

// CookieOptions 生产环境下cookie必须Secure，并且跨站时SameSite=None
type CookieOptions struct {
	Secure        bool
	AccessMaxAge  int
	RefreshMaxAge int
}

func NewUserHandler(userService service.UserService, cookies CookieOptions) UserHandler {
	return &userHandler{UserService: userService, cookies: cookies}
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type UpdateAccountRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

func (h *userHandler) setAuthCookies(c *gin.Context, access, refresh string) {
	if h.cookies.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	// HttpOnly，前端脚本读不到令牌
	c.SetCookie(middleware.AccessTokenCookie, access, h.cookies.AccessMaxAge, "/", "", h.cookies.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, refresh, h.cookies.RefreshMaxAge, "/", "", h.cookies.Secure, true)
}

func (h *userHandler) clearAuthCookies(c *gin.Context) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.cookies.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", "", h.cookies.Secure, true)
}

// 注册：1、multipart表单取出文本字段和上传中间件保存的头像、封面 2、service层注册 3、返回201和用户信息
func (h *userHandler) Register(c *gin.Context) {
	in := service.RegisterInput{
		FullName:       c.PostForm("fullname"),
		Email:          c.PostForm("email"),
		Username:       c.PostForm("username"),
		Password:       c.PostForm("password"),
		AvatarPath:     middleware.UploadedFile(c, "avatar"),
		CoverImagePath: middleware.UploadedFile(c, "coverImage"),
	}
	logCtx := logger.Log.WithField("username", in.Username)
	logCtx.Info("开始处理用户注册请求")

	user, err := h.UserService.Register(c.Request.Context(), in)
	if err != nil {
		logCtx.WithError(err).Warn("用户注册失败")
		sendErrorResponse(c, err)
		return
	}
	logCtx.WithField("user_id", user.ID).Info("用户注册成功")
	sendResponse(c, http.StatusCreated, dto.ToUserResponse(user), "注册成功")
}

// 登录：1、用户名或邮箱+密码 2、service层校验并签发令牌 3、令牌写入HttpOnly cookie，同时放在响应体里
func (h *userHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.UserService.Login(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	logger.Log.WithField("user_id", res.User.ID).Info("用户登录成功")

	h.setAuthCookies(c, res.AccessToken, res.RefreshToken)
	sendResponse(c, http.StatusOK, dto.LoginResponse{
		User:         dto.ToUserResponse(res.User),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}, "登录成功")
}

func (h *userHandler) Logout(c *gin.Context) {
	if err := h.UserService.Logout(c.Request.Context(), middleware.UserID(c)); err != nil {
		sendErrorResponse(c, err)
		return
	}
	h.clearAuthCookies(c)
	sendResponse(c, http.StatusOK, gin.H{}, "已退出登录")
}

// 刷新令牌：cookie优先，没有再看请求体
func (h *userHandler) RefreshToken(c *gin.Context) {
	incoming, _ := c.Cookie(middleware.RefreshTokenCookie)
	if incoming == "" {
		var req RefreshRequest
		// 请求体可以为空，解析失败就当没传
		_ = c.ShouldBindJSON(&req)
		incoming = req.RefreshToken
	}
	pair, err := h.UserService.RefreshToken(c.Request.Context(), incoming)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	h.setAuthCookies(c, pair.AccessToken, pair.RefreshToken)
	sendResponse(c, http.StatusOK, pair, "访问令牌已刷新")
}

func (h *userHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.UserService.ChangePassword(c.Request.Context(), middleware.UserID(c), req.OldPassword, req.NewPassword); err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{}, "密码修改成功")
}

func (h *userHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.UserService.GetCurrentUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, dto.ToUserResponse(user), "成功获取当前用户")
}

func (h *userHandler) UpdateAccount(c *gin.Context) {
	var req UpdateAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.UserService.UpdateAccount(c.Request.Context(), middleware.UserID(c), req.FullName, req.Email)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, dto.ToUserResponse(user), "账号信息已更新")
}

func (h *userHandler) UpdateAvatar(c *gin.Context) {
	user, err := h.UserService.UpdateAvatar(c.Request.Context(), middleware.UserID(c), middleware.UploadedFile(c, "avatar"))
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, dto.ToUserResponse(user), "头像已更新")
}

func (h *userHandler) UpdateCoverImage(c *gin.Context) {
	user, err := h.UserService.UpdateCoverImage(c.Request.Context(), middleware.UserID(c), middleware.UploadedFile(c, "coverImage"))
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, dto.ToUserResponse(user), "封面已更新")
}

func (h *userHandler) GetChannelProfile(c *gin.Context) {
	profile, err := h.UserService.GetChannelProfile(c.Request.Context(), c.Param("username"), middleware.UserID(c))
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, profile, "成功获取频道信息")
}

func (h *userHandler) GetWatchHistory(c *gin.Context) {
	history, err := h.UserService.GetWatchHistory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, history, "成功获取观看历史")
}

func (h *userHandler) RemoveFromHistory(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	if err := h.UserService.RemoveFromHistory(c.Request.Context(), middleware.UserID(c), videoID); err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{}, "已从观看历史中移除")
}

func (h *userHandler) ClearHistory(c *gin.Context) {
	if err := h.UserService.ClearHistory(c.Request.Context(), middleware.UserID(c)); err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{}, "观看历史已清空")
}
