package middleware

import (
	"strings"

	"YourTube/internal/apperror"
	"YourTube/internal/dto"
	"YourTube/pkg/token"

	"github.com/gin-gonic/gin"
)

// 存进gin.Context的键
const (
	ContextUserID   = "userID"
	ContextUsername = "username"

	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// 中间件工厂，传入令牌管理器就能创建一个校验access token的中间件
// 流程：1、先从cookie取accessToken，没有再取"Authorization: Bearer [token]" 2、校验签名和过期 3、把用户信息放入context
func AuthMiddleware(tm *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			// 立刻Abort，阻止后续的任何处理器（包括其他中间件和最终的handler）被执行
			abortWithError(c, apperror.Unauthorized("未授权的请求"))
			return
		}
		claims, err := tm.ParseAccess(tokenString)
		if err != nil {
			abortWithError(c, apperror.Unauthorized("无效的访问令牌"))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth 有合法令牌就解析出用户，没有或无效都按匿名放行
func OptionalAuth(tm *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractToken(c); tokenString != "" {
			if claims, err := tm.ParseAccess(tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	// 通常Token的格式是 "Bearer [token]"
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func setClaims(c *gin.Context, claims *token.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUsername, claims.Username)
}

// UserID 取出认证后的用户ID，匿名访问时返回0
func UserID(c *gin.Context) uint64 {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uint64); ok {
			return id
		}
	}
	return 0
}

func abortWithError(c *gin.Context, err *apperror.Error) {
	c.AbortWithStatusJSON(err.StatusCode, dto.NewErrorResponse(err))
}
