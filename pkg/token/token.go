package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("无效的令牌")

// Claims 是access token的Payload，不能放密码之类的敏感信息，Payload不加密
type Claims struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullname,omitempty"`
	jwt.RegisteredClaims
}

// Subject 描述签发令牌所需的用户信息
type Subject struct {
	UserID   uint64
	Username string
	Email    string
	FullName string
}

// Manager 负责签发和校验两种令牌：短期的access，长期的refresh，各自使用独立的密钥
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (m *Manager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// GeneratePair 同时签发access和refresh令牌
func (m *Manager) GeneratePair(s Subject) (access string, refresh string, err error) {
	now := m.now()
	accessClaims := Claims{
		UserID:   s.UserID,
		Username: s.Username,
		Email:    s.Email,
		FullName: s.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(s.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	access, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(m.accessSecret)
	if err != nil {
		return "", "", err
	}

	// refresh只带用户ID，ID字段用纳秒时间戳，保证同一秒内轮换出来的令牌也不相同
	refreshClaims := Claims{
		UserID: s.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        strconv.FormatInt(now.UnixNano(), 36),
			Subject:   strconv.FormatUint(s.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
		},
	}
	refresh, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(m.refreshSecret)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *Manager) ParseAccess(tokenString string) (*Claims, error) {
	return m.parse(tokenString, m.accessSecret)
}

func (m *Manager) ParseRefresh(tokenString string) (*Claims, error) {
	return m.parse(tokenString, m.refreshSecret)
}

func (m *Manager) parse(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// 确保签名方法是对称加密族
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
