package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"YourTube/internal/apperror"
	"YourTube/internal/dto"
	"YourTube/internal/handler"
	"YourTube/internal/middleware"
	"YourTube/internal/model"
	"YourTube/internal/service"
	"YourTube/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRecommendationService struct {
	service.RecommendationService
	feedViewers []uint64
	savedTags   [][]string
}

func (f *fakeRecommendationService) GetFeed(_ context.Context, viewerID uint64, page, limit int) (*dto.FeedResponse, error) {
	f.feedViewers = append(f.feedViewers, viewerID)
	return &dto.FeedResponse{Docs: []dto.RankedVideo{}, Page: page, Limit: limit, IsPersonalized: viewerID != 0}, nil
}

func (f *fakeRecommendationService) SavePreferences(_ context.Context, userID uint64, selectedTags []string) (*model.User, error) {
	f.savedTags = append(f.savedTags, selectedTags)
	if len(selectedTags) == 0 {
		return nil, apperror.BadRequest("请至少选择一个标签")
	}
	user := &model.User{PreferredTags: selectedTags, HasCompletedOnboarding: true}
	user.ID = userID
	return user, nil
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// 只有推荐相关的handler有真实的service，其余路由在这里不会被请求到
func newTestRouter(t *testing.T) (*gin.Engine, *fakeRecommendationService, string) {
	t.Helper()
	tm := token.NewManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	access, _, err := tm.GeneratePair(token.Subject{UserID: 42, Username: "alice"})
	require.NoError(t, err)

	svc := &fakeRecommendationService{}
	r := SetupRouter(Handlers{
		User:           handler.NewUserHandler(nil, handler.CookieOptions{}),
		Video:          handler.NewVideoHandler(nil),
		Recommendation: handler.NewRecommendationHandler(svc),
		Comment:        handler.NewCommentHandler(nil),
		Like:           handler.NewLikeHandler(nil),
		Subscription:   handler.NewSubscriptionHandler(nil),
		Playlist:       handler.NewPlaylistHandler(nil),
		Tweet:          handler.NewTweetHandler(nil),
		Dashboard:      handler.NewDashboardHandler(nil),
	}, Options{
		Tokens:         tm,
		AuthLimiter:    middleware.NewIPRateLimiter(100, time.Minute),
		UploadDir:      t.TempDir(),
		UploadMaxBytes: 1 << 20,
	})
	return r, svc, access
}

func serve(t *testing.T, r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestFeedViewerFromOptionalAuth(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		setup  func(r *http.Request, access string)
		status int
		viewer uint64
	}{
		{name: "匿名访问feed", path: "/api/v1/recommendations/feed", setup: func(*http.Request, string) {}, status: http.StatusOK, viewer: 0},
		{name: "cookie登录访问feed", path: "/api/v1/recommendations/feed", setup: func(r *http.Request, access string) {
			r.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: access})
		}, status: http.StatusOK, viewer: 42},
		{name: "无效令牌按匿名处理", path: "/api/v1/recommendations/feed", setup: func(r *http.Request, _ string) {
			r.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: "garbage"})
		}, status: http.StatusOK, viewer: 0},
		{name: "匿名访问videos/recommended", path: "/api/v1/videos/recommended?page=2&limit=5", setup: func(*http.Request, string) {}, status: http.StatusOK, viewer: 0},
		{name: "Bearer访问videos/recommended", path: "/api/v1/videos/recommended", setup: func(r *http.Request, access string) {
			r.Header.Set("Authorization", "Bearer "+access)
		}, status: http.StatusOK, viewer: 42},
		{name: "cookie访问personalized", path: "/api/v1/recommendations/personalized", setup: func(r *http.Request, access string) {
			r.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: access})
		}, status: http.StatusOK, viewer: 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc, access := newTestRouter(t)
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req, access)
			w, env := serve(t, r, req)

			require.Equal(t, tt.status, w.Code)
			assert.True(t, env.Success)
			assert.Equal(t, []uint64{tt.viewer}, svc.feedViewers)

			var feed dto.FeedResponse
			require.NoError(t, json.Unmarshal(env.Data, &feed))
			assert.Equal(t, tt.viewer != 0, feed.IsPersonalized)
		})
	}
}

func TestPersonalizedRequiresAuth(t *testing.T) {
	r, svc, _ := newTestRouter(t)
	w, env := serve(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/personalized", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
	assert.Empty(t, svc.feedViewers)
}

func TestSavePreferences(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		// 是否走到了service
		called bool
	}{
		{name: "字符串不是数组", body: `{"selectedTags":"music"}`, status: http.StatusBadRequest},
		{name: "对象不是数组", body: `{"selectedTags":{"a":1}}`, status: http.StatusBadRequest},
		{name: "非法JSON", body: `{"selectedTags":[`, status: http.StatusBadRequest},
		{name: "空数组", body: `{"selectedTags":[]}`, status: http.StatusBadRequest, called: true},
		{name: "正常", body: `{"selectedTags":["music","gaming"]}`, status: http.StatusOK, called: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc, access := newTestRouter(t)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/preferences", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: access})
			w, env := serve(t, r, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.status, env.StatusCode)
			assert.Equal(t, tt.called, len(svc.savedTags) == 1)
		})
	}
}

func TestSavePreferencesRequiresAuth(t *testing.T) {
	r, svc, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/preferences", strings.NewReader(`{"selectedTags":["music"]}`))
	req.Header.Set("Content-Type", "application/json")
	w, _ := serve(t, r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, svc.savedTags)
}
