package middleware

import (
	"net/http"
	"sync"
	"time"

	"YourTube/internal/apperror"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPRateLimiter 每个IP一个令牌桶
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewIPRateLimiter 每个IP每个window内最多reqsPerWindow次请求
func NewIPRateLimiter(reqsPerWindow int, window time.Duration) *IPRateLimiter {
	if reqsPerWindow < 1 {
		reqsPerWindow = 1
	}
	return &IPRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Every(window / time.Duration(reqsPerWindow)),
		burst:    reqsPerWindow,
	}
}

func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.Allow()
}

// Cleanup 删除超过idle没有访问过的IP
func (l *IPRateLimiter) Cleanup(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	threshold := time.Now().Add(-idle)
	for ip, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, ip)
		}
	}
}

// RunCleanup 定期清理，直到stop被关闭
func (l *IPRateLimiter) RunCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Cleanup(time.Hour)
		case <-stop:
			return
		}
	}
}

func RateLimitMiddleware(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			abortWithError(c, apperror.New(http.StatusTooManyRequests, "请求过于频繁，请稍后再试"))
			return
		}
		c.Next()
	}
}
