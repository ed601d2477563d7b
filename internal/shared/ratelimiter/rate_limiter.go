// Package ratelimiter はクライアント単位のリクエスト頻度制限を提供します。
package ratelimiter

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"task_backend/internal/api"
)

// idleTTL を超えてアクセスのないクライアントのバケットは破棄されます。
const idleTTL = 10 * time.Minute

// RateLimiterInterface は、キーごとに操作を許可するかを判定するインターフェースです。
type RateLimiterInterface interface {
	Allow(key string) bool
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter はキー（クライアントIP）ごとのトークンバケットで頻度を制限します。
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	every     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter はinterval当たりlimit回まで許可するRateLimiterを生成します。
// バーストもlimit回まで許容します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &RateLimiter{
		buckets:   make(map[string]*bucket),
		every:     rate.Every(interval / time.Duration(limit)),
		burst:     limit,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow はkeyの操作を1回消費し、上限内であればtrueを返します。
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// sweep drops idle buckets at most once per idleTTL. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < idleTTL {
		return
	}
	for k, b := range rl.buckets {
		if now.Sub(b.lastSeen) >= idleTTL {
			delete(rl.buckets, k)
		}
	}
	rl.lastSweep = now
}

// Middleware は上限を超えたクライアントに429を返すGinミドルウェアです。
func Middleware(rl RateLimiterInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			slog.Warn("rate limit exceeded", "remote_addr", ip, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: api.MsgTooManyRequests})
			return
		}
		c.Next()
	}
}
