package security

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

// CORS allows only whitelisted origins, with credentials. The origin list is
// read through the getter on every request so it can be hot-reloaded.
func CORS(allowedOrigins func() []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" {
			for _, o := range allowedOrigins() {
				if o == origin || o == "*" {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
					break
				}
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter allows max requests per window and key. With a Redis client it
// counts in fixed windows shared by every instance; otherwise it keeps
// in-process token buckets.
type Limiter struct {
	name  string
	redis *redis.Client

	mu       sync.Mutex
	max      int
	window   time.Duration
	visitors map[string]*visitor
}

func NewLimiter(name string, max int, window time.Duration, rdb *redis.Client) *Limiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		name:     name,
		redis:    rdb,
		max:      max,
		window:   window,
		visitors: make(map[string]*visitor),
	}
}

// Update changes the limits; in-memory buckets restart from full.
func (l *Limiter) Update(max int, window time.Duration) {
	if max <= 0 || window <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if max == l.max && window == l.window {
		return
	}
	l.max, l.window = max, window
	l.visitors = make(map[string]*visitor)
}

func (l *Limiter) Limits() (int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.max, l.window
}

// Allow reports whether one more request for key fits in the limit.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l.redis != nil {
		allowed, err := l.allowRedis(ctx, key)
		if err == nil {
			return allowed
		}
	}
	return l.allowLocal(key)
}

func (l *Limiter) allowRedis(ctx context.Context, key string) (bool, error) {
	max, window := l.Limits()
	bucket := time.Now().UnixNano() / int64(window)
	redisKey := fmt.Sprintf("mindagrow:ratelimit:%s:%s:%d", l.name, key, bucket)

	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(max), nil
}

func (l *Limiter) allowLocal(key string) bool {
	l.mu.Lock()
	v, exists := l.visitors[key]
	if !exists {
		v = &visitor{
			limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.max)), l.max),
		}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	l.mu.Unlock()

	return v.limiter.Allow()
}

// Cleanup drops in-memory buckets idle for longer than three windows.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	expiry := l.window * 3
	if expiry < time.Minute {
		expiry = time.Minute
	}
	for key, v := range l.visitors {
		if time.Since(v.lastSeen) > expiry {
			delete(l.visitors, key)
		}
	}
}

// StartCleanup runs Cleanup every minute until ctx is done.
func (l *Limiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup()
			}
		}
	}()
}

// RateLimiter rejects requests over the limit with 429. keyFn selects the
// bucket, typically client IP plus the authenticated user.
func RateLimiter(l *Limiter, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.Request.Context(), keyFn(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}
