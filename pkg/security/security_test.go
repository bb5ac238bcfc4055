package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLimiterLocalBuckets(t *testing.T) {
	l := NewLimiter("test", 3, time.Hour, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "a"), "request %d", i)
	}
	assert.False(t, l.Allow(ctx, "a"))
	assert.True(t, l.Allow(ctx, "b"), "keys are independent")

	l.Update(5, time.Hour)
	max, window := l.Limits()
	assert.Equal(t, 5, max)
	assert.Equal(t, time.Hour, window)
	assert.True(t, l.Allow(ctx, "a"), "update resets buckets")

	l.Update(0, time.Hour)
	max, _ = l.Limits()
	assert.Equal(t, 5, max, "invalid limits are ignored")
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewLimiter("mw", 1, time.Hour, nil)

	r := gin.New()
	r.Use(RateLimiter(l, func(c *gin.Context) string { return c.ClientIP() }))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	origins := []string{"http://localhost:3000"}

	r := gin.New()
	r.Use(CORS(func() []string { return origins }))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	origins = []string{"http://evil.test"}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://evil.test", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
