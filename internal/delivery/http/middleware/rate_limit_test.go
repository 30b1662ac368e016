package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"job-portal-backend/pkg/security"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(rl *RateLimiter, config RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.POST("/login", rl.Middleware(config), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	return w
}

func TestRateLimiter_InMemory(t *testing.T) {
	rl := NewRateLimiter(nil, security.Nop())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := limitedRouter(rl, LoginRateLimitConfig(2, time.Minute))

	assert.Equal(t, http.StatusOK, hit(r).Code)
	w := hit(r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = hit(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, hit(r).Code)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(nil, security.Nop())
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.checkInMemory("rl:ip:1", GlobalRateLimitConfig(10, time.Second))
	now = now.Add(2 * time.Second)
	rl.sweep()

	_, ok := rl.store.Load("rl:ip:1")
	assert.False(t, ok)
}

func TestRateLimiter_HitDuringSweepIsKept(t *testing.T) {
	rl := NewRateLimiter(nil, security.Nop())
	now := time.Now()
	rl.now = func() time.Time { return now }
	config := GlobalRateLimitConfig(10, time.Second)

	rl.checkInMemory("rl:ip:1", config)
	value, _ := rl.store.Load("rl:ip:1")
	stale := value.(*rateLimitEntry)
	now = now.Add(2 * time.Second)

	// The request below loads the expired entry and waits on it while the sweep runs.
	stale.mu.Lock()
	done := make(chan int)
	go func() {
		count, _ := rl.checkInMemory("rl:ip:1", config)
		done <- count
	}()
	time.Sleep(10 * time.Millisecond)
	stale.mu.Unlock()
	rl.sweep()

	assert.Equal(t, 1, <-done)
	value, ok := rl.store.Load("rl:ip:1")
	require.True(t, ok)
	current := value.(*rateLimitEntry)
	current.mu.Lock()
	defer current.mu.Unlock()
	assert.Equal(t, 1, current.count)
}

func TestRateLimiter_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client, security.Nop())
	r := limitedRouter(rl, RegisterRateLimitConfig(1, 30*time.Second))

	assert.Equal(t, http.StatusOK, hit(r).Code)
	w := hit(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	count, err := mr.Get("rl:register:192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
	assert.Equal(t, 30*time.Second, mr.TTL("rl:register:192.0.2.1"))
}

func TestRateLimiter_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	rl := NewRateLimiter(client, security.Nop())

	t.Run("fail closed", func(t *testing.T) {
		w := hit(limitedRouter(rl, LoginRateLimitConfig(5, time.Minute)))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("fail open falls back to memory", func(t *testing.T) {
		w := hit(limitedRouter(rl, GlobalRateLimitConfig(5, time.Minute)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})
}
