package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"oversave/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func limiterConfig(requests, window, burst int) *config.Config {
	cfg := &config.Config{}
	cfg.RateLimit.Requests = requests
	cfg.RateLimit.Window = window
	cfg.RateLimit.Burst = burst
	return cfg
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name          string
		cfg           *config.Config
		requests      int
		expectedCodes []int
		clientIP      string
	}{
		{
			name:          "Under Limit",
			cfg:           limiterConfig(10, 1, 10),
			requests:      3,
			expectedCodes: []int{200, 200, 200},
			clientIP:      "192.168.1.1",
		},
		{
			name:          "At Limit",
			cfg:           limiterConfig(2, 1, 2),
			requests:      2,
			expectedCodes: []int{200, 200},
			clientIP:      "192.168.1.2",
		},
		{
			name:          "Exceeds Limit",
			cfg:           limiterConfig(2, 1, 2),
			requests:      3,
			expectedCodes: []int{200, 200, 429},
			clientIP:      "192.168.1.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewRateLimiter(tt.cfg)

			router := gin.New()
			router.Use(limiter.Middleware())
			router.GET("/test", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			for i := 0; i < tt.requests; i++ {
				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				req.Header.Set("X-Forwarded-For", tt.clientIP)
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				assert.Equal(t, tt.expectedCodes[i], w.Code,
					"Request %d: expected status %d but got %d",
					i+1, tt.expectedCodes[i], w.Code)
			}
		})
	}
}

func TestRateLimiter_SeparateLimitsPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(limiterConfig(1, 1, 1))

	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, ip := range []string{"192.168.1.4", "192.168.1.5"} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, 200, w.Code, "First request from %s should succeed", ip)
	}
}

func TestRateLimiter_RetryAfterHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(limiterConfig(1, 60, 1))

	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.6")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, 200, send().Code)

	w := send()
	assert.Equal(t, 429, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(limiterConfig(10, 1, 10))

	// Override cleanup duration for testing
	limiter.cleanup = 100 * time.Millisecond
	go limiter.cleanupRoutine()

	ips := []string{"192.168.1.1", "192.168.1.2", "192.168.1.3"}
	for _, ip := range ips {
		limiter.getLimiter(ip)
	}

	limiter.mu.RLock()
	created := len(limiter.limiters)
	limiter.mu.RUnlock()
	assert.Equal(t, len(ips), created, "Expected limiters to be created")

	// Wait for cleanup
	time.Sleep(250 * time.Millisecond)

	limiter.mu.RLock()
	remaining := len(limiter.limiters)
	limiter.mu.RUnlock()
	assert.Equal(t, 0, remaining, "Expected limiters to be cleaned up")
}
