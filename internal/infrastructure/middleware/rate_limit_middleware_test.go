package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hansubae/Ghighlights/pkg/config"

	"github.com/gin-gonic/gin"
)

func rateLimitedRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewHTTPRateLimitMiddleware(cfg))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, remoteAddr, xff string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitDisabledPassesEverything(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = false

	router := rateLimitedRouter(cfg)
	for i := 0; i < 100; i++ {
		if code := doRequest(router, "1.2.3.4:1000", ""); code != http.StatusOK {
			t.Fatalf("request %d: got status %d", i, code)
		}
	}
}

func TestRateLimitPerIP(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = true
	cfg.RateLimiting.HTTP.RequestsPerSecond = 1
	cfg.RateLimiting.HTTP.Burst = 2

	router := rateLimitedRouter(cfg)

	// Burst of 2 is allowed, the third request is throttled.
	for i := 0; i < 2; i++ {
		if code := doRequest(router, "1.2.3.4:1000", ""); code != http.StatusOK {
			t.Fatalf("request %d: got status %d", i, code)
		}
	}
	if code := doRequest(router, "1.2.3.4:1000", ""); code != http.StatusTooManyRequests {
		t.Errorf("got status %d, want %d", code, http.StatusTooManyRequests)
	}

	// A different origin has its own budget.
	if code := doRequest(router, "5.6.7.8:1000", ""); code != http.StatusOK {
		t.Errorf("second origin: got status %d", code)
	}
}

func TestRateLimitKeyedOnForwardedFor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = true
	cfg.RateLimiting.HTTP.RequestsPerSecond = 1
	cfg.RateLimiting.HTTP.Burst = 1

	router := rateLimitedRouter(cfg)

	// Same proxy address, different forwarded clients.
	if code := doRequest(router, "10.0.0.1:1000", "9.9.9.9"); code != http.StatusOK {
		t.Fatalf("first client: got status %d", code)
	}
	if code := doRequest(router, "10.0.0.1:1000", "8.8.8.8"); code != http.StatusOK {
		t.Errorf("second client: got status %d", code)
	}
	if code := doRequest(router, "10.0.0.1:1000", "9.9.9.9"); code != http.StatusTooManyRequests {
		t.Errorf("repeat client: got status %d, want %d", code, http.StatusTooManyRequests)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"remote addr only", "192.168.1.10:54321", "", "192.168.1.10"},
		{"single forwarded hop", "10.0.0.1:1000", "203.0.113.7", "203.0.113.7"},
		{"first of several hops", "10.0.0.1:1000", "203.0.113.7, 10.0.0.2, 10.0.0.3", "203.0.113.7"},
		{"padded forwarded value", "10.0.0.1:1000", "  203.0.113.7  ", "203.0.113.7"},
		{"garbage forwarded value", "192.168.1.10:54321", "not-an-ip", "192.168.1.10"},
		{"no port on remote addr", "192.168.1.10", "", "192.168.1.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
