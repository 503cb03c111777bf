package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{
			name:           "exact match",
			origin:         "https://wishlink.app",
			allowedOrigins: []string{"https://wishlink.app"},
			want:           true,
		},
		{
			name:           "wildcard match",
			origin:         "https://wishlink.app",
			allowedOrigins: []string{"https://wishlink*"},
			want:           true,
		},
		{
			name:           "matches later entry",
			origin:         "http://localhost:3000",
			allowedOrigins: []string{"https://wishlink.app", "http://localhost:3000"},
			want:           true,
		},
		{
			name:           "no match",
			origin:         "http://evil.com",
			allowedOrigins: []string{"https://wishlink.app"},
			want:           false,
		},
		{
			name:           "empty origin",
			origin:         "",
			allowedOrigins: []string{"https://wishlink*"},
			want:           false,
		},
		{
			name:           "empty allowed list",
			origin:         "https://wishlink.app",
			allowedOrigins: []string{},
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isAllowedOrigin(tt.origin, tt.allowedOrigins)
			if got != tt.want {
				t.Errorf("isAllowedOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	newRouter := func(allowedOrigins []string) *gin.Engine {
		router := gin.New()
		router.Use(CORSMiddleware(allowedOrigins))
		router.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})
		return router
	}

	t.Run("allowed origin gets CORS headers", func(t *testing.T) {
		router := newRouter([]string{"https://wishlink.app"})

		req, _ := http.NewRequest("GET", "/ping", nil)
		req.Header.Set("Origin", "https://wishlink.app")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://wishlink.app" {
			t.Errorf("Access-Control-Allow-Origin = %q, want the origin echoed", got)
		}
	})

	t.Run("disallowed origin gets no CORS headers", func(t *testing.T) {
		router := newRouter([]string{"https://wishlink.app"})

		req, _ := http.NewRequest("GET", "/ping", nil)
		req.Header.Set("Origin", "http://evil.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		router := newRouter([]string{"https://wishlink.app"})

		req, _ := http.NewRequest("OPTIONS", "/ping", nil)
		req.Header.Set("Origin", "https://wishlink.app")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNoContent)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
			t.Error("Access-Control-Allow-Methods missing on preflight")
		}
	})
}
