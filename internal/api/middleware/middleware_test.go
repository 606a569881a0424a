package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/modguard/internal/config"
)

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)

	if !l.Allow("10.0.0.1") {
		t.Fatal("first request should pass")
	}
	if l.Allow("10.0.0.1") {
		t.Error("second request should be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("other clients have their own budget")
	}

	if n := l.Prune(time.Hour); n != 0 {
		t.Errorf("Prune(1h) removed %d fresh clients", n)
	}
	time.Sleep(5 * time.Millisecond)
	if n := l.Prune(time.Millisecond); n != 2 {
		t.Errorf("Prune(1ms) removed %d, want 2", n)
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		cfg        config.CORSConfig
		origin     string
		wantHeader string
	}{
		{"open by default", config.CORSConfig{}, "https://any.example", "*"},
		{"listed origin", config.CORSConfig{AllowedOrigins: []string{"https://app.example"}}, "https://app.example", "https://app.example"},
		{"unlisted origin", config.CORSConfig{AllowedOrigins: []string{"https://app.example"}}, "https://evil.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.cfg))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestAdminAuthOpenWithoutToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/w", AdminAuth(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/w", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d", w.Code)
	}
}
