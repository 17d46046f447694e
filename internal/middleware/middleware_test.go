package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maeva_back_end/internal/cache"
	"maeva_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSessionAssignsAndKeepsID(t *testing.T) {
	store := NewSessionStore("test-secret-32-bytes-long-000000", false, 3600)
	r := gin.New()
	r.Use(Session(store, quietLogger()))
	r.GET("/sid", func(c *gin.Context) { c.String(http.StatusOK, SessionID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sid", nil))
	first := w.Body.String()
	cookies := w.Result().Cookies()
	if first == "" || len(cookies) != 1 {
		t.Fatalf("expected a session id and a cookie, got %q / %d cookies", first, len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/sid", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != first {
		t.Errorf("expected the same session id, got %q then %q", first, w.Body.String())
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("existing session should not be rewritten")
	}
}

func TestRateLimit(t *testing.T) {
	counter := cache.NewMemory()
	r := gin.New()
	r.Use(RateLimit(counter, Limit{
		Name: "test", Max: 2, Window: time.Minute, Message: "trop",
		Key: func(*gin.Context) string { return "k" },
	}, quietLogger()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence: %v", codes)
	}
}

type brokenCounter struct{}

func (brokenCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := gin.New()
	r.Use(SearchRateLimit(brokenCounter{}, quietLogger()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected request to pass, got %d", w.Code)
	}
}

func TestAdminAuth(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthRequired("secret", quietLogger()), RequireAdmin, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("email"))
	})

	token, err := utils.GenerateAdminJWT("secret", "admin@maeva.dz", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"bad format", "Token " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestRequireAdminRejectsOtherRoles(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { c.Set("role", "viewer") }, RequireAdmin, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestMetricsCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Handler(), RequestLogger(quietLogger()))
	r.GET("/api/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/products", "200")); got != 2 {
		t.Errorf("expected 2 requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("expected 1 unmatched request, got %v", got)
	}
}
