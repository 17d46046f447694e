package admin

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"maeva_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func login(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hash, err := utils.HashPassword("maeva-admin")
	if err != nil {
		t.Fatal(err)
	}
	h := NewHandler("secret", "Admin@Maeva.dz", hash, quietLogger())
	r := gin.New()
	r.POST("/api/admin/login", h.Login)

	w := login(r, `{"email":"admin@maeva.dz","password":"maeva-admin"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	claims, err := utils.ParseAdminJWT("secret", body.Token)
	if err != nil || claims.Role != utils.RoleAdmin {
		t.Errorf("unexpected token: %v", err)
	}

	cases := []struct {
		body string
		want int
	}{
		{`{"email":"admin@maeva.dz","password":"wrong"}`, http.StatusUnauthorized},
		{`{"email":"other@maeva.dz","password":"maeva-admin"}`, http.StatusUnauthorized},
		{`{"email":"admin@maeva.dz"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if w := login(r, tc.body); w.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.body, tc.want, w.Code)
		}
	}
}

func TestLoginNotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/admin/login", NewHandler("secret", "", "", quietLogger()).Login)

	if w := login(r, `{"email":"a@b.c","password":"x"}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
