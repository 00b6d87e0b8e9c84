package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"carhive/api/internal/config"
	"carhive/api/internal/models"
	"carhive/api/internal/security"
)

func testCfg() *config.AppConfig {
	return &config.AppConfig{
		Security: config.SecurityConfig{
			JWTSecret:  "test-secret",
			JWTTTL:     time.Hour,
			CookieName: "token",
		},
	}
}

func authRouter(cfg *config.AppConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", Auth(cfg), func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID, "role": string(id.Role)})
	})
	router.GET("/admin", Auth(cfg), RequireRoles(models.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func issueToken(t *testing.T, cfg *config.AppConfig, role string) string {
	t.Helper()
	token, err := security.GenerateSessionToken(cfg.Security.JWTSecret, "user-1", role, cfg.Security.JWTTTL)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	return token
}

func TestAuthAcceptsBearerAndCookie(t *testing.T) {
	cfg := testCfg()
	router := authRouter(cfg)
	token := issueToken(t, cfg, "user")

	bearer := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	bearer.Header.Set("Authorization", "Bearer "+token)

	cookie := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	cookie.AddCookie(&http.Cookie{Name: "token", Value: token})

	for name, req := range map[string]*http.Request{"bearer": bearer, "cookie": cookie} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", name, w.Code)
		}
	}
}

func TestAuthRejects(t *testing.T) {
	cfg := testCfg()
	router := authRouter(cfg)

	expired, err := security.GenerateSessionToken(cfg.Security.JWTSecret, "user-1", "user", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	foreign, err := security.GenerateSessionToken("other-secret", "user-1", "user", time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong secret", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	cfg := testCfg()
	router := authRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, cfg, "user"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("user on admin route: status = %d, want 403", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, cfg, "admin"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("admin on admin route: status = %d, want 204", w.Code)
	}
}

func TestIdentityFromEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := IdentityFrom(c); ok {
		t.Error("identity reported on bare context")
	}
}
