package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sixpine/internal/cache"
	"github.com/sixpine/internal/config"
	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/repository"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

func TestJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuthMiddleware("", nil))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

func setupMiddlewareAuthDB(t *testing.T) *gorm.DB {
	t.Helper()
	cache.Reset()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Admin{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

// principalRouter 挂载中间件并把上下文中的操作者原样返回
func principalRouter(middleware gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware)
	r.GET("/whoami", func(c *gin.Context) {
		principal, ok := handlershared.GetPrincipal(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"kind": principal.Kind, "actor": principal.Actor(), "name": principal.Name})
	})
	return r
}

func requestWhoami(t *testing.T, r *gin.Engine, token string) map[string]interface{} {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func TestJWTAuthMiddlewareSetsAdminPrincipal(t *testing.T) {
	db := setupMiddlewareAuthDB(t)
	admin := &models.Admin{Username: "ops", PasswordHash: "x"}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	cfg := &config.Config{JWT: config.JWTConfig{SecretKey: "mw-admin-secret", ExpireHours: 1}}
	adminRepo := repository.NewAdminRepository(db)
	token, _, err := service.NewAuthService(cfg, adminRepo).GenerateJWT(admin)
	if err != nil {
		t.Fatalf("generate admin token failed: %v", err)
	}

	resp := requestWhoami(t, principalRouter(JWTAuthMiddleware(cfg.JWT.SecretKey, adminRepo)), token)
	if resp["kind"] != "admin" || resp["actor"] != fmt.Sprintf("admin:%d", admin.ID) || resp["name"] != "ops" {
		t.Fatalf("unexpected admin principal: %v", resp)
	}
}

func TestUserJWTAuthMiddlewareSetsUserPrincipal(t *testing.T) {
	db := setupMiddlewareAuthDB(t)
	user := &models.User{Email: "mw@example.com", PasswordHash: "x", Status: "active"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	cfg := &config.Config{UserJWT: config.JWTConfig{SecretKey: "mw-user-secret", ExpireHours: 1}}
	userRepo := repository.NewUserRepository(db)
	token, _, err := service.NewUserAuthService(cfg, userRepo).GenerateUserJWT(user)
	if err != nil {
		t.Fatalf("generate user token failed: %v", err)
	}

	r := principalRouter(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, userRepo))
	resp := requestWhoami(t, r, token)
	if resp["kind"] != "user" || resp["actor"] != fmt.Sprintf("user:%d", user.ID) {
		t.Fatalf("unexpected user principal: %v", resp)
	}

	adminShaped := requestWhoami(t, principalRouter(JWTAuthMiddleware(cfg.UserJWT.SecretKey, repository.NewAdminRepository(db))), token)
	if _, ok := adminShaped["actor"]; ok || adminShaped["status_code"] != float64(401) {
		t.Fatalf("user token must not yield an admin principal: %v", adminShaped)
	}
}
