package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sixpine/internal/cache"
	"github.com/sixpine/internal/config"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/provider"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type apiEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type routerFixture struct {
	t         *testing.T
	engine    *gin.Engine
	container *provider.Container
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cache.Reset()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{
		App:     config.AppConfig{Name: "sixpine", DefaultAdminUsername: "admin", DefaultAdminPassword: "admin123"},
		Server:  config.ServerConfig{Mode: "debug"},
		JWT:     config.JWTConfig{SecretKey: "router-admin-secret", ExpireHours: 1},
		UserJWT: config.JWTConfig{SecretKey: "router-user-secret", ExpireHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireLower: true, RequireNumber: true},
		},
		Pricing:  config.PricingConfig{Currency: "INR", FlatRate: "50.00", FreeShippingThreshold: "500.00", TaxRate: "0.05"},
		Checkout: config.CheckoutConfig{IdempotencyHeader: "Idempotency-Key", IdempotencyWindow: time.Minute, InflightLockTTL: time.Second},
	}
	container := provider.NewContainerWithDB(cfg, db)
	if err := container.AuthService.EnsureDefaultAdmin(); err != nil {
		t.Fatalf("ensure default admin failed: %v", err)
	}
	return &routerFixture{t: t, engine: SetupRouter(cfg, container), container: container}
}

func (f *routerFixture) do(method, path, token string, body interface{}, headers map[string]string) apiEnvelope {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			f.t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		f.t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	var env apiEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		f.t.Fatalf("decode %s %s failed: %v body=%s", method, path, err, w.Body.String())
	}
	return env
}

func (f *routerFixture) ok(method, path, token string, body interface{}, headers map[string]string, dest interface{}) {
	f.t.Helper()
	env := f.do(method, path, token, body, headers)
	if env.StatusCode != 0 {
		f.t.Fatalf("%s %s status_code want 0 got %d msg=%s data=%s", method, path, env.StatusCode, env.Msg, string(env.Data))
	}
	if dest != nil {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			f.t.Fatalf("decode data of %s %s failed: %v", method, path, err)
		}
	}
}

func (f *routerFixture) adminToken(username, password string) string {
	f.t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	f.ok(http.MethodPost, "/api/v1/admin/login", "", map[string]string{"username": username, "password": password}, nil, &resp)
	return resp.Token
}

func (f *routerFixture) shopperToken(email string) string {
	f.t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	f.ok(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": email, "password": "shopper123"}, nil, &resp)
	return resp.Token
}

func (f *routerFixture) seedProduct(adminToken string, stock int) uint {
	f.t.Helper()
	var category struct {
		ID uint `json:"id"`
	}
	f.ok(http.MethodPost, "/api/v1/admin/categories", adminToken, map[string]interface{}{"slug": "kurtas", "name": "Kurtas"}, nil, &category)
	var product struct {
		ID uint `json:"id"`
	}
	f.ok(http.MethodPost, "/api/v1/admin/products", adminToken, map[string]interface{}{
		"category_id":    category.ID,
		"slug":           "indigo-kurta",
		"title":          "Indigo Kurta",
		"price_amount":   "200.00",
		"stock_quantity": stock,
	}, nil, &product)
	return product.ID
}

func TestCheckoutFlowThroughRouter(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.adminToken("admin", "admin123")
	productID := f.seedProduct(admin, 5)
	shopper := f.shopperToken("asha@example.com")

	f.ok(http.MethodPost, "/api/v1/cart/items", shopper, map[string]interface{}{"product_id": productID, "quantity": 2}, nil, nil)
	f.ok(http.MethodPost, "/api/v1/addresses", shopper, map[string]interface{}{
		"full_name":   "Asha Rao",
		"phone":       "+91 90000 22222",
		"line1":       "12 MG Road",
		"city":        "Bengaluru",
		"postal_code": "560001",
		"country":     "IN",
	}, nil, nil)

	var first struct {
		Order struct {
			OrderID       string `json:"order_id"`
			Status        string `json:"status"`
			PaymentStatus string `json:"payment_status"`
			Subtotal      string `json:"subtotal"`
		} `json:"order"`
		Replayed bool `json:"replayed"`
	}
	headers := map[string]string{"Idempotency-Key": "checkout-key-1"}
	f.ok(http.MethodPost, "/api/v1/checkout", shopper, map[string]string{"payment_method": "cod"}, headers, &first)
	if first.Order.OrderID == "" || first.Replayed {
		t.Fatalf("unexpected first checkout: %+v", first)
	}
	if first.Order.Status != "pending" || first.Order.PaymentStatus != "pending" {
		t.Fatalf("new order should be pending/pending, got %s/%s", first.Order.Status, first.Order.PaymentStatus)
	}
	if first.Order.Subtotal != "400.00" {
		t.Fatalf("subtotal want 400.00 got %s", first.Order.Subtotal)
	}

	var replay struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Replayed bool `json:"replayed"`
	}
	f.ok(http.MethodPost, "/api/v1/checkout", shopper, map[string]string{"payment_method": "cod"}, headers, &replay)
	if !replay.Replayed || replay.Order.OrderID != first.Order.OrderID {
		t.Fatalf("replay should return the same order, got %+v", replay)
	}

	orderPath := "/api/v1/admin/orders/" + first.Order.OrderID
	var confirmed struct {
		Status string `json:"status"`
	}
	f.ok(http.MethodPost, orderPath+"/update_status", admin, map[string]string{"status": "confirmed"}, nil, &confirmed)
	if confirmed.Status != "confirmed" {
		t.Fatalf("status want confirmed got %s", confirmed.Status)
	}

	env := f.do(http.MethodPost, orderPath+"/update_status", admin, map[string]string{"status": "delivered"}, nil)
	if env.StatusCode != 400 {
		t.Fatalf("skipping to delivered should fail with 400, got %d", env.StatusCode)
	}
	var errData struct {
		ErrorKind string `json:"error_kind"`
	}
	if err := json.Unmarshal(env.Data, &errData); err != nil {
		t.Fatalf("decode error data failed: %v", err)
	}
	if errData.ErrorKind != "InvalidTransition" {
		t.Fatalf("error_kind want InvalidTransition got %s", errData.ErrorKind)
	}

	var mine struct {
		Status        string `json:"status"`
		StatusHistory []struct {
			Status string `json:"status"`
		} `json:"status_history"`
	}
	f.ok(http.MethodGet, "/api/v1/orders/"+first.Order.OrderID, shopper, nil, nil, &mine)
	if mine.Status != "confirmed" {
		t.Fatalf("shopper should see confirmed, got %s", mine.Status)
	}
	if len(mine.StatusHistory) < 2 {
		t.Fatalf("history should record creation and confirmation, got %d entries", len(mine.StatusHistory))
	}
}

func TestCheckoutWithEmptyCartIsRejected(t *testing.T) {
	f := newRouterFixture(t)
	shopper := f.shopperToken("empty@example.com")
	env := f.do(http.MethodPost, "/api/v1/checkout", shopper, map[string]string{"payment_method": "cod"}, map[string]string{"Idempotency-Key": "empty-1"})
	if env.StatusCode != 400 {
		t.Fatalf("status_code want 400 got %d msg=%s", env.StatusCode, env.Msg)
	}
}

func TestUserRoutesRequireToken(t *testing.T) {
	f := newRouterFixture(t)
	env := f.do(http.MethodGet, "/api/v1/cart", "", nil, nil)
	if env.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", env.StatusCode)
	}
	env = f.do(http.MethodGet, "/api/v1/admin/orders", "", nil, nil)
	if env.StatusCode != 401 {
		t.Fatalf("admin status_code want 401 got %d", env.StatusCode)
	}
}

func TestOrderSupportCannotUpdateStatus(t *testing.T) {
	f := newRouterFixture(t)
	hash, err := service.HashPassword("support123")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	staff := &models.Admin{Username: "support", DisplayName: "Support", PasswordHash: hash}
	if err := f.container.AdminRepo.Create(staff); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if err := f.container.AuthzService.SetAdminRoles(staff.ID, []string{"order_support"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	token := f.adminToken("support", "support123")

	env := f.do(http.MethodPost, "/api/v1/admin/orders/01HZZZZZZZZZZZZZZZZZZZZZZZ/update_status", token, map[string]string{"status": "confirmed"}, nil)
	if env.StatusCode != 403 {
		t.Fatalf("status_code want 403 got %d", env.StatusCode)
	}

	env = f.do(http.MethodGet, "/api/v1/admin/orders", token, nil, nil)
	if env.StatusCode != 0 {
		t.Fatalf("order_support should list orders, got %d", env.StatusCode)
	}
}

func TestPricingSettingUpdateIsPublic(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.adminToken("admin", "admin123")

	f.ok(http.MethodPut, "/api/v1/admin/settings/pricing", admin, map[string]string{"tax_rate": "0.12"}, nil, nil)

	var cfg struct {
		TaxRate  string `json:"tax_rate"`
		Currency string `json:"currency"`
	}
	f.ok(http.MethodGet, "/api/v1/public/config", "", nil, nil, &cfg)
	if cfg.TaxRate != "0.12" || cfg.Currency != "INR" {
		t.Fatalf("unexpected public config: %+v", cfg)
	}

	env := f.do(http.MethodPut, "/api/v1/admin/settings/pricing", admin, map[string]string{"tax_rate": "1.5"}, nil)
	if env.StatusCode != 400 {
		t.Fatalf("invalid tax rate want 400 got %d", env.StatusCode)
	}
}

func TestAdminPermissionCatalogListsOrderActions(t *testing.T) {
	f := newRouterFixture(t)
	items := buildAdminPermissionCatalog(f.engine)
	want := map[string]bool{
		"POST:/admin/orders/:id/update_status":         false,
		"POST:/admin/orders/:id/update_payment_status": false,
		"POST:/admin/orders/:id/add_note":              false,
	}
	for _, item := range items {
		if _, ok := want[item.Permission]; ok {
			want[item.Permission] = true
		}
		if item.Object == "/admin/login" {
			t.Fatalf("login route must not be listed")
		}
	}
	for permission, seen := range want {
		if !seen {
			t.Fatalf("permission %s missing from catalog", permission)
		}
	}
}
