package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"":               LocaleZhCN,
		"en":             LocaleEnUS,
		"en-GB,en;q=0.8": LocaleEnUS,
		"zh-TW":          LocaleZhCN,
		"en_US":          LocaleEnUS,
		"fr-FR,de;q=0.9": LocaleZhCN,
	}
	for raw, want := range cases {
		if got := NormalizeLocale(raw); got != want {
			t.Fatalf("NormalizeLocale(%q) want %s, got %s", raw, want, got)
		}
	}
}

func TestResolveLocalePrefersQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/cart?lang=en-US", nil)
	c.Request.Header.Set("Accept-Language", "zh-CN")
	if got := ResolveLocale(c); got != LocaleEnUS {
		t.Fatalf("query lang should win, got %s", got)
	}
}

func TestTranslateFallbacks(t *testing.T) {
	if got := T(LocaleEnUS, "error.cart_empty"); got != "Your cart is empty" {
		t.Fatalf("unexpected translation: %s", got)
	}
	if got := T("fr-FR", "error.cart_empty"); got != "购物车为空" {
		t.Fatalf("unknown locale should fall back to default, got %s", got)
	}
	if got := T(LocaleEnUS, "error.missing_key"); got != "error.missing_key" {
		t.Fatalf("missing key should echo key, got %s", got)
	}
	if got := Sprintf(LocaleEnUS, "error.password_min_length", 8); got != "Password must be at least 8 characters" {
		t.Fatalf("unexpected formatted message: %s", got)
	}
}

func TestMessageTablesHaveSameKeys(t *testing.T) {
	for key := range messages[LocaleZhCN] {
		if _, ok := messages[LocaleEnUS][key]; !ok {
			t.Fatalf("en-US missing key %s", key)
		}
	}
	for key := range messages[LocaleEnUS] {
		if _, ok := messages[LocaleZhCN][key]; !ok {
			t.Fatalf("zh-CN missing key %s", key)
		}
	}
}
