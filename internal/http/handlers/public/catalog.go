package public

import (
	"strings"
	"time"

	"github.com/sixpine/internal/cache"
	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/i18n"
	"github.com/sixpine/internal/models"

	"github.com/gin-gonic/gin"
)

const publicCacheTTL = 60 * time.Second

// GetConfig 获取店铺公开配置（币种、运费与税率）
func (h *Handler) GetConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), handlershared.PublicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	params, err := h.SettingService.PricingParams()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	data := map[string]interface{}{
		"languages":               []string{i18n.LocaleZhCN, i18n.LocaleEnUS},
		"currency":                params.Currency,
		"flat_rate":               models.NewMoneyFromDecimal(params.FlatRate),
		"free_shipping_threshold": models.NewMoneyFromDecimal(params.FreeShippingThreshold),
		"tax_rate":                params.TaxRate.String(),
		"payment_methods":         []string{"cod", "prepaid"},
	}

	_ = cache.SetJSON(c.Request.Context(), handlershared.PublicConfigCacheKey, data, publicCacheTTL)
	response.Success(c, data)
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	var cached []models.Category
	if hit, err := cache.GetJSON(c.Request.Context(), handlershared.PublicCategoriesCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	_ = cache.SetJSON(c.Request.Context(), handlershared.PublicCategoriesCacheKey, categories, publicCacheTTL)
	response.Success(c, categories)
}

// GetProducts 获取商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	categoryID := handlershared.QueryUint(c, "category_id")
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListPublic(categoryID, search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, products, handlershared.BuildPagination(page, pageSize, total))
}

// GetProductBySlug 获取商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.ProductService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		respondWithMappedError(c, err, notFoundErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, product)
}
