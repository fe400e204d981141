package admin

import (
	"github.com/sixpine/internal/cache"
	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
)

// GetPricingSetting 获取当前生效的计价参数
func (h *Handler) GetPricingSetting(c *gin.Context) {
	params, err := h.SettingService.PricingParams()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, params)
}

// UpdatePricingSetting 更新计价参数
func (h *Handler) UpdatePricingSetting(c *gin.Context) {
	var req service.PricingSettingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	params, err := h.SettingService.UpdatePricingSetting(req)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	adminID, _ := getAdminID(c)
	logger.Infow("pricing_setting_updated",
		"admin_id", adminID,
		"tax_rate", params.TaxRate.String(),
		"flat_rate", params.FlatRate.String(),
		"free_shipping_threshold", params.FreeShippingThreshold.String(),
	)
	if err := cache.Del(c.Request.Context(), handlershared.PublicConfigCacheKey); err != nil {
		handlershared.RequestLog(c).Warnw("public_config_cache_invalidate_failed", "error", err)
	}
	response.Success(c, params)
}

func (h *Handler) invalidatePublicCatalog(c *gin.Context) {
	if err := cache.Del(c.Request.Context(), handlershared.PublicCategoriesCacheKey); err != nil {
		handlershared.RequestLog(c).Warnw("public_categories_cache_invalidate_failed", "error", err)
	}
}
