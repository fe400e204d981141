package admin

import (
	"strings"
	"time"

	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/repository"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DiscountRequest 创建/更新折扣规则请求
type DiscountRequest struct {
	Name        string     `json:"name" binding:"required"`
	Type        string     `json:"type" binding:"required"`
	Value       string     `json:"value" binding:"required"`
	MinSubtotal string     `json:"min_subtotal"`
	MaxDiscount string     `json:"max_discount"`
	CategoryID  *uint      `json:"category_id"`
	IsActive    *bool      `json:"is_active"`
	ValidFrom   *time.Time `json:"valid_from"`
	ValidUntil  *time.Time `json:"valid_until"`
}

func optionalAmount(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	return parseAmount(raw)
}

func (req DiscountRequest) toInput() (service.DiscountInput, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(req.Value))
	if err != nil {
		return service.DiscountInput{}, service.ErrInvalidDiscount
	}
	minSubtotal, err := optionalAmount(req.MinSubtotal)
	if err != nil {
		return service.DiscountInput{}, service.ErrInvalidDiscount
	}
	maxDiscount, err := optionalAmount(req.MaxDiscount)
	if err != nil {
		return service.DiscountInput{}, service.ErrInvalidDiscount
	}
	return service.DiscountInput{
		Name:        req.Name,
		Type:        req.Type,
		Value:       value,
		MinSubtotal: minSubtotal,
		MaxDiscount: maxDiscount,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
		ValidFrom:   req.ValidFrom,
		ValidUntil:  req.ValidUntil,
	}, nil
}

// GetDiscounts 获取折扣规则列表
func (h *Handler) GetDiscounts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	discounts, total, err := h.DiscountService.List(repository.DiscountListFilter{
		Page:       page,
		PageSize:   pageSize,
		ActiveOnly: c.Query("active_only") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, discounts, handlershared.BuildPagination(page, pageSize, total))
}

// GetDiscount 获取折扣规则详情
func (h *Handler) GetDiscount(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	discount, err := h.DiscountService.Get(id)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, discount)
}

// CreateDiscount 创建折扣规则
func (h *Handler) CreateDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	discount, err := h.DiscountService.Create(input)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, discount)
}

// UpdateDiscount 更新折扣规则
func (h *Handler) UpdateDiscount(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	discount, err := h.DiscountService.Update(id, input)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, discount)
}

// DeleteDiscount 删除折扣规则
func (h *Handler) DeleteDiscount(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.DiscountService.Delete(id); err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, nil)
}
