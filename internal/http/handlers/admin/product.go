package admin

import (
	"errors"
	"strings"

	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

var errInvalidAmount = errors.New("invalid amount")

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Slug      string `json:"slug" binding:"required"`
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// CreateProductRequest 创建/更新商品请求
type CreateProductRequest struct {
	CategoryID     uint     `json:"category_id" binding:"required"`
	Slug           string   `json:"slug" binding:"required"`
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	PriceAmount    string   `json:"price_amount" binding:"required"`
	OldPriceAmount *string  `json:"old_price_amount"`
	StockQuantity  int      `json:"stock_quantity"`
	Images         []string `json:"images"`
	IsActive       *bool    `json:"is_active"`
	SortOrder      int      `json:"sort_order"`
}

// VariantRequest 创建/更新规格请求
type VariantRequest struct {
	SKU            string  `json:"sku" binding:"required"`
	Color          string  `json:"color"`
	Size           string  `json:"size"`
	Pattern        string  `json:"pattern"`
	PriceAmount    *string `json:"price_amount"`
	OldPriceAmount *string `json:"old_price_amount"`
	StockQuantity  int     `json:"stock_quantity"`
	IsActive       *bool   `json:"is_active"`
	SortOrder      int     `json:"sort_order"`
}

func parseAmount(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || value.IsNegative() {
		return decimal.Zero, errInvalidAmount
	}
	return value.Round(2), nil
}

func parseOptionalAmount(raw *string) (*decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, err := parseAmount(*raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (req CreateProductRequest) toInput() (service.CreateProductInput, error) {
	price, err := parseAmount(req.PriceAmount)
	if err != nil {
		return service.CreateProductInput{}, err
	}
	oldPrice, err := parseOptionalAmount(req.OldPriceAmount)
	if err != nil {
		return service.CreateProductInput{}, err
	}
	return service.CreateProductInput{
		CategoryID:     req.CategoryID,
		Slug:           req.Slug,
		Title:          req.Title,
		Description:    req.Description,
		PriceAmount:    price,
		OldPriceAmount: oldPrice,
		StockQuantity:  req.StockQuantity,
		Images:         req.Images,
		IsActive:       req.IsActive,
		SortOrder:      req.SortOrder,
	}, nil
}

func (req VariantRequest) toInput() (service.VariantInput, error) {
	price, err := parseOptionalAmount(req.PriceAmount)
	if err != nil {
		return service.VariantInput{}, err
	}
	oldPrice, err := parseOptionalAmount(req.OldPriceAmount)
	if err != nil {
		return service.VariantInput{}, err
	}
	return service.VariantInput{
		SKU:            req.SKU,
		Color:          req.Color,
		Size:           req.Size,
		Pattern:        req.Pattern,
		PriceAmount:    price,
		OldPriceAmount: oldPrice,
		StockQuantity:  req.StockQuantity,
		IsActive:       req.IsActive,
		SortOrder:      req.SortOrder,
	}, nil
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Create(service.CreateCategoryInput{
		Slug:      req.Slug,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	h.invalidatePublicCatalog(c)
	response.Success(c, category)
}

// GetAdminProducts 获取商品列表（含下架）
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	products, total, err := h.ProductService.ListAdmin(
		handlershared.QueryUint(c, "category_id"),
		strings.TrimSpace(c.Query("search")),
		page,
		pageSize,
	)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, products, handlershared.BuildPagination(page, pageSize, total))
}

// GetAdminProduct 获取商品详情
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetAdminByID(id)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.product_invalid", err)
		return
	}
	product, err := h.ProductService.Create(input)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.product_invalid", err)
		return
	}
	product, err := h.ProductService.Update(id, input)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(id); err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, nil)
}

// CreateVariant 新增商品规格
func (h *Handler) CreateVariant(c *gin.Context) {
	productID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.variant_invalid_input", err)
		return
	}
	variant, err := h.ProductService.CreateVariant(productID, input)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, variant)
}

// UpdateVariant 更新商品规格
func (h *Handler) UpdateVariant(c *gin.Context) {
	productID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	variantID, ok := handlershared.ParseUintParam(c, "variant_id")
	if !ok {
		return
	}
	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.variant_invalid_input", err)
		return
	}
	variant, err := h.ProductService.UpdateVariant(productID, variantID, input)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, variant)
}

// DeleteVariant 删除商品规格
func (h *Handler) DeleteVariant(c *gin.Context) {
	productID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	variantID, ok := handlershared.ParseUintParam(c, "variant_id")
	if !ok {
		return
	}
	if err := h.ProductService.DeleteVariant(productID, variantID); err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, nil)
}
