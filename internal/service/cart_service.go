package service

import (
	"fmt"

	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/repository"
)

// CartLineView 购物车行（用于响应）
type CartLineView struct {
	ID           uint          `json:"id"`
	ProductID    uint          `json:"product_id"`
	VariantID    uint          `json:"variant_id,omitempty"`
	Title        string        `json:"title"`
	VariantLabel string        `json:"variant_label,omitempty"`
	SKU          string        `json:"sku,omitempty"`
	Quantity     int           `json:"quantity"`
	UnitPrice    models.Money  `json:"unit_price"`
	OldPrice     *models.Money `json:"old_price,omitempty"`
	LineTotal    models.Money  `json:"line_total"`
	InStock      bool          `json:"in_stock"`
	Available    bool          `json:"available"`
}

// CartView 购物车视图，合计在每次读取时重新计算
type CartView struct {
	Items      []CartLineView `json:"items"`
	TotalItems int            `json:"total_items"`
	TotalPrice models.Money   `json:"total_price"`
	Pricing    *PricingResult `json:"pricing"`
}

// AddCartItemInput 加购输入
type AddCartItemInput struct {
	ProductID uint
	VariantID uint
	Quantity  int
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
	pricing     *PricingEngine
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, variantRepo repository.VariantRepository, pricing *PricingEngine) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		variantRepo: variantRepo,
		pricing:     pricing,
	}
}

// List 获取用户购物车；已下架的行保留但不计入合计
func (s *CartService) List(userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	lines := make([]PricingLine, 0, len(items))
	views := make([]CartLineView, 0, len(items))
	for _, item := range items {
		view := CartLineView{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Available: lineAvailable(item),
		}
		line := pricingLineFromCart(item)
		view.Title = line.Title
		view.VariantLabel = line.Label
		view.SKU = line.SKU
		view.UnitPrice = models.NewMoneyFromDecimal(line.UnitPrice)
		if line.OldPrice != nil {
			old := models.NewMoneyFromDecimal(*line.OldPrice)
			view.OldPrice = &old
		}
		view.InStock = view.Available && resolveStock(item.Product, item.Variant) >= item.Quantity
		if view.Available {
			lines = append(lines, line)
		}
		views = append(views, view)
	}

	result, err := s.pricing.PriceLines(lines)
	if err != nil {
		return nil, err
	}
	totalItems := 0
	lineTotals := make(map[uint]models.Money, len(result.Lines))
	for _, priced := range result.Lines {
		totalItems += priced.Quantity
		lineTotals[priced.LineID] = priced.LineTotal
	}
	for i := range views {
		views[i].LineTotal = lineTotals[views[i].ID]
	}
	return &CartView{
		Items:      views,
		TotalItems: totalItems,
		TotalPrice: result.Subtotal,
		Pricing:    result,
	}, nil
}

// AddItem 加入购物车，已有相同 (商品, 规格) 行时数量累加
func (s *CartService) AddItem(userID uint, input AddCartItemInput) (*CartView, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, variant, err := s.resolvePurchasable(input.ProductID, input.VariantID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.FindLine(userID, input.ProductID, input.VariantID)
	if err != nil {
		return nil, err
	}
	merged := input.Quantity
	if existing != nil {
		merged += existing.Quantity
	}
	if available := resolveStock(product, variant); merged > available {
		return nil, fmt.Errorf("%w: requested=%d available=%d", ErrOutOfStock, merged, available)
	}

	if existing != nil {
		err = s.cartRepo.UpdateQuantity(existing.ID, merged)
	} else {
		err = s.cartRepo.Create(&models.CartItem{
			UserID:    userID,
			ProductID: input.ProductID,
			VariantID: input.VariantID,
			Quantity:  merged,
		})
	}
	if err != nil {
		return nil, err
	}
	logger.Debugw("cart_item_added", "user_id", userID, "product_id", input.ProductID, "variant_id", input.VariantID, "quantity", merged)
	return s.List(userID)
}

// UpdateQuantity 覆盖购物车行数量
func (s *CartService) UpdateQuantity(userID, lineID uint, quantity int) (*CartView, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	line, err := s.cartRepo.GetByIDAndUser(lineID, userID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, ErrCartItemNotFound
	}
	if err := s.cartRepo.UpdateQuantity(line.ID, quantity); err != nil {
		return nil, err
	}
	return s.List(userID)
}

// RemoveItem 删除购物车行（幂等）
func (s *CartService) RemoveItem(userID, lineID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	line, err := s.cartRepo.GetByIDAndUser(lineID, userID)
	if err != nil {
		return nil, err
	}
	if line != nil {
		if err := s.cartRepo.Delete(line.ID); err != nil {
			return nil, err
		}
	}
	return s.List(userID)
}

// Clear 清空购物车（幂等）
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	return s.cartRepo.ClearByUser(userID)
}

// resolvePurchasable 校验商品与规格组合：有启用规格的商品必须选规格，无规格商品不接受规格
func (s *CartService) resolvePurchasable(productID, variantID uint) (*models.Product, *models.ProductVariant, error) {
	if productID == 0 {
		return nil, nil, ErrProductNotFound
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, nil, ErrProductNotAvailable
	}

	activeVariants, err := s.variantRepo.CountActiveByProduct(productID)
	if err != nil {
		return nil, nil, err
	}
	if variantID == 0 {
		if activeVariants > 0 {
			return nil, nil, ErrVariantRequired
		}
		return product, nil, nil
	}
	if activeVariants == 0 && len(product.Variants) == 0 {
		return nil, nil, ErrVariantInvalid
	}
	variant, err := s.variantRepo.GetByID(variantID)
	if err != nil {
		return nil, nil, err
	}
	if variant == nil || variant.ProductID != productID {
		return nil, nil, ErrVariantInvalid
	}
	if !variant.IsActive {
		return nil, nil, ErrProductNotAvailable
	}
	return product, variant, nil
}

func lineAvailable(item models.CartItem) bool {
	if item.Product == nil || !item.Product.IsActive {
		return false
	}
	if item.VariantID != 0 {
		return item.Variant != nil && item.Variant.IsActive && item.Variant.ProductID == item.ProductID
	}
	return true
}
