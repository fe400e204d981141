package service

import (
	"strings"
	"time"

	"github.com/sixpine/internal/config"
	"github.com/sixpine/internal/constants"
	"github.com/sixpine/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PricingParams 计价参数
type PricingParams struct {
	Currency              string          `json:"currency"`
	FlatRate              decimal.Decimal `json:"flat_rate"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	TaxRate               decimal.Decimal `json:"tax_rate"`
}

// DefaultPricingParams 内置默认计价参数
func DefaultPricingParams() PricingParams {
	return PricingParams{
		Currency:              "INR",
		FlatRate:              decimal.NewFromInt(50),
		FreeShippingThreshold: decimal.NewFromInt(500),
		TaxRate:               decimal.RequireFromString("0.05"),
	}
}

// PricingParamsFromConfig 从配置解析计价参数，缺省或非法项回退到内置默认值
func PricingParamsFromConfig(cfg config.PricingConfig) PricingParams {
	params := DefaultPricingParams()
	if currency := strings.ToUpper(strings.TrimSpace(cfg.Currency)); currency != "" {
		params.Currency = currency
	}
	if value, err := decimal.NewFromString(strings.TrimSpace(cfg.FlatRate)); err == nil && !value.IsNegative() {
		params.FlatRate = value
	}
	if value, err := decimal.NewFromString(strings.TrimSpace(cfg.FreeShippingThreshold)); err == nil && !value.IsNegative() {
		params.FreeShippingThreshold = value
	}
	if value, err := decimal.NewFromString(strings.TrimSpace(cfg.TaxRate)); err == nil && validTaxRate(value) {
		params.TaxRate = value
	}
	return params
}

func validTaxRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(decimal.NewFromInt(1))
}

// PricingLine 待计价的行
type PricingLine struct {
	LineID     uint
	ProductID  uint
	VariantID  uint
	CategoryID uint
	Title      string
	Label      string
	SKU        string
	Quantity   int
	UnitPrice  decimal.Decimal
	OldPrice   *decimal.Decimal
}

// PricingInput 纯计价输入
type PricingInput struct {
	Lines     []PricingLine
	Params    PricingParams
	Discounts []models.Discount
	Now       time.Time
}

// PricedLine 计价后的行
type PricedLine struct {
	LineID    uint          `json:"line_id,omitempty"`
	ProductID uint          `json:"product_id"`
	VariantID uint          `json:"variant_id,omitempty"`
	Quantity  int           `json:"quantity"`
	UnitPrice models.Money  `json:"unit_price"`
	OldPrice  *models.Money `json:"old_price,omitempty"`
	LineTotal models.Money  `json:"line_total"`
	Savings   models.Money  `json:"savings"`
}

// PricingResult 计价结果；Total = Subtotal + Tax + ShippingCost - Discount
type PricingResult struct {
	Currency          string          `json:"currency"`
	Subtotal          models.Money    `json:"subtotal"`
	ShippingCost      models.Money    `json:"shipping_cost"`
	Tax               models.Money    `json:"tax"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	Discount          models.Money    `json:"discount"`
	Total             models.Money    `json:"total"`
	AppliedDiscountID *uint           `json:"applied_discount_id,omitempty"`
	Lines             []PricedLine    `json:"lines"`
}

// PricingParamsSource 提供当前生效的计价参数
type PricingParamsSource interface {
	PricingParams() (PricingParams, error)
}

// DiscountSource 提供当前生效的折扣规则
type DiscountSource interface {
	ListActive(now time.Time) ([]models.Discount, error)
}

// PricingEngine 购物车与下单共用的唯一计价入口
type PricingEngine struct {
	params    PricingParamsSource
	discounts DiscountSource
	now       func() time.Time
}

// NewPricingEngine 创建计价引擎
func NewPricingEngine(params PricingParamsSource, discounts DiscountSource) *PricingEngine {
	return &PricingEngine{params: params, discounts: discounts, now: time.Now}
}

// LoadParams 读取当前生效的计价参数
func (e *PricingEngine) LoadParams() (PricingParams, error) {
	if e.params == nil {
		return DefaultPricingParams(), nil
	}
	return e.params.PricingParams()
}

// PriceLines 加载当前参数与折扣后计价
func (e *PricingEngine) PriceLines(lines []PricingLine) (*PricingResult, error) {
	params, err := e.LoadParams()
	if err != nil {
		return nil, err
	}
	return e.PriceWith(lines, params, e.discounts)
}

// PriceWith 使用给定参数与折扣来源计价（下单事务内读取折扣）
func (e *PricingEngine) PriceWith(lines []PricingLine, params PricingParams, discounts DiscountSource) (*PricingResult, error) {
	now := e.now()
	var rules []models.Discount
	if discounts != nil && len(lines) > 0 {
		rows, err := discounts.ListActive(now)
		if err != nil {
			return nil, err
		}
		rules = rows
	}
	result := e.Price(PricingInput{Lines: lines, Params: params, Discounts: rules, Now: now})
	return &result, nil
}

// Price 纯计价：相同输入得到相同输出
func (e *PricingEngine) Price(input PricingInput) PricingResult {
	params := input.Params
	subtotal := decimal.Zero
	priced := make([]PricedLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		item := PricedLine{
			LineID:    line.LineID,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: models.NewMoneyFromDecimal(line.UnitPrice),
			LineTotal: models.NewMoneyFromDecimal(lineTotal),
			Savings:   models.NewMoneyFromDecimal(decimal.Zero),
		}
		if line.OldPrice != nil {
			old := models.NewMoneyFromDecimal(*line.OldPrice)
			item.OldPrice = &old
			if line.OldPrice.GreaterThan(line.UnitPrice) {
				savings := line.OldPrice.Sub(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity)))
				item.Savings = models.NewMoneyFromDecimal(savings)
			}
		}
		priced = append(priced, item)
	}

	shipping := decimal.Zero
	if len(input.Lines) > 0 && subtotal.LessThan(params.FreeShippingThreshold) {
		shipping = params.FlatRate
	}
	tax := subtotal.Mul(params.TaxRate)
	discount, discountID := bestDiscount(input.Lines, subtotal, input.Discounts, input.Now)

	return materialize(params, subtotal, shipping, tax, discount, discountID, priced)
}

// materialize 四舍五入到 2 位小数，整单只做这一次舍入
func materialize(params PricingParams, subtotal, shipping, tax, discount decimal.Decimal, discountID *uint, lines []PricedLine) PricingResult {
	roundedSubtotal := subtotal.Round(2)
	roundedShipping := shipping.Round(2)
	roundedTax := tax.Round(2)
	roundedDiscount := discount.Round(2)
	total := roundedSubtotal.Add(roundedTax).Add(roundedShipping).Sub(roundedDiscount)
	return PricingResult{
		Currency:          params.Currency,
		Subtotal:          models.NewMoneyFromDecimal(roundedSubtotal),
		ShippingCost:      models.NewMoneyFromDecimal(roundedShipping),
		Tax:               models.NewMoneyFromDecimal(roundedTax),
		TaxRate:           params.TaxRate,
		Discount:          models.NewMoneyFromDecimal(roundedDiscount),
		Total:             models.NewMoneyFromDecimal(total),
		AppliedDiscountID: discountID,
		Lines:             lines,
	}
}

// bestDiscount 选出优惠最大的单条规则，金额相同时取 ID 最小者；不叠加
func bestDiscount(lines []PricingLine, subtotal decimal.Decimal, discounts []models.Discount, now time.Time) (decimal.Decimal, *uint) {
	best := decimal.Zero
	var bestID *uint
	for i := range discounts {
		rule := discounts[i]
		if !rule.ActiveAt(now) {
			continue
		}
		amount := discountAmount(rule, scopedSubtotal(lines, subtotal, rule))
		if !amount.IsPositive() {
			continue
		}
		if bestID == nil || amount.GreaterThan(best) || (amount.Equal(best) && rule.ID < *bestID) {
			id := rule.ID
			best = amount
			bestID = &id
		}
	}
	return best, bestID
}

func scopedSubtotal(lines []PricingLine, subtotal decimal.Decimal, rule models.Discount) decimal.Decimal {
	if rule.CategoryID == nil || *rule.CategoryID == 0 {
		return subtotal
	}
	scoped := decimal.Zero
	for _, line := range lines {
		if line.CategoryID == *rule.CategoryID {
			scoped = scoped.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}
	return scoped
}

func discountAmount(rule models.Discount, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	if rule.MinSubtotal.IsPositive() && base.LessThan(rule.MinSubtotal.Decimal) {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch rule.Type {
	case constants.DiscountTypePercentage:
		amount = base.Mul(rule.Value.Decimal).Div(hundred)
	case constants.DiscountTypeFlat:
		amount = rule.Value.Decimal
	default:
		return decimal.Zero
	}
	if rule.MaxDiscount.IsPositive() && amount.GreaterThan(rule.MaxDiscount.Decimal) {
		amount = rule.MaxDiscount.Decimal
	}
	if amount.GreaterThan(base) {
		amount = base
	}
	return amount
}

// LinePricing 解析行的生效单价与划线价：规格覆盖价优先，否则取商品基础价
func LinePricing(product *models.Product, variant *models.ProductVariant) (decimal.Decimal, *decimal.Decimal) {
	if product == nil {
		return decimal.Zero, nil
	}
	unit := product.PriceAmount.Decimal
	var old *decimal.Decimal
	if product.OldPriceAmount != nil {
		value := product.OldPriceAmount.Decimal
		old = &value
	}
	if variant != nil {
		if variant.PriceAmount != nil {
			unit = variant.PriceAmount.Decimal
		}
		if variant.OldPriceAmount != nil {
			value := variant.OldPriceAmount.Decimal
			old = &value
		}
	}
	return unit, old
}

// pricingLineFromCart 将购物车行转换为计价行
func pricingLineFromCart(item models.CartItem) PricingLine {
	unit, old := LinePricing(item.Product, item.Variant)
	line := PricingLine{
		LineID:    item.ID,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		UnitPrice: unit,
		OldPrice:  old,
	}
	if item.Product != nil {
		line.CategoryID = item.Product.CategoryID
		line.Title = item.Product.Title
	}
	if item.Variant != nil {
		line.Label = item.Variant.Label()
		line.SKU = item.Variant.SKU
	}
	return line
}
