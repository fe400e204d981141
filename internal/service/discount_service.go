package service

import (
	"strings"
	"time"

	"github.com/sixpine/internal/constants"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/repository"

	"github.com/shopspring/decimal"
)

// DiscountInput 折扣规则输入
type DiscountInput struct {
	Name        string
	Type        string
	Value       decimal.Decimal
	MinSubtotal decimal.Decimal
	MaxDiscount decimal.Decimal
	CategoryID  *uint
	IsActive    *bool
	ValidFrom   *time.Time
	ValidUntil  *time.Time
}

// DiscountService 折扣规则管理
type DiscountService struct {
	repo repository.DiscountRepository
}

// NewDiscountService 创建折扣服务
func NewDiscountService(repo repository.DiscountRepository) *DiscountService {
	return &DiscountService{repo: repo}
}

// List 折扣规则列表
func (s *DiscountService) List(filter repository.DiscountListFilter) ([]models.Discount, int64, error) {
	return s.repo.List(filter)
}

// Get 折扣规则详情
func (s *DiscountService) Get(id uint) (*models.Discount, error) {
	discount, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, ErrDiscountNotFound
	}
	return discount, nil
}

// Create 新建折扣规则
func (s *DiscountService) Create(input DiscountInput) (*models.Discount, error) {
	discount := &models.Discount{IsActive: true}
	if err := applyDiscountInput(discount, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(discount); err != nil {
		return nil, err
	}
	if !discount.IsActive {
		if err := s.repo.Update(discount); err != nil {
			return nil, err
		}
	}
	return discount, nil
}

// Update 更新折扣规则
func (s *DiscountService) Update(id uint, input DiscountInput) (*models.Discount, error) {
	discount, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := applyDiscountInput(discount, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(discount); err != nil {
		return nil, err
	}
	return discount, nil
}

// Delete 删除折扣规则；已下单的订单仍保留 discount_id
func (s *DiscountService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func applyDiscountInput(discount *models.Discount, input DiscountInput) error {
	name := strings.TrimSpace(input.Name)
	kind := strings.ToLower(strings.TrimSpace(input.Type))
	if name == "" || !input.Value.IsPositive() {
		return ErrInvalidDiscount
	}
	switch kind {
	case constants.DiscountTypePercentage:
		if input.Value.GreaterThan(hundred) {
			return ErrInvalidDiscount
		}
	case constants.DiscountTypeFlat:
	default:
		return ErrInvalidDiscount
	}
	if input.MinSubtotal.IsNegative() || input.MaxDiscount.IsNegative() {
		return ErrInvalidDiscount
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return ErrInvalidDiscount
	}

	discount.Name = name
	discount.Type = kind
	discount.Value = models.NewMoneyFromDecimal(input.Value)
	discount.MinSubtotal = models.NewMoneyFromDecimal(input.MinSubtotal)
	discount.MaxDiscount = models.NewMoneyFromDecimal(input.MaxDiscount)
	discount.CategoryID = input.CategoryID
	if discount.CategoryID != nil && *discount.CategoryID == 0 {
		discount.CategoryID = nil
	}
	discount.ValidFrom = input.ValidFrom
	discount.ValidUntil = input.ValidUntil
	if input.IsActive != nil {
		discount.IsActive = *input.IsActive
	}
	return nil
}
