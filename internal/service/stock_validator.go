package service

import (
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/repository"

	"gorm.io/gorm"
)

// StockValidator 下单时按权威库存校验购物车行，只读不扣减
type StockValidator struct {
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
}

// NewStockValidator 创建库存校验器
func NewStockValidator(productRepo repository.ProductRepository, variantRepo repository.VariantRepository) *StockValidator {
	return &StockValidator{productRepo: productRepo, variantRepo: variantRepo}
}

type stockKey struct {
	productID uint
	variantID uint
}

// Validate 重新读取每个 (product, variant) 的库存，返回全部冲突行；tx 为空时使用默认连接
func (v *StockValidator) Validate(tx *gorm.DB, lines []models.CartItem) ([]StockConflict, error) {
	productRepo := v.productRepo.WithTx(tx)
	variantRepo := v.variantRepo.WithTx(tx)

	productIDs := make([]uint, 0, len(lines))
	variantIDs := make([]uint, 0, len(lines))
	requested := make(map[stockKey]int, len(lines))
	for _, line := range lines {
		productIDs = append(productIDs, line.ProductID)
		if line.VariantID != 0 {
			variantIDs = append(variantIDs, line.VariantID)
		}
		requested[stockKey{line.ProductID, line.VariantID}] += line.Quantity
	}

	products, err := productRepo.GetByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	variants, err := variantRepo.GetByIDs(variantIDs)
	if err != nil {
		return nil, err
	}

	conflicts := make([]StockConflict, 0)
	for _, line := range lines {
		key := stockKey{line.ProductID, line.VariantID}
		conflict := StockConflict{
			LineID:    line.ID,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Requested: line.Quantity,
		}

		product, ok := products[line.ProductID]
		if !ok || !product.IsActive {
			conflict.Reason = StockConflictUnavailable
			conflicts = append(conflicts, conflict)
			continue
		}

		available := product.StockQuantity
		if line.VariantID != 0 {
			variant, ok := variants[line.VariantID]
			if !ok || !variant.IsActive || variant.ProductID != line.ProductID {
				conflict.Reason = StockConflictUnavailable
				conflicts = append(conflicts, conflict)
				continue
			}
			available = variant.StockQuantity
		} else {
			count, err := variantRepo.CountActiveByProduct(line.ProductID)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				conflict.Reason = StockConflictUnavailable
				conflicts = append(conflicts, conflict)
				continue
			}
		}

		if requested[key] > available {
			conflict.Available = available
			conflict.Reason = StockConflictInsufficient
			conflicts = append(conflicts, conflict)
		}
	}
	return conflicts, nil
}

// resolveStock 解析购物车行对应的当前库存（加购时的乐观校验）
func resolveStock(product *models.Product, variant *models.ProductVariant) int {
	if variant != nil {
		return variant.StockQuantity
	}
	if product == nil {
		return 0
	}
	return product.StockQuantity
}
