package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sixpine/internal/constants"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/repository"

	"github.com/shopspring/decimal"
)

// SettingService 设置业务服务
type SettingService struct {
	repo     repository.SettingRepository
	defaults PricingParams
}

// NewSettingService 创建设置服务，defaults 为配置文件中的计价参数
func NewSettingService(repo repository.SettingRepository, defaults PricingParams) *SettingService {
	return &SettingService{repo: repo, defaults: defaults}
}

// GetByKey 获取设置
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// PricingParams 当前生效的计价参数：配置默认值叠加 pricing_config 设置
func (s *SettingService) PricingParams() (PricingParams, error) {
	if s == nil {
		return DefaultPricingParams(), nil
	}
	params := s.defaults
	value, err := s.GetByKey(constants.SettingKeyPricingConfig)
	if err != nil {
		return params, err
	}
	if value == nil {
		return params, nil
	}
	if rate, ok := parseSettingDecimal(value[constants.SettingFieldTaxRate]); ok && validTaxRate(rate) {
		params.TaxRate = rate
	}
	if flat, ok := parseSettingDecimal(value[constants.SettingFieldFlatRate]); ok && !flat.IsNegative() {
		params.FlatRate = flat
	}
	if threshold, ok := parseSettingDecimal(value[constants.SettingFieldFreeShippingThreshold]); ok && !threshold.IsNegative() {
		params.FreeShippingThreshold = threshold
	}
	return params, nil
}

// PricingSettingInput 计价设置更新输入（未提供的字段保持不变）
type PricingSettingInput struct {
	TaxRate               *string `json:"tax_rate"`
	FlatRate              *string `json:"flat_rate"`
	FreeShippingThreshold *string `json:"free_shipping_threshold"`
}

// UpdatePricingSetting 校验并保存计价设置，返回保存后的生效参数
func (s *SettingService) UpdatePricingSetting(input PricingSettingInput) (PricingParams, error) {
	current, err := s.GetByKey(constants.SettingKeyPricingConfig)
	if err != nil {
		return PricingParams{}, err
	}
	value := models.JSON{}
	for k, v := range current {
		value[k] = v
	}

	fields := []struct {
		key   string
		raw   *string
		valid func(decimal.Decimal) bool
	}{
		{constants.SettingFieldTaxRate, input.TaxRate, validTaxRate},
		{constants.SettingFieldFlatRate, input.FlatRate, nonNegative},
		{constants.SettingFieldFreeShippingThreshold, input.FreeShippingThreshold, nonNegative},
	}
	for _, field := range fields {
		if field.raw == nil {
			continue
		}
		parsed, err := decimal.NewFromString(strings.TrimSpace(*field.raw))
		if err != nil || !field.valid(parsed) {
			return PricingParams{}, fmt.Errorf("%w: %s", ErrInvalidPricingSetting, field.key)
		}
		value[field.key] = parsed.String()
	}

	if _, err := s.repo.Upsert(constants.SettingKeyPricingConfig, value); err != nil {
		return PricingParams{}, err
	}
	return s.PricingParams()
}

func nonNegative(value decimal.Decimal) bool {
	return !value.IsNegative()
}

func parseSettingDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		return parsed, err == nil
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		return parsed, err == nil
	default:
		return decimal.Zero, false
	}
}
