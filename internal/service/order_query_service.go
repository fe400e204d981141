package service

import (
	"strings"

	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/repository"
)

// OrderQueryService 订单查询（购物者与管理端）
type OrderQueryService struct {
	orderRepo repository.OrderRepository
}

// NewOrderQueryService 创建订单查询服务
func NewOrderQueryService(orderRepo repository.OrderRepository) *OrderQueryService {
	return &OrderQueryService{orderRepo: orderRepo}
}

// GetForUser 购物者查看自己的订单，他人订单按不存在处理
func (s *OrderQueryService) GetForUser(principal Principal, orderID string) (*models.Order, error) {
	if !principal.IsUser() {
		return nil, ErrUnauthorized
	}
	order, err := s.orderRepo.GetByOrderIDAndUser(strings.TrimSpace(orderID), principal.ID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListForUser 购物者订单列表
func (s *OrderQueryService) ListForUser(principal Principal, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if !principal.IsUser() {
		return nil, 0, ErrUnauthorized
	}
	filter.UserID = principal.ID
	filter.Status = normalizeStatus(filter.Status)
	return s.orderRepo.ListByUser(filter)
}

// GetForAdmin 管理端订单详情
func (s *OrderQueryService) GetForAdmin(orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderID(strings.TrimSpace(orderID))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListForAdmin 管理端订单列表
func (s *OrderQueryService) ListForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.Status = normalizeStatus(filter.Status)
	filter.PaymentStatus = normalizeStatus(filter.PaymentStatus)
	return s.orderRepo.ListAdmin(filter)
}
