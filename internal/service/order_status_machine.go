package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sixpine/internal/constants"
	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/metrics"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/queue"
	"github.com/sixpine/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	transitionAttempts = 2
	codDeliveredNote   = "Cash collected on delivery"
	paidCancelNote     = "Refund requested after cancellation"
	paidAfterCancel    = "Refund requested for payment received after cancellation"
	defaultCancelNote  = "Cancelled by customer"
)

var fulfillmentTransitions = map[string][]string{
	constants.OrderStatusPending:    {constants.OrderStatusConfirmed, constants.OrderStatusCancelled},
	constants.OrderStatusConfirmed:  {constants.OrderStatusProcessing, constants.OrderStatusCancelled},
	constants.OrderStatusProcessing: {constants.OrderStatusShipped, constants.OrderStatusCancelled},
	constants.OrderStatusShipped:    {constants.OrderStatusDelivered},
	constants.OrderStatusDelivered:  {constants.OrderStatusReturned},
}

var paymentTransitions = map[string][]string{
	constants.PaymentStatusPending: {constants.PaymentStatusPaid, constants.PaymentStatusFailed},
	constants.PaymentStatusPaid: {
		constants.PaymentStatusFailed,
		constants.PaymentStatusRefunded,
		constants.PaymentStatusPartiallyRefunded,
	},
}

var knownFulfillmentStatuses = map[string]struct{}{
	constants.OrderStatusPending:    {},
	constants.OrderStatusConfirmed:  {},
	constants.OrderStatusProcessing: {},
	constants.OrderStatusShipped:    {},
	constants.OrderStatusDelivered:  {},
	constants.OrderStatusCancelled:  {},
	constants.OrderStatusReturned:   {},
}

var knownPaymentStatuses = map[string]struct{}{
	constants.PaymentStatusPending:           {},
	constants.PaymentStatusPaid:              {},
	constants.PaymentStatusFailed:            {},
	constants.PaymentStatusRefunded:          {},
	constants.PaymentStatusPartiallyRefunded: {},
}

// errVersionLost 乐观锁版本不匹配
var errVersionLost = errors.New("order version changed")

// FulfillmentPatch 履约流转附带信息
type FulfillmentPatch struct {
	Notes             string
	TrackingNumber    string
	EstimatedDelivery *time.Time
}

// OrderStatusMachine 订单状态机：履约与支付两个维度的唯一修改入口
type OrderStatusMachine struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	historyRepo repository.OrderHistoryRepository
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
	tasks       TaskEnqueuer
	now         func() time.Time
}

// NewOrderStatusMachine 创建订单状态机
func NewOrderStatusMachine(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	historyRepo repository.OrderHistoryRepository,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	tasks TaskEnqueuer,
) *OrderStatusMachine {
	return &OrderStatusMachine{
		db:          db,
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		productRepo: productRepo,
		variantRepo: variantRepo,
		tasks:       tasks,
		now:         time.Now,
	}
}

// transitionPlan 单次流转在事务内要落库的内容
type transitionPlan struct {
	kind          string
	from          string
	to            string
	updates       map[string]interface{}
	entries       []*models.OrderStatusHistory
	restock       bool
	requestRefund bool
	refundReason  string
}

type planFunc func(order *models.Order, now time.Time) (*transitionPlan, error)

// CanTransitionFulfillment 履约状态是否允许流转
func CanTransitionFulfillment(from, to string) bool {
	return allowed(fulfillmentTransitions, from, to)
}

// CanTransitionPayment 支付状态是否允许流转
func CanTransitionPayment(from, to string) bool {
	return allowed(paymentTransitions, from, to)
}

func allowed(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionFulfillment 员工推进履约状态
func (m *OrderStatusMachine) TransitionFulfillment(ctx context.Context, principal Principal, orderID string, target string, patch FulfillmentPatch) (*models.Order, error) {
	if !principal.IsStaff() {
		return nil, ErrForbidden
	}
	target = normalizeStatus(target)
	if _, ok := knownFulfillmentStatuses[target]; !ok {
		return nil, ErrInvalidStatus
	}
	return m.run(ctx, principal, orderID, constants.StatusKindFulfillment, target, nil, func(order *models.Order, now time.Time) (*transitionPlan, error) {
		return m.planFulfillment(order, principal, target, patch, now)
	})
}

// TransitionPayment 员工或支付网关推进支付状态
func (m *OrderStatusMachine) TransitionPayment(ctx context.Context, principal Principal, orderID string, target string, notes string) (*models.Order, error) {
	if !principal.IsStaff() {
		return nil, ErrForbidden
	}
	target = normalizeStatus(target)
	if _, ok := knownPaymentStatuses[target]; !ok {
		return nil, ErrInvalidStatus
	}
	return m.run(ctx, principal, orderID, constants.StatusKindPayment, target, nil, func(order *models.Order, now time.Time) (*transitionPlan, error) {
		return m.planPayment(order, principal, target, strings.TrimSpace(notes), now)
	})
}

// Cancel 购物者取消自己的订单，规则与员工取消一致
func (m *OrderStatusMachine) Cancel(ctx context.Context, principal Principal, orderID string, reason string) (*models.Order, error) {
	if !principal.IsUser() {
		return nil, ErrUnauthorized
	}
	notes := strings.TrimSpace(reason)
	if notes == "" {
		notes = defaultCancelNote
	}
	owner := func(order *models.Order) error {
		if order.UserID != principal.ID {
			return ErrOrderNotFound
		}
		return nil
	}
	return m.run(ctx, principal, orderID, constants.StatusKindFulfillment, constants.OrderStatusCancelled, owner, func(order *models.Order, now time.Time) (*transitionPlan, error) {
		return m.planFulfillment(order, principal, constants.OrderStatusCancelled, FulfillmentPatch{Notes: notes}, now)
	})
}

// AddNote 追加员工备注，不改变状态
func (m *OrderStatusMachine) AddNote(ctx context.Context, principal Principal, orderID string, note string) (*models.OrderNote, error) {
	if !principal.IsStaff() {
		return nil, ErrForbidden
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, ErrNoteRequired
	}
	order, err := m.orderRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	row := &models.OrderNote{
		OrderID:   order.ID,
		Note:      note,
		CreatedBy: principal.Actor(),
	}
	if err := m.historyRepo.AppendNote(row); err != nil {
		return nil, err
	}
	logger.Infow("order_note_added", "order_id", order.OrderID, "actor", row.CreatedBy)
	return row, nil
}

func (m *OrderStatusMachine) planFulfillment(order *models.Order, principal Principal, target string, patch FulfillmentPatch, now time.Time) (*transitionPlan, error) {
	kind := constants.StatusKindFulfillment
	from := order.Status
	if from == target {
		return nil, noOpTransition(kind, from)
	}
	if !CanTransitionFulfillment(from, target) {
		return nil, invalidTransition(kind, from, target, "")
	}

	actor := principal.Actor()
	notes := strings.TrimSpace(patch.Notes)
	plan := &transitionPlan{
		kind:    kind,
		from:    from,
		to:      target,
		updates: map[string]interface{}{"status": target},
		entries: []*models.OrderStatusHistory{historyEntry(order.ID, kind, from, target, notes, actor)},
	}

	switch target {
	case constants.OrderStatusConfirmed:
		plan.updates["confirmed_at"] = now
	case constants.OrderStatusShipped:
		plan.updates["shipped_at"] = now
		if tracking := strings.TrimSpace(patch.TrackingNumber); tracking != "" {
			plan.updates["tracking_number"] = tracking
		}
		if patch.EstimatedDelivery != nil {
			plan.updates["estimated_delivery"] = *patch.EstimatedDelivery
		}
	case constants.OrderStatusDelivered:
		if order.PaymentStatus != constants.PaymentStatusPaid {
			if order.PaymentMethod != constants.PaymentMethodCOD || order.PaymentStatus != constants.PaymentStatusPending {
				return nil, invalidTransition(kind, from, target, "payment not captured")
			}
			plan.updates["payment_status"] = constants.PaymentStatusPaid
			plan.updates["paid_at"] = now
			plan.entries = append(plan.entries, historyEntry(order.ID, constants.StatusKindPayment,
				order.PaymentStatus, constants.PaymentStatusPaid, codDeliveredNote, actor))
		}
		plan.updates["delivered_at"] = now
	case constants.OrderStatusCancelled:
		plan.updates["cancelled_at"] = now
		plan.restock = true
		if order.PaymentStatus == constants.PaymentStatusPaid {
			plan.updates["payment_status"] = constants.PaymentStatusRefunded
			plan.entries = append(plan.entries, historyEntry(order.ID, constants.StatusKindPayment,
				order.PaymentStatus, constants.PaymentStatusRefunded, paidCancelNote, actor))
			plan.requestRefund = true
			plan.refundReason = notes
		}
	}
	return plan, nil
}

func (m *OrderStatusMachine) planPayment(order *models.Order, principal Principal, target string, notes string, now time.Time) (*transitionPlan, error) {
	kind := constants.StatusKindPayment
	from := order.PaymentStatus
	if from == target {
		return nil, noOpTransition(kind, from)
	}
	if !CanTransitionPayment(from, target) {
		return nil, invalidTransition(kind, from, target, "")
	}
	plan := &transitionPlan{
		kind:    kind,
		from:    from,
		to:      target,
		updates: map[string]interface{}{"payment_status": target},
		entries: []*models.OrderStatusHistory{historyEntry(order.ID, kind, from, target, notes, principal.Actor())},
	}
	if target == constants.PaymentStatusPaid {
		plan.updates["paid_at"] = now
		// 已取消订单收到付款：记录 paid 后立即转 refunded 并发起退款
		if order.Status == constants.OrderStatusCancelled {
			plan.updates["payment_status"] = constants.PaymentStatusRefunded
			plan.entries = append(plan.entries, historyEntry(order.ID, kind,
				constants.PaymentStatusPaid, constants.PaymentStatusRefunded, paidAfterCancel, principal.Actor()))
			plan.requestRefund = true
			plan.refundReason = paidAfterCancel
		}
	}
	return plan, nil
}

// run 在事务内读取订单、生成计划并按版本号落库；版本冲突时重新读取再评估一次
func (m *OrderStatusMachine) run(ctx context.Context, principal Principal, orderID string, kind, target string, guard func(*models.Order) error, build planFunc) (*models.Order, error) {
	var (
		order *models.Order
		plan  *transitionPlan
		err   error
	)
	for attempt := 0; attempt < transitionAttempts; attempt++ {
		order, plan, err = m.attempt(orderID, guard, build)
		if !errors.Is(err, errVersionLost) {
			break
		}
		logger.Warnw("order_transition_version_conflict", "order_id", orderID, "attempt", attempt+1)
	}
	if errors.Is(err, errVersionLost) {
		err = ErrConcurrencyConflict
	}
	if err != nil {
		metrics.IncTransition(kind, target, ErrorKind(err))
		return nil, err
	}

	metrics.IncTransition(kind, target, "ok")
	logger.Infow("order_status_transitioned",
		"order_id", order.OrderID,
		"kind", plan.kind,
		"from", plan.from,
		"to", plan.to,
		"entries", len(plan.entries),
		"actor", principal.Actor(),
	)
	m.afterCommit(order, plan, principal)
	return order, nil
}

func (m *OrderStatusMachine) attempt(orderID string, guard func(*models.Order) error, build planFunc) (*models.Order, *transitionPlan, error) {
	var (
		updated *models.Order
		plan    *transitionPlan
	)
	err := m.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := m.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByOrderID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if guard != nil {
			if err := guard(order); err != nil {
				return err
			}
		}
		plan, err = build(order, m.now())
		if err != nil {
			return err
		}

		ok, err := orderRepo.UpdateWithVersion(order.ID, order.Version, plan.updates)
		if err != nil {
			return err
		}
		if !ok {
			return errVersionLost
		}
		if err := m.historyRepo.WithTx(tx).Append(plan.entries...); err != nil {
			return err
		}
		if plan.restock {
			if err := m.restock(tx, order.Items); err != nil {
				return err
			}
		}
		updated, err = orderRepo.GetByOrderID(orderID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, plan, nil
}

// restock 取消时按下单冻结的数量归还库存
func (m *OrderStatusMachine) restock(tx *gorm.DB, items []models.OrderItem) error {
	productRepo := m.productRepo.WithTx(tx)
	variantRepo := m.variantRepo.WithTx(tx)
	for _, item := range items {
		var err error
		if item.VariantID != 0 {
			err = variantRepo.IncrementStock(item.VariantID, item.Quantity)
		} else {
			err = productRepo.IncrementStock(item.ProductID, item.Quantity)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *OrderStatusMachine) afterCommit(order *models.Order, plan *transitionPlan, principal Principal) {
	if m.tasks == nil {
		return
	}
	if plan.requestRefund {
		err := m.tasks.EnqueueRefundRequest(queue.RefundRequestPayload{
			OrderID:          order.OrderID,
			UserID:           order.UserID,
			Amount:           order.Total.String(),
			Currency:         order.Currency,
			PaymentMethod:    order.PaymentMethod,
			PaymentReference: order.PaymentReference,
			Reason:           plan.refundReason,
			RequestedBy:      principal.Actor(),
		})
		if err != nil {
			logger.Errorw("order_enqueue_refund_failed", "order_id", order.OrderID, "error", err)
		}
	}
	if plan.kind == constants.StatusKindFulfillment {
		err := m.tasks.EnqueueOrderStatusNotify(queue.OrderStatusNotifyPayload{
			OrderID:        order.OrderID,
			UserID:         order.UserID,
			PreviousStatus: plan.from,
			Status:         plan.to,
			TrackingNumber: order.TrackingNumber,
		})
		if err != nil {
			logger.Warnw("order_enqueue_status_notify_failed", "order_id", order.OrderID, "error", err)
		}
	}

	eventType := constants.OrderEventStatusChanged
	if plan.kind == constants.StatusKindPayment {
		eventType = constants.OrderEventPaymentChanged
	}
	m.publish(order, eventType, principal)
	if plan.requestRefund {
		m.publish(order, constants.OrderEventRefundRequested, principal)
	}
}

func (m *OrderStatusMachine) publish(order *models.Order, eventType string, principal Principal) {
	err := m.tasks.EnqueueOrderEvent(queue.OrderEventPayload{
		EventID:       uuid.NewString(),
		Type:          eventType,
		OrderID:       order.OrderID,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Total:         order.Total.String(),
		Currency:      order.Currency,
		Actor:         principal.Actor(),
		OccurredAt:    m.now(),
	})
	if err != nil {
		logger.Warnw("order_enqueue_event_failed", "order_id", order.OrderID, "type", eventType, "error", err)
	}
}

func historyEntry(orderID uint, kind, from, to, notes, actor string) *models.OrderStatusHistory {
	return &models.OrderStatusHistory{
		OrderID:    orderID,
		Kind:       kind,
		FromStatus: from,
		ToStatus:   to,
		Notes:      notes,
		CreatedBy:  actor,
	}
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
