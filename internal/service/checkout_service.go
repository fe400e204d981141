package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sixpine/internal/constants"
	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/metrics"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/queue"
	"github.com/sixpine/internal/repository"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

const (
	defaultIdempotencyWindow = 10 * time.Minute
	defaultInflightLockTTL   = 30 * time.Second
	initialHistoryNote       = "Order created"
)

// CheckoutInput 下单输入
type CheckoutInput struct {
	ShippingAddressID uint
	OrderNotes        string
	PaymentMethod     string
	PaymentReference  string
	IdempotencyKey    string
}

// CheckoutResult 下单结果；Replayed 表示幂等键命中已有订单
type CheckoutResult struct {
	Order    *models.Order
	Replayed bool
}

// CheckoutServiceOptions 下单服务依赖
type CheckoutServiceOptions struct {
	DB                *gorm.DB
	CartRepo          repository.CartRepository
	ProductRepo       repository.ProductRepository
	VariantRepo       repository.VariantRepository
	AddressRepo       repository.AddressRepository
	OrderRepo         repository.OrderRepository
	HistoryRepo       repository.OrderHistoryRepository
	DiscountRepo      repository.DiscountRepository
	Pricing           *PricingEngine
	Validator         *StockValidator
	Verifier          PaymentVerifier
	Locker            Locker
	Tasks             TaskEnqueuer
	IdempotencyWindow time.Duration
	InflightLockTTL   time.Duration
}

// CheckoutService 将购物车与地址提交为不可变订单：校验库存、扣减库存、建单、清空购物车在同一事务内完成
type CheckoutService struct {
	db           *gorm.DB
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	addressRepo  repository.AddressRepository
	orderRepo    repository.OrderRepository
	historyRepo  repository.OrderHistoryRepository
	discountRepo repository.DiscountRepository
	pricing      *PricingEngine
	validator    *StockValidator
	verifier     PaymentVerifier
	locker       Locker
	tasks        TaskEnqueuer
	window       time.Duration
	lockTTL      time.Duration
	now          func() time.Time
}

// NewCheckoutService 创建下单服务
func NewCheckoutService(opts CheckoutServiceOptions) *CheckoutService {
	window := opts.IdempotencyWindow
	if window <= 0 {
		window = defaultIdempotencyWindow
	}
	lockTTL := opts.InflightLockTTL
	if lockTTL <= 0 {
		lockTTL = defaultInflightLockTTL
	}
	locker := opts.Locker
	if locker == nil {
		locker = noopLocker{}
	}
	return &CheckoutService{
		db:           opts.DB,
		cartRepo:     opts.CartRepo,
		productRepo:  opts.ProductRepo,
		variantRepo:  opts.VariantRepo,
		addressRepo:  opts.AddressRepo,
		orderRepo:    opts.OrderRepo,
		historyRepo:  opts.HistoryRepo,
		discountRepo: opts.DiscountRepo,
		pricing:      opts.Pricing,
		validator:    opts.Validator,
		verifier:     opts.Verifier,
		locker:       locker,
		tasks:        opts.Tasks,
		window:       window,
		lockTTL:      lockTTL,
		now:          time.Now,
	}
}

// errStockRace 条件扣减落空但重新校验无冲突，说明被并发请求抢先，整体重试
var errStockRace = errors.New("stock decrement lost race")

// Checkout 下单
func (s *CheckoutService) Checkout(ctx context.Context, principal Principal, input CheckoutInput) (*CheckoutResult, error) {
	started := time.Now()
	result, err := s.checkout(ctx, principal, input)
	switch {
	case err != nil:
		metrics.ObserveCheckout(metrics.CheckoutFailed, ErrorKind(err), time.Since(started))
	case result.Replayed:
		metrics.ObserveCheckout(metrics.CheckoutReplayed, "", time.Since(started))
	default:
		metrics.ObserveCheckout(metrics.CheckoutCommitted, "", time.Since(started))
	}
	return result, err
}

func (s *CheckoutService) checkout(ctx context.Context, principal Principal, input CheckoutInput) (*CheckoutResult, error) {
	if !principal.IsUser() {
		return nil, ErrUnauthorized
	}
	userID := principal.ID

	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	if method == "" {
		method = constants.PaymentMethodCOD
	}
	if method != constants.PaymentMethodCOD && method != constants.PaymentMethodPrepaid {
		return nil, ErrInvalidPaymentMethod
	}
	reference := strings.TrimSpace(input.PaymentReference)
	if method == constants.PaymentMethodPrepaid && reference == "" {
		return nil, ErrPaymentReferenceNeeded
	}

	address, err := resolveShippingAddress(s.addressRepo, userID, input.ShippingAddressID)
	if err != nil {
		return nil, err
	}

	key := ""
	if supplied := strings.TrimSpace(input.IdempotencyKey); supplied != "" {
		key = scopedIdempotencyKey(userID, supplied)
		if existing, err := s.replay(key, userID); err != nil || existing != nil {
			return existing, err
		}
	}

	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		if key == "" {
			if existing, err := s.replayRecent(userID, method, address.Snapshot()); err != nil || existing != nil {
				return existing, err
			}
		}
		return nil, ErrCartEmpty
	}
	if key == "" {
		key = deriveIdempotencyKey(userID, items, address.ID, method, s.now(), s.window)
		if existing, err := s.replay(key, userID); err != nil || existing != nil {
			return existing, err
		}
	}

	release, acquired, err := s.locker.TryLock(ctx, "checkout:"+key, s.lockTTL)
	if err != nil {
		logger.Warnw("checkout_inflight_lock_failed", "user_id", userID, "error", err)
	} else if !acquired {
		return nil, ErrCheckoutInProgress
	} else {
		defer release()
	}

	params, err := s.pricing.LoadParams()
	if err != nil {
		return nil, err
	}

	draft := checkoutDraft{
		userID:    userID,
		actor:     principal.Actor(),
		address:   address.Snapshot(),
		notes:     strings.TrimSpace(input.OrderNotes),
		method:    method,
		reference: reference,
		key:       key,
		params:    params,
	}

	var result *CheckoutResult
	for attempt := 0; attempt < 2; attempt++ {
		result, err = s.commit(ctx, draft)
		if !errors.Is(err, errStockRace) {
			break
		}
		logger.Warnw("checkout_retry_after_race", "user_id", userID, "attempt", attempt+1)
	}
	if errors.Is(err, errStockRace) {
		err = ErrConcurrencyConflict
	}
	if err != nil {
		if existing, lookupErr := s.replay(key, userID); lookupErr == nil && existing != nil {
			return existing, nil
		}
		var conflictErr *StockConflictError
		if errors.As(err, &conflictErr) {
			metrics.AddStockConflicts(len(conflictErr.Conflicts))
			logger.Infow("checkout_stock_conflict", "user_id", userID, "conflicts", len(conflictErr.Conflicts))
		}
		return nil, err
	}
	if result.Replayed {
		return result, nil
	}

	order := result.Order
	logger.Infow("checkout_committed",
		"order_id", order.OrderID,
		"user_id", userID,
		"total", order.Total.String(),
		"payment_method", order.PaymentMethod,
		"items", len(order.Items),
	)
	s.publishCreated(order, principal.Actor())
	return result, nil
}

type checkoutDraft struct {
	userID    uint
	actor     string
	address   models.AddressSnapshot
	notes     string
	method    string
	reference string
	key       string
	params    PricingParams
}

func (s *CheckoutService) commit(ctx context.Context, draft checkoutDraft) (*CheckoutResult, error) {
	var result *CheckoutResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		existing, err := orderRepo.GetByIdempotencyKey(draft.key)
		if err != nil {
			return err
		}
		if existing != nil && existing.UserID == draft.userID {
			result = &CheckoutResult{Order: existing, Replayed: true}
			return nil
		}

		items, err := cartRepo.ListByUser(draft.userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrCartEmpty
		}

		conflicts, err := s.validator.Validate(tx, items)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &StockConflictError{Conflicts: conflicts}
		}

		lines := make([]PricingLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, pricingLineFromCart(item))
		}
		pricing, err := s.pricing.PriceWith(lines, draft.params, s.discountRepo.WithTx(tx))
		if err != nil {
			return err
		}

		if err := s.decrementStock(tx, items); err != nil {
			return err
		}

		now := s.now()
		order := &models.Order{
			OrderID:         ulid.Make().String(),
			UserID:          draft.userID,
			Status:          constants.OrderStatusPending,
			PaymentStatus:   constants.PaymentStatusPending,
			PaymentMethod:   draft.method,
			Currency:        pricing.Currency,
			Subtotal:        pricing.Subtotal,
			ShippingCost:    pricing.ShippingCost,
			Tax:             pricing.Tax,
			TaxRate:         pricing.TaxRate,
			Discount:        pricing.Discount,
			Total:           pricing.Total,
			DiscountID:      pricing.AppliedDiscountID,
			IdempotencyKey:  draft.key,
			ShippingAddress: draft.address,
			OrderNotes:      draft.notes,
			CreatedAt:       now,
		}

		if draft.method == constants.PaymentMethodPrepaid {
			if s.verifier == nil {
				return ErrPaymentVerificationFailed
			}
			err := s.verifier.Verify(ctx, tx, PaymentVerification{
				UserID:    draft.userID,
				Reference: draft.reference,
				Amount:    order.Total,
				Currency:  order.Currency,
				OrderID:   order.OrderID,
			})
			if err != nil {
				return err
			}
			order.PaymentStatus = constants.PaymentStatusPaid
			order.PaymentReference = draft.reference
			order.PaidAt = &now
		}

		orderItems := make([]models.OrderItem, 0, len(lines))
		for i, line := range lines {
			priced := pricing.Lines[i]
			orderItems = append(orderItems, models.OrderItem{
				ProductID:    line.ProductID,
				VariantID:    line.VariantID,
				Title:        line.Title,
				VariantLabel: line.Label,
				SKU:          line.SKU,
				UnitPrice:    priced.UnitPrice,
				Quantity:     priced.Quantity,
				LineTotal:    priced.LineTotal,
			})
		}
		if err := orderRepo.Create(order, orderItems); err != nil {
			return err
		}

		entry := &models.OrderStatusHistory{
			OrderID:   order.ID,
			Kind:      constants.StatusKindFulfillment,
			ToStatus:  constants.OrderStatusPending,
			Notes:     initialHistoryNote,
			CreatedBy: draft.actor,
		}
		if err := s.historyRepo.WithTx(tx).Append(entry); err != nil {
			return err
		}
		order.StatusHistory = []models.OrderStatusHistory{*entry}

		if err := cartRepo.ClearByUser(draft.userID); err != nil {
			return err
		}
		result = &CheckoutResult{Order: order}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// decrementStock 按 (商品, 规格) 条件扣减；落空时重新读取库存区分真实不足与并发抢占
func (s *CheckoutService) decrementStock(tx *gorm.DB, items []models.CartItem) error {
	productRepo := s.productRepo.WithTx(tx)
	variantRepo := s.variantRepo.WithTx(tx)
	for _, item := range items {
		var (
			ok  bool
			err error
		)
		if item.VariantID != 0 {
			ok, err = variantRepo.DecrementStock(item.VariantID, item.Quantity)
		} else {
			ok, err = productRepo.DecrementStock(item.ProductID, item.Quantity)
		}
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		conflicts, err := s.validator.Validate(tx, []models.CartItem{item})
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &StockConflictError{Conflicts: conflicts}
		}
		return errStockRace
	}
	return nil
}

func (s *CheckoutService) replay(key string, userID uint) (*CheckoutResult, error) {
	existing, err := s.orderRepo.GetByIdempotencyKey(key)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.UserID != userID {
		return nil, nil
	}
	logger.Infow("checkout_replayed", "order_id", existing.OrderID, "user_id", userID)
	return &CheckoutResult{Order: existing, Replayed: true}, nil
}

// replayRecent 未携带幂等键的重试：购物车已在上次提交中清空时，返回窗口内同地址同支付方式的推导键订单
func (s *CheckoutService) replayRecent(userID uint, method string, address models.AddressSnapshot) (*CheckoutResult, error) {
	existing, err := s.orderRepo.GetLatestDerivedByUser(userID, s.now().Add(-s.window))
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.PaymentMethod != method || existing.ShippingAddress != address {
		return nil, nil
	}
	logger.Infow("checkout_replayed", "order_id", existing.OrderID, "user_id", userID, "source", "recent")
	return &CheckoutResult{Order: existing, Replayed: true}, nil
}

func (s *CheckoutService) publishCreated(order *models.Order, actor string) {
	if s.tasks == nil {
		return
	}
	payload := queue.OrderEventPayload{
		EventID:       uuid.NewString(),
		Type:          constants.OrderEventCreated,
		OrderID:       order.OrderID,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Total:         order.Total.String(),
		Currency:      order.Currency,
		Actor:         actor,
		OccurredAt:    order.CreatedAt,
	}
	if err := s.tasks.EnqueueOrderEvent(payload); err != nil {
		logger.Warnw("checkout_enqueue_event_failed", "order_id", order.OrderID, "error", err)
	}
}

// scopedIdempotencyKey 调用方提供的键按用户隔离
func scopedIdempotencyKey(userID uint, supplied string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", userID, supplied)))
	return "k:" + hex.EncodeToString(sum[:])
}

// deriveIdempotencyKey 由用户、购物车行标识、地址、支付方式与时间窗口推导幂等键
// 购物车行在下单后被清空，重新加购会产生新的行标识，因此再次购买不会命中上一单
func deriveIdempotencyKey(userID uint, items []models.CartItem, addressID uint, method string, now time.Time, window time.Duration) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%d@%d:%d:%d:%d", item.ID, item.CreatedAt.UnixNano(), item.ProductID, item.VariantID, item.Quantity))
	}
	sort.Strings(parts)
	bucket := now.UnixNano() / int64(window)
	raw := fmt.Sprintf("%d|%s|%d|%s|%d", userID, strings.Join(parts, ","), addressID, method, bucket)
	sum := sha256.Sum256([]byte(raw))
	return repository.DerivedIdempotencyPrefix + hex.EncodeToString(sum[:])
}
