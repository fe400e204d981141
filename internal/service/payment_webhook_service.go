package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sixpine/internal/constants"
	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/metrics"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/repository"

	"github.com/shopspring/decimal"
)

// WebhookPayload 支付网关回调报文
type WebhookPayload struct {
	EventID   string      `json:"event_id"`
	OrderID   string      `json:"order_id"`
	UserID    uint        `json:"user_id"`
	Reference string      `json:"reference"`
	Status    string      `json:"status"`
	Amount    json.Number `json:"amount"`
	Currency  string      `json:"currency"`
}

// WebhookResult 回调处理结果
type WebhookResult struct {
	EventID   string `json:"event_id"`
	Result    string `json:"result"`
	Duplicate bool   `json:"duplicate"`
}

var gatewayPaymentStatus = map[string]string{
	constants.GatewayEventSucceeded:         constants.PaymentStatusPaid,
	constants.GatewayEventFailed:            constants.PaymentStatusFailed,
	constants.GatewayEventRefunded:          constants.PaymentStatusRefunded,
	constants.GatewayEventPartiallyRefunded: constants.PaymentStatusPartiallyRefunded,
}

// PaymentWebhookService 处理与网关无关的签名回调，状态变更只经过状态机
type PaymentWebhookService struct {
	secret      string
	paymentRepo repository.PaymentEventRepository
	machine     *OrderStatusMachine
}

// NewPaymentWebhookService 创建支付回调服务
func NewPaymentWebhookService(secret string, paymentRepo repository.PaymentEventRepository, machine *OrderStatusMachine) *PaymentWebhookService {
	return &PaymentWebhookService{
		secret:      strings.TrimSpace(secret),
		paymentRepo: paymentRepo,
		machine:     machine,
	}
}

// Handle 校验签名、按 event_id 去重并应用回调
func (s *PaymentWebhookService) Handle(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	result, err := s.handle(ctx, body, signature)
	switch {
	case err != nil:
		metrics.IncWebhook("error")
	case result.Duplicate:
		metrics.IncWebhook("duplicate")
	default:
		metrics.IncWebhook(result.Result)
	}
	return result, err
}

func (s *PaymentWebhookService) handle(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if s.secret == "" {
		return nil, ErrWebhookNotConfigured
	}
	if !VerifyWebhookSignature(s.secret, body, signature) {
		return nil, ErrInvalidSignature
	}
	payload, amount, err := parseWebhookPayload(body)
	if err != nil {
		return nil, err
	}

	existing, err := s.paymentRepo.GetEventByEventID(payload.EventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Infow("payment_webhook_duplicate", "event_id", payload.EventID, "result", existing.Result)
		return &WebhookResult{EventID: payload.EventID, Result: existing.Result, Duplicate: true}, nil
	}

	var outcome string
	if payload.OrderID != "" {
		outcome, err = s.applyToOrder(ctx, payload)
	} else {
		outcome, err = s.recordCapture(payload, amount)
	}
	if err != nil {
		return nil, err
	}

	var raw models.JSON
	_ = json.Unmarshal(body, &raw)
	event := &models.PaymentEvent{
		EventID:   payload.EventID,
		OrderID:   payload.OrderID,
		Reference: payload.Reference,
		Status:    payload.Status,
		Amount:    models.NewMoneyFromDecimal(amount),
		Currency:  payload.Currency,
		Result:    outcome,
		Payload:   raw,
	}
	if err := s.paymentRepo.CreateEvent(event); err != nil {
		if isUniqueViolation(err) {
			return &WebhookResult{EventID: payload.EventID, Result: outcome, Duplicate: true}, nil
		}
		return nil, err
	}
	logger.Infow("payment_webhook_processed",
		"event_id", payload.EventID,
		"order_id", payload.OrderID,
		"status", payload.Status,
		"result", outcome,
	)
	return &WebhookResult{EventID: payload.EventID, Result: outcome}, nil
}

// applyToOrder 重复投递导致的 NoOp 视为已处理；非法流转记录为 rejected 不再重试
func (s *PaymentWebhookService) applyToOrder(ctx context.Context, payload WebhookPayload) (string, error) {
	target := gatewayPaymentStatus[payload.Status]
	notes := fmt.Sprintf("Gateway %s (%s)", payload.Status, payload.Reference)
	_, err := s.machine.TransitionPayment(ctx, WebhookPrincipal(payload.EventID), payload.OrderID, target, notes)
	switch {
	case err == nil:
		return constants.PaymentEventResultApplied, nil
	case errors.Is(err, ErrNoOpTransition):
		return constants.PaymentEventResultNoop, nil
	case errors.Is(err, ErrInvalidTransition):
		logger.Warnw("payment_webhook_rejected", "event_id", payload.EventID, "order_id", payload.OrderID, "error", err)
		return constants.PaymentEventResultRejected, nil
	default:
		return "", err
	}
}

// recordCapture 未关联订单的成功回调记为待核销款项，供预付款下单使用
func (s *PaymentWebhookService) recordCapture(payload WebhookPayload, amount decimal.Decimal) (string, error) {
	if payload.Status != constants.GatewayEventSucceeded {
		return constants.PaymentEventResultRejected, nil
	}
	if payload.Reference == "" || !amount.IsPositive() || payload.Currency == "" {
		return "", ErrInvalidWebhookPayload
	}
	existing, err := s.paymentRepo.GetCaptureByReference(payload.Reference)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return constants.PaymentEventResultNoop, nil
	}
	capture := &models.PaymentCapture{
		Reference: payload.Reference,
		UserID:    payload.UserID,
		Amount:    models.NewMoneyFromDecimal(amount),
		Currency:  payload.Currency,
		Status:    constants.CaptureStatusCaptured,
	}
	if err := s.paymentRepo.CreateCapture(capture); err != nil {
		if isUniqueViolation(err) {
			return constants.PaymentEventResultNoop, nil
		}
		return "", err
	}
	return constants.PaymentEventResultCaptured, nil
}

// SignWebhookBody 计算回调签名 hex(hmac_sha256(secret, body))
func SignWebhookBody(secret string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyWebhookSignature 常量时间比较签名
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if signature == "" || len(body) == 0 {
		return false
	}
	expected := SignWebhookBody(secret, body)
	return hmac.Equal([]byte(signature), []byte(expected))
}

func parseWebhookPayload(body []byte) (WebhookPayload, decimal.Decimal, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidWebhookPayload, err)
	}
	payload.EventID = strings.TrimSpace(payload.EventID)
	payload.OrderID = strings.TrimSpace(payload.OrderID)
	payload.Reference = strings.TrimSpace(payload.Reference)
	payload.Status = strings.ToLower(strings.TrimSpace(payload.Status))
	payload.Currency = strings.ToUpper(strings.TrimSpace(payload.Currency))
	if payload.EventID == "" {
		return payload, decimal.Zero, fmt.Errorf("%w: event_id is required", ErrInvalidWebhookPayload)
	}
	if _, ok := gatewayPaymentStatus[payload.Status]; !ok {
		return payload, decimal.Zero, fmt.Errorf("%w: unknown status %q", ErrInvalidWebhookPayload, payload.Status)
	}
	amount := decimal.Zero
	if raw := strings.TrimSpace(payload.Amount.String()); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return payload, decimal.Zero, fmt.Errorf("%w: invalid amount", ErrInvalidWebhookPayload)
		}
		amount = parsed
	}
	return payload, amount, nil
}
