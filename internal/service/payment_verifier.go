package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sixpine/internal/constants"
	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/repository"

	"gorm.io/gorm"
)

// CapturePaymentVerifier 校验先付后下单的到账记录并在下单事务内核销
type CapturePaymentVerifier struct {
	paymentRepo repository.PaymentEventRepository
	now         func() time.Time
}

// NewCapturePaymentVerifier 创建预付款校验器
func NewCapturePaymentVerifier(paymentRepo repository.PaymentEventRepository) *CapturePaymentVerifier {
	return &CapturePaymentVerifier{paymentRepo: paymentRepo, now: time.Now}
}

// Verify 到账金额不低于应付总额、币种一致、未被核销过才通过
func (v *CapturePaymentVerifier) Verify(ctx context.Context, tx *gorm.DB, req PaymentVerification) error {
	repo := v.paymentRepo.WithTx(tx)
	reference := strings.TrimSpace(req.Reference)
	capture, err := repo.GetCaptureByReference(reference)
	if err != nil {
		return err
	}
	if capture == nil {
		return fmt.Errorf("%w: reference not found", ErrPaymentVerificationFailed)
	}
	if capture.Status != constants.CaptureStatusCaptured {
		return fmt.Errorf("%w: reference already used", ErrPaymentVerificationFailed)
	}
	if capture.UserID != 0 && capture.UserID != req.UserID {
		return fmt.Errorf("%w: reference belongs to another user", ErrPaymentVerificationFailed)
	}
	if !strings.EqualFold(capture.Currency, req.Currency) {
		return fmt.Errorf("%w: currency mismatch", ErrPaymentVerificationFailed)
	}
	if capture.Amount.LessThan(req.Amount.Decimal) {
		return fmt.Errorf("%w: captured %s less than total %s", ErrPaymentVerificationFailed, capture.Amount.String(), req.Amount.String())
	}

	consumed, err := repo.MarkCaptureConsumed(reference, req.OrderID, v.now())
	if err != nil {
		return err
	}
	if !consumed {
		return fmt.Errorf("%w: reference already used", ErrPaymentVerificationFailed)
	}
	logger.Infow("payment_capture_consumed",
		"reference", reference,
		"order_id", req.OrderID,
		"user_id", req.UserID,
	)
	return nil
}
