package public

import (
	"strings"

	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
)

const defaultIdempotencyHeader = "Idempotency-Key"

// CheckoutRequest 下单请求
type CheckoutRequest struct {
	ShippingAddressID uint   `json:"shipping_address_id"`
	OrderNotes        string `json:"order_notes"`
	PaymentMethod     string `json:"payment_method"`
	PaymentReference  string `json:"payment_reference"`
}

// CheckoutResponse 下单响应
type CheckoutResponse struct {
	Order    *models.Order `json:"order"`
	Replayed bool          `json:"replayed"`
}

// Checkout 将购物车提交为订单
func (h *Handler) Checkout(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.CheckoutService.Checkout(c.Request.Context(), principal, service.CheckoutInput{
		ShippingAddressID: req.ShippingAddressID,
		OrderNotes:        req.OrderNotes,
		PaymentMethod:     req.PaymentMethod,
		PaymentReference:  req.PaymentReference,
		IdempotencyKey:    strings.TrimSpace(c.GetHeader(h.idempotencyHeader())),
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, CheckoutResponse{Order: result.Order, Replayed: result.Replayed})
}

func (h *Handler) idempotencyHeader() string {
	if h.Config != nil {
		if header := strings.TrimSpace(h.Config.Checkout.IdempotencyHeader); header != "" {
			return header
		}
	}
	return defaultIdempotencyHeader
}
