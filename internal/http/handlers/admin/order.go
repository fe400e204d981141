package admin

import (
	"strings"
	"time"

	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/repository"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 更新履约状态请求
type UpdateOrderStatusRequest struct {
	Status            string     `json:"status" binding:"required"`
	Notes             string     `json:"notes"`
	TrackingNumber    string     `json:"tracking_number"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
}

// UpdatePaymentStatusRequest 更新支付状态请求
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
	Notes         string `json:"notes"`
}

// AddOrderNoteRequest 添加订单备注请求
type AddOrderNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

func parseDateQuery(c *gin.Context, name string) *time.Time {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// GetAdminOrders 获取订单列表
func (h *Handler) GetAdminOrders(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	orders, total, err := h.OrderQueryService.ListForAdmin(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserID:        handlershared.QueryUint(c, "user_id"),
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		OrderID:       strings.TrimSpace(c.Query("order_id")),
		CreatedFrom:   parseDateQuery(c, "created_from"),
		CreatedTo:     parseDateQuery(c, "created_to"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// GetAdminOrder 获取订单详情（含状态历史与备注）
func (h *Handler) GetAdminOrder(c *gin.Context) {
	order, err := h.OrderQueryService.GetForAdmin(strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondOrderStatusError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 推进履约状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderStatusMachine.TransitionFulfillment(
		c.Request.Context(),
		principal,
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(req.Status),
		service.FulfillmentPatch{
			Notes:             req.Notes,
			TrackingNumber:    req.TrackingNumber,
			EstimatedDelivery: req.EstimatedDelivery,
		},
	)
	if err != nil {
		respondOrderStatusError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateOrderPaymentStatus 更新支付状态
func (h *Handler) UpdateOrderPaymentStatus(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderStatusMachine.TransitionPayment(
		c.Request.Context(),
		principal,
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(req.PaymentStatus),
		req.Notes,
	)
	if err != nil {
		respondOrderStatusError(c, err)
		return
	}
	response.Success(c, order)
}

// AddOrderNote 添加订单内部备注
func (h *Handler) AddOrderNote(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req AddOrderNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	note, err := h.OrderStatusMachine.AddNote(c.Request.Context(), principal, strings.TrimSpace(c.Param("id")), req.Note)
	if err != nil {
		respondOrderStatusError(c, err)
		return
	}
	response.Success(c, note)
}
