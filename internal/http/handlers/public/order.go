package public

import (
	"strings"

	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/repository"

	"github.com/gin-gonic/gin"
)

// CancelOrderRequest 购物者取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// ListOrders 获取我的订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	orders, total, err := h.OrderQueryService.ListForUser(principal, repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// GetOrder 获取我的订单详情（含状态历史）
func (h *Handler) GetOrder(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	order, err := h.OrderQueryService.GetForUser(principal, strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 购物者取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}
	order, err := h.OrderStatusMachine.Cancel(c.Request.Context(), principal, strings.TrimSpace(c.Param("id")), req.Reason)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}
