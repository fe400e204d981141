package public

import (
	"strings"

	"github.com/sixpine/internal/http/response"

	"github.com/gin-gonic/gin"
)

// WebhookSignatureHeader 支付回调签名头，值为 hex(hmac_sha256(secret, body))
const WebhookSignatureHeader = "X-Signature"

// PaymentWebhook 处理支付网关回调；重复投递与无变化的状态同样返回成功
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.PaymentWebhookService.Handle(c.Request.Context(), body, strings.TrimSpace(c.GetHeader(WebhookSignatureHeader)))
	if err != nil {
		respondWebhookError(c, err)
		return
	}
	response.Success(c, result)
}
