package public

import (
	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAddresses 获取收货地址列表
func (h *Handler) ListAddresses(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	addresses, err := h.AddressService.List(uid)
	if err != nil {
		respondAddressError(c, err)
		return
	}
	response.Success(c, addresses)
}

// CreateAddress 新增收货地址
func (h *Handler) CreateAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req service.AddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	address, err := h.AddressService.Create(uid, req)
	if err != nil {
		respondAddressError(c, err)
		return
	}
	response.Success(c, address)
}

// UpdateAddress 修改收货地址
func (h *Handler) UpdateAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	addressID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req service.AddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	address, err := h.AddressService.Update(uid, addressID, req)
	if err != nil {
		respondAddressError(c, err)
		return
	}
	response.Success(c, address)
}

// SetDefaultAddress 设为默认地址
func (h *Handler) SetDefaultAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	addressID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	address, err := h.AddressService.SetDefault(uid, addressID)
	if err != nil {
		respondAddressError(c, err)
		return
	}
	response.Success(c, address)
}

// DeleteAddress 删除收货地址（不存在时视为成功）
func (h *Handler) DeleteAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	addressID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.AddressService.Delete(uid, addressID); err != nil {
		respondAddressError(c, err)
		return
	}
	response.Success(c, nil)
}
