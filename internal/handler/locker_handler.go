package handler

import (
	"net/http"

	"github.com/AssetDocs/legacylocker/internal/services"
	"github.com/AssetDocs/legacylocker/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LockerHandler struct {
	service *services.LockerService
}

func NewLockerHandler(service *services.LockerService) *LockerHandler {
	return &LockerHandler{service: service}
}

func (h *LockerHandler) Create(c *gin.Context) {
	var req httpdto.CreateLockerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	in := services.CreateLockerInput{
		EncryptedVaultKey: req.EncryptedVaultKey,
		DelegateKeyWrap:   req.DelegateKeyWrap,
		GracePeriodDays:   req.GracePeriodDays,
	}
	if req.DelegateUserID != "" {
		delegateID, err := uuid.Parse(req.DelegateUserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid delegate_user_id", "INVALID_REQUEST"))
			return
		}
		in.DelegateUserID = &delegateID
	}

	l, err := h.service.CreateLocker(c.Request.Context(), in)
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromLocker(l)))
}

func (h *LockerHandler) GetOwn(c *gin.Context) {
	l, err := h.service.GetOwnLocker(c.Request.Context())
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromLocker(l)))
}

func (h *LockerHandler) SetDelegate(c *gin.Context) {
	var req httpdto.SetDelegateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	var delegateID *uuid.UUID
	if req.DelegateUserID != "" {
		parsed, err := uuid.Parse(req.DelegateUserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid delegate_user_id", "INVALID_REQUEST"))
			return
		}
		delegateID = &parsed
	}

	if err := h.service.SetDelegate(c.Request.Context(), delegateID); err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"updated": true}))
}

func (h *LockerHandler) SetGracePeriod(c *gin.Context) {
	var req httpdto.SetGracePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if err := h.service.SetGracePeriod(c.Request.Context(), req.GracePeriodDays); err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"updated": true}))
}

func (h *LockerHandler) RecoveryKey(c *gin.Context) {
	lockerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid locker id", "INVALID_REQUEST"))
		return
	}
	wrap, err := h.service.RecoveryKey(c.Request.Context(), lockerID)
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.RecoveryKeyResponse{DelegateKeyWrap: wrap}))
}
