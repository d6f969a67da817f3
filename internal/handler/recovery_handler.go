package handler

import (
	"net/http"

	"github.com/AssetDocs/legacylocker/internal/services"
	"github.com/AssetDocs/legacylocker/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RecoveryHandler struct {
	service   *services.RecoveryService
	documents *services.DocumentService
}

func NewRecoveryHandler(service *services.RecoveryService, documents *services.DocumentService) *RecoveryHandler {
	return &RecoveryHandler{service: service, documents: documents}
}

func (h *RecoveryHandler) Submit(c *gin.Context) {
	var req httpdto.SubmitRecoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	lockerID, err := uuid.Parse(req.LockerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid locker_id", "INVALID_REQUEST"))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), services.SubmitInput{
		LockerID:         lockerID,
		Relationship:     req.Relationship,
		Reason:           req.Reason,
		DocumentationURL: req.DocumentationURL,
	})
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromRecoveryRequest(result)))
}

func (h *RecoveryHandler) Respond(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request id", "INVALID_REQUEST"))
		return
	}
	var req httpdto.RespondRecoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	result, err := h.service.Respond(c.Request.Context(), requestID, services.RespondAction(req.Action))
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromRecoveryRequest(result)))
}

func (h *RecoveryHandler) Acknowledge(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request id", "INVALID_REQUEST"))
		return
	}

	message, err := h.service.Acknowledge(c.Request.Context(), requestID)
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AcknowledgeResponse{Message: message}))
}

func (h *RecoveryHandler) ActiveRequest(c *gin.Context) {
	lockerID, err := uuid.Parse(c.Query("locker_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid locker_id", "INVALID_REQUEST"))
		return
	}

	result, err := h.service.ActiveRequest(c.Request.Context(), lockerID)
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromRecoveryRequest(result)))
}

func (h *RecoveryHandler) PresignDocument(c *gin.Context) {
	var req httpdto.PresignDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	result, err := h.documents.CreatePresignedUpload(c.Request.Context(), services.PresignDocumentInput{
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(result))
}
