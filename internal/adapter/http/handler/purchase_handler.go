package handler

import (
	"time"

	"topup-pro/internal/adapter/http/dto"
	"topup-pro/internal/adapter/http/middleware"
	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"
	"topup-pro/pkg/apperror"
	"topup-pro/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseHandler handles VTU purchase endpoints.
type PurchaseHandler struct {
	purchaseSvc ports.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(purchaseSvc ports.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseSvc: purchaseSvc}
}

// Airtime handles POST /api/v1/purchases/airtime.
func (h *PurchaseHandler) Airtime(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.AirtimePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	h.purchase(c, ports.PurchaseRequest{
		UserID:   userID,
		Type:     domain.TransactionTypeAirtime,
		Amount:   req.Amount,
		Provider: req.Provider,
		Metadata: domain.Metadata{
			Airtime: &domain.AirtimeMetadata{Network: req.Network, Phone: req.Phone},
		},
	})
}

// Data handles POST /api/v1/purchases/data.
func (h *PurchaseHandler) Data(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DataPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	h.purchase(c, ports.PurchaseRequest{
		UserID:   userID,
		Type:     domain.TransactionTypeData,
		Amount:   req.Amount,
		Provider: req.Provider,
		Metadata: domain.Metadata{
			DataPlan: &domain.DataMetadata{
				Network:  req.Network,
				Phone:    req.Phone,
				PlanCode: req.PlanCode,
				PlanName: req.PlanName,
			},
		},
	})
}

// Cable handles POST /api/v1/purchases/cable.
func (h *PurchaseHandler) Cable(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CablePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	h.purchase(c, ports.PurchaseRequest{
		UserID:   userID,
		Type:     domain.TransactionTypeCable,
		Amount:   req.Amount,
		Provider: req.Provider,
		Metadata: domain.Metadata{
			Cable: &domain.CableMetadata{
				Provider:  req.CableProvider,
				Smartcard: req.Smartcard,
				PlanCode:  req.PlanCode,
				PlanName:  req.PlanName,
			},
		},
	})
}

// Electricity handles POST /api/v1/purchases/electricity.
func (h *PurchaseHandler) Electricity(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ElectricityPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	h.purchase(c, ports.PurchaseRequest{
		UserID:   userID,
		Type:     domain.TransactionTypeElectricity,
		Amount:   req.Amount,
		Provider: req.Provider,
		Metadata: domain.Metadata{
			Electricity: &domain.ElectricityMetadata{
				Disco:     req.Disco,
				Meter:     req.Meter,
				MeterType: req.MeterType,
			},
		},
	})
}

func (h *PurchaseHandler) purchase(c *gin.Context, req ports.PurchaseRequest) {
	result, err := h.purchaseSvc.Purchase(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toTransactionResponse(result))
}

// currentUserID extracts the authenticated user from the gin context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:                    tx.ID.String(),
		Reference:             tx.Reference,
		Type:                  string(tx.Type),
		Amount:                tx.Amount,
		Status:                string(tx.Status),
		Recipient:             tx.Metadata.Recipient(),
		ProviderTransactionID: tx.ProviderTransactionID,
		FailureReason:         tx.FailureReason,
		CreatedAt:             tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.CompletedAt != nil {
		s := tx.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	if tx.FailedAt != nil {
		s := tx.FailedAt.Format(time.RFC3339)
		resp.FailedAt = &s
	}
	return resp
}
