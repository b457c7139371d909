package handler

import (
	"topup-pro/internal/adapter/http/dto"
	"topup-pro/internal/core/ports"
	"topup-pro/pkg/apperror"
	"topup-pro/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet balance and funding endpoints.
type WalletHandler struct {
	reportingSvc ports.ReportingService
	fundingSvc   ports.FundingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(reportingSvc ports.ReportingService, fundingSvc ports.FundingService) *WalletHandler {
	return &WalletHandler{
		reportingSvc: reportingSvc,
		fundingSvc:   fundingSvc,
	}
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, currency, err := h.reportingSvc.GetWalletBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletBalanceResponse{
		Balance:  balance,
		Currency: currency,
	})
}

// Fund handles POST /api/v1/wallet/fund.
func (h *WalletHandler) Fund(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.FundWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	intent, err := h.fundingSvc.InitiateFunding(c.Request.Context(), ports.FundingRequest{
		UserID:  userID,
		Amount:  req.Amount,
		Gateway: req.Gateway,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FundWalletResponse{
		Reference:        intent.Reference,
		AuthorizationURL: intent.AuthorizationURL,
	})
}
