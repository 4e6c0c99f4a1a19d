package handlers

import (
	"net/http"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/middleware"
	"github.com/OnlyTachi/personal-finance-manager/internal/api/request"
	"github.com/OnlyTachi/personal-finance-manager/internal/api/response"
	"github.com/OnlyTachi/personal-finance-manager/internal/service"
	"github.com/OnlyTachi/personal-finance-manager/internal/validation"
)

// WithdrawalHandler handles HTTP requests for the two-step withdrawal flow:
// simulate returns a preview without touching the ledger, commit records the
// withdrawal and fails with 409 if the state drifted since the preview.
type WithdrawalHandler struct {
	assetService      *service.AssetService
	withdrawalService *service.WithdrawalService
}

// NewWithdrawalHandler creates a new WithdrawalHandler with the provided service dependencies.
func NewWithdrawalHandler(assetService *service.AssetService, withdrawalService *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{
		assetService:      assetService,
		withdrawalService: withdrawalService,
	}
}

// Simulate handles POST requests to preview a withdrawal.
//
// Endpoint: POST /api/withdrawals/simulate
// Request Body: WithdrawalRequest (assetId, amount or quantity)
// Response: 200 OK with Preview
// Error: 422 Unprocessable Entity if open lots cannot cover the request
func (h *WithdrawalHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.WithdrawalRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateWithdrawal(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	asset, err := h.assetService.GetAsset(middleware.Username(r.Context()), req.AssetID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	preview, err := h.withdrawalService.Simulate(r.Context(), asset, req.Amount, req.Quantity, time.Now())
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, preview)
}

// Commit handles POST requests to execute a withdrawal. When the request
// carries the previously returned preview, the commit verifies the fresh
// simulation still matches it and responds 409 Conflict when it does not.
//
// Endpoint: POST /api/withdrawals
// Request Body: CommitWithdrawalRequest (assetId, amount or quantity, optional preview)
// Response: 201 Created with the recorded Transaction
// Error: 409 Conflict if the ledger changed since the preview
// Error: 422 Unprocessable Entity if open lots cannot cover the request
func (h *WithdrawalHandler) Commit(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CommitWithdrawalRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateWithdrawal(req.WithdrawalRequest); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	asset, err := h.assetService.GetAsset(middleware.Username(r.Context()), req.AssetID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	transaction, err := h.withdrawalService.Commit(r.Context(), asset, req.Amount, req.Quantity, time.Now(), req.Preview)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}
