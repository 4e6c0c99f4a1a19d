package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/middleware"
	"github.com/OnlyTachi/personal-finance-manager/internal/api/request"
	"github.com/OnlyTachi/personal-finance-manager/internal/api/response"
	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/service"
	"github.com/OnlyTachi/personal-finance-manager/internal/validation"
)

// TransactionHandler handles HTTP requests for ledger endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the ledgerService.
type TransactionHandler struct {
	assetService  *service.AssetService
	ledgerService *service.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependencies.
func NewTransactionHandler(assetService *service.AssetService, ledgerService *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{
		assetService:  assetService,
		ledgerService: ledgerService,
	}
}

// respondLedgerError maps the ledger's business errors to HTTP statuses.
func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrAssetNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrAssetNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrTransactionNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrAssetClosed),
		errors.Is(err, apperrors.ErrFutureTimestamp),
		errors.Is(err, apperrors.ErrNegativeAmount),
		errors.Is(err, apperrors.ErrQuantityRequired):
		response.RespondError(w, http.StatusUnprocessableEntity, err.Error(), "")
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrInsufficientBalance.Error(), "")
	case errors.Is(err, apperrors.ErrConflict):
		response.RespondError(w, http.StatusConflict, apperrors.ErrConflict.Error(), "")
	default:
		response.RespondError(w, http.StatusInternalServerError, "ledger operation failed", err.Error())
	}
}

// TransactionsPerAsset handles GET requests to retrieve an asset's ledger.
//
// Endpoint: GET /api/assets/{uuid}/transactions
// Response: 200 OK with array of Transaction in replay order
// Error: 404 Not Found if the asset does not exist
func (h *TransactionHandler) TransactionsPerAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetService.GetAsset(middleware.Username(r.Context()), chi.URLParam(r, "uuid"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	transactions, err := h.ledgerService.Transactions(asset.ID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// CreateContribution handles POST requests to append a contribution.
//
// Endpoint: POST /api/transactions
// Request Body: CreateContributionRequest (assetId, timestamp, amount, quantity)
// Response: 201 Created with Transaction
// Error: 400 Bad Request if validation fails
// Error: 422 Unprocessable Entity if the ledger rejects the entry
func (h *TransactionHandler) CreateContribution(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateContributionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	timestamp, err := validation.ValidateCreateContribution(req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	asset, err := h.assetService.GetAsset(middleware.Username(r.Context()), req.AssetID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	transaction, err := h.ledgerService.AddContribution(r.Context(), asset, timestamp, req.Amount, req.Quantity)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// UpdateTransaction handles PUT requests to edit a ledger entry. The edit
// triggers a full replay: derived figures of every later withdrawal are
// recomputed as if the corrected history had been entered from the start.
//
// Endpoint: PUT /api/transactions/{uuid}
// Request Body: UpdateTransactionRequest (all fields optional)
// Response: 200 OK with the updated Transaction
// Error: 404 Not Found if the transaction does not exist
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	timestamp, err := validation.ValidateUpdateTransaction(req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	existing, err := h.ledgerService.GetEntry(chi.URLParam(r, "uuid"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	asset, err := h.assetService.GetAsset(middleware.Username(r.Context()), existing.AssetID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	if timestamp != nil {
		existing.Timestamp = *timestamp
	}
	if req.Amount != nil {
		existing.GrossAmount = *req.Amount
	}
	if req.Quantity != nil {
		existing.Quantity = *req.Quantity
	}

	transaction, err := h.ledgerService.UpdateEntry(r.Context(), asset, existing)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE requests to remove a ledger entry, with
// the same full replay semantics as an edit.
//
// Endpoint: DELETE /api/transactions/{uuid}
// Response: 204 No Content on successful deletion
// Error: 404 Not Found if the transaction does not exist
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	existing, err := h.ledgerService.GetEntry(chi.URLParam(r, "uuid"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	asset, err := h.assetService.GetAsset(middleware.Username(r.Context()), existing.AssetID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	if err := h.ledgerService.RemoveEntry(r.Context(), asset, existing.ID); err != nil {
		respondLedgerError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
