package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/middleware"
	"github.com/OnlyTachi/personal-finance-manager/internal/api/request"
	"github.com/OnlyTachi/personal-finance-manager/internal/api/response"
	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/service"
	"github.com/OnlyTachi/personal-finance-manager/internal/validation"
)

// LiabilityHandler handles HTTP requests for liability and installment endpoints.
type LiabilityHandler struct {
	liabilityService *service.LiabilityService
}

// NewLiabilityHandler creates a new LiabilityHandler with the provided service dependency.
func NewLiabilityHandler(liabilityService *service.LiabilityService) *LiabilityHandler {
	return &LiabilityHandler{
		liabilityService: liabilityService,
	}
}

// LiabilityResponse bundles a liability with its installment schedule.
type LiabilityResponse struct {
	model.Liability
	Installments []model.Installment `json:"installments"`
}

// Liabilities handles GET requests to retrieve all liabilities of the user.
//
// Endpoint: GET /api/liabilities
// Response: 200 OK with array of Liability
// Error: 500 Internal Server Error if retrieval fails
func (h *LiabilityHandler) Liabilities(w http.ResponseWriter, r *http.Request) {
	liabilities, err := h.liabilityService.GetLiabilities(middleware.Username(r.Context()))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLiabilities.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, liabilities)
}

// GetLiability handles GET requests to retrieve a liability and its schedule.
//
// Endpoint: GET /api/liabilities/{uuid}
// Response: 200 OK with LiabilityResponse
// Error: 404 Not Found if the liability does not exist
func (h *LiabilityHandler) GetLiability(w http.ResponseWriter, r *http.Request) {
	liability, installments, err := h.liabilityService.GetLiability(middleware.Username(r.Context()), chi.URLParam(r, "uuid"))
	if err != nil {
		if errors.Is(err, apperrors.ErrLiabilityNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrLiabilityNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLiabilities.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, LiabilityResponse{Liability: liability, Installments: installments})
}

// CreateLiability handles POST requests to create a liability with its
// generated installment schedule.
//
// Endpoint: POST /api/liabilities
// Request Body: CreateLiabilityRequest
// Response: 201 Created with LiabilityResponse
// Error: 400 Bad Request if validation fails
func (h *LiabilityHandler) CreateLiability(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateLiabilityRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	startDate, err := validation.ValidateCreateLiability(req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	liability := model.Liability{
		UserID:            middleware.Username(r.Context()),
		Name:              req.Name,
		Type:              req.Type,
		OriginalAmount:    req.OriginalAmount,
		AnnualRate:        req.AnnualRate,
		TermMonths:        req.TermMonths,
		InstallmentAmount: req.InstallmentAmount,
		StartDate:         startDate,
	}

	created, installments, err := h.liabilityService.CreateLiability(r.Context(), liability)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create liability", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, LiabilityResponse{Liability: created, Installments: installments})
}

// UpdateBalance handles PUT requests to set the user-maintained outstanding
// balance. Installment toggles never derive this figure.
//
// Endpoint: PUT /api/liabilities/{uuid}/balance
// Request Body: UpdateLiabilityBalanceRequest
// Response: 200 OK with the updated Liability
// Error: 404 Not Found if the liability does not exist
func (h *LiabilityHandler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateLiabilityBalanceRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateBalanceUpdate(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	liability, err := h.liabilityService.UpdateOutstandingBalance(r.Context(), middleware.Username(r.Context()), chi.URLParam(r, "uuid"), req.OutstandingBalance)
	if err != nil {
		if errors.Is(err, apperrors.ErrLiabilityNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrLiabilityNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to update liability", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, liability)
}

// DeleteLiability handles DELETE requests to remove a liability and its schedule.
//
// Endpoint: DELETE /api/liabilities/{uuid}
// Response: 204 No Content on successful deletion
// Error: 404 Not Found if the liability does not exist
func (h *LiabilityHandler) DeleteLiability(w http.ResponseWriter, r *http.Request) {
	err := h.liabilityService.DeleteLiability(r.Context(), middleware.Username(r.Context()), chi.URLParam(r, "uuid"))
	if err != nil {
		if errors.Is(err, apperrors.ErrLiabilityNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrLiabilityNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete liability", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// ToggleInstallment handles POST requests to flip an installment between
// pending and paid. Re-applying the current state is a no-op.
//
// Endpoint: POST /api/installments/{uuid}/toggle
// Request Body: ToggleInstallmentRequest (paid)
// Response: 200 OK with the Installment
// Error: 404 Not Found if the installment does not exist
func (h *LiabilityHandler) ToggleInstallment(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ToggleInstallmentRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	installment, err := h.liabilityService.ToggleInstallment(r.Context(), middleware.Username(r.Context()), chi.URLParam(r, "uuid"), req.Paid)
	if err != nil {
		if errors.Is(err, apperrors.ErrInstallmentNotFound) || errors.Is(err, apperrors.ErrLiabilityNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrInstallmentNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to toggle installment", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, installment)
}
