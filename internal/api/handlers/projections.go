package handlers

import (
	"errors"
	"net/http"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/request"
	"github.com/OnlyTachi/personal-finance-manager/internal/api/response"
	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/service"
)

// ProjectionHandler handles HTTP requests for the standalone savings calculators.
type ProjectionHandler struct {
	projectionService *service.ProjectionService
}

// NewProjectionHandler creates a new ProjectionHandler with the provided service dependency.
func NewProjectionHandler(projectionService *service.ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{
		projectionService: projectionService,
	}
}

func respondProjectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNegativeAmount):
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
	case errors.Is(err, apperrors.ErrIndexRateNotFound):
		response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrIndexRateNotFound.Error(), "no CDI series stored yet")
	default:
		response.RespondError(w, http.StatusInternalServerError, "projection failed", err.Error())
	}
}

func projectionInput(req request.ProjectionRequest) service.ProjectionInput {
	return service.ProjectionInput{
		InitialAmount:       req.InitialAmount,
		MonthlyContribution: req.MonthlyContribution,
		AnnualRate:          req.AnnualRate,
		Months:              req.Months,
	}
}

// Compound handles POST requests for a monthly compounding projection.
//
// Endpoint: POST /api/projections/compound
// Response: 200 OK with ProjectionResult
func (h *ProjectionHandler) Compound(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ProjectionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.projectionService.Compound(projectionInput(req))
	if err != nil {
		respondProjectionError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, result)
}

// Simple handles POST requests for a simple interest projection.
//
// Endpoint: POST /api/projections/simple
// Response: 200 OK with ProjectionResult
func (h *ProjectionHandler) Simple(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ProjectionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.projectionService.Simple(projectionInput(req))
	if err != nil {
		respondProjectionError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, result)
}

// FirstMillion handles POST requests asking how long until the balance
// reaches one million under compound growth.
//
// Endpoint: POST /api/projections/first-million
// Response: 200 OK with ProjectionResult (Months holds the answer)
func (h *ProjectionHandler) FirstMillion(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ProjectionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.projectionService.FirstMillion(projectionInput(req))
	if err != nil {
		respondProjectionError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, result)
}

// ReserveResponse pairs the reserve target with the projection that reaches it.
type ReserveResponse struct {
	Target float64                  `json:"target"`
	Result service.ProjectionResult `json:"result"`
}

// Reserve handles POST requests for an emergency reserve projection.
//
// Endpoint: POST /api/projections/reserve
// Response: 200 OK with ReserveResponse
func (h *ProjectionHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ReserveProjectionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	target, result, err := h.projectionService.Reserve(req.MonthlyExpenses, req.CoverageMonths, projectionInput(req.ProjectionRequest))
	if err != nil {
		respondProjectionError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, ReserveResponse{Target: target, Result: result})
}

// Compare handles POST requests running the same projection under several
// labelled rates.
//
// Endpoint: POST /api/projections/compare
// Response: 200 OK with array of RateComparison
func (h *ProjectionHandler) Compare(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CompareProjectionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	comparisons, err := h.projectionService.Compare(projectionInput(req.ProjectionRequest), req.Scenarios)
	if err != nil {
		respondProjectionError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, comparisons)
}

// CDI handles POST requests projecting a balance earning a percentage of the
// current CDI rate from the stored series.
//
// Endpoint: POST /api/projections/cdi
// Response: 200 OK with ProjectionResult
// Error: 422 Unprocessable Entity when no CDI series is stored yet
func (h *ProjectionHandler) CDI(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CDIProjectionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.projectionService.CDI(projectionInput(req.ProjectionRequest), req.CDIPercent)
	if err != nil {
		respondProjectionError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, result)
}
