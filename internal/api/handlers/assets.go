package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/middleware"
	"github.com/OnlyTachi/personal-finance-manager/internal/api/request"
	"github.com/OnlyTachi/personal-finance-manager/internal/api/response"
	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/service"
	"github.com/OnlyTachi/personal-finance-manager/internal/validation"
)

// AssetHandler handles HTTP requests for asset endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the assetService.
type AssetHandler struct {
	assetService    *service.AssetService
	snapshotService *service.SnapshotService
	marketService   *service.MarketDataService
}

// NewAssetHandler creates a new AssetHandler with the provided service dependencies.
func NewAssetHandler(
	assetService *service.AssetService,
	snapshotService *service.SnapshotService,
	marketService *service.MarketDataService,
) *AssetHandler {
	return &AssetHandler{
		assetService:    assetService,
		snapshotService: snapshotService,
		marketService:   marketService,
	}
}

// Assets handles GET requests to retrieve all assets of the authenticated user.
// Listing doubles as the daily touchpoint: it makes sure today's net worth
// snapshot exists before responding.
//
// Endpoint: GET /api/assets
// Response: 200 OK with array of Asset
// Error: 500 Internal Server Error if retrieval fails
func (h *AssetHandler) Assets(w http.ResponseWriter, r *http.Request) {
	username := middleware.Username(r.Context())

	// A snapshot failure never blocks the listing; the scheduled job retries.
	_ = h.snapshotService.EnsureDailySnapshot(r.Context(), username)

	assets, err := h.assetService.GetAssets(username)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAssets.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, assets)
}

// GetAsset handles GET requests to retrieve a single asset by ID.
//
// Endpoint: GET /api/assets/{uuid}
// Response: 200 OK with Asset
// Error: 404 Not Found if the asset does not exist or belongs to another user
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetService.GetAsset(middleware.Username(r.Context()), chi.URLParam(r, "uuid"))
	if err != nil {
		if errors.Is(err, apperrors.ErrAssetNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAssetNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAsset.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, asset)
}

// Summary handles GET requests to retrieve the valuation summary of an asset.
// Degraded valuation conditions appear as warnings on the summary rather than
// failing the request.
//
// Endpoint: GET /api/assets/{uuid}/summary
// Response: 200 OK with AssetSummary
// Error: 404 Not Found if the asset does not exist
// Error: 500 Internal Server Error if valuation fails
func (h *AssetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetService.GetAsset(middleware.Username(r.Context()), chi.URLParam(r, "uuid"))
	if err != nil {
		if errors.Is(err, apperrors.ErrAssetNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAssetNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAsset.Error(), err.Error())
		return
	}

	summary, err := h.assetService.Summary(asset)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveSummary.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Refresh handles POST requests to pull fresh market data on demand. Index
// rates refresh before quotes so revaluations see a consistent day. Provider
// outages degrade to the last stored values and do not fail the request.
//
// Endpoint: POST /api/assets/refresh
// Response: 204 No Content
// Error: 500 Internal Server Error if storing fetched data fails
func (h *AssetHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.marketService.RefreshIndexRates(r.Context()); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to refresh index rates", err.Error())
		return
	}
	if err := h.marketService.RefreshQuotes(r.Context()); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to refresh quotes", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// CreateAsset handles POST requests to create a new asset, optionally seeding
// it with an initial contribution.
//
// Endpoint: POST /api/assets
// Request Body: CreateAssetRequest
// Response: 201 Created with Asset
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateAssetRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateAsset(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	asset := model.Asset{
		UserID:   middleware.Username(r.Context()),
		Name:     req.Name,
		Category: model.AssetCategory(req.Category),
		Indexer: model.Indexer{
			Kind:        model.IndexerKind(req.IndexerKind),
			Reference:   model.ReferenceIndex(req.Reference),
			RatePercent: req.RatePercent,
			Ticker:      req.Ticker,
			Market:      model.Market(req.Market),
		},
		TaxExempt: req.TaxExempt,
	}

	var startAt time.Time
	if req.StartDate != "" {
		startAt, _ = validation.ParseTimestamp(req.StartDate)
	}

	created, err := h.assetService.CreateAsset(r.Context(), asset, req.InitialAmount, req.InitialQuantity, startAt)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTickerRequired),
			errors.Is(err, apperrors.ErrTickerForbidden):
			response.RespondError(w, http.StatusBadRequest, err.Error(), "")
		case errors.Is(err, apperrors.ErrFutureTimestamp),
			errors.Is(err, apperrors.ErrNegativeAmount),
			errors.Is(err, apperrors.ErrQuantityRequired):
			response.RespondError(w, http.StatusUnprocessableEntity, err.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to create asset", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, created)
}

// CloseAsset handles POST requests to close an asset. Closed assets keep
// their history but refuse further ledger mutations.
//
// Endpoint: POST /api/assets/{uuid}/close
// Response: 200 OK with the closed Asset
// Error: 404 Not Found if the asset does not exist
func (h *AssetHandler) CloseAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetService.CloseAsset(r.Context(), middleware.Username(r.Context()), chi.URLParam(r, "uuid"))
	if err != nil {
		if errors.Is(err, apperrors.ErrAssetNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAssetNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to close asset", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, asset)
}

// DeleteAsset handles DELETE requests to remove an asset and its ledger.
//
// Endpoint: DELETE /api/assets/{uuid}
// Response: 204 No Content on successful deletion
// Error: 404 Not Found if the asset does not exist
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	err := h.assetService.DeleteAsset(r.Context(), middleware.Username(r.Context()), chi.URLParam(r, "uuid"))
	if err != nil {
		if errors.Is(err, apperrors.ErrAssetNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAssetNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete asset", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
