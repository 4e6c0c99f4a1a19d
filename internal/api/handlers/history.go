package handlers

import (
	"net/http"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/middleware"
	"github.com/OnlyTachi/personal-finance-manager/internal/api/response"
	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/service"
)

// HistoryHandler handles HTTP requests for the net-worth history endpoints.
type HistoryHandler struct {
	snapshotService *service.SnapshotService
}

// NewHistoryHandler creates a new HistoryHandler with the provided service dependency.
func NewHistoryHandler(snapshotService *service.SnapshotService) *HistoryHandler {
	return &HistoryHandler{
		snapshotService: snapshotService,
	}
}

// History handles GET requests to retrieve the stored daily snapshots.
//
// Endpoint: GET /api/history
// Response: 200 OK with array of NetWorthSnapshot, oldest first
// Error: 500 Internal Server Error if retrieval fails
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.snapshotService.History(middleware.Username(r.Context()))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveHistory.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshots)
}

// Rebuild handles POST requests to drop and recompute the whole history from
// the earliest ledger entry. Used after editing old transactions.
//
// Endpoint: POST /api/history/rebuild
// Response: 204 No Content
// Error: 500 Internal Server Error if the rebuild fails
func (h *HistoryHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if err := h.snapshotService.RebuildHistory(r.Context(), middleware.Username(r.Context())); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to rebuild history", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
