package api

import (
	"net/http"
	"time"

	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/internal/domain/report"
)

// DashboardHandler serves the landing view.
type DashboardHandler struct {
	deps Dependencies
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps Dependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

type dashboardResponse struct {
	report.Dashboard
	Version  uint64             `json:"version"`
	Range    model.DateRange    `json:"range"`
	LoadedAt time.Time          `json:"loadedAt"`
	Baseline model.TeamBaseline `json:"baseline"`
}

// HandleDashboard handles GET /dashboard.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Current(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Dashboard: report.BuildDashboard(snap.Result),
		Version:   snap.Version,
		Range:     snap.Range,
		LoadedAt:  snap.LoadedAt,
		Baseline:  snap.Result.Baseline,
	})
}
