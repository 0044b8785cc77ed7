package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/salesdash/internal/app"
	"github.com/okian/salesdash/internal/domain/model"
)

const (
	dateLayout   = "2006-01-02"
	maxBodyBytes = 1 << 16
)

// RefreshHandler queues refreshes and reports their progress.
type RefreshHandler struct {
	deps Dependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps Dependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// refreshRequest is the body of POST /refresh. Dates are YYYY-MM-DD; an
// empty "to" means a single day.
type refreshRequest struct {
	From                string   `json:"from"`
	To                  string   `json:"to"`
	Stores              []string `json:"stores"`
	DocTypes            []string `json:"docTypes"`
	CompareWithPrevious bool     `json:"compareWithPrevious"`
}

func (req refreshRequest) parse() (model.DateRange, model.Filters, error) {
	var rng model.DateRange
	from, err := time.Parse(dateLayout, strings.TrimSpace(req.From))
	if err != nil {
		return rng, model.Filters{}, fmt.Errorf("%w: invalid from date", ErrBadRequest)
	}
	rng.From = from
	if s := strings.TrimSpace(req.To); s != "" {
		to, err := time.Parse(dateLayout, s)
		if err != nil {
			return rng, model.Filters{}, fmt.Errorf("%w: invalid to date", ErrBadRequest)
		}
		rng.To = to
	}
	return rng, model.Filters{
		Stores:              req.Stores,
		DocTypes:            req.DocTypes,
		CompareWithPrevious: req.CompareWithPrevious,
	}, nil
}

// HandleSubmit handles POST /refresh and answers 202 with the queued job.
func (h *RefreshHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	rng, filters, err := req.parse()
	if err != nil {
		writeFailure(w, err)
		return
	}
	job, err := h.deps.Submit(r.Context(), rng, filters)
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Location", "/refresh/"+job.ID)
	writeJSON(w, http.StatusAccepted, job)
}

// jobResponse adds the API error code of a failed refresh.
type jobResponse struct {
	service.Job
	ErrorCode string `json:"errorCode,omitempty"`
}

// HandleStatus handles GET /refresh/{id}.
func (h *RefreshHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	job, err := h.deps.Job(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	resp := jobResponse{Job: job}
	if job.Status == model.JobFailed {
		_, resp.ErrorCode = classify(job.Err())
	}
	writeJSON(w, http.StatusOK, resp)
}
