package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/okian/salesdash/internal/adapters/repository"
	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/internal/domain/report"
)

// EmployeesHandler serves the ranking table and the employee detail view.
type EmployeesHandler struct {
	deps Dependencies
}

// NewEmployeesHandler creates a new employees handler.
func NewEmployeesHandler(deps Dependencies) *EmployeesHandler {
	return &EmployeesHandler{deps: deps}
}

type listResponse struct {
	Employees []repository.Entry `json:"employees"`
	Total     int                `json:"total"`
	Matched   int                `json:"matched"`
	Locations []string           `json:"locations"`
}

type detailResponse struct {
	repository.Entry
	Actions  report.ActionPlan  `json:"actions"`
	Baseline model.TeamBaseline `json:"baseline"`
}

// HandleList handles GET /employees?search=&location=&type=&sort=&order=.
func (h *EmployeesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Current(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	rows := selectEmployees(snap.Result.Employees, r.URL.Query())
	writeJSON(w, http.StatusOK, listResponse{
		Employees: ranked(snap, rows),
		Total:     len(snap.Result.Employees),
		Matched:   len(rows),
		Locations: report.Locations(snap.Result.Employees),
	})
}

// HandleDetail handles GET /employees/{name}.
func (h *EmployeesHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	entry, err := h.deps.Rank(r.Context(), name)
	if err != nil {
		writeFailure(w, err)
		return
	}
	resp := detailResponse{Entry: entry, Actions: report.Actions(entry.Employee)}
	if snap, err := h.deps.Current(r.Context()); err == nil {
		resp.Baseline = snap.Result.Baseline
	}
	writeJSON(w, http.StatusOK, resp)
}

// selectEmployees applies the table query parameters. Without a sort
// parameter the ranking order is kept.
func selectEmployees(all []model.EnrichedEmployee, q url.Values) []model.EnrichedEmployee {
	rows := report.Filter(all, report.Query{
		Search:   q.Get("search"),
		Location: q.Get("location"),
		Type:     q.Get("type"),
	})
	if column := q.Get("sort"); column != "" {
		report.Sort(rows, column, q.Get("order") == "asc")
	}
	return rows
}

// ranked attaches each employee's overall rank.
func ranked(snap *repository.Snapshot, rows []model.EnrichedEmployee) []repository.Entry {
	ranks := make(map[string]int, len(snap.Entries))
	for _, e := range snap.Entries {
		ranks[e.Employee.EmployeeName] = e.Rank
	}
	out := make([]repository.Entry, 0, len(rows))
	for _, e := range rows {
		out = append(out, repository.Entry{Rank: ranks[e.EmployeeName], Employee: e})
	}
	return out
}
