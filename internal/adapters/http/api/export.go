package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/internal/domain/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves the ranking table as a downloadable file.
type ExportHandler struct {
	deps Dependencies
	now  func() time.Time
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies, now func() time.Time) *ExportHandler {
	return &ExportHandler{deps: deps, now: now}
}

// HandleCSV handles GET /export.csv. It accepts the /employees query.
func (h *ExportHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "csv", "text/csv; charset=utf-8", func(buf *bytes.Buffer, rows []model.EnrichedEmployee) error {
		return report.WriteCSV(buf, rows)
	})
}

// HandleXLSX handles GET /export.xlsx. It accepts the /employees query.
func (h *ExportHandler) HandleXLSX(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "xlsx", xlsxContentType, func(buf *bytes.Buffer, rows []model.EnrichedEmployee) error {
		return report.WriteXLSX(buf, rows)
	})
}

func (h *ExportHandler) serve(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(*bytes.Buffer, []model.EnrichedEmployee) error) {
	snap, err := h.deps.Current(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	rows := selectEmployees(snap.Result.Employees, r.URL.Query())

	var buf bytes.Buffer
	if err := write(&buf, rows); err != nil {
		writeFailure(w, err)
		return
	}
	name := fmt.Sprintf("sales-report-%s.%s", h.now().Format("2006-01-02"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
