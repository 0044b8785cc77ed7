package hrdir

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okian/salesdash/internal/domain/model"
)

// Column names accepted in the HR file, in lookup order.
var (
	nameColumns      = []string{"Nome HR", "nome", "employee"}
	aliasColumns     = []string{"Nome in Sales CSV", "nome_sales"}
	hireDateColumns  = []string{"data_assunzione", "hire_date"}
	hoursColumns     = []string{"ore_settimanali", "weekly_hours"}
	idColumns        = []string{"id", "matricola"}
	statusColumns    = []string{"status", "stato"}
	positionColumns  = []string{"ruolo", "position"}
	departmentCols   = []string{"reparto", "department"}
	emailColumns     = []string{"email"}
	inactiveStatuses = map[string]bool{"inactive": true, "inattivo": true, "i": true, "0": true}
)

// ParseFile reads a comma-delimited HR export with a header row. It returns
// the profiles and the sales-name to HR-name alias table, both keyed as they
// appear in the file.
func ParseFile(r io.Reader) ([]model.HRProfile, map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: %w", model.ErrParse, ErrMissingHeader)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: hr file header: %w", model.ErrParse, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	if firstColumn(header, nameColumns) < 0 {
		return nil, nil, fmt.Errorf("%w: %w", model.ErrParse, ErrMissingNameCol)
	}

	var profiles []model.HRProfile
	aliases := make(map[string]string)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("%w: hr file line %d: %w", model.ErrParse, line, err)
		}

		raw := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				raw[h] = strings.TrimSpace(rec[i])
			} else {
				raw[h] = ""
			}
		}

		name := pick(raw, nameColumns)
		if sales := pick(raw, aliasColumns); sales != "" && name != "" {
			aliases[sales] = name
		}
		if name == "" {
			continue
		}
		profiles = append(profiles, profileFromRow(name, raw))
	}
	return profiles, aliases, nil
}

func profileFromRow(name string, raw map[string]string) model.HRProfile {
	p := model.HRProfile{
		ID:         pick(raw, idColumns),
		FullName:   name,
		Email:      pick(raw, emailColumns),
		Position:   pick(raw, positionColumns),
		Department: pick(raw, departmentCols),
		Status:     model.HRStatusActive,
		Raw:        raw,
	}
	if p.ID == "" {
		p.ID = name
	}
	if d, ok := ParseDate(pick(raw, hireDateColumns)); ok {
		p.HireDate = &d
	}
	if h, ok := parseHours(pick(raw, hoursColumns)); ok {
		p.WeeklyHours = &h
	}
	if inactiveStatuses[strings.ToLower(pick(raw, statusColumns))] {
		p.Status = model.HRStatusInactive
	}
	return p
}

// ParseDate accepts DD/MM/YYYY (optionally followed by a time, which is
// ignored) and YYYY-MM-DD. The result is a calendar date at UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	for _, layout := range []string{"02/01/2006", "2/1/2006", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseHours(s string) (float64, bool) {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return 0, false
	}
	h, err := strconv.ParseFloat(s, 64)
	if err != nil || h < 0 {
		return 0, false
	}
	return h, true
}

func pick(raw map[string]string, cols []string) string {
	for _, c := range cols {
		if v := raw[c]; v != "" {
			return v
		}
	}
	return ""
}

func firstColumn(header, cols []string) int {
	for _, c := range cols {
		for i, h := range header {
			if h == c {
				return i
			}
		}
	}
	return -1
}
