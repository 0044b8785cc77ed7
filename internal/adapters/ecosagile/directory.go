package ecosagile

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/salesdash/internal/domain/hrdir"
	"github.com/okian/salesdash/internal/domain/model"
	"github.com/okian/salesdash/pkg/logger"
)

const (
	peopleAPI       = "PeopleExpressGetAll"
	fullTimeHours   = 40
	fullTimePercent = 100
	notSpecified    = "Not specified"
)

// Directory fetches the people registry.
type Directory struct {
	caller *Caller
	log    logger.Logger
}

// NewDirectory wraps an authenticated caller.
func NewDirectory(caller *Caller) *Directory {
	return &Directory{caller: caller, log: logger.Get().Named(gatewayName)}
}

// ActiveEmployees returns people with status 'A' and no termination date.
func (d *Directory) ActiveEmployees(ctx context.Context) ([]model.HRProfile, error) {
	params := url.Values{}
	params.Set("PersonStatusCode", "='A'")
	params.Set("TerminationDate", "=''")
	return d.fetch(ctx, params)
}

// AllEmployees returns everyone who is not soft-deleted.
func (d *Directory) AllEmployees(ctx context.Context) ([]model.HRProfile, error) {
	return d.fetch(ctx, nil)
}

// ByDepartment returns active employees whose department contains code,
// case-insensitively.
func (d *Directory) ByDepartment(ctx context.Context, code string) ([]model.HRProfile, error) {
	all, err := d.ActiveEmployees(ctx)
	if err != nil {
		return nil, err
	}
	code = strings.ToLower(code)
	var out []model.HRProfile
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Department), code) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (d *Directory) fetch(ctx context.Context, params url.Values) ([]model.HRProfile, error) {
	env, err := d.caller.Call(ctx, peopleAPI, params)
	if err != nil {
		return nil, fmt.Errorf("fetch employees: %w", err)
	}
	if !env.Success {
		return nil, &model.RemoteError{Op: "ecosagile " + peopleAPI, Message: env.Error}
	}

	out := make([]model.HRProfile, 0, len(env.Rows))
	for _, row := range env.Rows {
		if deleted(row) {
			continue
		}
		out = append(out, MapProfile(row))
	}
	d.log.Info(ctx, "ecosagile employees fetched", logger.Int("rows", len(env.Rows)), logger.Int("profiles", len(out)))
	return out, nil
}

func deleted(row map[string]string) bool {
	v := row["Delete"]
	return v != "" && v != "0"
}

// MapProfile normalizes one people row.
func MapProfile(row map[string]string) model.HRProfile {
	firstName := pick(row, "NameFirst", "Nome")
	lastName := pick(row, "NameLast", "Cognome")

	pct, err := strconv.ParseFloat(strings.Replace(row["ParttimePercent"], ",", ".", 1), 64)
	if err != nil || pct == 0 {
		pct = fullTimePercent
	}
	hours := fullTimeHours * pct / fullTimePercent

	p := model.HRProfile{
		ID:              orDefault(pick(row, "EmplID", "EmplCode", "ID"), "N/A"),
		FirstName:       orDefault(firstName, "N/A"),
		LastName:        orDefault(lastName, "N/A"),
		FullName:        strings.TrimSpace(firstName + " " + lastName),
		Email:           row["EMail"],
		Position:        orDefault(pick(row, "CategoryDescShort", "Position", "JobTitle"), notSpecified),
		Department:      orDefault(row["DepartmentDescShort"], notSpecified),
		WeeklyHours:     &hours,
		PartTimePercent: pct,
		Status:          model.HRStatusInactive,
		Raw:             row,
	}
	if !deleted(row) && row["PersonStatusCode"] == "A" {
		p.Status = model.HRStatusActive
	}
	if t, ok := hrdir.ParseDate(row["HireDate"]); ok {
		p.HireDate = &t
	}
	return p
}

func pick(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(row[k]); v != "" {
			return v
		}
	}
	return ""
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
