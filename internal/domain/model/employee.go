package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeAggregate holds per-employee totals for one refresh cycle.
type EmployeeAggregate struct {
	EmployeeName        string          `json:"employee"`
	TotalSales          decimal.Decimal `json:"totalSales"`
	TotalTransactions   int             `json:"totalTransactions"`
	TotalQuantity       int             `json:"totalQuantity"`
	Locations           []string        `json:"locations"`
	AverageTicket       Ratio           `json:"averageTicket"`
	UnitsPerTransaction Ratio           `json:"unitsPerTransaction"`
}

// HasLocation reports whether the employee sold at location.
func (a EmployeeAggregate) HasLocation(location string) bool {
	for _, l := range a.Locations {
		if l == location {
			return true
		}
	}
	return false
}

// TeamBaseline holds team-wide reference averages for one period.
type TeamBaseline struct {
	AverageSalesPerEmployee    float64         `json:"averageSalesPerEmployee"`
	BlendedAverageTicket       float64         `json:"blendedAverageTicket"`
	BlendedUnitsPerTransaction float64         `json:"blendedUnitsPerTransaction"`
	Employees                  int             `json:"employees"`
	TotalSales                 decimal.Decimal `json:"totalSales"`
	TotalTransactions          int             `json:"totalTransactions"`
	TotalQuantity              int             `json:"totalQuantity"`
}

// Letter is an A-D performance grade.
type Letter string

// Grades.
const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"
)

// RatingResult is the output of the rating engine for one employee.
type RatingResult struct {
	Letter Letter  `json:"letter"`
	Score  float64 `json:"score"`
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Stars  string  `json:"stars"`
}

// StatusResult is the status badge derived from the rating and growth.
type StatusResult struct {
	Status string `json:"status"`
	Icon   string `json:"icon"`
	Color  string `json:"color"`
}

// ExperienceTier buckets tenure.
type ExperienceTier struct {
	Level string `json:"level"`
	Label string `json:"label"`
	Badge string `json:"badge"`
}

// Employment types.
const (
	EmploymentFull = "full"
	EmploymentPart = "part"
)

// EmploymentType classifies weekly hours.
type EmploymentType struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Badge string `json:"badge"`
	Color string `json:"color"`
}

// EnrichedEmployee is the artifact handed to presentation.
type EnrichedEmployee struct {
	EmployeeAggregate

	Growth             *float64       `json:"growth"`
	Rating             *RatingResult  `json:"rating"`
	Status             *StatusResult  `json:"status"`
	Experience         ExperienceTier `json:"experience"`
	EmploymentType     EmploymentType `json:"employmentType"`
	TenureMonths       *int           `json:"tenureMonths"`
	VsTeamSalesPercent Ratio          `json:"vsTeamSalesPercent"`
	HR                 *HRProfile     `json:"hr,omitempty"`

	// RatingError explains why Rating is nil.
	RatingError string `json:"ratingError,omitempty"`
}

// Score returns the rating score, or -1 for unrated employees.
func (e EnrichedEmployee) Score() float64 {
	if e.Rating == nil {
		return -1
	}
	return e.Rating.Score
}

// Active reports whether the employee counts as active; employees without
// an HR match are treated as active.
func (e EnrichedEmployee) Active() bool {
	return e.HR == nil || e.HR.Status == HRStatusActive
}

// DateRange is an inclusive calendar period.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Previous returns the range of equal length that ends the day before r.From.
func (r DateRange) Previous() DateRange {
	days := int(r.To.Sub(r.From).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	to := r.From.AddDate(0, 0, -1)
	return DateRange{From: to.AddDate(0, 0, -(days - 1)), To: to}
}

// Filters narrows the sales export.
type Filters struct {
	Stores   []string `json:"stores,omitempty"`
	DocTypes []string `json:"docTypes,omitempty"`

	// CompareWithPrevious requests growth against the preceding period.
	CompareWithPrevious bool `json:"compareWithPrevious"`
}
