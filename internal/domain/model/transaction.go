// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one raw sales line from the POS export.
type TransactionRecord struct {
	EmployeeName string
	LocationID   string
	Amount       decimal.Decimal
	DocCount     int
	Quantity     int
}

// Ratio is a quotient that may be undefined because its denominator was zero.
type Ratio struct {
	Value float64
	Valid bool
}

// NewRatio divides num by den, returning an invalid Ratio when den is zero
// or the result is not finite.
func NewRatio(num, den float64) Ratio {
	if den == 0 {
		return Ratio{}
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Ratio{}
	}
	return Ratio{Value: v, Valid: true}
}

// MarshalJSON encodes an invalid ratio as null.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}
