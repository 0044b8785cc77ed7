package beststore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/okian/salesdash/internal/domain/model"
)

// Header aliases, matched case-insensitively.
var (
	employeeHeaders = []string{"venditore", "operatore", "employee", "employeename"}
	locationHeaders = []string{"negozio", "store", "shop", "locationid"}
	amountHeaders   = []string{"importo", "amount", "totale"}
	docHeaders      = []string{"numdoc", "doccount", "transactions"}
	quantityHeaders = []string{"quantita", "quantità", "qty", "quantity"}
)

type columns struct {
	employee, location, amount, docs, quantity int
}

// ParseExport reads the semicolon-separated export with a header row.
// Missing employee or amount columns fail with ErrParse; missing document
// counts default to one per row and missing quantities to zero.
func ParseExport(r io.Reader) ([]model.TransactionRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: export header: %w", model.ErrParse, err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []model.TransactionRecord
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: export line %d: %w", model.ErrParse, line, err)
		}
		if blank(rec) {
			continue
		}

		amount, err := ParseAmount(field(rec, cols.amount))
		if err != nil {
			return nil, fmt.Errorf("%w: export line %d amount: %w", model.ErrParse, line, err)
		}
		docs := 1
		if cols.docs >= 0 {
			if docs, err = parseCount(field(rec, cols.docs)); err != nil {
				return nil, fmt.Errorf("%w: export line %d doc count: %w", model.ErrParse, line, err)
			}
		}
		qty, err := parseCount(field(rec, cols.quantity))
		if err != nil {
			return nil, fmt.Errorf("%w: export line %d quantity: %w", model.ErrParse, line, err)
		}

		rows = append(rows, model.TransactionRecord{
			EmployeeName: field(rec, cols.employee),
			LocationID:   field(rec, cols.location),
			Amount:       amount,
			DocCount:     docs,
			Quantity:     qty,
		})
	}
	return rows, nil
}

func mapColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	find := func(names []string) int {
		for _, n := range names {
			if i, ok := index[n]; ok {
				return i
			}
		}
		return -1
	}

	cols := columns{
		employee: find(employeeHeaders),
		location: find(locationHeaders),
		amount:   find(amountHeaders),
		docs:     find(docHeaders),
		quantity: find(quantityHeaders),
	}
	if cols.employee < 0 {
		return cols, fmt.Errorf("%w: %w: employee", model.ErrParse, ErrMissingColumn)
	}
	if cols.amount < 0 {
		return cols, fmt.Errorf("%w: %w: amount", model.ErrParse, ErrMissingColumn)
	}
	return cols, nil
}

// ParseAmount accepts "1234.56", "1234,56" and "1.234,56". The last of '.'
// or ',' is taken as the decimal separator when both appear.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.NewReplacer("€", "", " ", "", "\u00a0", "").Replace(s))
	if s == "" {
		return decimal.Zero, nil
	}
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	return decimal.NewFromString(s)
}

func parseCount(s string) (int, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	return int(d.Round(0).IntPart()), nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
