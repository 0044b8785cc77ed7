package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/okian/salesdash/internal/domain/model"
)

const sheetName = "Ranking"

// Header is the column order of every export.
var Header = []string{"Name", "Sales", "Transactions", "Avg Ticket", "UPT", "Growth %", "Rating", "Status", "Type", "Experience"}

// Rows renders employees as export rows. Undefined ratios and missing
// growth are written as empty cells.
func Rows(employees []model.EnrichedEmployee) [][]string {
	out := make([][]string, 0, len(employees))
	for _, e := range employees {
		row := []string{
			e.EmployeeName,
			e.TotalSales.StringFixed(2),
			strconv.Itoa(e.TotalTransactions),
			ratio(e.AverageTicket),
			ratio(e.UnitsPerTransaction),
			"",
			"",
			"",
			e.EmploymentType.Label,
			e.Experience.Label,
		}
		if e.Growth != nil {
			row[5] = strconv.FormatFloat(*e.Growth, 'f', 1, 64)
		}
		if e.Rating != nil {
			row[6] = string(e.Rating.Letter)
		}
		if e.Status != nil {
			row[7] = e.Status.Status
		}
		out = append(out, row)
	}
	return out
}

func ratio(r model.Ratio) string {
	if !r.Valid {
		return ""
	}
	return strconv.FormatFloat(r.Value, 'f', 2, 64)
}

// WriteCSV writes the header and one row per employee.
func WriteCSV(w io.Writer, employees []model.EnrichedEmployee) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(employees)); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, employees []model.EnrichedEmployee) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	_ = f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for c, v := range Header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheetName, cell, v)
	}
	for r, e := range employees {
		row := r + 2
		values := []interface{}{
			e.EmployeeName,
			e.TotalSales.InexactFloat64(),
			e.TotalTransactions,
			cellRatio(e.AverageTicket),
			cellRatio(e.UnitsPerTransaction),
			nil,
			nil,
			nil,
			e.EmploymentType.Label,
			e.Experience.Label,
		}
		if e.Growth != nil {
			values[5] = *e.Growth
		}
		if e.Rating != nil {
			values[6] = string(e.Rating.Letter)
		}
		if e.Status != nil {
			values[7] = e.Status.Status
		}
		for c, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 28)
	_ = f.SetColWidth(sheetName, "B", "H", 14)
	_ = f.SetColWidth(sheetName, "I", "J", 18)
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(sheetName, "A1", "J1", style)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func cellRatio(r model.Ratio) interface{} {
	if !r.Valid {
		return nil
	}
	return r.Value
}
