// Package reports renders ledger data into downloadable spreadsheets.
package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"saku/internal/ledger"
	"saku/internal/money"
)

var timelineHeaders = []string{"Date", "Kind", "Note", "Amount", "Balance"}

// WriteTimelineXLSX writes one pocket's monthly timeline as an xlsx workbook.
// Entries are written oldest-first so the running balance reads top to bottom.
// Amounts are converted from minor units to the pocket's currency precision.
func WriteTimelineXLSX(w io.Writer, pocketName string, currency money.Currency, tl ledger.Timeline) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := tl.Month.String()
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s (%s)", pocketName, currency))

	for i, header := range timelineHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheet, cell, header)
	}

	// Timeline entries arrive newest-first; walk backwards for export.
	row := 3
	for i := len(tl.Entries) - 1; i >= 0; i-- {
		e := tl.Entries[i]
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.Date.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), entryLabel(e))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), entryNote(e))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), displayAmount(e.Amount, currency))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), displayAmount(e.BalanceAfter, currency))
		row++
	}

	return f.Write(w)
}

func entryLabel(e ledger.Entry) string {
	label := string(e.Kind)
	if e.IsUnknownPocket {
		label += " (unknown pocket)"
	}
	return label
}

func entryNote(e ledger.Entry) string {
	switch {
	case e.Income != nil:
		if e.Income.Deduction > 0 {
			return fmt.Sprintf("%s (gross %d, deduction %d)", e.Income.Note, e.Income.Gross, e.Income.Deduction)
		}
		return e.Income.Note
	case e.Expense != nil:
		return e.Expense.Note
	case e.Transfer != nil:
		return e.Transfer.Note
	case e.Opening != nil:
		if e.Opening.Liability != 0 {
			return fmt.Sprintf("carried from %s (asset %d, liability %d)", e.Opening.FromMonth, e.Opening.Asset, e.Opening.Liability)
		}
		return fmt.Sprintf("carried from %s", e.Opening.FromMonth)
	}
	return ""
}

// displayAmount keeps zero-decimal currencies as plain integers and
// two-decimal currencies as floats so spreadsheet sums stay exact.
func displayAmount(units int64, currency money.Currency) interface{} {
	if currency.Decimals() == 0 {
		return units
	}
	v, _ := money.FromMinorUnits(units, currency).Float64()
	return v
}
