package wallet

import (
	"context" // Deadlines
	"io"      // Output sink

	"campus_wallet/internal/domain" // Importing domain models

	"github.com/xuri/excelize/v2" // XLSX writer
)

// exportSheet is the worksheet the history is written to
const exportSheet = "Transactions"

// Export writes the caller's merged history to w as an XLSX workbook
func (a *Aggregator) Export(ctx context.Context, id domain.Identity, w io.Writer) error {
	h, err := a.History(ctx, id)
	if err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()
	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return domain.Gateway("failed to create sheet: " + err.Error())
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil { // Drop the default sheet
		return domain.Gateway("failed to prepare workbook: " + err.Error())
	}

	rows := [][]any{{"Date", "Direction", "Type", "Counterparty", "Amount", "Description"}}
	for _, r := range h.Records {
		rows = append(rows, []any{
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			string(r.Direction),
			string(r.Type),
			r.Counterparty,
			r.Amount.InexactFloat64(),
			r.Description,
		})
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return domain.Gateway("failed to address row: " + err.Error())
		}
		if err := f.SetSheetRow(exportSheet, cell, &rows[i]); err != nil {
			return domain.Gateway("failed to write row: " + err.Error())
		}
	}
	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 20}, // Date
		{"B", "C", 12}, // Direction and type
		{"D", "D", 20}, // Counterparty
		{"E", "E", 12}, // Amount
		{"F", "F", 40}, // Description
	}
	for _, cw := range widths {
		if err := f.SetColWidth(exportSheet, cw.from, cw.to, cw.width); err != nil {
			return domain.Gateway("failed to size columns: " + err.Error())
		}
	}

	if err := f.Write(w); err != nil {
		return domain.Gateway("failed to write workbook: " + err.Error())
	}
	return nil
}
