package quote

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Quotes"

var exportHeader = []any{
	"ID",
	"Created",
	"Customer",
	"Email",
	"Phone",
	"Company",
	"Salmon Type",
	"Processing",
	"Processed Weight (lbs)",
	"Round Weight (lbs)",
	"Grounds Price ($/lb)",
	"Recovery Rate",
	"Total Cost ($/lb)",
	"Profit ($/lb)",
	"Final Price ($/lb)",
	"Extended Value ($)",
	"Notes",
}

// ExportXLSX writes quotes as a spreadsheet with one row per quote, in the
// order given.
func ExportXLSX(w io.Writer, quotes []Quote) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename export sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for i, q := range quotes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export cell name: %w", err)
		}
		row := []any{
			q.ID,
			q.CreatedAt.UTC().Format(time.RFC3339),
			q.Customer.Name,
			q.Customer.Email,
			q.Customer.Phone,
			q.Customer.Company,
			q.SalmonType,
			q.Result.ProcessingOptionID,
			safeNum(q.Input.ProcessedWeight),
			safeNum(q.Input.RoundWeight),
			safeNum(q.Input.GroundsPrice),
			safeNum(q.Result.RecoveryRate),
			safeNum(q.Result.TotalCostAfterRecovery),
			safeNum(q.Result.ProfitAmount),
			safeNum(q.Result.FinalPricePerLb),
			safeNum(q.Result.ExtendedValue),
			q.Notes,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write export row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write export workbook: %w", err)
	}
	return nil
}
