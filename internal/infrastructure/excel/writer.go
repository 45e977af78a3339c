package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dpplink/dpplink/internal/domain"
)

// Writer writes multi-sheet xlsx workbooks
type Writer struct{}

// NewWriter creates a new workbook writer
func NewWriter() *Writer {
	return &Writer{}
}

// WriteWorkbook persists the sheets, in order, into a single workbook file.
// The file is only written after every sheet has been laid out, so a failure
// mid-build cannot leave a truncated workbook on disk.
func (w *Writer) WriteWorkbook(path string, sheets []domain.Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("%w: refusing to write %s", domain.ErrEmptyWorkbook, path)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", sheet.Name, err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return fmt.Errorf("failed to add sheet %q: %w", sheet.Name, err)
			}
		}

		if err := writeSheet(f, sheet); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	return nil
}

func writeSheet(f *excelize.File, sheet domain.Sheet) error {
	header := make([]interface{}, len(sheet.Header))
	for i, name := range sheet.Header {
		header[i] = name
	}

	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of sheet %q: %w", sheet.Name, err)
	}

	for i, row := range sheet.Rows {
		// Row 1 is the header
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d of sheet %q: %w", i+2, sheet.Name, err)
		}

		if err := f.SetSheetRow(sheet.Name, start, &row); err != nil {
			return fmt.Errorf("failed to write row %d of sheet %q: %w", i+2, sheet.Name, err)
		}
	}

	return nil
}
