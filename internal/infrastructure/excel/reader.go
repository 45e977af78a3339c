// Package excel implements the workbook reader/writer interfaces on top of
// the excelize library.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dpplink/dpplink/internal/domain"
)

// Reader reads xlsx/xlsm workbooks
type Reader struct{}

// NewReader creates a new workbook reader
func NewReader() *Reader {
	return &Reader{}
}

// ReadRows returns the raw rows of the first worksheet. Cell values come
// back as formatted strings; trailing empty cells may be absent, so callers
// must bounds-check row access.
func (r *Reader) ReadRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyWorkbook, path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
	}

	return rows, nil
}
