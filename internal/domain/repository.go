package domain

// TableReader defines the interface for reading raw spreadsheet rows.
// The first worksheet is read; cell values are returned as strings.
type TableReader interface {
	ReadRows(path string) ([][]string, error)
}

// WorkbookWriter defines the interface for persisting a set of named tables
// into a single workbook file
type WorkbookWriter interface {
	WriteWorkbook(path string, sheets []Sheet) error
}
