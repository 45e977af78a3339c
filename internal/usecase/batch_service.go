package usecase

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/dpplink/dpplink/internal/domain"
)

// Output sheet names
const (
	sheetURLs            = "urls"
	sheetUnmatchedOrders = "unmatched_orders"
)

// BatchService runs the join engine over discovered file pairs
type BatchService struct {
	reader domain.TableReader
	writer domain.WorkbookWriter
	join   *JoinService
	debug  bool
}

// NewBatchService creates a new batch service with dependencies
func NewBatchService(reader domain.TableReader, writer domain.WorkbookWriter, join *JoinService) *BatchService {
	return &BatchService{
		reader: reader,
		writer: writer,
		join:   join,
	}
}

// SetDebug enables or disables debug logging
func (s *BatchService) SetDebug(debug bool) {
	s.debug = debug
	s.join.SetDebug(debug)
}

// ProcessDirectory discovers file pairs in dir and processes each one.
// A failing pair yields a PairResult with Err set and does not stop the
// others; the caller decides whether to log and continue.
func (s *BatchService) ProcessDirectory(dir string) ([]domain.PairResult, error) {
	pairs, err := DiscoverPairs(dir)
	if err != nil {
		return nil, err
	}

	results := make([]domain.PairResult, 0, len(pairs))
	for _, pair := range pairs {
		results = append(results, s.ProcessPair(pair))
	}

	return results, nil
}

// ProcessPair reads one eans/orders pair, joins it and writes the output
// workbook. Both output tables are built fully in memory before any write,
// so a failed pair never leaves a truncated output file behind.
func (s *BatchService) ProcessPair(pair domain.FilePair) domain.PairResult {
	result := domain.PairResult{
		Base:       pair.Base,
		OutputPath: filepath.Join(filepath.Dir(pair.OrdersPath), pair.Base+"_urls.xlsx"),
	}

	ordersRows, err := s.reader.ReadRows(pair.OrdersPath)
	if err != nil {
		result.Err = fmt.Errorf("reading %s: %w", pair.OrdersPath, err)
		return result
	}

	eansRows, err := s.reader.ReadRows(pair.EansPath)
	if err != nil {
		result.Err = fmt.Errorf("reading %s: %w", pair.EansPath, err)
		return result
	}

	orders, err := NormalizeOrders(ordersRows)
	if err != nil {
		result.Err = fmt.Errorf("normalizing %s: %w", pair.OrdersPath, err)
		return result
	}

	eans, err := NormalizeEans(eansRows)
	if err != nil {
		result.Err = fmt.Errorf("normalizing %s: %w", pair.EansPath, err)
		return result
	}

	matched, unmatched := s.join.BuildURLs(orders, eans)

	if err := s.writer.WriteWorkbook(result.OutputPath, BuildWorkbookSheets(matched, unmatched)); err != nil {
		result.Err = fmt.Errorf("writing %s: %w", result.OutputPath, err)
		return result
	}

	result.Matched = len(matched)
	result.Unmatched = len(unmatched)

	if s.debug {
		log.Printf("[BATCH] %s: %d matched, %d unmatched -> %s",
			pair.Base, result.Matched, result.Unmatched, result.OutputPath)
	}

	return result
}

// BuildWorkbookSheets lays out the output tables. The urls sheet is always
// present (possibly empty); the unmatched_orders sheet only when non-empty.
func BuildWorkbookSheets(matched []domain.MatchedURLRecord, unmatched []domain.UnmatchedOrderRecord) []domain.Sheet {
	urls := domain.Sheet{
		Name:   sheetURLs,
		Header: []string{"purchase_order", "product", "base_url", "ean", "url"},
	}
	for _, m := range matched {
		urls.Rows = append(urls.Rows, []interface{}{m.PurchaseOrder, m.Product, m.BaseURL, m.Ean, m.URL})
	}

	sheets := []domain.Sheet{urls}

	if len(unmatched) > 0 {
		orders := domain.Sheet{
			Name:   sheetUnmatchedOrders,
			Header: []string{"purchase_order", "product", "base_url"},
		}
		for _, u := range unmatched {
			orders.Rows = append(orders.Rows, []interface{}{u.PurchaseOrder, u.Product, u.BaseURL})
		}
		sheets = append(sheets, orders)
	}

	return sheets
}
