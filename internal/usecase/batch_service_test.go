package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dpplink/dpplink/internal/domain"
)

// fakeReader serves canned rows per path
type fakeReader struct {
	tables map[string][][]string
}

func (r *fakeReader) ReadRows(path string) ([][]string, error) {
	rows, ok := r.tables[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("unreadable workbook %s", path)
	}
	return rows, nil
}

// fakeWriter records what would have been written
type fakeWriter struct {
	written map[string][]domain.Sheet
	fail    bool
}

func (w *fakeWriter) WriteWorkbook(path string, sheets []domain.Sheet) error {
	if w.fail {
		return fmt.Errorf("disk full")
	}
	if w.written == nil {
		w.written = map[string][]domain.Sheet{}
	}
	w.written[filepath.Base(path)] = sheets
	return nil
}

func TestProcessPair(t *testing.T) {
	pair := domain.FilePair{
		EansPath:   "/data/spring_eans.xlsx",
		OrdersPath: "/data/spring_orders.xlsx",
		Base:       "spring",
	}

	reader := &fakeReader{tables: map[string][][]string{
		"spring_orders.xlsx": {
			{"purchase_order", "product", "base_url"},
			{"PO1", "P1", "http://x.com/"},
			{"PO2", "P9", "http://y.com"},
		},
		"spring_eans.xlsx": {
			{"product", "ean"},
			{"P1", "0012345"},
		},
	}}

	t.Run("writes both sheets and reports counts", func(t *testing.T) {
		writer := &fakeWriter{}
		svc := NewBatchService(reader, writer, NewJoinService())

		result := svc.ProcessPair(pair)
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}

		if result.Matched != 1 || result.Unmatched != 1 {
			t.Errorf("counts = (%d, %d), want (1, 1)", result.Matched, result.Unmatched)
		}
		if filepath.Base(result.OutputPath) != "spring_urls.xlsx" {
			t.Errorf("OutputPath = %s, want spring_urls.xlsx", result.OutputPath)
		}

		sheets := writer.written["spring_urls.xlsx"]
		if len(sheets) != 2 {
			t.Fatalf("sheets = %v, want urls + unmatched_orders", sheets)
		}
		if sheets[0].Name != "urls" || sheets[1].Name != "unmatched_orders" {
			t.Errorf("sheet names = [%s %s]", sheets[0].Name, sheets[1].Name)
		}

		wantRow := []interface{}{"PO1", "P1", "http://x.com", "0012345", "http://x.com/01/0012345/10/PO1"}
		if !reflect.DeepEqual(sheets[0].Rows[0], wantRow) {
			t.Errorf("urls row = %v, want %v", sheets[0].Rows[0], wantRow)
		}
	})

	t.Run("omits the unmatched sheet when every order matches", func(t *testing.T) {
		fullReader := &fakeReader{tables: map[string][][]string{
			"spring_orders.xlsx": {
				{"purchase_order", "product", "base_url"},
				{"PO1", "P1", "http://x.com"},
			},
			"spring_eans.xlsx": {
				{"product", "ean"},
				{"P1", "0012345"},
			},
		}}
		writer := &fakeWriter{}
		svc := NewBatchService(fullReader, writer, NewJoinService())

		result := svc.ProcessPair(pair)
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}

		sheets := writer.written["spring_urls.xlsx"]
		if len(sheets) != 1 || sheets[0].Name != "urls" {
			t.Errorf("sheets = %v, want only urls", sheets)
		}
	})

	t.Run("urls sheet is present even when empty", func(t *testing.T) {
		emptyReader := &fakeReader{tables: map[string][][]string{
			"spring_orders.xlsx": {{"purchase_order", "product", "base_url"}},
			"spring_eans.xlsx":   {{"product", "ean"}},
		}}
		writer := &fakeWriter{}
		svc := NewBatchService(emptyReader, writer, NewJoinService())

		result := svc.ProcessPair(pair)
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}

		sheets := writer.written["spring_urls.xlsx"]
		if len(sheets) != 1 || len(sheets[0].Rows) != 0 {
			t.Errorf("sheets = %v, want one empty urls sheet", sheets)
		}
	})

	t.Run("reader failure is captured in the result", func(t *testing.T) {
		writer := &fakeWriter{}
		svc := NewBatchService(&fakeReader{}, writer, NewJoinService())

		result := svc.ProcessPair(pair)
		if result.Err == nil {
			t.Errorf("Err = nil, want read failure")
		}
		if len(writer.written) != 0 {
			t.Errorf("written = %v, want nothing", writer.written)
		}
	})

	t.Run("writer failure is captured in the result", func(t *testing.T) {
		svc := NewBatchService(reader, &fakeWriter{fail: true}, NewJoinService())

		result := svc.ProcessPair(pair)
		if result.Err == nil {
			t.Errorf("Err = nil, want write failure")
		}
	})
}

func TestProcessDirectory(t *testing.T) {
	t.Run("a failing pair does not stop the others", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"bad_eans.xlsx", "bad_orders.xlsx", "good_eans.xlsx", "good_orders.xlsx"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644); err != nil {
				t.Fatalf("failed to create %s: %v", name, err)
			}
		}

		reader := &fakeReader{tables: map[string][][]string{
			"good_orders.xlsx": {
				{"purchase_order", "product", "base_url"},
				{"PO1", "P1", "http://x.com"},
			},
			"good_eans.xlsx": {
				{"product", "ean"},
				{"P1", "1"},
			},
			// "bad" pair stays unreadable
		}}
		writer := &fakeWriter{}
		svc := NewBatchService(reader, writer, NewJoinService())

		results, err := svc.ProcessDirectory(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(results) != 2 {
			t.Fatalf("results = %v, want 2", results)
		}
		if results[0].Base != "bad" || results[0].Err == nil {
			t.Errorf("results[0] = %+v, want failed bad pair", results[0])
		}
		if results[1].Base != "good" || results[1].Err != nil {
			t.Errorf("results[1] = %+v, want successful good pair", results[1])
		}
		if _, ok := writer.written["good_urls.xlsx"]; !ok {
			t.Errorf("good_urls.xlsx not written")
		}
	})
}
