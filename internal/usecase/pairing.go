package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dpplink/dpplink/internal/domain"
)

const (
	eansSuffix   = "_eans"
	ordersSuffix = "_orders"
)

// DiscoverPairs scans a directory for <base>_eans / <base>_orders workbook
// pairs. Suffix matching is case-insensitive; the shared base is not.
// Unpaired files and non-spreadsheet files are ignored. Pairs are returned
// sorted by base so batch output order is stable.
func DiscoverPairs(dir string) ([]domain.FilePair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	eansFiles := map[string]string{}
	ordersFiles := map[string]string{}

	for _, entry := range entries {
		if entry.IsDir() || !isSpreadsheet(entry.Name()) {
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		lower := strings.ToLower(stem)
		path := filepath.Join(dir, entry.Name())

		switch {
		case strings.HasSuffix(lower, eansSuffix):
			eansFiles[stem[:len(stem)-len(eansSuffix)]] = path
		case strings.HasSuffix(lower, ordersSuffix):
			ordersFiles[stem[:len(stem)-len(ordersSuffix)]] = path
		}
	}

	pairs := []domain.FilePair{}
	for base, eansPath := range eansFiles {
		if ordersPath, ok := ordersFiles[base]; ok {
			pairs = append(pairs, domain.FilePair{
				EansPath:   eansPath,
				OrdersPath: ordersPath,
				Base:       base,
			})
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Base < pairs[j].Base })

	return pairs, nil
}

// isSpreadsheet reports whether a file name looks like a workbook this tool
// reads. Office lock files ("~$...") are excluded.
func isSpreadsheet(name string) bool {
	if strings.HasPrefix(name, "~$") {
		return false
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}
