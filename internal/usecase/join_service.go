package usecase

import (
	"log"
	"sort"
	"strings"

	"github.com/dpplink/dpplink/internal/domain"
)

// Composite identifier URL path-segment markers (GS1 application identifiers:
// 01 = item/EAN, 10 = lot/batch = purchase order)
const (
	segmentEan           = "/01/"
	segmentPurchaseOrder = "/10/"
)

// JoinService matches orders onto EAN records by product key and synthesizes
// one composite identifier URL per matched pair
type JoinService struct {
	debug bool
}

// NewJoinService creates a new join service
func NewJoinService() *JoinService {
	return &JoinService{}
}

// SetDebug enables or disables debug logging
func (s *JoinService) SetDebug(debug bool) {
	s.debug = debug
}

// BuildURLs performs a left outer join of orders onto EAN records on the
// normalized product key and partitions the result.
//
// Every order appears at least once: orders with one or more matching EAN
// records expand into that many matched rows; orders with none become a
// single unmatched row. Matched rows are sorted by (product, purchase_order,
// ean) so output ordering never depends on input row order. Unmatched rows
// are de-duplicated in first-encounter order.
//
// Missing matches are data, not errors; this function never fails.
func (s *JoinService) BuildURLs(orders []domain.OrderRecord, eans []domain.EanRecord) ([]domain.MatchedURLRecord, []domain.UnmatchedOrderRecord) {
	eansByKey := map[string][]string{}
	for _, e := range eans {
		key := productKey(e.Product)
		eansByKey[key] = append(eansByKey[key], e.Ean)
	}

	matched := []domain.MatchedURLRecord{}
	unmatched := []domain.UnmatchedOrderRecord{}
	seen := map[domain.UnmatchedOrderRecord]bool{}

	for _, order := range orders {
		key := productKey(order.Product)

		codes, ok := eansByKey[key]
		if !ok {
			candidate := domain.UnmatchedOrderRecord{
				PurchaseOrder: order.PurchaseOrder,
				Product:       order.Product,
				BaseURL:       order.BaseURL,
			}
			if !seen[candidate] {
				seen[candidate] = true
				unmatched = append(unmatched, candidate)
			}
			continue
		}

		base := stripTrailingSlash(order.BaseURL)
		for _, ean := range codes {
			matched = append(matched, domain.MatchedURLRecord{
				PurchaseOrder: order.PurchaseOrder,
				Product:       order.Product,
				BaseURL:       base,
				Ean:           ean,
				URL:           base + segmentEan + ean + segmentPurchaseOrder + order.PurchaseOrder,
			})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Product != matched[j].Product {
			return matched[i].Product < matched[j].Product
		}
		if matched[i].PurchaseOrder != matched[j].PurchaseOrder {
			return matched[i].PurchaseOrder < matched[j].PurchaseOrder
		}
		return matched[i].Ean < matched[j].Ean
	})

	if s.debug {
		log.Printf("[JOIN] %d orders x %d EAN records -> %d matched, %d unmatched",
			len(orders), len(eans), len(matched), len(unmatched))
	}

	return matched, unmatched
}

// productKey normalizes a product code for matching: trimmed and lowercased.
// Keys are used only for the join and never appear in output.
func productKey(product string) string {
	return strings.ToLower(strings.TrimSpace(product))
}

// stripTrailingSlash removes any trailing slash characters from a base URL
func stripTrailingSlash(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
