package domain

// OrderRecord represents a single purchase order row after normalization
type OrderRecord struct {
	PurchaseOrder string `json:"purchaseOrder"`
	Product       string `json:"product"`
	BaseURL       string `json:"baseUrl"`
}

// EanRecord represents a product-to-EAN mapping row after normalization
type EanRecord struct {
	Product string `json:"product"`
	Ean     string `json:"ean"`
}

// MatchedURLRecord is one (order x ean) pair with its composite identifier URL.
// A single order produces multiple rows when several EAN records share its
// product key. BaseURL is the trailing-slash-stripped form used in the URL.
type MatchedURLRecord struct {
	PurchaseOrder string `json:"purchaseOrder"`
	Product       string `json:"product"`
	BaseURL       string `json:"baseUrl"`
	Ean           string `json:"ean"`
	URL           string `json:"url"`
}

// UnmatchedOrderRecord is an order whose product key matched no EAN record.
// BaseURL is kept exactly as it appeared on input.
type UnmatchedOrderRecord struct {
	PurchaseOrder string `json:"purchaseOrder"`
	Product       string `json:"product"`
	BaseURL       string `json:"baseUrl"`
}

// Sheet is one named table of an output workbook
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// FilePair is a matched <base>_eans / <base>_orders spreadsheet pair
type FilePair struct {
	EansPath   string
	OrdersPath string
	Base       string
}

// PairResult reports the outcome of processing one file pair.
// Err is set when the pair failed; the batch continues regardless.
type PairResult struct {
	Base       string
	OutputPath string
	Matched    int
	Unmatched  int
	Err        error
}
