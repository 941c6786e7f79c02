package models

import "time"

// PurchaseItem is one invoice line item.
type PurchaseItem struct {
	ProductCode string `json:"productCode"`
	ProductName string `json:"productName,omitempty"`
	Quantity    int    `json:"quantity"`
	Amount      int64  `json:"amount"`
}

// Purchase is the read-only invoice record fetched from the upstream
// provider. Amounts are VND, no decimals. The core never mutates it.
type Purchase struct {
	Code        string         `json:"code"`
	Total       int64          `json:"total"`
	BranchCode  string         `json:"branchCode"`
	PurchasedAt time.Time      `json:"purchasedAt"`
	Items       []PurchaseItem `json:"items"`
}
