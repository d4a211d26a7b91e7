package model

import "github.com/shopspring/decimal"

// CatalogItem is one sellable item as delivered by the backend in a
// full catalog fetch.  The engine treats it as an immutable snapshot
// value: stock and price are only ever replaced wholesale by a new
// fetch, never patched in place.
//
// Fields:
//  ID         – opaque backend identifier, unique per tenant.
//  Name       – display name shown on the register.
//  UnitPrice  – current list price, non-negative.
//  Stock      – units available at snapshot time, never negative.
//  CustomCode – optional human-assigned lookup code.
//  ScanCode   – optional machine-readable barcode value.
type CatalogItem struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Stock      int             `json:"stock"`
	CustomCode string          `json:"custom_code,omitempty"`
	ScanCode   string          `json:"scan_code,omitempty"`
}
