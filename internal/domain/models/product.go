package models

import "strings"

// LowStockThreshold is the stock level at or below which a warning is raised.
const LowStockThreshold = 10

// ProductRecord is the authoritative view of one product as read from the
// remote store. It is a value type; adjustments produce a new record instead
// of mutating the old one, and Code never changes once fetched.
type ProductRecord struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// LowStock reports whether the record sits at or below the warning threshold.
func (p ProductRecord) LowStock() bool {
	return LowStock(p.Stock)
}

// LowStock reports whether a stock level is at or below the warning threshold.
func LowStock(stock int) bool {
	return stock <= LowStockThreshold
}

// InventoryRow is one raw row of the remote table before any parsing. Stock
// stays a string here; turning it into an integer is the ledger's job so that
// malformed data surfaces as a typed error rather than a silent zero.
type InventoryRow struct {
	Code     string
	Name     string
	RawStock string
}

// NormalizeCode canonicalizes a scanned or typed product code for matching
// against the table: surrounding whitespace removed, upper-cased.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
