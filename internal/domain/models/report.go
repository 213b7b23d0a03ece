package models

import "time"

// LowStockItem is one product flagged by the periodic low-stock sweep.
type LowStockItem struct {
	Code  string `json:"code" bson:"code"`
	Name  string `json:"name" bson:"name"`
	Stock int    `json:"stock" bson:"stock"`
}

// LowStockReport aggregates all products at or below the warning threshold
// at the time of a scheduled sweep.
type LowStockReport struct {
	GeneratedAt time.Time      `json:"generated_at" bson:"generated_at"`
	Threshold   int            `json:"threshold" bson:"threshold"`
	Items       []LowStockItem `json:"items" bson:"items"`
}
