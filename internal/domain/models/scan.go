package models

import "time"

// ScanSource identifies where a scan event originated.
type ScanSource string

const (
	SourceCamera ScanSource = "camera"
	SourceManual ScanSource = "manual"
)

// ScanEvent is one decoded barcode emitted by a scan surface. Events carry
// the raw code; normalization happens at lookup time.
type ScanEvent struct {
	Code   string     `json:"code" binding:"required"`
	Source ScanSource `json:"source"`
	At     time.Time  `json:"at"`
}
