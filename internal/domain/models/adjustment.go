package models

import "time"

// Mode enumerates the two adjustment directions. The string values are the
// wire values the store endpoint expects.
type Mode string

const (
	ModeAdd    Mode = "add"
	ModeRemove Mode = "remove"
)

// Valid reports whether the mode is one of the two supported directions.
func (m Mode) Valid() bool {
	return m == ModeAdd || m == ModeRemove
}

// AdjustmentRequest is the operator's intent for a single adjustment.
// Quantity must be strictly positive; the direction comes from Mode.
type AdjustmentRequest struct {
	Mode     Mode `json:"mode" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// SyncStatus tracks whether an audit entry's remote write has landed.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncDone    SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// AuditEntry records one applied adjustment. Entries are append-only and
// ordered by insertion; Quantity is the requested amount, not the clamped
// delta, and ResultingStock is the post-adjustment value.
type AuditEntry struct {
	ID             string     `json:"id" bson:"_id"`
	ProductCode    string     `json:"product_code" bson:"product_code"`
	ProductName    string     `json:"product_name" bson:"product_name"`
	Mode           Mode       `json:"mode" bson:"mode"`
	Quantity       int        `json:"quantity" bson:"quantity"`
	ResultingStock int        `json:"resulting_stock" bson:"resulting_stock"`
	Clamped        bool       `json:"clamped" bson:"clamped"`
	Timestamp      time.Time  `json:"timestamp" bson:"timestamp"`
	SyncStatus     SyncStatus `json:"sync_status" bson:"sync_status"`
}

// AdjustmentUpload is the payload written back to the remote store after an
// adjustment has been committed locally.
type AdjustmentUpload struct {
	Code       string `json:"code"`
	NewStock   int    `json:"newStock"`
	Mode       Mode   `json:"mode"`
	Adjustment int    `json:"adjustment"`
	Time       string `json:"time"`
}
