package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hiraoka/zaiko/internal/domain/models"
)

// ErrNotFound indicates the scanned code has no row in the inventory table.
// A miss is a displayed outcome, not a fault.
var ErrNotFound = errors.New("product not found")

// ErrEmptyCode indicates the code normalizes to an empty string.
var ErrEmptyCode = errors.New("product code is empty")

// ErrInvalidQuantity indicates a non-positive adjustment quantity.
var ErrInvalidQuantity = errors.New("adjustment quantity must be positive")

// ErrInvalidMode indicates an adjustment mode outside add/remove.
var ErrInvalidMode = errors.New("unsupported adjustment mode")

// DataQualityError reports a table row whose stock field is not a
// non-negative integer. It is surfaced instead of being coerced to zero.
type DataQualityError struct {
	Code string
	Raw  string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("stock field for %s is not a valid quantity: %q", e.Code, e.Raw)
}

// RemoteStore is the slice of the remote spreadsheet the ledger depends on.
type RemoteStore interface {
	FetchRows(ctx context.Context) ([]models.InventoryRow, error)
	SubmitAdjustment(ctx context.Context, upload models.AdjustmentUpload) error
}

// Archive receives successfully synced audit entries for durable storage.
type Archive interface {
	SaveAuditEntry(ctx context.Context, entry models.AuditEntry) error
}

// AdjustmentResult bundles everything the caller needs to render after one
// committed adjustment.
type AdjustmentResult struct {
	Record   models.ProductRecord `json:"record"`
	Entry    models.AuditEntry    `json:"entry"`
	LowStock bool                 `json:"low_stock"`
	Clamped  bool                 `json:"clamped"`
}

// Service is the stock ledger: it resolves scanned codes against the remote
// table, applies operator adjustments, and owns the session state (current
// record plus append-only history). Local state commits before the remote
// write; the write runs in the background and only flips the audit entry's
// sync status.
type Service struct {
	store   RemoteStore
	archive Archive
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string

	submitTimeout time.Duration
	retryInterval time.Duration
	retryMax      uint64

	mu      sync.RWMutex
	current *models.ProductRecord
	history []models.AuditEntry

	submits sync.WaitGroup
}

// NewService constructs a stock ledger. The archive may be nil, in which
// case synced entries live only in session memory.
func NewService(store RemoteStore, archive Archive, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:         store,
		archive:       archive,
		logger:        logger,
		now:           time.Now,
		newID:         uuid.NewString,
		submitTimeout: 30 * time.Second,
		retryInterval: 500 * time.Millisecond,
		retryMax:      3,
	}
}

// FetchRecord normalizes the code, downloads the full table and linearly
// searches it. On a hit the session's current record is replaced; on a miss
// it is cleared and ErrNotFound returned. Repeated lookups against an
// unchanged table yield equal records.
func (s *Service) FetchRecord(ctx context.Context, code string) (models.ProductRecord, error) {
	normalized := models.NormalizeCode(code)
	if normalized == "" {
		return models.ProductRecord{}, ErrEmptyCode
	}

	rows, err := s.store.FetchRows(ctx)
	if err != nil {
		return models.ProductRecord{}, fmt.Errorf("fetch inventory rows: %w", err)
	}

	for _, row := range rows {
		if models.NormalizeCode(row.Code) != normalized {
			continue
		}

		stock, err := parseStock(row.RawStock)
		if err != nil {
			s.logger.Warn("malformed stock field in inventory table",
				zap.String("code", normalized),
				zap.String("raw", row.RawStock))
			return models.ProductRecord{}, &DataQualityError{Code: normalized, Raw: row.RawStock}
		}

		record := models.ProductRecord{Code: normalized, Name: row.Name, Stock: stock}

		s.mu.Lock()
		s.current = &record
		s.mu.Unlock()

		return record, nil
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	return models.ProductRecord{}, ErrNotFound
}

// ApplyAdjustment computes the post-adjustment record and its audit entry.
// No I/O happens here. Removals clamp at zero; the entry keeps the requested
// quantity, not the clamped delta.
func (s *Service) ApplyAdjustment(current models.ProductRecord, req models.AdjustmentRequest) (models.ProductRecord, models.AuditEntry, error) {
	if req.Quantity <= 0 {
		return models.ProductRecord{}, models.AuditEntry{}, ErrInvalidQuantity
	}
	if !req.Mode.Valid() {
		return models.ProductRecord{}, models.AuditEntry{}, ErrInvalidMode
	}

	newStock := current.Stock
	clamped := false
	switch req.Mode {
	case models.ModeAdd:
		newStock = current.Stock + req.Quantity
	case models.ModeRemove:
		newStock = current.Stock - req.Quantity
		if newStock < 0 {
			newStock = 0
			clamped = true
		}
	}

	updated := current
	updated.Stock = newStock

	entry := models.AuditEntry{
		ID:             s.newID(),
		ProductCode:    current.Code,
		ProductName:    current.Name,
		Mode:           req.Mode,
		Quantity:       req.Quantity,
		ResultingStock: newStock,
		Clamped:        clamped,
		Timestamp:      s.now(),
		SyncStatus:     models.SyncPending,
	}

	return updated, entry, nil
}

// Adjust resolves the product, applies the adjustment and commits the result
// to session state. The remote write then runs as a background task; its
// outcome never rolls back the local commit, it only updates the entry's
// sync status.
func (s *Service) Adjust(ctx context.Context, code string, req models.AdjustmentRequest) (AdjustmentResult, error) {
	current, err := s.resolve(ctx, code)
	if err != nil {
		return AdjustmentResult{}, err
	}

	updated, entry, err := s.ApplyAdjustment(current, req)
	if err != nil {
		return AdjustmentResult{}, err
	}

	s.mu.Lock()
	s.current = &updated
	s.history = append(s.history, entry)
	s.mu.Unlock()

	upload := models.AdjustmentUpload{
		Code:       updated.Code,
		NewStock:   updated.Stock,
		Mode:       req.Mode,
		Adjustment: req.Quantity,
		Time:       entry.Timestamp.Format(time.RFC3339),
	}

	s.submits.Add(1)
	go s.submit(entry, upload)

	return AdjustmentResult{
		Record:   updated,
		Entry:    entry,
		LowStock: updated.LowStock(),
		Clamped:  entry.Clamped,
	}, nil
}

// Current returns the session's current record, if any.
func (s *Service) Current() (models.ProductRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.ProductRecord{}, false
	}
	return *s.current, true
}

// History returns the session's audit entries in insertion order.
func (s *Service) History() []models.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AuditEntry, len(s.history))
	copy(out, s.history)
	return out
}

// Flush waits until all in-flight remote writes have settled.
func (s *Service) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.submits.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) resolve(ctx context.Context, code string) (models.ProductRecord, error) {
	normalized := models.NormalizeCode(code)
	if normalized == "" {
		return models.ProductRecord{}, ErrEmptyCode
	}

	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current != nil && current.Code == normalized {
		return *current, nil
	}

	return s.FetchRecord(ctx, code)
}

func (s *Service) submit(entry models.AuditEntry, upload models.AdjustmentUpload) {
	defer s.submits.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.submitTimeout)
	defer cancel()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryInterval

	err := backoff.Retry(func() error {
		return s.store.SubmitAdjustment(ctx, upload)
	}, backoff.WithContext(backoff.WithMaxRetries(bo, s.retryMax), ctx))
	if err != nil {
		s.logger.Error("remote write failed after retries",
			zap.String("code", upload.Code),
			zap.String("entry_id", entry.ID),
			zap.Error(err))
		s.markSync(entry.ID, models.SyncFailed)
		return
	}

	s.markSync(entry.ID, models.SyncDone)
	s.logger.Debug("adjustment synced", zap.String("code", upload.Code), zap.String("entry_id", entry.ID))

	if s.archive != nil {
		archived := entry
		archived.SyncStatus = models.SyncDone
		if err := s.archive.SaveAuditEntry(ctx, archived); err != nil {
			s.logger.Warn("audit archive write failed", zap.String("entry_id", entry.ID), zap.Error(err))
		}
	}
}

func (s *Service) markSync(entryID string, status models.SyncStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].ID == entryID {
			s.history[i].SyncStatus = status
			return
		}
	}
}

func parseStock(raw string) (int, error) {
	stock, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if stock < 0 {
		return 0, fmt.Errorf("negative stock %d", stock)
	}
	return stock, nil
}
