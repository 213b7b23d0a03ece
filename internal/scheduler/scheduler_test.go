package scheduler

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiraoka/zaiko/internal/config"
	"github.com/hiraoka/zaiko/internal/domain/models"
	"github.com/hiraoka/zaiko/internal/service/ledger"
)

type stubStore struct {
	rows []models.InventoryRow
}

func (s *stubStore) FetchRows(ctx context.Context) ([]models.InventoryRow, error) {
	return s.rows, nil
}

func (s *stubStore) SubmitAdjustment(ctx context.Context, upload models.AdjustmentUpload) error {
	return nil
}

type stubArchive struct {
	mu      sync.Mutex
	reports []models.LowStockReport
}

func (a *stubArchive) SaveLowStockReport(ctx context.Context, report models.LowStockReport) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports = append(a.reports, report)
	return nil
}

func TestRunLowStockSweepArchivesFlaggedItems(t *testing.T) {
	store := &stubStore{rows: []models.InventoryRow{
		{Code: "OK1", Name: "Plenty", RawStock: "50"},
		{Code: "LOW1", Name: "Running Out", RawStock: "3"},
	}}
	archive := &stubArchive{}
	svc := ledger.NewService(store, nil, nil)

	s := NewScheduler(config.ReportingConfig{CronSchedule: "0 8 * * *", Timezone: "Asia/Tokyo"}, svc, archive, nil)
	s.runLowStockSweep()

	archive.mu.Lock()
	defer archive.mu.Unlock()
	require.Len(t, archive.reports, 1)
	require.Len(t, archive.reports[0].Items, 1)
	assert.Equal(t, "LOW1", archive.reports[0].Items[0].Code)
}

func TestRunLowStockSweepSkipsEmptyReports(t *testing.T) {
	store := &stubStore{rows: []models.InventoryRow{
		{Code: "OK1", Name: "Plenty", RawStock: "50"},
	}}
	archive := &stubArchive{}
	svc := ledger.NewService(store, nil, nil)

	s := NewScheduler(config.ReportingConfig{CronSchedule: "0 8 * * *", Timezone: "Asia/Tokyo"}, svc, archive, nil)
	s.runLowStockSweep()

	archive.mu.Lock()
	defer archive.mu.Unlock()
	assert.Empty(t, archive.reports)
}
