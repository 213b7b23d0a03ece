package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiraoka/zaiko/internal/domain/models"
)

func TestLowStockSweep(t *testing.T) {
	store := &fakeStore{rows: []models.InventoryRow{
		{Code: "ok1", Name: "Plenty", RawStock: "42"},
		{Code: "edge10", Name: "At Threshold", RawStock: "10"},
		{Code: "edge11", Name: "Above Threshold", RawStock: "11"},
		{Code: "empty", Name: "Sold Out", RawStock: "0"},
		{Code: "junk", Name: "Broken Row", RawStock: "n/a"},
	}}
	svc := newTestService(store, nil)

	report, err := svc.LowStockSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.LowStockThreshold, report.Threshold)
	assert.False(t, report.GeneratedAt.IsZero())

	require.Len(t, report.Items, 2)
	assert.Equal(t, models.LowStockItem{Code: "EDGE10", Name: "At Threshold", Stock: 10}, report.Items[0])
	assert.Equal(t, models.LowStockItem{Code: "EMPTY", Name: "Sold Out", Stock: 0}, report.Items[1])
}

func TestLowStockSweepStoreFailure(t *testing.T) {
	store := &fakeStore{fetchErr: errors.New("timeout")}
	svc := newTestService(store, nil)

	_, err := svc.LowStockSweep(context.Background())
	assert.Error(t, err)
}
