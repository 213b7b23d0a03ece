package webapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiraoka/zaiko/internal/config"
	"github.com/hiraoka/zaiko/internal/domain/models"
)

func TestFetchRowsDecodesTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		// Stock comes back as text or as a bare number depending on cell format.
		_, _ = w.Write([]byte(`[
			{"Product Code": "ABC123", "Production": "Green Tea 500ml", "Stock Quantity": "15"},
			{"Product Code": "XYZ777", "Production": "Rice Crackers", "Stock Quantity": 8},
			{"Product Code": "", "Production": "header junk", "Stock Quantity": ""}
		]`))
	}))
	defer srv.Close()

	store := NewStore(config.WebAppConfig{EndpointURL: srv.URL}, nil)

	rows, err := store.FetchRows(context.Background())
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, models.InventoryRow{Code: "ABC123", Name: "Green Tea 500ml", RawStock: "15"}, rows[0])
	assert.Equal(t, models.InventoryRow{Code: "XYZ777", Name: "Rice Crackers", RawStock: "8"}, rows[1])
}

func TestFetchRowsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewStore(config.WebAppConfig{EndpointURL: srv.URL}, nil)

	_, err := store.FetchRows(context.Background())
	assert.Error(t, err)
}

func TestSubmitAdjustmentPostsWirePayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := NewStore(config.WebAppConfig{EndpointURL: srv.URL}, nil)

	err := store.SubmitAdjustment(context.Background(), models.AdjustmentUpload{
		Code:       "ABC123",
		NewStock:   5,
		Mode:       models.ModeRemove,
		Adjustment: 10,
		Time:       "2026-03-14T09:30:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "ABC123", got["code"])
	assert.Equal(t, float64(5), got["newStock"])
	assert.Equal(t, "remove", got["mode"])
	assert.Equal(t, float64(10), got["adjustment"])
	assert.Equal(t, "2026-03-14T09:30:00Z", got["time"])
}

func TestSubmitAdjustmentServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := NewStore(config.WebAppConfig{EndpointURL: srv.URL}, nil)

	err := store.SubmitAdjustment(context.Background(), models.AdjustmentUpload{Code: "ABC123"})
	assert.Error(t, err)
}
