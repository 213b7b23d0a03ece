package webapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/hiraoka/zaiko/internal/config"
	"github.com/hiraoka/zaiko/internal/domain/models"
)

// tableRow mirrors one object of the web-app's JSON array. The field names
// are the spreadsheet's header cells, verbatim. Stock comes through as text
// or as a bare number depending on the cell format, so it is decoded loosely.
type tableRow struct {
	Code     string `json:"Product Code"`
	Name     string `json:"Production"`
	RawStock any    `json:"Stock Quantity"`
}

// Store talks to the Apps Script web-app that fronts the spreadsheet. A GET
// returns the whole table as JSON; a POST records one stock adjustment. The
// endpoint exposes no filtering and no meaningful response body on writes.
type Store struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewStore builds a web-app backed store from the configured endpoint URL.
func NewStore(cfg config.WebAppConfig, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.EndpointURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &Store{
		httpClient: restyClient,
		logger:     logger,
	}
}

// FetchRows downloads the full inventory table.
func (s *Store) FetchRows(ctx context.Context) ([]models.InventoryRow, error) {
	var result []tableRow

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		Get("")
	if err != nil {
		return nil, fmt.Errorf("fetch inventory table: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("inventory table fetch failed: status=%d", resp.StatusCode())
	}

	rows := make([]models.InventoryRow, 0, len(result))
	for _, item := range result {
		if strings.TrimSpace(item.Code) == "" {
			continue
		}
		rawStock := ""
		if item.RawStock != nil {
			rawStock = strings.TrimSpace(fmt.Sprint(item.RawStock))
		}
		rows = append(rows, models.InventoryRow{
			Code:     strings.TrimSpace(item.Code),
			Name:     strings.TrimSpace(item.Name),
			RawStock: rawStock,
		})
	}

	return rows, nil
}

// SubmitAdjustment posts one computed adjustment back to the web-app. The
// endpoint's response body is not part of the contract; only the status code
// is checked.
func (s *Store) SubmitAdjustment(ctx context.Context, upload models.AdjustmentUpload) error {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(upload).
		Post("")
	if err != nil {
		return fmt.Errorf("submit adjustment for %s: %w", upload.Code, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("adjustment submit failed for %s: status=%d", upload.Code, resp.StatusCode())
	}

	s.logger.Debug("adjustment posted to web-app",
		zap.String("code", upload.Code),
		zap.Int("new_stock", upload.NewStock))
	return nil
}
