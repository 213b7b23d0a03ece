package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/hiraoka/zaiko/internal/config"
	"github.com/hiraoka/zaiko/internal/domain/models"
)

// Store talks to the inventory spreadsheet through the official Google Sheets
// API. The inventory range is expected to hold three columns: product code,
// display name, stock quantity, with an optional header row.
type Store struct {
	service          *sheetsapi.Service
	spreadsheetID    string
	inventoryRange   string
	adjustmentsRange string
	logger           *zap.Logger
}

// NewStore builds a Google Sheets backed store instance.
func NewStore(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &Store{
		service:          service,
		spreadsheetID:    cfg.SpreadsheetID,
		inventoryRange:   cfg.InventoryRange,
		adjustmentsRange: cfg.AdjustmentsRange,
		logger:           logger,
	}, nil
}

// FetchRows reads the full inventory range and returns its raw rows. The
// store exposes no server-side filtering; matching happens in the ledger.
func (s *Store) FetchRows(ctx context.Context) ([]models.InventoryRow, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.inventoryRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", s.inventoryRange, err)
	}

	rows := make([]models.InventoryRow, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := toRow(raw)
		if row.Code == "" || row.Code == "Product Code" {
			// blank line or header row
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// SubmitAdjustment writes the new stock value into the product's stock cell
// and appends one line to the adjustments log sheet.
func (s *Store) SubmitAdjustment(ctx context.Context, upload models.AdjustmentUpload) error {
	rowIndex, err := s.findRowIndex(ctx, upload.Code)
	if err != nil {
		return err
	}

	stockCell := fmt.Sprintf("%s!C%d", sheetName(s.inventoryRange), rowIndex)
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{{upload.NewStock}}}

	update := s.service.Spreadsheets.Values.Update(s.spreadsheetID, stockCell, payload).
		ValueInputOption("USER_ENTERED").
		Context(ctx)
	if _, err := update.Do(); err != nil {
		return fmt.Errorf("update stock cell %s: %w", stockCell, err)
	}

	logRow := &sheetsapi.ValueRange{Values: [][]interface{}{{
		upload.Time, upload.Code, string(upload.Mode), upload.Adjustment, upload.NewStock,
	}}}

	appendCall := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.adjustmentsRange, logRow).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)
	if _, err := appendCall.Do(); err != nil {
		return fmt.Errorf("append adjustment into range %s: %w", s.adjustmentsRange, err)
	}

	s.logger.Debug("adjustment written to sheet",
		zap.String("code", upload.Code),
		zap.Int("new_stock", upload.NewStock))
	return nil
}

// findRowIndex returns the 1-based sheet row holding the given code.
func (s *Store) findRowIndex(ctx context.Context, code string) (int, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.inventoryRange).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read range %s: %w", s.inventoryRange, err)
	}

	normalized := models.NormalizeCode(code)
	for i, raw := range resp.Values {
		if len(raw) == 0 {
			continue
		}
		if models.NormalizeCode(fmt.Sprint(raw[0])) == normalized {
			return i + 1, nil
		}
	}

	return 0, fmt.Errorf("code %s not present in range %s", code, s.inventoryRange)
}

func toRow(raw []interface{}) models.InventoryRow {
	row := models.InventoryRow{}
	if len(raw) > 0 {
		row.Code = strings.TrimSpace(fmt.Sprint(raw[0]))
	}
	if len(raw) > 1 {
		row.Name = strings.TrimSpace(fmt.Sprint(raw[1]))
	}
	if len(raw) > 2 {
		row.RawStock = strings.TrimSpace(fmt.Sprint(raw[2]))
	}
	return row
}

func sheetName(sheetRange string) string {
	if i := strings.Index(sheetRange, "!"); i >= 0 {
		return sheetRange[:i]
	}
	return sheetRange
}
