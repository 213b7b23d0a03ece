package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hiraoka/zaiko/internal/domain/models"
)

// LowStockSweep scans the whole table and collects every product at or below
// the warning threshold. Rows with malformed stock fields are skipped with a
// warning rather than failing the sweep.
func (s *Service) LowStockSweep(ctx context.Context) (models.LowStockReport, error) {
	rows, err := s.store.FetchRows(ctx)
	if err != nil {
		return models.LowStockReport{}, fmt.Errorf("fetch inventory rows: %w", err)
	}

	report := models.LowStockReport{
		GeneratedAt: s.now(),
		Threshold:   models.LowStockThreshold,
	}

	for _, row := range rows {
		stock, err := parseStock(row.RawStock)
		if err != nil {
			s.logger.Warn("skipping row with malformed stock field",
				zap.String("code", row.Code),
				zap.String("raw", row.RawStock))
			continue
		}

		if !models.LowStock(stock) {
			continue
		}

		report.Items = append(report.Items, models.LowStockItem{
			Code:  models.NormalizeCode(row.Code),
			Name:  row.Name,
			Stock: stock,
		})
	}

	return report, nil
}
