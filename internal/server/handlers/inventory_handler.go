package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hiraoka/zaiko/internal/domain/models"
	"github.com/hiraoka/zaiko/internal/service/ledger"
)

// LedgerService is the slice of the stock ledger the HTTP layer uses.
type LedgerService interface {
	FetchRecord(ctx context.Context, code string) (models.ProductRecord, error)
	Adjust(ctx context.Context, code string, req models.AdjustmentRequest) (ledger.AdjustmentResult, error)
	History() []models.AuditEntry
}

// ScanIntake accepts scan events for asynchronous processing.
type ScanIntake interface {
	Enqueue(event models.ScanEvent) bool
}

// InventoryHandler handles product lookup, adjustment and scan intake routes.
type InventoryHandler struct {
	svc    LedgerService
	intake ScanIntake
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc LedgerService, intake ScanIntake, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, intake: intake, logger: logger}
}

// Scan ingests one scan event and queues it for lookup.
func (h *InventoryHandler) Scan(c *gin.Context) {
	var event models.ScanEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		h.logger.Warn("invalid scan payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scan payload"})
		return
	}

	if event.Source == "" {
		event.Source = models.SourceManual
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}

	if !h.intake.Enqueue(event) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "scan queue full"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"code": event.Code})
}

// Lookup fetches the current record for a product code.
func (h *InventoryHandler) Lookup(c *gin.Context) {
	record, err := h.svc.FetchRecord(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.renderLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":      record.Code,
		"name":      record.Name,
		"stock":     record.Stock,
		"low_stock": record.LowStock(),
	})
}

// Adjust applies one stock adjustment to a product.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req models.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid adjustment payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid adjustment payload"})
		return
	}

	result, err := h.svc.Adjust(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidQuantity), errors.Is(err, ledger.ErrInvalidMode):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.renderLookupError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// History returns the session's adjustment log in insertion order.
func (h *InventoryHandler) History(c *gin.Context) {
	entries := h.svc.History()
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *InventoryHandler) renderLookupError(c *gin.Context, err error) {
	var quality *ledger.DataQualityError

	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
	case errors.Is(err, ledger.ErrEmptyCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "product code is empty"})
	case errors.As(err, &quality):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": quality.Error(), "code": quality.Code})
	default:
		h.logger.Error("remote store read failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "inventory store unavailable"})
	}
}
