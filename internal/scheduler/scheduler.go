package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hiraoka/zaiko/internal/config"
	"github.com/hiraoka/zaiko/internal/domain/models"
	"github.com/hiraoka/zaiko/internal/service/ledger"
)

// ReportArchive stores the result of a low-stock sweep.
type ReportArchive interface {
	SaveLowStockReport(ctx context.Context, report models.LowStockReport) error
}

// Scheduler runs the periodic low-stock sweep.
type Scheduler struct {
	cron      *cron.Cron
	ledgerSvc *ledger.Service
	archive   ReportArchive
	cfg       config.ReportingConfig
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance. The archive may be nil, in
// which case sweep results are only logged.
func NewScheduler(cfg config.ReportingConfig, ledgerSvc *ledger.Service, archive ReportArchive, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []cron.Option{}
	if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	} else {
		logger.Warn("unknown timezone, scheduler falls back to local time", zap.String("timezone", cfg.Timezone))
	}

	return &Scheduler{
		cron:      cron.New(opts...),
		ledgerSvc: ledgerSvc,
		archive:   archive,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the sweep job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runLowStockSweep); err != nil {
		s.logger.Error("failed to schedule low-stock sweep", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runLowStockSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := s.ledgerSvc.LowStockSweep(ctx)
	if err != nil {
		s.logger.Error("low-stock sweep failed", zap.Error(err))
		return
	}

	s.logger.Info("low-stock sweep completed",
		zap.Int("flagged", len(report.Items)),
		zap.Int("threshold", report.Threshold))

	if s.archive == nil || len(report.Items) == 0 {
		return
	}

	if err := s.archive.SaveLowStockReport(ctx, report); err != nil {
		s.logger.Error("failed to archive low-stock report", zap.Error(err))
	}
}
