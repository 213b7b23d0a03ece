package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/hiraoka/zaiko/internal/config"
	"github.com/hiraoka/zaiko/internal/repository/mongodb"
	"github.com/hiraoka/zaiko/internal/repository/sheets"
	"github.com/hiraoka/zaiko/internal/repository/webapp"
	"github.com/hiraoka/zaiko/internal/scheduler"
	"github.com/hiraoka/zaiko/internal/server/handlers"
	"github.com/hiraoka/zaiko/internal/server/router"
	"github.com/hiraoka/zaiko/internal/service/ledger"
	"github.com/hiraoka/zaiko/internal/service/scanner"
	"github.com/hiraoka/zaiko/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var store ledger.RemoteStore
	switch cfg.Store.Backend {
	case config.BackendSheets:
		sheetsStore, err := sheets.NewStore(context.Background(), cfg.Sheets, baseLogger.Named("store.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets store", zap.Error(err))
		}
		store = sheetsStore
	default:
		store = webapp.NewStore(cfg.WebApp, baseLogger.Named("store.webapp"))
	}

	var auditArchive ledger.Archive
	var reportArchive scheduler.ReportArchive
	if cfg.MongoDB.URI != "" {
		mongoArchive, err := mongodb.NewMongoArchive(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb archive", zap.Error(err))
		}
		defer func() {
			if err := mongoArchive.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		auditArchive = mongoArchive
		reportArchive = mongoArchive
	} else {
		baseLogger.Warn("mongodb uri missing, audit archive disabled")
	}

	ledgerSvc := ledger.NewService(store, auditArchive, baseLogger.Named("svc.ledger"))

	lookup := func(ctx context.Context, code string) {
		lookupCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		record, err := ledgerSvc.FetchRecord(lookupCtx, code)
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			baseLogger.Info("scanned code not found", zap.String("code", code))
		case err != nil:
			baseLogger.Warn("scan lookup failed", zap.String("code", code), zap.Error(err))
		default:
			baseLogger.Info("scanned product resolved",
				zap.String("code", record.Code),
				zap.Int("stock", record.Stock),
				zap.Bool("low_stock", record.LowStock()))
		}
	}

	scanQueue := scanner.NewQueue(cfg.Scanner.QueueSize, lookup, baseLogger.Named("svc.scanner"))

	inventoryHandler := handlers.NewInventoryHandler(ledgerSvc, scanQueue, baseLogger.Named("handlers.inventory"))
	engine := router.New(inventoryHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, ledgerSvc, reportArchive, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scanQueue.Start(ctx)
	defer scanQueue.Stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}

	if err := ledgerSvc.Flush(shutdownCtx); err != nil {
		baseLogger.Warn("pending remote writes not flushed", zap.Error(err))
	}
}
