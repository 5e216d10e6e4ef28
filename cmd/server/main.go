// Command server wires the quality management services, the ERP
// anti-corruption layer and their infrastructure, then runs until signalled.
// With -import it translates and upserts one file of ERP records and exits.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/qms/backend/internal/application/bootstrap"
	integrationapp "github.com/qms/backend/internal/application/integration"
	"github.com/qms/backend/internal/application/service"
	"github.com/qms/backend/internal/domain/integration"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/acl"
	"github.com/qms/backend/internal/infrastructure/cache"
	"github.com/qms/backend/internal/infrastructure/config"
	"github.com/qms/backend/internal/infrastructure/event"
	"github.com/qms/backend/internal/infrastructure/logger"
	"github.com/qms/backend/internal/infrastructure/persistence"
	"github.com/qms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

func main() {
	importFile := flag.String("import", "", "JSON file holding an array of ERP records to import")
	entity := flag.String("entity", string(integration.EntityTypeSupplier), "entity type of the imported records (supplier or customer)")
	flag.Parse()

	if err := run(*importFile, integration.EntityType(*entity)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(importFile string, entity integration.EntityType) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bootstrap logger; replaced once the OTLP log bridge exists
	bootLog, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			bootLog.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	log, err := logger.New(logger.FromAppConfig(cfg.Log), providers.LogCore())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("Starting QMS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("erp_provider", cfg.ERP.Provider),
	)

	gormLog := logger.NewSQLLogger(log, logger.SQLLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	dbInstrumentation, err := telemetry.NewGormInstrumentation(cfg.Telemetry, providers.Meter.Meter(telemetry.TracerName), log)
	if err != nil {
		return err
	}
	if err := db.DB.Use(dbInstrumentation); err != nil {
		return fmt.Errorf("failed to instrument database: %w", err)
	}
	defer func() { _ = dbInstrumentation.Close() }()

	if cfg.Database.AutoMigrate {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			return err
		}
		log.Info("Database schema migrated")
	}

	bus := event.NewInMemoryEventBus(log, event.WithHandlerTimeout(cfg.Event.HandlerTimeout))
	if cfg.Event.AuditEnabled {
		bus.Subscribe(event.NewAuditHandler(log))
	}
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Event.ShutdownTimeout)
		defer cancel()
		if err := bus.Stop(stopCtx); err != nil {
			log.Warn("Event bus did not drain before shutdown", zap.Error(err))
		}
	}()

	services, err := bootstrap.RegisterServices(service.Dependencies{
		Suppliers:   persistence.NewGormSupplierRepository(db.DB),
		Customers:   persistence.NewGormCustomerRepository(db.DB),
		Inspections: persistence.NewGormInspectionRepository(db.DB),
		Events:      bus,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("failed to register services: %w", err)
	}

	store, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
		cache.WithMemorySweep(cfg.ERP.IdempotencySweep),
	).Create(ctx, cfg.ERP.IdempotencyBackend)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	syncer, err := integrationapp.NewSyncService(services.Factory, acl.NewFactory(cfg.ERP), store,
		integrationapp.SyncConfig{
			Concurrency:    cfg.ERP.ImportConcurrency,
			IdempotencyTTL: cfg.ERP.IdempotencyTTL,
		},
		log,
		integrationapp.WithMeter(providers.Meter.Meter(telemetry.TracerName)),
	)
	if err != nil {
		return err
	}

	if importFile != "" {
		return importRecords(ctx, syncer, importFile, entity)
	}

	log.Info("QMS backend ready",
		zap.Strings("contracts", services.Registry.List()),
		zap.Strings("service_types", services.Factory.Registered()),
	)
	<-ctx.Done()
	log.Info("Shutting down QMS backend")
	return nil
}

func importRecords(ctx context.Context, syncer *integrationapp.SyncService, path string, entity integration.EntityType) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var records []integration.ExternalRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: %s is not a JSON array of records: %v", shared.ErrInvalidInput, path, err)
	}

	var result *integrationapp.ImportResult
	switch entity {
	case integration.EntityTypeSupplier:
		result, err = syncer.ImportSuppliers(ctx, records)
	case integration.EntityTypeCustomer:
		result, err = syncer.ImportCustomers(ctx, records)
	default:
		err = fmt.Errorf("%w: cannot import %q records", shared.ErrInvalidInput, entity)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if result.Failed() > 0 {
		return errors.New("import finished with failures")
	}
	return nil
}
