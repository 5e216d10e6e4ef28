// Package integration synchronises partner master data with external ERP
// systems through the anti-corruption layer and the partner services.
package integration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/qms/backend/internal/application/partner"
	"github.com/qms/backend/internal/application/service"
	"github.com/qms/backend/internal/domain/integration"
	"github.com/qms/backend/internal/domain/partner"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/logger"
	"github.com/qms/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency    = 4
	defaultIdempotencyTTL = 24 * time.Hour

	outcomeCreated = "created"
	outcomeUpdated = "updated"
	outcomeSkipped = "skipped"
)

// SyncService imports ERP partner records into the domain and exports
// domain partners back to ERP records. Each record is upserted through its
// own service instance obtained from the service factory.
type SyncService struct {
	services     *service.Factory
	translators  integration.TranslatorFactory
	store        shared.IdempotencyStore
	cfg          SyncConfig
	translations *telemetry.Counter
	imports      *telemetry.Counter
	logger       *zap.Logger
}

// SyncOption configures a SyncService
type SyncOption func(*syncOptions)

type syncOptions struct {
	meter metric.Meter
}

// WithMeter sets the meter translation counters are recorded on
func WithMeter(meter metric.Meter) SyncOption {
	return func(o *syncOptions) {
		o.meter = meter
	}
}

// NewSyncService creates a SyncService
func NewSyncService(
	services *service.Factory,
	translators integration.TranslatorFactory,
	store shared.IdempotencyStore,
	cfg SyncConfig,
	logger *zap.Logger,
	opts ...SyncOption,
) (*SyncService, error) {
	if services == nil || translators == nil || store == nil {
		return nil, fmt.Errorf("%w: service factory, translator factory and idempotency store are required", shared.ErrInvalidInput)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}

	o := &syncOptions{meter: otel.Meter(telemetry.TracerName)}
	for _, opt := range opts {
		opt(o)
	}

	translations, err := telemetry.NewCounter(o.meter, "acl.translations", "ERP records translated by the anti-corruption layer", "{record}")
	if err != nil {
		return nil, err
	}
	imports, err := telemetry.NewCounter(o.meter, "erp.import.records", "ERP records processed by the import job", "{record}")
	if err != nil {
		return nil, err
	}

	return &SyncService{
		services:     services,
		translators:  translators,
		store:        store,
		cfg:          cfg,
		translations: translations,
		imports:      imports,
		logger:       logger,
	}, nil
}

// ImportSuppliers translates supplier records of the configured provider and
// upserts them by code
func (s *SyncService) ImportSuppliers(ctx context.Context, records []integration.ExternalRecord) (*ImportResult, error) {
	return s.importRecords(ctx, "ImportSuppliers", integration.EntityTypeSupplier, records)
}

// ImportCustomers translates customer records of the configured provider and
// upserts them by code
func (s *SyncService) ImportCustomers(ctx context.Context, records []integration.ExternalRecord) (*ImportResult, error) {
	return s.importRecords(ctx, "ImportCustomers", integration.EntityTypeCustomer, records)
}

func (s *SyncService) importRecords(
	ctx context.Context,
	method string,
	entityType integration.EntityType,
	records []integration.ExternalRecord,
) (result *ImportResult, err error) {
	translator, err := s.translators.CreateFromConfig()
	if err != nil {
		return nil, err
	}
	provider := translator.Provider()

	ctx, span := telemetry.StartServiceSpan(ctx, "SyncService", method,
		telemetry.AttrProvider.String(provider.String()),
		telemetry.AttrEntityType.String(entityType.String()),
		telemetry.AttrBatchSize.Int(len(records)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	runID := uuid.NewString()
	ctx, _ = logger.WithImportRun(ctx, s.logger, runID, provider.String())
	log := logger.L(ctx).With(zap.String("entity_type", entityType.String()))

	result = &ImportResult{
		RunID:      runID,
		Provider:   provider,
		EntityType: entityType,
		Total:      len(records),
		Failures:   make([]ImportFailure, 0),
	}

	entities, failures := translator.BatchTranslateWithDiagnostics(entityType, records)
	for _, f := range failures {
		log.Warn("ERP record could not be translated",
			zap.Int("index", f.Index),
			zap.String("source_id", f.SourceID),
			zap.String("reason", f.Reason()),
		)
		result.Failures = append(result.Failures, ImportFailure{
			Index:    f.Index,
			SourceID: f.SourceID,
			Stage:    StageTranslate,
			Reason:   f.Reason(),
		})
	}
	s.recordTranslations(ctx, provider, entityType, len(records)-len(failures), len(failures))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, entity := range entities {
		if entity == nil {
			continue
		}
		i, entity := i, entity
		g.Go(func() error {
			outcome, upsertErr := s.importOne(gctx, provider, entityType, entity, records[i])

			mu.Lock()
			defer mu.Unlock()

			if upsertErr != nil {
				log.Warn("ERP record could not be imported",
					zap.Int("index", i),
					zap.String("source_id", entity.Provenance().SourceID),
					zap.Error(upsertErr),
				)
				result.Failures = append(result.Failures, ImportFailure{
					Index:    i,
					SourceID: entity.Provenance().SourceID,
					Stage:    StageUpsert,
					Reason:   upsertErr.Error(),
				})
				return nil
			}
			switch outcome {
			case outcomeCreated:
				result.Created++
			case outcomeUpdated:
				result.Updated++
			case outcomeSkipped:
				result.Skipped++
			}
			s.imports.Inc(gctx,
				telemetry.AttrProvider.String(provider.String()),
				telemetry.AttrEntityType.String(entityType.String()),
				telemetry.AttrOutcome.String(outcome),
			)
			return nil
		})
	}
	// Workers never return errors, a failing record only lands in Failures
	_ = g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	log.Info("ERP import finished",
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed()),
	)
	return result, nil
}

// importOne upserts one translated entity unless an identical record was
// imported within the idempotency TTL
func (s *SyncService) importOne(
	ctx context.Context,
	provider integration.Provider,
	entityType integration.EntityType,
	entity integration.DomainEntity,
	record integration.ExternalRecord,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := IdempotencyKey(provider, entityType, entity.Provenance().SourceID, record)
	processed, err := s.store.IsProcessed(ctx, key)
	if err != nil {
		logger.L(ctx).Warn("Idempotency check failed, importing anyway", zap.String("key", key), zap.Error(err))
	} else if processed {
		return outcomeSkipped, nil
	}

	var outcome string
	switch e := entity.(type) {
	case *partner.Supplier:
		outcome, err = s.upsertSupplier(ctx, e)
	case *partner.Customer:
		outcome, err = s.upsertCustomer(ctx, e)
	default:
		err = fmt.Errorf("%w: %T", integration.ErrUnsupportedEntityType, entity)
	}
	if err != nil {
		return "", err
	}

	if _, err := s.store.MarkProcessed(ctx, key, s.cfg.IdempotencyTTL); err != nil {
		logger.L(ctx).Warn("Failed to record imported ERP record", zap.String("key", key), zap.Error(err))
	}
	return outcome, nil
}

func (s *SyncService) upsertSupplier(ctx context.Context, incoming *partner.Supplier) (string, error) {
	suppliers, err := service.CreateAs[partnerapp.SupplierServiceContract](s.services, partnerapp.SupplierServiceName)
	if err != nil {
		return "", err
	}

	existing, err := suppliers.FindByCode(ctx, incoming.Code)
	if err != nil {
		return "", err
	}
	if existing == nil {
		if _, err := suppliers.Create(ctx, supplierCreateRequest(incoming)); err != nil {
			return "", err
		}
		return outcomeCreated, nil
	}
	if _, err := suppliers.Update(ctx, existing.GetID(), supplierUpdateRequest(incoming)); err != nil {
		return "", err
	}
	return outcomeUpdated, nil
}

func (s *SyncService) upsertCustomer(ctx context.Context, incoming *partner.Customer) (string, error) {
	customers, err := service.CreateAs[partnerapp.CustomerServiceContract](s.services, partnerapp.CustomerServiceName)
	if err != nil {
		return "", err
	}

	existing, err := customers.FindByCode(ctx, incoming.Code)
	if err != nil {
		return "", err
	}
	if existing == nil {
		if _, err := customers.Create(ctx, customerCreateRequest(incoming)); err != nil {
			return "", err
		}
		return outcomeCreated, nil
	}
	if _, err := customers.Update(ctx, existing.GetID(), customerUpdateRequest(incoming)); err != nil {
		return "", err
	}
	return outcomeUpdated, nil
}

// ExportSuppliers loads each supplier and translates it into a record of the
// configured provider, in the order of ids
func (s *SyncService) ExportSuppliers(ctx context.Context, ids []uuid.UUID) (records []integration.ExternalRecord, err error) {
	translator, err := s.translators.CreateFromConfig()
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "SyncService", "ExportSuppliers",
		telemetry.AttrProvider.String(translator.Provider().String()),
		telemetry.AttrBatchSize.Int(len(ids)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	suppliers, err := service.CreateAs[partnerapp.SupplierServiceContract](s.services, partnerapp.SupplierServiceName)
	if err != nil {
		return nil, err
	}

	records = make([]integration.ExternalRecord, 0, len(ids))
	for _, id := range ids {
		supplier, err := suppliers.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, shared.NewValidationError("NOT_FOUND", "id", "supplier not found: "+id.String())
		}
		record, err := translator.TranslateFromDomain(integration.EntityTypeSupplier, supplier)
		if err != nil {
			return nil, fmt.Errorf("export supplier %s: %w", supplier.Code, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// ExportCustomers is ExportSuppliers for customers
func (s *SyncService) ExportCustomers(ctx context.Context, ids []uuid.UUID) (records []integration.ExternalRecord, err error) {
	translator, err := s.translators.CreateFromConfig()
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "SyncService", "ExportCustomers",
		telemetry.AttrProvider.String(translator.Provider().String()),
		telemetry.AttrBatchSize.Int(len(ids)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	customers, err := service.CreateAs[partnerapp.CustomerServiceContract](s.services, partnerapp.CustomerServiceName)
	if err != nil {
		return nil, err
	}

	records = make([]integration.ExternalRecord, 0, len(ids))
	for _, id := range ids {
		customer, err := customers.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, shared.NewValidationError("NOT_FOUND", "id", "customer not found: "+id.String())
		}
		record, err := translator.TranslateFromDomain(integration.EntityTypeCustomer, customer)
		if err != nil {
			return nil, fmt.Errorf("export customer %s: %w", customer.Code, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *SyncService) recordTranslations(ctx context.Context, provider integration.Provider, entityType integration.EntityType, ok, failed int) {
	base := []attribute.KeyValue{
		telemetry.AttrProvider.String(provider.String()),
		telemetry.AttrEntityType.String(entityType.String()),
	}
	if ok > 0 {
		s.translations.Add(ctx, int64(ok), append(base, telemetry.AttrOutcome.String("success"))...)
	}
	if failed > 0 {
		s.translations.Add(ctx, int64(failed), append(base, telemetry.AttrOutcome.String("failure"))...)
	}
}

// IdempotencyKey identifies one version of an ERP record:
// erp:<source>:<entity>:<sourceId>:<sha256 of the record>
func IdempotencyKey(provider integration.Provider, entityType integration.EntityType, sourceID string, record integration.ExternalRecord) string {
	payload, err := json.Marshal(record)
	if err != nil {
		payload = []byte(fmt.Sprint(map[string]any(record)))
	}
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("erp:%s:%s:%s:%s", provider, entityType, sourceID, hex.EncodeToString(sum[:]))
}
