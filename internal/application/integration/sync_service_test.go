package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/application/bootstrap"
	"github.com/qms/backend/internal/application/service"
	"github.com/qms/backend/internal/domain/integration"
	"github.com/qms/backend/internal/domain/partner"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/acl"
	"github.com/qms/backend/internal/infrastructure/cache"
	"github.com/qms/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memRepo is a map-backed repository keyed by id with a code index
type memRepo[T any] struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*T
	id       func(*T) uuid.UUID
	code     func(*T) string
	failCode string
}

func newMemRepo[T any](id func(*T) uuid.UUID, code func(*T) string) *memRepo[T] {
	return &memRepo[T]{items: make(map[uuid.UUID]*T), id: id, code: code}
}

func (r *memRepo[T]) FindByID(_ context.Context, id uuid.UUID) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id], nil
}

func (r *memRepo[T]) FindByCode(_ context.Context, code string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if r.code(item) == code {
			return item, nil
		}
	}
	return nil, nil
}

func (r *memRepo[T]) FindAll(_ context.Context, _ shared.Filter, _ shared.QueryOptions) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *memRepo[T]) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *memRepo[T]) Exists(_ context.Context, filter shared.Filter) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if filter.ExcludeID != uuid.Nil && r.id(item) == filter.ExcludeID {
			continue
		}
		if id, ok := filter.Filters[shared.FilterID]; ok && r.id(item) == id {
			return true, nil
		}
		if code, ok := filter.Filters["code"]; ok && r.code(item) == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo[T]) Save(_ context.Context, entity *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCode != "" && r.code(entity) == r.failCode {
		return errors.New("storage unavailable")
	}
	r.items[r.id(entity)] = entity
	return nil
}

func (r *memRepo[T]) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	delete(r.items, id)
	return ok, nil
}

func (r *memRepo[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type syncFixture struct {
	svc       *SyncService
	suppliers *memRepo[partner.Supplier]
	customers *memRepo[partner.Customer]
}

func newSyncFixture(t *testing.T, provider string) *syncFixture {
	t.Helper()

	suppliers := newMemRepo(
		func(s *partner.Supplier) uuid.UUID { return s.GetID() },
		func(s *partner.Supplier) string { return s.Code },
	)
	customers := newMemRepo(
		func(c *partner.Customer) uuid.UUID { return c.GetID() },
		func(c *partner.Customer) string { return c.Code },
	)

	services, err := bootstrap.RegisterServices(service.Dependencies{
		Suppliers: suppliers,
		Customers: customers,
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	svc, err := NewSyncService(
		services.Factory,
		acl.NewFactory(config.ERPConfig{Provider: provider}),
		store,
		SyncConfig{Concurrency: 2, IdempotencyTTL: time.Hour},
		zap.NewNop(),
	)
	require.NoError(t, err)

	return &syncFixture{svc: svc, suppliers: suppliers, customers: customers}
}

func sapVendors() []integration.ExternalRecord {
	return []integration.ExternalRecord{
		{"CardCode": "V001", "CardName": "Test Supplier", "EmailAddress": "test@supplier.com", "CardType": "S"},
		{"CardCode": "V002"},
		{"CardCode": "V003", "CardName": "Acme Castings", "City": "Springfield", "Address": "1 Main Street", "Country": "US"},
	}
}

func TestNewSyncService_RequiresCollaborators(t *testing.T) {
	_, err := NewSyncService(nil, nil, nil, SyncConfig{}, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSyncService_ImportSuppliers(t *testing.T) {
	f := newSyncFixture(t, "sap")
	ctx := context.Background()

	result, err := f.svc.ImportSuppliers(ctx, sapVendors())
	require.NoError(t, err)

	assert.Equal(t, integration.ProviderSAP, result.Provider)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Equal(t, "V002", result.Failures[0].SourceID)
	assert.Equal(t, StageTranslate, result.Failures[0].Stage)
	assert.Equal(t, 2, f.suppliers.len())

	imported, err := f.suppliers.FindByCode(ctx, "V001")
	require.NoError(t, err)
	require.NotNil(t, imported)
	assert.Equal(t, "Test Supplier", imported.Name)
	assert.Equal(t, "test@supplier.com", imported.Email)
	assert.Equal(t, "SAP", imported.Metadata.SourceSystem)
	assert.Equal(t, "V001", imported.Metadata.SourceID)
}

func TestSyncService_ImportSuppliers_Idempotent(t *testing.T) {
	f := newSyncFixture(t, "sap")
	ctx := context.Background()

	first, err := f.svc.ImportSuppliers(ctx, sapVendors())
	require.NoError(t, err)

	again, err := f.svc.ImportSuppliers(ctx, sapVendors())
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, again.RunID)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 0, again.Updated)
	assert.Equal(t, 2, again.Skipped)
	assert.Len(t, again.Failures, 1)

	changed := sapVendors()
	changed[0]["EmailAddress"] = "quality@supplier.com"
	third, err := f.svc.ImportSuppliers(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Updated)
	assert.Equal(t, 1, third.Skipped)

	updated, _ := f.suppliers.FindByCode(ctx, "V001")
	require.NotNil(t, updated)
	assert.Equal(t, "quality@supplier.com", updated.Email)
	assert.Equal(t, 2, f.suppliers.len())
}

func TestSyncService_ImportSuppliers_UpsertFailureDoesNotAbortBatch(t *testing.T) {
	f := newSyncFixture(t, "sap")
	f.suppliers.failCode = "V001"

	result, err := f.svc.ImportSuppliers(context.Background(), sapVendors())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Failures, 2)
	stages := map[string]int{}
	for _, failure := range result.Failures {
		stages[failure.Stage]++
	}
	assert.Equal(t, 1, stages[StageTranslate])
	assert.Equal(t, 1, stages[StageUpsert])

	// the failed record was not marked, so a retry imports it
	f.suppliers.failCode = ""
	retry, err := f.svc.ImportSuppliers(context.Background(), sapVendors())
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Created)
	assert.Equal(t, 1, retry.Skipped)
}

func TestSyncService_ImportCustomers_Oracle(t *testing.T) {
	f := newSyncFixture(t, "oracle")

	result, err := f.svc.ImportCustomers(context.Background(), []integration.ExternalRecord{
		{"CUST_ACCOUNT_ID": 1040, "ACCOUNT_NUMBER": "1001", "PARTY_NAME": "Globex", "PARTY_TYPE": "ORGANIZATION"},
		{"CUST_ACCOUNT_ID": 1041, "ACCOUNT_NUMBER": "1002", "PARTY_NAME": "Jane Doe", "PARTY_TYPE": "PERSON"},
	})
	require.NoError(t, err)

	assert.Equal(t, integration.EntityTypeCustomer, result.EntityType)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "1041", result.Failures[0].SourceID)

	customer, _ := f.customers.FindByCode(context.Background(), "1001")
	require.NotNil(t, customer)
	assert.Equal(t, "ORACLE", customer.Metadata.SourceSystem)
	assert.Equal(t, "1040", customer.Metadata.SourceID)
}

func TestSyncService_ImportCancelled(t *testing.T) {
	f := newSyncFixture(t, "sap")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.svc.ImportSuppliers(ctx, sapVendors())
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, f.suppliers.len())
}

func TestSyncService_ExportSuppliers(t *testing.T) {
	f := newSyncFixture(t, "sap")
	ctx := context.Background()

	_, err := f.svc.ImportSuppliers(ctx, sapVendors())
	require.NoError(t, err)
	v1, _ := f.suppliers.FindByCode(ctx, "V001")
	v3, _ := f.suppliers.FindByCode(ctx, "V003")

	records, err := f.svc.ExportSuppliers(ctx, []uuid.UUID{v3.GetID(), v1.GetID()})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "V003", records[0]["CardCode"])
	assert.Equal(t, "Springfield", records[0]["City"])
	assert.Equal(t, "V001", records[1]["CardCode"])
	assert.Equal(t, "S", records[1]["CardType"])
	assert.Equal(t, "test@supplier.com", records[1]["EmailAddress"])

	_, err = f.svc.ExportSuppliers(ctx, []uuid.UUID{uuid.New()})
	require.Error(t, err)
	assert.True(t, shared.IsValidationError(err))
}

func TestSyncService_ExportCustomers(t *testing.T) {
	f := newSyncFixture(t, "oracle")
	ctx := context.Background()

	_, err := f.svc.ImportCustomers(ctx, []integration.ExternalRecord{
		{"CUST_ACCOUNT_ID": "77", "ACCOUNT_NUMBER": "C-77", "PARTY_NAME": "Initech"},
	})
	require.NoError(t, err)
	c, _ := f.customers.FindByCode(ctx, "C-77")
	require.NotNil(t, c)

	records, err := f.svc.ExportCustomers(ctx, []uuid.UUID{c.GetID()})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ORGANIZATION", records[0]["PARTY_TYPE"])
	assert.Equal(t, "77", records[0]["CUST_ACCOUNT_ID"])
}

func TestIdempotencyKey(t *testing.T) {
	a := integration.ExternalRecord{"CardCode": "V001", "CardName": "Test Supplier"}
	b := integration.ExternalRecord{"CardName": "Test Supplier", "CardCode": "V001"}

	key := IdempotencyKey(integration.ProviderSAP, integration.EntityTypeSupplier, "V001", a)
	assert.Equal(t, key, IdempotencyKey(integration.ProviderSAP, integration.EntityTypeSupplier, "V001", b))
	assert.Regexp(t, `^erp:sap:supplier:V001:[0-9a-f]{64}$`, key)

	b["CardName"] = "Renamed"
	assert.NotEqual(t, key, IdempotencyKey(integration.ProviderSAP, integration.EntityTypeSupplier, "V001", b))
}
