package quality

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/partner"
	"github.com/qms/backend/internal/domain/quality"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mocks
// =============================================================================

type MockInspectionRepository struct {
	mock.Mock
}

func (m *MockInspectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*quality.Inspection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quality.Inspection), args.Error(1)
}

func (m *MockInspectionRepository) FindAll(ctx context.Context, filter shared.Filter, opts shared.QueryOptions) ([]quality.Inspection, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]quality.Inspection), args.Error(1)
}

func (m *MockInspectionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInspectionRepository) Exists(ctx context.Context, filter shared.Filter) (bool, error) {
	args := m.Called(ctx, filter)
	return args.Bool(0), args.Error(1)
}

func (m *MockInspectionRepository) Save(ctx context.Context, i *quality.Inspection) error {
	return m.Called(ctx, i).Error(0)
}

func (m *MockInspectionRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// existenceRepo answers Exists from a fixed id set; the other methods are
// never used by the inspection service.
type existenceRepo[T any] struct {
	ids map[uuid.UUID]bool
	err error
}

func (r *existenceRepo[T]) Exists(_ context.Context, f shared.Filter) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	id, _ := f.Filters[shared.FilterID].(uuid.UUID)
	return r.ids[id], nil
}

func (r *existenceRepo[T]) FindByID(context.Context, uuid.UUID) (*T, error) { return nil, nil }
func (r *existenceRepo[T]) FindAll(context.Context, shared.Filter, shared.QueryOptions) ([]T, error) {
	return nil, nil
}
func (r *existenceRepo[T]) Count(context.Context, shared.Filter) (int64, error) { return 0, nil }
func (r *existenceRepo[T]) Save(context.Context, *T) error                      { return nil }
func (r *existenceRepo[T]) Delete(context.Context, uuid.UUID) (bool, error)     { return false, nil }
func (r *existenceRepo[T]) FindByCode(context.Context, string) (*T, error)      { return nil, nil }

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type fixture struct {
	svc        *InspectionService
	repo       *MockInspectionRepository
	pub        *recordingPublisher
	customerID uuid.UUID
	supplierID uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		repo:       new(MockInspectionRepository),
		pub:        &recordingPublisher{},
		customerID: uuid.New(),
		supplierID: uuid.New(),
	}
	customers := &existenceRepo[partner.Customer]{ids: map[uuid.UUID]bool{f.customerID: true}}
	suppliers := &existenceRepo[partner.Supplier]{ids: map[uuid.UUID]bool{f.supplierID: true}}
	f.svc = NewInspectionService(f.repo, customers, suppliers, f.pub, nil)
	return f
}

func (f *fixture) scheduled(t *testing.T) *quality.Inspection {
	t.Helper()
	i, err := quality.NewInspection("incoming", time.Now().Add(24*time.Hour), f.customerID, nil)
	require.NoError(t, err)
	f.repo.On("FindByID", mock.Anything, i.ID).Return(i, nil)
	return i
}

// =============================================================================
// Tests
// =============================================================================

func TestInspectionService_Create(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("creates a scheduled inspection", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Save", mock.Anything, mock.AnythingOfType("*quality.Inspection")).Return(nil)

		supplierID := f.supplierID
		i, err := f.svc.Create(ctx, CreateInspectionRequest{
			Type:          "incoming",
			ScheduledDate: date,
			CustomerID:    f.customerID,
			SupplierID:    &supplierID,
			Notes:         "first article",
		})
		require.NoError(t, err)
		assert.Equal(t, quality.InspectionStatusScheduled, i.Status)
		assert.Equal(t, "first article", i.Notes)
		assert.Equal(t, []string{quality.EventTypeInspectionCreated}, f.pub.types())
	})

	t.Run("unknown customer", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, CreateInspectionRequest{Type: "incoming", ScheduledDate: date, CustomerID: uuid.New()})
		var ve *shared.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "customerId", ve.Field)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		f := newFixture()
		other := uuid.New()
		_, err := f.svc.Create(ctx, CreateInspectionRequest{Type: "incoming", ScheduledDate: date, CustomerID: f.customerID, SupplierID: &other})
		var ve *shared.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "supplierId", ve.Field)
	})

	t.Run("missing type", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, CreateInspectionRequest{ScheduledDate: date, CustomerID: f.customerID})
		var ve *shared.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "type", ve.Field)
	})
}

func TestInspectionService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	i := f.scheduled(t)
	f.repo.On("Save", mock.Anything, i).Return(nil)

	newDate := time.Now().Add(72 * time.Hour)
	_, err := f.svc.Schedule(ctx, i.ID, newDate)
	require.NoError(t, err)
	assert.True(t, i.ScheduledDate.Equal(newDate))

	_, err = f.svc.Start(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, quality.InspectionStatusInProgress, i.Status)

	_, err = f.svc.AddFinding(ctx, i.ID, AddFindingRequest{Description: "burr on edge", Severity: "medium"})
	require.NoError(t, err)

	done, err := f.svc.Complete(ctx, i.ID, CompleteInspectionRequest{Result: "conditional", Summary: "rework"})
	require.NoError(t, err)
	assert.Equal(t, quality.InspectionStatusCompleted, done.Status)
	require.NotNil(t, done.CompletionDetails)
	assert.Equal(t, quality.InspectionResultConditional, done.CompletionDetails.Result)

	assert.Equal(t, []string{
		quality.EventTypeInspectionScheduled,
		quality.EventTypeInspectionStarted,
		quality.EventTypeInspectionFindingAdded,
		quality.EventTypeInspectionCompleted,
	}, f.pub.types())
}

func TestInspectionService_IllegalTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("complete from scheduled", func(t *testing.T) {
		f := newFixture()
		i := f.scheduled(t)

		_, err := f.svc.Complete(ctx, i.ID, CompleteInspectionRequest{Result: "pass"})
		assert.True(t, shared.IsValidationError(err))
		assert.Empty(t, i.GetDomainEvents())
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.pub.types())
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		f := newFixture()
		i := f.scheduled(t)

		_, err := f.svc.Cancel(ctx, i.ID, "  ")
		assert.True(t, shared.IsValidationError(err))
		assert.Equal(t, quality.InspectionStatusScheduled, i.Status)
	})

	t.Run("cancelled inspection accepts no findings", func(t *testing.T) {
		f := newFixture()
		i := f.scheduled(t)
		f.repo.On("Save", mock.Anything, i).Return(nil)

		_, err := f.svc.Cancel(ctx, i.ID, "supplier closed")
		require.NoError(t, err)
		assert.Equal(t, "supplier closed", i.CancellationReason)

		_, err = f.svc.AddFinding(ctx, i.ID, AddFindingRequest{Description: "late", Severity: "low"})
		assert.True(t, shared.IsValidationError(err))
		assert.Equal(t, []string{quality.EventTypeInspectionCancelled}, f.pub.types())
	})

	t.Run("unknown inspection", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.repo.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := f.svc.Start(ctx, id)
		var ve *shared.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "NOT_FOUND", ve.Code)
	})

	t.Run("invalid severity", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.AddFinding(ctx, uuid.New(), AddFindingRequest{Description: "x", Severity: "critical"})
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("save error surfaces", func(t *testing.T) {
		f := newFixture()
		i := f.scheduled(t)
		f.repo.On("Save", mock.Anything, i).Return(errors.New("db down"))

		_, err := f.svc.Start(ctx, i.ID)
		assert.EqualError(t, err, "db down")
		assert.Empty(t, f.pub.types())
	})
}

func TestInspectionService_Queries(t *testing.T) {
	ctx := context.Background()

	t.Run("date range", func(t *testing.T) {
		f := newFixture()
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)

		f.repo.On("FindAll", mock.Anything, mock.MatchedBy(func(fl shared.Filter) bool {
			return fl.Filters[quality.InspectionFilterScheduledFrom] == start &&
				fl.Filters[quality.InspectionFilterScheduledTo] == end
		}), mock.Anything).Return([]quality.Inspection{}, nil)
		f.repo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

		page, err := f.svc.GetByDateRange(ctx, start, end, shared.ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)

		_, err = f.svc.GetByDateRange(ctx, end, start, shared.ListOptions{})
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("by customer", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindAll", mock.Anything, mock.MatchedBy(func(fl shared.Filter) bool {
			return fl.Filters[quality.InspectionFilterCustomerID] == f.customerID
		}), mock.Anything).Return([]quality.Inspection{}, nil)
		f.repo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

		_, err := f.svc.GetByCustomer(ctx, f.customerID, shared.ListOptions{})
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("by status", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.GetByStatus(ctx, quality.InspectionStatus("paused"), shared.ListOptions{})
		assert.True(t, shared.IsValidationError(err))
	})
}
