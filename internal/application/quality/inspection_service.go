package quality

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/application/validation"
	"github.com/qms/backend/internal/domain/partner"
	"github.com/qms/backend/internal/domain/quality"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InspectionServiceName is the name the inspection service is registered under
const InspectionServiceName = "InspectionService"

// InspectionServiceContract is the complete set of inspection operations
type InspectionServiceContract interface {
	Create(ctx context.Context, req CreateInspectionRequest) (*quality.Inspection, error)
	Schedule(ctx context.Context, id uuid.UUID, date time.Time) (*quality.Inspection, error)
	Start(ctx context.Context, id uuid.UUID) (*quality.Inspection, error)
	Complete(ctx context.Context, id uuid.UUID, req CompleteInspectionRequest) (*quality.Inspection, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*quality.Inspection, error)
	AddFinding(ctx context.Context, id uuid.UUID, req AddFindingRequest) (*quality.Inspection, error)
	FindByID(ctx context.Context, id uuid.UUID) (*quality.Inspection, error)
	FindAll(ctx context.Context, opts shared.ListOptions) (*shared.Paginated[quality.Inspection], error)
	GetByCustomer(ctx context.Context, customerID uuid.UUID, opts shared.ListOptions) (*shared.Paginated[quality.Inspection], error)
	GetBySupplier(ctx context.Context, supplierID uuid.UUID, opts shared.ListOptions) (*shared.Paginated[quality.Inspection], error)
	GetByStatus(ctx context.Context, status quality.InspectionStatus, opts shared.ListOptions) (*shared.Paginated[quality.Inspection], error)
	GetByDateRange(ctx context.Context, start, end time.Time, opts shared.ListOptions) (*shared.Paginated[quality.Inspection], error)
}

var _ InspectionServiceContract = (*InspectionService)(nil)

// InspectionService handles the inspection lifecycle
type InspectionService struct {
	inspectionRepo quality.InspectionRepository
	customerRepo   partner.CustomerRepository
	supplierRepo   partner.SupplierRepository
	events         shared.EventPublisher
	logger         *zap.Logger
}

// NewInspectionService creates a new InspectionService
func NewInspectionService(
	inspectionRepo quality.InspectionRepository,
	customerRepo partner.CustomerRepository,
	supplierRepo partner.SupplierRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *InspectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InspectionService{
		inspectionRepo: inspectionRepo,
		customerRepo:   customerRepo,
		supplierRepo:   supplierRepo,
		events:         events,
		logger:         logger,
	}
}

// Create schedules a new inspection for an existing customer
func (s *InspectionService) Create(ctx context.Context, req CreateInspectionRequest) (inspection *quality.Inspection, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inspection", "create")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	exists, err := s.customerRepo.Exists(ctx, shared.NewFilter().With(shared.FilterID, req.CustomerID))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewValidationError("NOT_FOUND", "customerId", "customer "+req.CustomerID.String()+" not found")
	}

	if req.SupplierID != nil && *req.SupplierID != uuid.Nil {
		exists, err := s.supplierRepo.Exists(ctx, shared.NewFilter().With(shared.FilterID, *req.SupplierID))
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.NewValidationError("NOT_FOUND", "supplierId", "supplier "+req.SupplierID.String()+" not found")
		}
	}

	inspection, err = quality.NewInspection(req.Type, req.ScheduledDate, req.CustomerID, req.SupplierID)
	if err != nil {
		return nil, err
	}
	inspection.Notes = req.Notes
	inspection.AddDomainEvent(quality.NewInspectionCreatedEvent(inspection))

	if err := s.inspectionRepo.Save(ctx, inspection); err != nil {
		return nil, err
	}
	s.publish(ctx, inspection.PullDomainEvents()...)

	span.SetAttributes(telemetry.AttrInspectionID.String(inspection.ID.String()))
	s.logger.Info("Inspection scheduled",
		zap.String("inspection_id", inspection.ID.String()),
		zap.String("customer_id", inspection.CustomerID.String()),
		zap.Time("scheduled_date", inspection.ScheduledDate),
	)
	return inspection, nil
}

// Schedule moves a scheduled inspection to a new date
func (s *InspectionService) Schedule(ctx context.Context, id uuid.UUID, date time.Time) (*quality.Inspection, error) {
	return s.transition(ctx, id, "schedule", func(i *quality.Inspection) error {
		return i.Reschedule(date)
	})
}

// Start begins a scheduled inspection
func (s *InspectionService) Start(ctx context.Context, id uuid.UUID) (*quality.Inspection, error) {
	return s.transition(ctx, id, "start", func(i *quality.Inspection) error {
		return i.Start()
	})
}

// Complete records the outcome of an in-progress inspection
func (s *InspectionService) Complete(ctx context.Context, id uuid.UUID, req CompleteInspectionRequest) (*quality.Inspection, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	details, err := quality.NewCompletionDetails(quality.InspectionResult(req.Result), req.Summary)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, id, "complete", func(i *quality.Inspection) error {
		return i.Complete(details)
	})
}

// Cancel stops an inspection that has not finished
func (s *InspectionService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*quality.Inspection, error) {
	return s.transition(ctx, id, "cancel", func(i *quality.Inspection) error {
		return i.Cancel(reason)
	})
}

// AddFinding records a finding on an inspection
func (s *InspectionService) AddFinding(ctx context.Context, id uuid.UUID, req AddFindingRequest) (*quality.Inspection, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	finding, err := quality.NewFinding(req.Description, quality.Severity(req.Severity))
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, id, "add_finding", func(i *quality.Inspection) error {
		return i.AddFinding(finding)
	})
}

// FindByID returns the inspection or nil when it does not exist
func (s *InspectionService) FindByID(ctx context.Context, id uuid.UUID) (*quality.Inspection, error) {
	if id == uuid.Nil {
		return nil, shared.NewValidationError("REQUIRED", "id", "inspection id is required")
	}
	return s.inspectionRepo.FindByID(ctx, id)
}

// FindAll returns a page of inspections matching opts.Filter
func (s *InspectionService) FindAll(ctx context.Context, opts shared.ListOptions) (*shared.Paginated[quality.Inspection], error) {
	opts = opts.Normalize()

	inspections, err := s.inspectionRepo.FindAll(ctx, opts.Filter, opts.QueryOptions())
	if err != nil {
		return nil, err
	}
	total, err := s.inspectionRepo.Count(ctx, opts.Filter)
	if err != nil {
		return nil, err
	}
	if inspections == nil {
		inspections = []quality.Inspection{}
	}
	return shared.NewPaginated(inspections, total, opts.Page, opts.Limit), nil
}

// GetByCustomer lists inspections performed for a customer
func (s *InspectionService) GetByCustomer(ctx context.Context, customerID uuid.UUID, opts shared.ListOptions) (*shared.Paginated[quality.Inspection], error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("REQUIRED", "customerId", "customer id is required")
	}
	opts.Filter = opts.Filter.With(quality.InspectionFilterCustomerID, customerID)
	return s.FindAll(ctx, opts)
}

// GetBySupplier lists inspections involving a supplier
func (s *InspectionService) GetBySupplier(ctx context.Context, supplierID uuid.UUID, opts shared.ListOptions) (*shared.Paginated[quality.Inspection], error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("REQUIRED", "supplierId", "supplier id is required")
	}
	opts.Filter = opts.Filter.With(quality.InspectionFilterSupplierID, supplierID)
	return s.FindAll(ctx, opts)
}

// GetByStatus lists inspections in the given status
func (s *InspectionService) GetByStatus(ctx context.Context, status quality.InspectionStatus, opts shared.ListOptions) (*shared.Paginated[quality.Inspection], error) {
	if !status.IsValid() {
		return nil, shared.NewValidationError("INVALID_STATUS", "status", "unknown inspection status: "+string(status))
	}
	opts.Filter = opts.Filter.With(quality.InspectionFilterStatus, string(status))
	return s.FindAll(ctx, opts)
}

// GetByDateRange lists inspections scheduled within [start, end]
func (s *InspectionService) GetByDateRange(ctx context.Context, start, end time.Time, opts shared.ListOptions) (*shared.Paginated[quality.Inspection], error) {
	if start.IsZero() || end.IsZero() {
		return nil, shared.NewValidationError("REQUIRED", "dateRange", "start and end dates are required")
	}
	if start.After(end) {
		return nil, shared.NewValidationError("INVALID_DATE_RANGE", "dateRange", "start date must not be after end date")
	}
	opts.Filter = opts.Filter.
		With(quality.InspectionFilterScheduledFrom, start).
		With(quality.InspectionFilterScheduledTo, end)
	return s.FindAll(ctx, opts)
}

// transition loads an inspection, applies fn, saves and publishes whatever
// events fn recorded. Nothing is saved when fn fails.
func (s *InspectionService) transition(ctx context.Context, id uuid.UUID, action string, fn func(*quality.Inspection) error) (inspection *quality.Inspection, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inspection", action,
		telemetry.AttrInspectionID.String(id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	inspection, err = s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inspection == nil {
		return nil, shared.NewValidationError("NOT_FOUND", "id", "inspection "+id.String()+" not found")
	}

	if err := fn(inspection); err != nil {
		inspection.ClearDomainEvents()
		return nil, err
	}

	if err := s.inspectionRepo.Save(ctx, inspection); err != nil {
		return nil, err
	}
	s.publish(ctx, inspection.PullDomainEvents()...)

	s.logger.Debug("Inspection transition applied",
		zap.String("inspection_id", inspection.ID.String()),
		zap.String("action", action),
		zap.String("status", string(inspection.Status)),
	)
	return inspection, nil
}

func (s *InspectionService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish inspection events", zap.Error(err))
	}
}
