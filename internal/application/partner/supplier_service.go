package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/application/validation"
	"github.com/qms/backend/internal/domain/partner"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SupplierServiceName is the name the supplier service is registered under
const SupplierServiceName = "SupplierService"

// SupplierServiceContract is the complete set of supplier operations.
// Callers depend on this interface, never on *SupplierService.
type SupplierServiceContract interface {
	FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error)
	FindByCode(ctx context.Context, code string) (*partner.Supplier, error)
	FindAll(ctx context.Context, opts shared.ListOptions) (*shared.Paginated[partner.Supplier], error)
	Create(ctx context.Context, req CreateSupplierRequest) (*partner.Supplier, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*partner.Supplier, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	AddContact(ctx context.Context, supplierID uuid.UUID, req AddContactRequest) (*partner.Supplier, error)
	AddQualification(ctx context.Context, supplierID uuid.UUID, req AddQualificationRequest) (*partner.Supplier, error)
	Search(ctx context.Context, query string, opts shared.ListOptions) (*shared.Paginated[partner.Supplier], error)
	GetByStatus(ctx context.Context, status partner.SupplierStatus, opts shared.ListOptions) (*shared.Paginated[partner.Supplier], error)
	GetByQualification(ctx context.Context, qualificationType string, opts shared.ListOptions) (*shared.Paginated[partner.Supplier], error)
}

var _ SupplierServiceContract = (*SupplierService)(nil)

// SupplierService handles supplier-related business operations.
// It holds only injected dependencies and is safe to create per call.
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository, events shared.EventPublisher, logger *zap.Logger) *SupplierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplierService{
		supplierRepo: supplierRepo,
		events:       events,
		logger:       logger,
	}
}

// FindByID returns the supplier or nil when it does not exist
func (s *SupplierService) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	if id == uuid.Nil {
		return nil, shared.NewValidationError("REQUIRED", "id", "supplier id is required")
	}
	return s.supplierRepo.FindByID(ctx, id)
}

// FindByCode returns the supplier with the exact code or nil
func (s *SupplierService) FindByCode(ctx context.Context, code string) (*partner.Supplier, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewValidationError("REQUIRED", "code", "supplier code is required")
	}
	return s.supplierRepo.FindByCode(ctx, code)
}

// FindAll returns a page of suppliers matching opts.Filter
func (s *SupplierService) FindAll(ctx context.Context, opts shared.ListOptions) (*shared.Paginated[partner.Supplier], error) {
	opts = opts.Normalize()

	suppliers, err := s.supplierRepo.FindAll(ctx, opts.Filter, opts.QueryOptions())
	if err != nil {
		return nil, err
	}
	total, err := s.supplierRepo.Count(ctx, opts.Filter)
	if err != nil {
		return nil, err
	}
	if suppliers == nil {
		suppliers = []partner.Supplier{}
	}
	return shared.NewPaginated(suppliers, total, opts.Page, opts.Limit), nil
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (supplier *partner.Supplier, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier", "create")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	exists, err := s.supplierRepo.Exists(ctx, shared.NewFilter().With(partner.SupplierFilterCode, code))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewValidationError("ALREADY_EXISTS", "code", "supplier with code '"+code+"' already exists")
	}

	supplier, err = partner.NewSupplier(code, req.Name)
	if err != nil {
		return nil, err
	}

	if _, err := supplier.UpdateDetails(partner.SupplierDetails{
		Email:        &req.Email,
		Phone:        &req.Phone,
		MobilePhone:  &req.MobilePhone,
		Notes:        &req.Notes,
		PaymentTerms: &req.PaymentTerms,
		TaxCode:      &req.TaxCode,
		CreditLimit:  req.CreditLimit,
	}); err != nil {
		return nil, err
	}
	supplier.AddTags(req.Tags...)

	if req.Address != nil && !req.Address.IsEmpty() {
		addr, err := req.Address.ToAddress()
		if err != nil {
			return nil, shared.NewValidationError("INVALID_ADDRESS", "address", err.Error())
		}
		supplier.UpdateAddress(addr)
	}

	if req.Status != "" && partner.SupplierStatus(req.Status) != supplier.Status {
		if err := supplier.ChangeStatus(partner.SupplierStatus(req.Status)); err != nil {
			return nil, err
		}
	}

	if req.Metadata != nil {
		supplier.SetProvenance(*req.Metadata)
	}

	supplier.AddDomainEvent(partner.NewSupplierCreatedEvent(supplier))

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	span.SetAttributes(telemetry.AttrSupplierID.String(supplier.ID.String()))
	s.publish(ctx, supplier.PullDomainEvents()...)
	s.logger.Info("Supplier created",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("code", supplier.Code),
	)
	return supplier, nil
}

// Update applies a partial update to a supplier
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (supplier *partner.Supplier, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier", "update",
		telemetry.AttrSupplierID.String(id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	supplier, err = s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		req.Code = &code
		if code != supplier.Code {
			filter := shared.NewFilter().With(partner.SupplierFilterCode, code)
			filter.ExcludeID = supplier.ID
			taken, err := s.supplierRepo.Exists(ctx, filter)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, shared.NewValidationError("ALREADY_EXISTS", "code", "supplier with code '"+code+"' already exists")
			}
		}
	}

	changed, err := supplier.UpdateDetails(partner.SupplierDetails{
		Name:         req.Name,
		Code:         req.Code,
		Email:        req.Email,
		Phone:        req.Phone,
		MobilePhone:  req.MobilePhone,
		Notes:        req.Notes,
		Tags:         req.Tags,
		PaymentTerms: req.PaymentTerms,
		TaxCode:      req.TaxCode,
		CreditLimit:  req.CreditLimit,
	})
	if err != nil {
		return nil, err
	}

	if req.Address != nil {
		addr, err := req.Address.ToAddress()
		if err != nil {
			return nil, shared.NewValidationError("INVALID_ADDRESS", "address", err.Error())
		}
		if supplier.UpdateAddress(addr) {
			changed = append(changed, "address")
		}
	}

	if req.Status != nil && partner.SupplierStatus(*req.Status) != supplier.Status {
		if err := supplier.ChangeStatus(partner.SupplierStatus(*req.Status)); err != nil {
			return nil, err
		}
		changed = append(changed, "status")
	}

	if len(changed) == 0 {
		return supplier, nil
	}

	supplier.AddDomainEvent(partner.NewSupplierUpdatedEvent(supplier, changed))

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	s.publish(ctx, supplier.PullDomainEvents()...)
	s.logger.Info("Supplier updated",
		zap.String("supplier_id", supplier.ID.String()),
		zap.Strings("changed_fields", changed),
	)
	return supplier, nil
}

// Delete removes a supplier with its contacts and qualifications.
// The deleted event is only published when the repository confirms removal.
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) (deleted bool, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier", "delete",
		telemetry.AttrSupplierID.String(id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	supplier, err := s.mustFind(ctx, id)
	if err != nil {
		return false, err
	}

	deleted, err = s.supplierRepo.Delete(ctx, supplier.ID)
	if err != nil {
		return false, err
	}
	if !deleted {
		s.logger.Warn("Supplier was already gone at delete time", zap.String("supplier_id", id.String()))
		return false, nil
	}

	s.publish(ctx, partner.NewSupplierDeletedEvent(supplier))
	return true, nil
}

// AddContact adds a contact to a supplier
func (s *SupplierService) AddContact(ctx context.Context, supplierID uuid.UUID, req AddContactRequest) (*partner.Supplier, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	supplier, err := s.mustFind(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	contact, err := partner.NewContact(req.Name, req.Email, req.Phone, req.Role)
	if err != nil {
		return nil, err
	}
	supplier.AddContact(contact)

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.publish(ctx, supplier.PullDomainEvents()...)
	return supplier, nil
}

// AddQualification records a qualification held by a supplier
func (s *SupplierService) AddQualification(ctx context.Context, supplierID uuid.UUID, req AddQualificationRequest) (*partner.Supplier, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	supplier, err := s.mustFind(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	q, err := partner.NewQualification(req.Type, req.IssuingBody, req.ValidFrom, req.ValidUntil)
	if err != nil {
		return nil, err
	}
	supplier.AddQualification(q)

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.publish(ctx, supplier.PullDomainEvents()...)
	return supplier, nil
}

// Search matches query case-insensitively against name, code and tags
func (s *SupplierService) Search(ctx context.Context, query string, opts shared.ListOptions) (*shared.Paginated[partner.Supplier], error) {
	opts.Filter.Search = strings.TrimSpace(query)
	return s.FindAll(ctx, opts)
}

// GetByStatus lists suppliers in the given status
func (s *SupplierService) GetByStatus(ctx context.Context, status partner.SupplierStatus, opts shared.ListOptions) (*shared.Paginated[partner.Supplier], error) {
	if !status.IsValid() {
		return nil, shared.NewValidationError("INVALID_STATUS", "status", "unknown supplier status: "+string(status))
	}
	opts.Filter = opts.Filter.With(partner.SupplierFilterStatus, string(status))
	return s.FindAll(ctx, opts)
}

// GetByQualification lists suppliers holding a qualification of the given type
func (s *SupplierService) GetByQualification(ctx context.Context, qualificationType string, opts shared.ListOptions) (*shared.Paginated[partner.Supplier], error) {
	qualificationType = strings.TrimSpace(qualificationType)
	if qualificationType == "" {
		return nil, shared.NewValidationError("REQUIRED", "qualificationType", "qualification type is required")
	}
	opts.Filter = opts.Filter.With(partner.SupplierFilterQualificationType, qualificationType)
	return s.FindAll(ctx, opts)
}

// mustFind loads a supplier, turning absence into a ValidationError
func (s *SupplierService) mustFind(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	supplier, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, shared.NewValidationError("NOT_FOUND", "id", "supplier "+id.String()+" not found")
	}
	return supplier, nil
}

// publish hands events to the bus. The state change is already durable, so a
// publishing failure is logged and not returned.
func (s *SupplierService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish supplier events", zap.Error(err))
	}
}
