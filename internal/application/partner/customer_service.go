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

// CustomerServiceName is the name the customer service is registered under
const CustomerServiceName = "CustomerService"

// CustomerServiceContract is the set of customer operations
type CustomerServiceContract interface {
	Create(ctx context.Context, req CreateCustomerRequest) (*partner.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error)
	FindByCode(ctx context.Context, code string) (*partner.Customer, error)
	FindAll(ctx context.Context, opts shared.ListOptions) (*shared.Paginated[partner.Customer], error)
	Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*partner.Customer, error)
}

var _ CustomerServiceContract = (*CustomerService)(nil)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, events shared.EventPublisher, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		events:       events,
		logger:       logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (customer *partner.Customer, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "create")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	exists, err := s.customerRepo.Exists(ctx, shared.NewFilter().With(partner.CustomerFilterCode, code))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewValidationError("ALREADY_EXISTS", "code", "customer with code '"+code+"' already exists")
	}

	customer, err = partner.NewCustomer(code, req.Name)
	if err != nil {
		return nil, err
	}
	if req.Email != "" || req.Phone != "" {
		if err := customer.SetContact(req.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Address != nil && !req.Address.IsEmpty() {
		addr, err := req.Address.ToAddress()
		if err != nil {
			return nil, shared.NewValidationError("INVALID_ADDRESS", "address", err.Error())
		}
		customer.SetAddress(addr)
	}
	if req.Metadata != nil {
		customer.SetProvenance(*req.Metadata)
	}

	customer.AddDomainEvent(partner.NewCustomerCreatedEvent(customer))

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer.PullDomainEvents()...)
	return customer, nil
}

// FindByID returns the customer or nil when it does not exist
func (s *CustomerService) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	if id == uuid.Nil {
		return nil, shared.NewValidationError("REQUIRED", "id", "customer id is required")
	}
	return s.customerRepo.FindByID(ctx, id)
}

// FindByCode returns the customer with the exact code or nil
func (s *CustomerService) FindByCode(ctx context.Context, code string) (*partner.Customer, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewValidationError("REQUIRED", "code", "customer code is required")
	}
	return s.customerRepo.FindByCode(ctx, code)
}

// FindAll returns a page of customers
func (s *CustomerService) FindAll(ctx context.Context, opts shared.ListOptions) (*shared.Paginated[partner.Customer], error) {
	opts = opts.Normalize()

	customers, err := s.customerRepo.FindAll(ctx, opts.Filter, opts.QueryOptions())
	if err != nil {
		return nil, err
	}
	total, err := s.customerRepo.Count(ctx, opts.Filter)
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []partner.Customer{}
	}
	return shared.NewPaginated(customers, total, opts.Page, opts.Limit), nil
}

// Update applies a partial update to a customer
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (_ *partner.Customer, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "update",
		telemetry.AttrCustomerID.String(id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	customer, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.NewValidationError("NOT_FOUND", "id", "customer "+id.String()+" not found")
	}

	var changed []string
	if req.Name != nil && strings.TrimSpace(*req.Name) != customer.Name {
		if err := customer.Rename(*req.Name); err != nil {
			return nil, err
		}
		changed = append(changed, "name")
	}
	if req.Email != nil || req.Phone != nil {
		oldEmail, oldPhone := customer.Email, customer.Phone
		email, phone := oldEmail, oldPhone
		if req.Email != nil {
			email = strings.TrimSpace(*req.Email)
		}
		if req.Phone != nil {
			phone = strings.TrimSpace(*req.Phone)
		}
		if email != oldEmail || phone != oldPhone {
			if err := customer.SetContact(email, phone); err != nil {
				return nil, err
			}
			if email != oldEmail {
				changed = append(changed, "email")
			}
			if phone != oldPhone {
				changed = append(changed, "phone")
			}
		}
	}
	if req.Address != nil {
		addr, err := req.Address.ToAddress()
		if err != nil {
			return nil, shared.NewValidationError("INVALID_ADDRESS", "address", err.Error())
		}
		if customer.Address == nil || !customer.Address.Equals(addr) {
			customer.SetAddress(addr)
			changed = append(changed, "address")
		}
	}

	if len(changed) == 0 {
		return customer, nil
	}

	customer.AddDomainEvent(partner.NewCustomerUpdatedEvent(customer, changed))
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer.PullDomainEvents()...)
	return customer, nil
}

func (s *CustomerService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish customer events", zap.Error(err))
	}
}
