package partner

import "github.com/qms/backend/internal/domain/shared"

// Aggregate type constant for Customer
const AggregateTypeCustomer = "Customer"

// Event type constants for Customer
const (
	EventTypeCustomerCreated = "customer.created"
	EventTypeCustomerUpdated = "customer.updated"
)

// CustomerCreatedEvent is published when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Customer Customer `json:"customer"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(customer *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, customer.ID),
		Customer:        customer.Snapshot(),
	}
}

// CustomerUpdatedEvent is published when a customer is updated
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	Customer      Customer `json:"customer"`
	ChangedFields []string `json:"changedFields"`
}

// NewCustomerUpdatedEvent creates a new CustomerUpdatedEvent
func NewCustomerUpdatedEvent(customer *Customer, changedFields []string) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerUpdated, AggregateTypeCustomer, customer.ID),
		Customer:        customer.Snapshot(),
		ChangedFields:   append([]string(nil), changedFields...),
	}
}
