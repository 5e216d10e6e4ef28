package partner

import (
	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/shared"
)

// Aggregate type constant for Supplier
const AggregateTypeSupplier = "Supplier"

// Event type constants for Supplier
const (
	EventTypeSupplierCreated            = "supplier.created"
	EventTypeSupplierUpdated            = "supplier.updated"
	EventTypeSupplierDeleted            = "supplier.deleted"
	EventTypeSupplierContactAdded       = "supplier.contact.added"
	EventTypeSupplierQualificationAdded = "supplier.qualification.added"
)

// SupplierCreatedEvent is published when a new supplier is created
type SupplierCreatedEvent struct {
	shared.BaseDomainEvent
	Supplier Supplier `json:"supplier"`
}

// NewSupplierCreatedEvent creates a new SupplierCreatedEvent
func NewSupplierCreatedEvent(supplier *Supplier) *SupplierCreatedEvent {
	return &SupplierCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierCreated, AggregateTypeSupplier, supplier.ID),
		Supplier:        supplier.Snapshot(),
	}
}

// SupplierUpdatedEvent is published when a supplier is updated.
// ChangedFields lists the top-level fields that changed.
type SupplierUpdatedEvent struct {
	shared.BaseDomainEvent
	Supplier      Supplier `json:"supplier"`
	ChangedFields []string `json:"changedFields"`
}

// NewSupplierUpdatedEvent creates a new SupplierUpdatedEvent
func NewSupplierUpdatedEvent(supplier *Supplier, changedFields []string) *SupplierUpdatedEvent {
	return &SupplierUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierUpdated, AggregateTypeSupplier, supplier.ID),
		Supplier:        supplier.Snapshot(),
		ChangedFields:   append([]string(nil), changedFields...),
	}
}

// SupplierDeletedEvent is published when a supplier is deleted
type SupplierDeletedEvent struct {
	shared.BaseDomainEvent
	SupplierID uuid.UUID `json:"supplierId"`
	Code       string    `json:"code"`
}

// NewSupplierDeletedEvent creates a new SupplierDeletedEvent
func NewSupplierDeletedEvent(supplier *Supplier) *SupplierDeletedEvent {
	return &SupplierDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierDeleted, AggregateTypeSupplier, supplier.ID),
		SupplierID:      supplier.ID,
		Code:            supplier.Code,
	}
}

// SupplierContactAddedEvent is published when a contact is added to a supplier
type SupplierContactAddedEvent struct {
	shared.BaseDomainEvent
	SupplierID uuid.UUID `json:"supplierId"`
	Contact    Contact   `json:"contact"`
}

// NewSupplierContactAddedEvent creates a new SupplierContactAddedEvent
func NewSupplierContactAddedEvent(supplier *Supplier, contact Contact) *SupplierContactAddedEvent {
	return &SupplierContactAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierContactAdded, AggregateTypeSupplier, supplier.ID),
		SupplierID:      supplier.ID,
		Contact:         contact,
	}
}

// SupplierQualificationAddedEvent is published when a qualification is recorded
type SupplierQualificationAddedEvent struct {
	shared.BaseDomainEvent
	SupplierID    uuid.UUID     `json:"supplierId"`
	Qualification Qualification `json:"qualification"`
}

// NewSupplierQualificationAddedEvent creates a new SupplierQualificationAddedEvent
func NewSupplierQualificationAddedEvent(supplier *Supplier, q Qualification) *SupplierQualificationAddedEvent {
	return &SupplierQualificationAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierQualificationAdded, AggregateTypeSupplier, supplier.ID),
		SupplierID:      supplier.ID,
		Qualification:   q.clone(),
	}
}
