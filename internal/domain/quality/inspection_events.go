package quality

import (
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/shared"
)

// Aggregate type constant for Inspection
const AggregateTypeInspection = "Inspection"

// Event type constants for Inspection
const (
	EventTypeInspectionCreated      = "inspection.created"
	EventTypeInspectionScheduled    = "inspection.scheduled"
	EventTypeInspectionStarted      = "inspection.started"
	EventTypeInspectionCompleted    = "inspection.completed"
	EventTypeInspectionCancelled    = "inspection.cancelled"
	EventTypeInspectionFindingAdded = "inspection.finding.added"
)

// InspectionCreatedEvent is published when an inspection is created
type InspectionCreatedEvent struct {
	shared.BaseDomainEvent
	Inspection Inspection `json:"inspection"`
}

// NewInspectionCreatedEvent creates a new InspectionCreatedEvent
func NewInspectionCreatedEvent(i *Inspection) *InspectionCreatedEvent {
	return &InspectionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInspectionCreated, AggregateTypeInspection, i.ID),
		Inspection:      i.Snapshot(),
	}
}

// InspectionScheduledEvent is published when an inspection is rescheduled
type InspectionScheduledEvent struct {
	shared.BaseDomainEvent
	InspectionID      uuid.UUID `json:"inspectionId"`
	ScheduledDate     time.Time `json:"scheduledDate"`
	PreviousScheduled time.Time `json:"previousScheduledDate"`
}

// NewInspectionScheduledEvent creates a new InspectionScheduledEvent
func NewInspectionScheduledEvent(i *Inspection, previous time.Time) *InspectionScheduledEvent {
	return &InspectionScheduledEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeInspectionScheduled, AggregateTypeInspection, i.ID),
		InspectionID:      i.ID,
		ScheduledDate:     i.ScheduledDate,
		PreviousScheduled: previous,
	}
}

// InspectionStartedEvent is published when an inspection starts
type InspectionStartedEvent struct {
	shared.BaseDomainEvent
	InspectionID uuid.UUID `json:"inspectionId"`
	StartedAt    time.Time `json:"startedAt"`
}

// NewInspectionStartedEvent creates a new InspectionStartedEvent
func NewInspectionStartedEvent(i *Inspection) *InspectionStartedEvent {
	evt := &InspectionStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInspectionStarted, AggregateTypeInspection, i.ID),
		InspectionID:    i.ID,
	}
	if i.StartedAt != nil {
		evt.StartedAt = *i.StartedAt
	}
	return evt
}

// InspectionCompletedEvent is published when an inspection completes
type InspectionCompletedEvent struct {
	shared.BaseDomainEvent
	InspectionID      uuid.UUID         `json:"inspectionId"`
	CompletionDetails CompletionDetails `json:"completionDetails"`
	FindingCount      int               `json:"findingCount"`
	HighestSeverity   Severity          `json:"highestSeverity,omitempty"`
}

// NewInspectionCompletedEvent creates a new InspectionCompletedEvent
func NewInspectionCompletedEvent(i *Inspection, details CompletionDetails) *InspectionCompletedEvent {
	return &InspectionCompletedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeInspectionCompleted, AggregateTypeInspection, i.ID),
		InspectionID:      i.ID,
		CompletionDetails: details,
		FindingCount:      len(i.Findings),
		HighestSeverity:   i.HighestSeverity(),
	}
}

// InspectionCancelledEvent is published when an inspection is cancelled
type InspectionCancelledEvent struct {
	shared.BaseDomainEvent
	InspectionID uuid.UUID `json:"inspectionId"`
	Reason       string    `json:"reason"`
}

// NewInspectionCancelledEvent creates a new InspectionCancelledEvent
func NewInspectionCancelledEvent(i *Inspection, reason string) *InspectionCancelledEvent {
	return &InspectionCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInspectionCancelled, AggregateTypeInspection, i.ID),
		InspectionID:    i.ID,
		Reason:          reason,
	}
}

// InspectionFindingAddedEvent is published when a finding is recorded
type InspectionFindingAddedEvent struct {
	shared.BaseDomainEvent
	InspectionID uuid.UUID `json:"inspectionId"`
	Finding      Finding   `json:"finding"`
}

// NewInspectionFindingAddedEvent creates a new InspectionFindingAddedEvent
func NewInspectionFindingAddedEvent(i *Inspection, f Finding) *InspectionFindingAddedEvent {
	return &InspectionFindingAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInspectionFindingAdded, AggregateTypeInspection, i.ID),
		InspectionID:    i.ID,
		Finding:         f,
	}
}
