package quality

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/shared"
)

// InspectionStatus represents the lifecycle state of an inspection
type InspectionStatus string

const (
	InspectionStatusScheduled  InspectionStatus = "scheduled"
	InspectionStatusInProgress InspectionStatus = "in-progress"
	InspectionStatusCompleted  InspectionStatus = "completed"
	InspectionStatusCancelled  InspectionStatus = "cancelled"
)

// IsValid returns true for a known status
func (s InspectionStatus) IsValid() bool {
	switch s {
	case InspectionStatusScheduled, InspectionStatusInProgress, InspectionStatusCompleted, InspectionStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for completed and cancelled
func (s InspectionStatus) IsTerminal() bool {
	return s == InspectionStatusCompleted || s == InspectionStatusCancelled
}

// Severity grades a finding
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IsValid returns true for a known severity
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// InspectionResult is the outcome recorded on completion
type InspectionResult string

const (
	InspectionResultPass        InspectionResult = "pass"
	InspectionResultFail        InspectionResult = "fail"
	InspectionResultConditional InspectionResult = "conditional"
)

// IsValid returns true for a known result
func (r InspectionResult) IsValid() bool {
	switch r {
	case InspectionResultPass, InspectionResultFail, InspectionResultConditional:
		return true
	}
	return false
}

// Finding is an observation recorded during an inspection
type Finding struct {
	ID          uuid.UUID
	Description string
	Severity    Severity
	RecordedAt  time.Time
}

// NewFinding validates and creates a finding
func NewFinding(description string, severity Severity) (Finding, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Finding{}, shared.NewValidationError("REQUIRED", "description", "finding description is required")
	}
	if severity == "" {
		return Finding{}, shared.NewValidationError("REQUIRED", "severity", "finding severity is required")
	}
	if !severity.IsValid() {
		return Finding{}, shared.NewValidationError("INVALID_SEVERITY", "severity", "severity must be low, medium or high")
	}
	return Finding{
		ID:          uuid.New(),
		Description: description,
		Severity:    severity,
		RecordedAt:  time.Now(),
	}, nil
}

// CompletionDetails is recorded when an inspection completes
type CompletionDetails struct {
	Result      InspectionResult
	Summary     string
	CompletedAt time.Time
}

// NewCompletionDetails validates the outcome of an inspection
func NewCompletionDetails(result InspectionResult, summary string) (CompletionDetails, error) {
	if !result.IsValid() {
		return CompletionDetails{}, shared.NewValidationError("INVALID_RESULT", "result", "result must be pass, fail or conditional")
	}
	return CompletionDetails{
		Result:      result,
		Summary:     strings.TrimSpace(summary),
		CompletedAt: time.Now(),
	}, nil
}

// Inspection is the aggregate root for a quality inspection.
// Customer and supplier are references checked at creation, never owned.
type Inspection struct {
	shared.BaseAggregateRoot
	Type               string
	Status             InspectionStatus
	ScheduledDate      time.Time
	CustomerID         uuid.UUID
	SupplierID         *uuid.UUID
	Notes              string
	Findings           []Finding
	StartedAt          *time.Time
	CompletionDetails  *CompletionDetails
	CancellationReason string
}

// NewInspection creates a scheduled inspection
func NewInspection(inspectionType string, scheduledDate time.Time, customerID uuid.UUID, supplierID *uuid.UUID) (*Inspection, error) {
	inspectionType = strings.TrimSpace(inspectionType)
	if inspectionType == "" {
		return nil, shared.NewValidationError("REQUIRED", "type", "inspection type is required")
	}
	if scheduledDate.IsZero() {
		return nil, shared.NewValidationError("REQUIRED", "scheduledDate", "scheduled date is required")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("REQUIRED", "customerId", "customer id is required")
	}
	if supplierID != nil && *supplierID == uuid.Nil {
		supplierID = nil
	}

	return &Inspection{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              inspectionType,
		Status:            InspectionStatusScheduled,
		ScheduledDate:     scheduledDate,
		CustomerID:        customerID,
		SupplierID:        supplierID,
		Findings:          make([]Finding, 0),
	}, nil
}

// Reschedule moves a scheduled inspection to a new date
func (i *Inspection) Reschedule(date time.Time) error {
	if date.IsZero() {
		return shared.NewValidationError("REQUIRED", "scheduledDate", "scheduled date is required")
	}
	if err := i.requireStatus("reschedule", InspectionStatusScheduled); err != nil {
		return err
	}
	previous := i.ScheduledDate
	i.ScheduledDate = date
	i.touch()
	i.AddDomainEvent(NewInspectionScheduledEvent(i, previous))
	return nil
}

// Start begins a scheduled inspection
func (i *Inspection) Start() error {
	if err := i.requireStatus("start", InspectionStatusScheduled); err != nil {
		return err
	}
	now := time.Now()
	i.Status = InspectionStatusInProgress
	i.StartedAt = &now
	i.touch()
	i.AddDomainEvent(NewInspectionStartedEvent(i))
	return nil
}

// Complete finishes an in-progress inspection
func (i *Inspection) Complete(details CompletionDetails) error {
	if err := i.requireStatus("complete", InspectionStatusInProgress); err != nil {
		return err
	}
	i.Status = InspectionStatusCompleted
	i.CompletionDetails = &details
	i.touch()
	i.AddDomainEvent(NewInspectionCompletedEvent(i, details))
	return nil
}

// Cancel stops an inspection that has not reached a terminal state
func (i *Inspection) Cancel(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("REQUIRED", "reason", "cancellation reason is required")
	}
	if i.Status.IsTerminal() {
		return shared.NewValidationError("INVALID_STATE", "status",
			"cannot cancel an inspection that is "+string(i.Status))
	}
	i.Status = InspectionStatusCancelled
	i.CancellationReason = reason
	i.touch()
	i.AddDomainEvent(NewInspectionCancelledEvent(i, reason))
	return nil
}

// AddFinding records a finding. Cancelled inspections accept no findings.
func (i *Inspection) AddFinding(f Finding) error {
	if i.Status == InspectionStatusCancelled {
		return shared.NewValidationError("INVALID_STATE", "status", "cannot add findings to a cancelled inspection")
	}
	i.Findings = append(i.Findings, f)
	i.touch()
	i.AddDomainEvent(NewInspectionFindingAddedEvent(i, f))
	return nil
}

// HighestSeverity returns the most severe finding, or "" when there are none
func (i *Inspection) HighestSeverity() Severity {
	rank := map[Severity]int{SeverityLow: 1, SeverityMedium: 2, SeverityHigh: 3}
	var highest Severity
	for _, f := range i.Findings {
		if rank[f.Severity] > rank[highest] {
			highest = f.Severity
		}
	}
	return highest
}

// Snapshot returns a deep copy suitable for event payloads
func (i *Inspection) Snapshot() Inspection {
	cp := *i
	cp.ClearDomainEvents()
	cp.Findings = append([]Finding(nil), i.Findings...)
	if i.SupplierID != nil {
		id := *i.SupplierID
		cp.SupplierID = &id
	}
	if i.StartedAt != nil {
		at := *i.StartedAt
		cp.StartedAt = &at
	}
	if i.CompletionDetails != nil {
		d := *i.CompletionDetails
		cp.CompletionDetails = &d
	}
	return cp
}

func (i *Inspection) requireStatus(action string, allowed ...InspectionStatus) error {
	for _, s := range allowed {
		if i.Status == s {
			return nil
		}
	}
	return shared.NewValidationError("INVALID_STATE", "status",
		"cannot "+action+" an inspection that is "+string(i.Status))
}

func (i *Inspection) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}
