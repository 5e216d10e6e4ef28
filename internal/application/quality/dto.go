package quality

import (
	"time"

	"github.com/google/uuid"
)

// CreateInspectionRequest represents a request to schedule a new inspection
type CreateInspectionRequest struct {
	Type          string     `json:"type" validate:"required,max=100"`
	ScheduledDate time.Time  `json:"scheduledDate" validate:"required"`
	CustomerID    uuid.UUID  `json:"customerId" validate:"required"`
	SupplierID    *uuid.UUID `json:"supplierId"`
	Notes         string     `json:"notes"`
}

// CompleteInspectionRequest carries the outcome of an inspection
type CompleteInspectionRequest struct {
	Result  string `json:"result" validate:"required,oneof=pass fail conditional"`
	Summary string `json:"summary"`
}

// AddFindingRequest represents a finding recorded during an inspection
type AddFindingRequest struct {
	Description string `json:"description" validate:"required"`
	Severity    string `json:"severity" validate:"required,oneof=low medium high"`
}
