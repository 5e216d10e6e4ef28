package quality

import "github.com/qms/backend/internal/domain/shared"

// Filter keys understood by InspectionRepository implementations.
// ScheduledFrom and ScheduledTo bound scheduledDate inclusively.
const (
	InspectionFilterStatus        = "status"
	InspectionFilterType          = "type"
	InspectionFilterCustomerID    = "customerId"
	InspectionFilterSupplierID    = "supplierId"
	InspectionFilterScheduledFrom = "scheduledFrom"
	InspectionFilterScheduledTo   = "scheduledTo"
)

// InspectionRepository defines the interface for inspection persistence.
// Findings are saved together with their inspection.
type InspectionRepository interface {
	shared.Repository[Inspection]
}
