package partner

import (
	"context"

	"github.com/qms/backend/internal/domain/shared"
)

// Filter keys understood by SupplierRepository implementations
const (
	SupplierFilterStatus            = "status"
	SupplierFilterCode              = "code"
	SupplierFilterQualificationType = "qualificationType"
	SupplierFilterTag               = "tag"
)

// SupplierRepository defines the interface for supplier persistence.
// Contacts and qualifications are saved and deleted together with the supplier.
type SupplierRepository interface {
	shared.Repository[Supplier]

	// FindByCode finds a supplier by its exact, case-sensitive code.
	// Returns (nil, nil) when no supplier has the code.
	FindByCode(ctx context.Context, code string) (*Supplier, error)
}
