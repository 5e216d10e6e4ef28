package partner

import (
	"context"

	"github.com/qms/backend/internal/domain/shared"
)

// Filter keys understood by CustomerRepository implementations
const (
	CustomerFilterCode = "code"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	shared.Repository[Customer]

	// FindByCode finds a customer by its exact code, (nil, nil) when absent
	FindByCode(ctx context.Context, code string) (*Customer, error)
}
