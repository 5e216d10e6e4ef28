package partner

import (
	"time"

	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Supplier DTOs
// =============================================================================

// CreateSupplierRequest represents a request to create a new supplier
type CreateSupplierRequest struct {
	Code         string                  `json:"code" validate:"required,max=50"`
	Name         string                  `json:"name" validate:"required,max=200"`
	Email        string                  `json:"email" validate:"omitempty,email,max=200"`
	Phone        string                  `json:"phone" validate:"max=50"`
	MobilePhone  string                  `json:"mobilePhone" validate:"max=50"`
	Notes        string                  `json:"notes"`
	Status       string                  `json:"status" validate:"omitempty,oneof=active inactive blacklisted"`
	Address      *valueobject.AddressDTO `json:"address"`
	Tags         []string                `json:"tags" validate:"omitempty,dive,max=50"`
	PaymentTerms string                  `json:"paymentTerms" validate:"max=100"`
	TaxCode      string                  `json:"taxCode" validate:"max=50"`
	CreditLimit  *decimal.Decimal        `json:"creditLimit"`
	Metadata     *shared.SourceMetadata  `json:"metadata"`
}

// UpdateSupplierRequest represents a request to update a supplier.
// Nil fields are left unchanged.
type UpdateSupplierRequest struct {
	Code         *string                 `json:"code" validate:"omitempty,min=1,max=50"`
	Name         *string                 `json:"name" validate:"omitempty,min=1,max=200"`
	Email        *string                 `json:"email" validate:"omitempty,max=200"`
	Phone        *string                 `json:"phone" validate:"omitempty,max=50"`
	MobilePhone  *string                 `json:"mobilePhone" validate:"omitempty,max=50"`
	Notes        *string                 `json:"notes"`
	Status       *string                 `json:"status" validate:"omitempty,oneof=active inactive blacklisted"`
	Address      *valueobject.AddressDTO `json:"address"`
	Tags         *[]string               `json:"tags"`
	PaymentTerms *string                 `json:"paymentTerms" validate:"omitempty,max=100"`
	TaxCode      *string                 `json:"taxCode" validate:"omitempty,max=50"`
	CreditLimit  *decimal.Decimal        `json:"creditLimit"`
}

// AddContactRequest represents a request to add a contact to a supplier.
// At least one of email or phone is required.
type AddContactRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"omitempty,email,max=200"`
	Phone string `json:"phone" validate:"max=50"`
	Role  string `json:"role" validate:"max=100"`
}

// AddQualificationRequest represents a request to record a qualification
type AddQualificationRequest struct {
	Type        string     `json:"type" validate:"required,max=100"`
	IssuingBody string     `json:"issuingBody" validate:"required,max=200"`
	ValidFrom   time.Time  `json:"validFrom"`
	ValidUntil  *time.Time `json:"validUntil"`
}

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Code     string                  `json:"code" validate:"required,max=50"`
	Name     string                  `json:"name" validate:"required,max=200"`
	Email    string                  `json:"email" validate:"omitempty,email,max=200"`
	Phone    string                  `json:"phone" validate:"max=50"`
	Address  *valueobject.AddressDTO `json:"address"`
	Metadata *shared.SourceMetadata  `json:"metadata"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	Name    *string                 `json:"name" validate:"omitempty,min=1,max=200"`
	Email   *string                 `json:"email" validate:"omitempty,max=200"`
	Phone   *string                 `json:"phone" validate:"omitempty,max=50"`
	Address *valueobject.AddressDTO `json:"address"`
}
