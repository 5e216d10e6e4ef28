package integration

import (
	"errors"
	"strings"
)

// ---------------------------------------------------------------------------
// ERP Errors
// ---------------------------------------------------------------------------

var (
	ErrUnsupportedProvider   = errors.New("unsupported provider")
	ErrUnsupportedEntityType = errors.New("integration: unsupported entity type")
	ErrMissingRequiredField  = errors.New("integration: missing required field")
	ErrInvalidFieldValue     = errors.New("integration: invalid field value")
	ErrDiscriminatorMismatch = errors.New("integration: record belongs to a different entity type")
	ErrEntityTypeMismatch    = errors.New("integration: domain entity does not match entity type")
	ErrInvalidMappingTable   = errors.New("integration: invalid mapping table")
)

// ---------------------------------------------------------------------------
// Provider identifies an external ERP system
// ---------------------------------------------------------------------------

// Provider identifies an external ERP system
type Provider string

const (
	ProviderSAP    Provider = "sap"
	ProviderOracle Provider = "oracle"
)

// ParseProvider normalizes a configured provider key
func ParseProvider(s string) Provider {
	return Provider(strings.ToLower(strings.TrimSpace(s)))
}

// IsValid returns true if the provider is known
func (p Provider) IsValid() bool {
	switch p {
	case ProviderSAP, ProviderOracle:
		return true
	default:
		return false
	}
}

// String returns the string representation of Provider
func (p Provider) String() string {
	return string(p)
}

// SourceSystem returns the label stamped into domain provenance metadata
func (p Provider) SourceSystem() string {
	switch p {
	case ProviderSAP:
		return "SAP"
	case ProviderOracle:
		return "ORACLE"
	default:
		return strings.ToUpper(string(p))
	}
}

// ---------------------------------------------------------------------------
// EntityType names the domain aggregate a record maps to
// ---------------------------------------------------------------------------

// EntityType names the domain aggregate a record maps to
type EntityType string

const (
	EntityTypeSupplier EntityType = "supplier"
	EntityTypeCustomer EntityType = "customer"
)

// IsValid returns true if the entity type is known
func (e EntityType) IsValid() bool {
	return e == EntityTypeSupplier || e == EntityTypeCustomer
}

// String returns the string representation of EntityType
func (e EntityType) String() string {
	return string(e)
}

// ---------------------------------------------------------------------------
// ExternalRecord is a raw ERP record keyed by the provider's field names
// ---------------------------------------------------------------------------

// ExternalRecord is a raw ERP record keyed by the provider's field names
type ExternalRecord map[string]any

// Has returns true if the record carries a non-nil value for field
func (r ExternalRecord) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}
