package acl

import (
	"strings"

	"github.com/qms/backend/internal/domain/integration"
	"github.com/qms/backend/internal/domain/partner"
	"github.com/spf13/cast"
)

// UnknownSourceID is returned by GetOracleSourceID for entity types that
// have no Oracle identity column
const UnknownSourceID = "unknown"

// OracleTranslator translates Oracle E-Business Suite supplier and customer records
type OracleTranslator struct {
	tableTranslator
}

var _ integration.Translator = (*OracleTranslator)(nil)

// NewOracleTranslator creates a translator for Oracle E-Business Suite
func NewOracleTranslator() *OracleTranslator {
	t := &OracleTranslator{
		tableTranslator: newTableTranslator(integration.ProviderOracle, oracleSupplierTable, oracleCustomerTable),
	}
	t.sourceID = func(entityType integration.EntityType, record integration.ExternalRecord) string {
		id := GetOracleSourceID(entityType, record)
		if id == UnknownSourceID {
			return ""
		}
		return id
	}
	return t
}

// GetOracleSourceID picks the identity column for the entity type: VENDOR_ID
// for suppliers and CUST_ACCOUNT_ID for customers. Unrecognized entity types
// yield UnknownSourceID; a recognized type without the column yields "".
func GetOracleSourceID(entityType integration.EntityType, record integration.ExternalRecord) string {
	var column string
	switch entityType {
	case integration.EntityTypeSupplier:
		column = "VENDOR_ID"
	case integration.EntityTypeCustomer:
		column = "CUST_ACCOUNT_ID"
	default:
		return UnknownSourceID
	}
	if !record.Has(column) {
		return ""
	}
	id, err := cast.ToStringE(record[column])
	if err != nil {
		return ""
	}
	return strings.TrimSpace(id)
}

// EnrichDomainEntity merges supplier attributes held outside the main vendor
// record (payment terms, tax reference, credit limit) into an already
// translated supplier. Only attributes present in attrs are applied. It
// reports whether the entity was enriched; entities that are not suppliers
// and attributes that fail validation leave the entity unchanged.
func (t *OracleTranslator) EnrichDomainEntity(entity integration.DomainEntity, attrs integration.ExternalRecord) bool {
	supplier, ok := entity.(*partner.Supplier)
	if !ok || supplier == nil || len(attrs) == 0 {
		return false
	}
	values, err := readInbound(oracleEnrichmentFields, attrs)
	if err != nil || len(values) == 0 {
		return false
	}
	return applySupplierDetails(supplier, values) == nil
}
