package integration

import "fmt"

// Direction says which way a field mapping applies
type Direction string

const (
	DirectionInbound  Direction = "inbound"  // ERP -> domain only
	DirectionOutbound Direction = "outbound" // domain -> ERP only
	DirectionBoth     Direction = "both"
)

// IsValid returns true if the direction is known
func (d Direction) IsValid() bool {
	return d == DirectionInbound || d == DirectionOutbound || d == DirectionBoth
}

// Inbound returns true if the mapping is applied when reading ERP records
func (d Direction) Inbound() bool {
	return d == DirectionInbound || d == DirectionBoth
}

// Outbound returns true if the mapping is applied when writing ERP records
func (d Direction) Outbound() bool {
	return d == DirectionOutbound || d == DirectionBoth
}

// Domain paths addressable by mapping tables
const (
	PathCode              = "code"
	PathName              = "name"
	PathEmail             = "email"
	PathPhone             = "phone"
	PathMobilePhone       = "mobilePhone"
	PathNotes             = "notes"
	PathTaxCode           = "taxCode"
	PathPaymentTerms      = "paymentTerms"
	PathCreditLimit       = "creditLimit"
	PathAddressStreet     = "address.street"
	PathAddressCity       = "address.city"
	PathAddressState      = "address.state"
	PathAddressPostalCode = "address.postalCode"
	PathAddressCountry    = "address.country"
)

// FieldMapping maps one external field to one domain path
type FieldMapping struct {
	ExternalField string
	DomainPath    string
	Direction     Direction
}

// MappingTable is the declarative mapping for one (provider, entity type).
// SourceIDField names the column holding the record's identity in the ERP.
// Discriminators are stamped on outbound records and, when present on an
// inbound record, must match.
type MappingTable struct {
	Provider       Provider
	EntityType     EntityType
	SourceIDField  string
	Discriminators map[string]string
	Fields         []FieldMapping
}

// Inbound returns the mappings applied when reading ERP records
func (t MappingTable) Inbound() []FieldMapping {
	out := make([]FieldMapping, 0, len(t.Fields))
	for _, f := range t.Fields {
		if f.Direction.Inbound() {
			out = append(out, f)
		}
	}
	return out
}

// Outbound returns the mappings applied when writing ERP records
func (t MappingTable) Outbound() []FieldMapping {
	out := make([]FieldMapping, 0, len(t.Fields))
	for _, f := range t.Fields {
		if f.Direction.Outbound() {
			out = append(out, f)
		}
	}
	return out
}

// ExternalFieldFor returns the inbound external field mapped to domainPath
func (t MappingTable) ExternalFieldFor(domainPath string) (string, bool) {
	for _, f := range t.Inbound() {
		if f.DomainPath == domainPath {
			return f.ExternalField, true
		}
	}
	return "", false
}

// Validate checks that the table is well formed: known provider and entity
// type, valid directions, and no field mapped twice in the same direction.
func (t MappingTable) Validate() error {
	if !t.Provider.IsValid() {
		return fmt.Errorf("%w: provider %q", ErrInvalidMappingTable, t.Provider)
	}
	if !t.EntityType.IsValid() {
		return fmt.Errorf("%w: entity type %q", ErrInvalidMappingTable, t.EntityType)
	}
	if t.SourceIDField == "" {
		return fmt.Errorf("%w: %s/%s has no source id field", ErrInvalidMappingTable, t.Provider, t.EntityType)
	}

	inExternal := make(map[string]bool)
	inDomain := make(map[string]bool)
	outExternal := make(map[string]bool)
	outDomain := make(map[string]bool)
	for _, f := range t.Fields {
		if f.ExternalField == "" || f.DomainPath == "" {
			return fmt.Errorf("%w: %s/%s has an empty mapping", ErrInvalidMappingTable, t.Provider, t.EntityType)
		}
		if !f.Direction.IsValid() {
			return fmt.Errorf("%w: %s has direction %q", ErrInvalidMappingTable, f.ExternalField, f.Direction)
		}
		if f.Direction.Inbound() {
			if inExternal[f.ExternalField] || inDomain[f.DomainPath] {
				return fmt.Errorf("%w: %s -> %s mapped twice inbound", ErrInvalidMappingTable, f.ExternalField, f.DomainPath)
			}
			inExternal[f.ExternalField] = true
			inDomain[f.DomainPath] = true
		}
		if f.Direction.Outbound() {
			if outExternal[f.ExternalField] || outDomain[f.DomainPath] {
				return fmt.Errorf("%w: %s -> %s mapped twice outbound", ErrInvalidMappingTable, f.ExternalField, f.DomainPath)
			}
			outExternal[f.ExternalField] = true
			outDomain[f.DomainPath] = true
		}
	}
	return nil
}
