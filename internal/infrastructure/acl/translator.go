// Package acl implements the anti-corruption layer between external ERP
// systems and the domain model. Translators are driven by declarative
// mapping tables and perform no I/O.
package acl

import (
	"fmt"
	"strings"

	"github.com/qms/backend/internal/domain/integration"
	"github.com/qms/backend/internal/domain/partner"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// sourceIDFunc resolves the external identity of a record
type sourceIDFunc func(entityType integration.EntityType, record integration.ExternalRecord) string

// tableTranslator is the mapping-table engine shared by every provider
type tableTranslator struct {
	provider integration.Provider
	tables   map[integration.EntityType]integration.MappingTable
	sourceID sourceIDFunc
}

func newTableTranslator(provider integration.Provider, tables ...integration.MappingTable) tableTranslator {
	t := tableTranslator{
		provider: provider,
		tables:   make(map[integration.EntityType]integration.MappingTable, len(tables)),
	}
	for _, table := range tables {
		if err := table.Validate(); err != nil {
			panic(err)
		}
		t.tables[table.EntityType] = table
	}
	t.sourceID = t.sourceIDFromTable
	return t
}

// Provider returns the provider this translator serves
func (t tableTranslator) Provider() integration.Provider {
	return t.provider
}

// TranslateToDomain maps record to a domain entity or returns nil when the
// record cannot produce a valid one.
func (t tableTranslator) TranslateToDomain(entityType integration.EntityType, record integration.ExternalRecord) integration.DomainEntity {
	entity, err := t.toDomain(entityType, record)
	if err != nil {
		return nil
	}
	return entity
}

// BatchTranslateToDomain translates every record; failed slots hold nil
func (t tableTranslator) BatchTranslateToDomain(entityType integration.EntityType, records []integration.ExternalRecord) []integration.DomainEntity {
	out, _ := t.BatchTranslateWithDiagnostics(entityType, records)
	return out
}

// BatchTranslateWithDiagnostics translates every record and reports why each
// nil slot failed
func (t tableTranslator) BatchTranslateWithDiagnostics(entityType integration.EntityType, records []integration.ExternalRecord) ([]integration.DomainEntity, []integration.TranslationFailure) {
	out := make([]integration.DomainEntity, len(records))
	var failures []integration.TranslationFailure
	for i, record := range records {
		entity, err := t.toDomain(entityType, record)
		if err != nil {
			failures = append(failures, integration.TranslationFailure{
				Index:    i,
				SourceID: t.sourceID(entityType, record),
				Err:      err,
			})
			continue
		}
		out[i] = entity
	}
	return out, failures
}

// TranslateFromDomain maps a domain entity to a provider record including
// the table's discriminator fields
func (t tableTranslator) TranslateFromDomain(entityType integration.EntityType, entity integration.DomainEntity) (integration.ExternalRecord, error) {
	table, ok := t.tables[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrUnsupportedEntityType, entityType)
	}

	values, err := domainValues(entityType, entity)
	if err != nil {
		return nil, err
	}

	record := make(integration.ExternalRecord, len(table.Fields)+len(table.Discriminators)+1)
	for _, m := range table.Outbound() {
		if v, ok := values[m.DomainPath]; ok && v != "" {
			record[m.ExternalField] = v
		}
	}
	for field, value := range table.Discriminators {
		record[field] = value
	}
	if meta := entity.Provenance(); meta.SourceSystem == t.provider.SourceSystem() && meta.SourceID != "" {
		if _, set := record[table.SourceIDField]; !set {
			record[table.SourceIDField] = meta.SourceID
		}
	}
	return record, nil
}

// toDomain is the error-returning translation behind the nil-degrading API
func (t tableTranslator) toDomain(entityType integration.EntityType, record integration.ExternalRecord) (entity integration.DomainEntity, err error) {
	defer func() {
		if r := recover(); r != nil {
			entity = nil
			err = fmt.Errorf("%w: %v", integration.ErrInvalidFieldValue, r)
		}
	}()

	table, ok := t.tables[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrUnsupportedEntityType, entityType)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: empty record", integration.ErrMissingRequiredField)
	}

	for field, want := range table.Discriminators {
		if !record.Has(field) {
			continue
		}
		got, err := cast.ToStringE(record[field])
		if err != nil || !strings.EqualFold(strings.TrimSpace(got), want) {
			return nil, fmt.Errorf("%w: %s=%v", integration.ErrDiscriminatorMismatch, field, record[field])
		}
	}

	values, err := readInbound(table.Inbound(), record)
	if err != nil {
		return nil, err
	}
	for _, path := range []string{integration.PathCode, integration.PathName} {
		if values[path] == "" {
			field, _ := table.ExternalFieldFor(path)
			return nil, fmt.Errorf("%w: %s", integration.ErrMissingRequiredField, field)
		}
	}

	meta := shared.SourceMetadata{
		SourceSystem: t.provider.SourceSystem(),
		SourceID:     t.sourceID(entityType, record),
	}
	if meta.SourceID == "" {
		meta.SourceID = values[integration.PathCode]
	}

	switch entityType {
	case integration.EntityTypeSupplier:
		supplier, err := buildSupplier(values, meta)
		if err != nil {
			return nil, err
		}
		return supplier, nil
	case integration.EntityTypeCustomer:
		customer, err := buildCustomer(values, meta)
		if err != nil {
			return nil, err
		}
		return customer, nil
	default:
		return nil, fmt.Errorf("%w: %s", integration.ErrUnsupportedEntityType, entityType)
	}
}

// sourceIDFromTable reads the table's source id column
func (t tableTranslator) sourceIDFromTable(entityType integration.EntityType, record integration.ExternalRecord) string {
	table, ok := t.tables[entityType]
	if !ok || !record.Has(table.SourceIDField) {
		return ""
	}
	id, err := cast.ToStringE(record[table.SourceIDField])
	if err != nil {
		return ""
	}
	return strings.TrimSpace(id)
}

// readInbound collects the string value of every mapped field present on the record
func readInbound(mappings []integration.FieldMapping, record integration.ExternalRecord) (map[string]string, error) {
	values := make(map[string]string, len(mappings))
	for _, m := range mappings {
		if !record.Has(m.ExternalField) {
			continue
		}
		s, err := cast.ToStringE(record[m.ExternalField])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", integration.ErrInvalidFieldValue, m.ExternalField, err)
		}
		values[m.DomainPath] = strings.TrimSpace(s)
	}
	return values, nil
}

func buildSupplier(values map[string]string, meta shared.SourceMetadata) (*partner.Supplier, error) {
	supplier, err := partner.NewSupplier(values[integration.PathCode], values[integration.PathName])
	if err != nil {
		return nil, err
	}
	if err := applySupplierDetails(supplier, values); err != nil {
		return nil, err
	}
	addr, ok, err := addressFrom(values)
	if err != nil {
		return nil, err
	}
	if ok {
		supplier.UpdateAddress(addr)
	}
	supplier.SetProvenance(meta)
	return supplier, nil
}

// applySupplierDetails applies the optional supplier paths present in values
func applySupplierDetails(supplier *partner.Supplier, values map[string]string) error {
	d := partner.SupplierDetails{
		Email:        optional(values, integration.PathEmail),
		Phone:        optional(values, integration.PathPhone),
		MobilePhone:  optional(values, integration.PathMobilePhone),
		Notes:        optional(values, integration.PathNotes),
		PaymentTerms: optional(values, integration.PathPaymentTerms),
		TaxCode:      optional(values, integration.PathTaxCode),
	}
	if raw := values[integration.PathCreditLimit]; raw != "" {
		limit, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("%w: credit limit %q", integration.ErrInvalidFieldValue, raw)
		}
		d.CreditLimit = &limit
	}
	_, err := supplier.UpdateDetails(d)
	return err
}

func buildCustomer(values map[string]string, meta shared.SourceMetadata) (*partner.Customer, error) {
	customer, err := partner.NewCustomer(values[integration.PathCode], values[integration.PathName])
	if err != nil {
		return nil, err
	}
	if email, phone := values[integration.PathEmail], values[integration.PathPhone]; email != "" || phone != "" {
		if err := customer.SetContact(email, phone); err != nil {
			return nil, err
		}
	}
	addr, ok, err := addressFrom(values)
	if err != nil {
		return nil, err
	}
	if ok {
		customer.SetAddress(addr)
	}
	customer.SetProvenance(meta)
	return customer, nil
}

// addressFrom builds an address when any address path is present
func addressFrom(values map[string]string) (valueobject.Address, bool, error) {
	dto := valueobject.AddressDTO{
		Street:     values[integration.PathAddressStreet],
		City:       values[integration.PathAddressCity],
		State:      values[integration.PathAddressState],
		PostalCode: values[integration.PathAddressPostalCode],
		Country:    values[integration.PathAddressCountry],
	}
	if dto.IsEmpty() {
		return valueobject.Address{}, false, nil
	}
	addr, err := dto.ToAddress()
	if err != nil {
		return valueobject.Address{}, false, err
	}
	return addr, true, nil
}

// domainValues flattens an entity into domain paths
func domainValues(entityType integration.EntityType, entity integration.DomainEntity) (map[string]string, error) {
	switch entityType {
	case integration.EntityTypeSupplier:
		s, ok := entity.(*partner.Supplier)
		if !ok || s == nil {
			return nil, fmt.Errorf("%w: expected *partner.Supplier, got %T", integration.ErrEntityTypeMismatch, entity)
		}
		values := map[string]string{
			integration.PathCode:         s.Code,
			integration.PathName:         s.Name,
			integration.PathEmail:        s.Email,
			integration.PathPhone:        s.Phone,
			integration.PathMobilePhone:  s.MobilePhone,
			integration.PathNotes:        s.Notes,
			integration.PathPaymentTerms: s.PaymentTerms,
			integration.PathTaxCode:      s.TaxCode,
		}
		if !s.CreditLimit.IsZero() {
			values[integration.PathCreditLimit] = s.CreditLimit.String()
		}
		addAddress(values, s.Address)
		return values, nil
	case integration.EntityTypeCustomer:
		c, ok := entity.(*partner.Customer)
		if !ok || c == nil {
			return nil, fmt.Errorf("%w: expected *partner.Customer, got %T", integration.ErrEntityTypeMismatch, entity)
		}
		values := map[string]string{
			integration.PathCode:  c.Code,
			integration.PathName:  c.Name,
			integration.PathEmail: c.Email,
			integration.PathPhone: c.Phone,
		}
		addAddress(values, c.Address)
		return values, nil
	default:
		return nil, fmt.Errorf("%w: %s", integration.ErrUnsupportedEntityType, entityType)
	}
}

func addAddress(values map[string]string, addr *valueobject.Address) {
	if addr == nil {
		return
	}
	values[integration.PathAddressStreet] = addr.Street()
	values[integration.PathAddressCity] = addr.City()
	values[integration.PathAddressState] = addr.State()
	values[integration.PathAddressPostalCode] = addr.PostalCode()
	values[integration.PathAddressCountry] = addr.Country()
}

func optional(values map[string]string, path string) *string {
	v, ok := values[path]
	if !ok {
		return nil
	}
	return &v
}
