package acl

import "github.com/qms/backend/internal/domain/integration"

func both(external, path string) integration.FieldMapping {
	return integration.FieldMapping{ExternalField: external, DomainPath: path, Direction: integration.DirectionBoth}
}

// SAP Business One business partner (OCRD) tables. Suppliers and customers
// share the table and are told apart by CardType.
var (
	sapSupplierTable = integration.MappingTable{
		Provider:       integration.ProviderSAP,
		EntityType:     integration.EntityTypeSupplier,
		SourceIDField:  "CardCode",
		Discriminators: map[string]string{"CardType": "S"},
		Fields: []integration.FieldMapping{
			both("CardCode", integration.PathCode),
			both("CardName", integration.PathName),
			both("EmailAddress", integration.PathEmail),
			both("Phone1", integration.PathPhone),
			both("Cellular", integration.PathMobilePhone),
			both("Address", integration.PathAddressStreet),
			both("City", integration.PathAddressCity),
			both("State", integration.PathAddressState),
			both("ZipCode", integration.PathAddressPostalCode),
			both("Country", integration.PathAddressCountry),
			both("FederalTaxID", integration.PathTaxCode),
			both("Notes", integration.PathNotes),
			both("PayTermsGrpCode", integration.PathPaymentTerms),
			both("CreditLimit", integration.PathCreditLimit),
		},
	}

	sapCustomerTable = integration.MappingTable{
		Provider:       integration.ProviderSAP,
		EntityType:     integration.EntityTypeCustomer,
		SourceIDField:  "CardCode",
		Discriminators: map[string]string{"CardType": "C"},
		Fields: []integration.FieldMapping{
			both("CardCode", integration.PathCode),
			both("CardName", integration.PathName),
			both("EmailAddress", integration.PathEmail),
			both("Phone1", integration.PathPhone),
			both("Address", integration.PathAddressStreet),
			both("City", integration.PathAddressCity),
			both("State", integration.PathAddressState),
			both("ZipCode", integration.PathAddressPostalCode),
			both("Country", integration.PathAddressCountry),
		},
	}
)

// Oracle E-Business Suite tables: suppliers from AP_SUPPLIERS joined with the
// primary site, customers from HZ_CUST_ACCOUNTS joined with HZ_PARTIES.
var (
	oracleSupplierTable = integration.MappingTable{
		Provider:       integration.ProviderOracle,
		EntityType:     integration.EntityTypeSupplier,
		SourceIDField:  "VENDOR_ID",
		Discriminators: map[string]string{"VENDOR_TYPE_LOOKUP_CODE": "VENDOR"},
		Fields: []integration.FieldMapping{
			both("SEGMENT1", integration.PathCode),
			both("VENDOR_NAME", integration.PathName),
			both("EMAIL_ADDRESS", integration.PathEmail),
			both("PHONE", integration.PathPhone),
			both("MOBILE_PHONE", integration.PathMobilePhone),
			both("ADDRESS_LINE1", integration.PathAddressStreet),
			both("CITY", integration.PathAddressCity),
			both("STATE", integration.PathAddressState),
			both("POSTAL_CODE", integration.PathAddressPostalCode),
			both("COUNTRY", integration.PathAddressCountry),
			both("TERMS_NAME", integration.PathPaymentTerms),
			both("TAX_REFERENCE", integration.PathTaxCode),
			both("CREDIT_LIMIT", integration.PathCreditLimit),
			both("ATTRIBUTE1", integration.PathNotes),
		},
	}

	oracleCustomerTable = integration.MappingTable{
		Provider:       integration.ProviderOracle,
		EntityType:     integration.EntityTypeCustomer,
		SourceIDField:  "CUST_ACCOUNT_ID",
		Discriminators: map[string]string{"PARTY_TYPE": "ORGANIZATION"},
		Fields: []integration.FieldMapping{
			both("ACCOUNT_NUMBER", integration.PathCode),
			both("PARTY_NAME", integration.PathName),
			both("EMAIL_ADDRESS", integration.PathEmail),
			both("PRIMARY_PHONE_NUMBER", integration.PathPhone),
			both("ADDRESS1", integration.PathAddressStreet),
			both("CITY", integration.PathAddressCity),
			both("STATE", integration.PathAddressState),
			both("POSTAL_CODE", integration.PathAddressPostalCode),
			both("COUNTRY", integration.PathAddressCountry),
		},
	}
)

// oracleEnrichmentFields are the supplier attributes EnrichDomainEntity merges
var oracleEnrichmentFields = []integration.FieldMapping{
	{ExternalField: "TERMS_NAME", DomainPath: integration.PathPaymentTerms, Direction: integration.DirectionInbound},
	{ExternalField: "TAX_REFERENCE", DomainPath: integration.PathTaxCode, Direction: integration.DirectionInbound},
	{ExternalField: "CREDIT_LIMIT", DomainPath: integration.PathCreditLimit, Direction: integration.DirectionInbound},
}

// MappingTables returns every built-in table. Callers get copies of the
// slice but share the FieldMapping values, which are never mutated.
func MappingTables() []integration.MappingTable {
	return []integration.MappingTable{
		sapSupplierTable,
		sapCustomerTable,
		oracleSupplierTable,
		oracleCustomerTable,
	}
}
