package acl

import "github.com/qms/backend/internal/domain/integration"

// SAPTranslator translates SAP Business One business partner records
type SAPTranslator struct {
	tableTranslator
}

var _ integration.Translator = (*SAPTranslator)(nil)

// NewSAPTranslator creates a translator for SAP Business One
func NewSAPTranslator() *SAPTranslator {
	return &SAPTranslator{
		tableTranslator: newTableTranslator(integration.ProviderSAP, sapSupplierTable, sapCustomerTable),
	}
}
