package integration

import (
	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/shared"
)

// DomainEntity is an aggregate that can cross the ERP boundary
type DomainEntity interface {
	GetID() uuid.UUID
	Provenance() shared.SourceMetadata
}

// TranslationFailure explains why one record of a batch produced no entity
type TranslationFailure struct {
	Index    int
	SourceID string
	Err      error
}

// Reason returns the failure message
func (f TranslationFailure) Reason() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// Translator converts between one provider's records and domain aggregates.
// Implementations are pure: they perform no I/O.
type Translator interface {
	// Provider returns the provider this translator serves
	Provider() Provider

	// TranslateToDomain maps a record to a domain entity stamped with its
	// provenance. It returns nil, never an error, for a malformed record.
	TranslateToDomain(entityType EntityType, record ExternalRecord) DomainEntity

	// TranslateFromDomain maps a domain entity to a provider record,
	// including provider discriminator fields.
	TranslateFromDomain(entityType EntityType, entity DomainEntity) (ExternalRecord, error)

	// BatchTranslateToDomain maps every record; failed slots hold nil
	BatchTranslateToDomain(entityType EntityType, records []ExternalRecord) []DomainEntity

	// BatchTranslateWithDiagnostics is BatchTranslateToDomain plus the
	// reason for each nil slot.
	BatchTranslateWithDiagnostics(entityType EntityType, records []ExternalRecord) ([]DomainEntity, []TranslationFailure)
}

// TranslatorFactory selects a translator by provider
type TranslatorFactory interface {
	Create(provider string) (Translator, error)
	CreateFromConfig() (Translator, error)
}
