package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive      SupplierStatus = "active"
	SupplierStatusInactive    SupplierStatus = "inactive"
	SupplierStatusBlacklisted SupplierStatus = "blacklisted"
)

// IsValid returns true for a known status
func (s SupplierStatus) IsValid() bool {
	switch s {
	case SupplierStatusActive, SupplierStatusInactive, SupplierStatusBlacklisted:
		return true
	}
	return false
}

// String returns the string representation
func (s SupplierStatus) String() string {
	return string(s)
}

// Supplier is the aggregate root for a supplier of goods or services.
// It exclusively owns its contacts and qualifications.
type Supplier struct {
	shared.BaseAggregateRoot
	Code           string
	Name           string
	Status         SupplierStatus
	Email          string
	Phone          string
	MobilePhone    string
	Notes          string
	Address        *valueobject.Address
	Contacts       []Contact
	Qualifications []Qualification
	Tags           []string
	PaymentTerms   string
	TaxCode        string
	CreditLimit    decimal.Decimal
	Metadata       shared.SourceMetadata
}

// NewSupplier creates an active supplier with the required fields
func NewSupplier(code, name string) (*Supplier, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateCode(code); err != nil {
		return nil, err
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Status:            SupplierStatusActive,
		Contacts:          make([]Contact, 0),
		Qualifications:    make([]Qualification, 0),
		Tags:              make([]string, 0),
		CreditLimit:       decimal.Zero,
	}, nil
}

// SupplierDetails carries optional detail updates; nil fields are left alone
type SupplierDetails struct {
	Name         *string
	Code         *string
	Email        *string
	Phone        *string
	MobilePhone  *string
	Notes        *string
	Tags         *[]string
	PaymentTerms *string
	TaxCode      *string
	CreditLimit  *decimal.Decimal
}

// UpdateDetails applies the provided detail fields and returns the names of
// the fields whose value actually changed. Nothing is modified on error.
func (s *Supplier) UpdateDetails(d SupplierDetails) ([]string, error) {
	for _, f := range []**string{&d.Name, &d.Code, &d.Email, &d.Phone, &d.MobilePhone, &d.Notes, &d.PaymentTerms, &d.TaxCode} {
		if *f != nil {
			v := strings.TrimSpace(**f)
			*f = &v
		}
	}

	if d.Name != nil {
		if err := validateName(*d.Name); err != nil {
			return nil, err
		}
	}
	if d.Code != nil {
		if err := validateCode(*d.Code); err != nil {
			return nil, err
		}
	}
	if d.Email != nil {
		if err := validateEmail("email", *d.Email); err != nil {
			return nil, err
		}
	}
	if d.Phone != nil {
		if err := validatePhone("phone", *d.Phone); err != nil {
			return nil, err
		}
	}
	if d.MobilePhone != nil {
		if err := validatePhone("mobilePhone", *d.MobilePhone); err != nil {
			return nil, err
		}
	}
	if d.CreditLimit != nil && d.CreditLimit.IsNegative() {
		return nil, shared.NewValidationError("INVALID_CREDIT_LIMIT", "creditLimit", "credit limit cannot be negative")
	}

	var changed []string
	setString := func(field string, target *string, value *string) {
		if value == nil {
			return
		}
		if *target != *value {
			*target = *value
			changed = append(changed, field)
		}
	}
	setString("name", &s.Name, d.Name)
	setString("code", &s.Code, d.Code)
	setString("email", &s.Email, d.Email)
	setString("phone", &s.Phone, d.Phone)
	setString("mobilePhone", &s.MobilePhone, d.MobilePhone)
	setString("notes", &s.Notes, d.Notes)
	setString("paymentTerms", &s.PaymentTerms, d.PaymentTerms)
	setString("taxCode", &s.TaxCode, d.TaxCode)

	if d.CreditLimit != nil && !s.CreditLimit.Equal(*d.CreditLimit) {
		s.CreditLimit = *d.CreditLimit
		changed = append(changed, "creditLimit")
	}
	if d.Tags != nil {
		tags := normalizeTags(*d.Tags)
		if !equalStrings(s.Tags, tags) {
			s.Tags = tags
			changed = append(changed, "tags")
		}
	}

	if len(changed) > 0 {
		s.touch()
	}
	return changed, nil
}

// UpdateAddress replaces the address, reporting whether it changed
func (s *Supplier) UpdateAddress(addr valueobject.Address) bool {
	if s.Address != nil && s.Address.Equals(addr) {
		return false
	}
	s.Address = &addr
	s.touch()
	return true
}

// Activate activates the supplier
func (s *Supplier) Activate() error {
	return s.transition(SupplierStatusActive)
}

// Deactivate deactivates the supplier
func (s *Supplier) Deactivate() error {
	return s.transition(SupplierStatusInactive)
}

// Blacklist blocks the supplier from further business
func (s *Supplier) Blacklist() error {
	return s.transition(SupplierStatusBlacklisted)
}

// ChangeStatus dispatches to exactly one of Activate, Deactivate or Blacklist
func (s *Supplier) ChangeStatus(status SupplierStatus) error {
	switch status {
	case SupplierStatusActive:
		return s.Activate()
	case SupplierStatusInactive:
		return s.Deactivate()
	case SupplierStatusBlacklisted:
		return s.Blacklist()
	default:
		return shared.NewValidationError("INVALID_STATUS", "status", "unknown supplier status: "+string(status))
	}
}

func (s *Supplier) transition(to SupplierStatus) error {
	if s.Status == to {
		return shared.NewValidationError("INVALID_STATE", "status", "supplier is already "+string(to))
	}
	s.Status = to
	s.touch()
	return nil
}

// AddContact appends a contact and records a contact-added event
func (s *Supplier) AddContact(contact Contact) {
	s.Contacts = append(s.Contacts, contact)
	s.touch()
	s.AddDomainEvent(NewSupplierContactAddedEvent(s, contact))
}

// AddQualification appends a qualification and records a qualification-added event
func (s *Supplier) AddQualification(q Qualification) {
	s.Qualifications = append(s.Qualifications, q)
	s.touch()
	s.AddDomainEvent(NewSupplierQualificationAddedEvent(s, q))
}

// AddTags merges tags into the set, keeping first-seen spelling
func (s *Supplier) AddTags(tags ...string) {
	merged := normalizeTags(append(append([]string{}, s.Tags...), tags...))
	if !equalStrings(s.Tags, merged) {
		s.Tags = merged
		s.touch()
	}
}

// SetProvenance records the external system the supplier was imported from
func (s *Supplier) SetProvenance(meta shared.SourceMetadata) {
	s.Metadata = meta
}

// Provenance returns the external source of the supplier, if any
func (s *Supplier) Provenance() shared.SourceMetadata {
	return s.Metadata
}

// Snapshot returns a deep copy suitable for event payloads
func (s *Supplier) Snapshot() Supplier {
	cp := *s
	cp.ClearDomainEvents()
	if s.Address != nil {
		addr := *s.Address
		cp.Address = &addr
	}
	cp.Contacts = append([]Contact(nil), s.Contacts...)
	cp.Qualifications = make([]Qualification, len(s.Qualifications))
	for i, q := range s.Qualifications {
		cp.Qualifications[i] = q.clone()
	}
	cp.Tags = append([]string(nil), s.Tags...)
	return cp
}

func (s *Supplier) touch() {
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Contact is a person reachable at a supplier
type Contact struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
	Role  string
}

// NewContact validates and creates a contact. A name and at least one of
// email or phone are required.
func NewContact(name, email, phone, role string) (Contact, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)

	if name == "" {
		return Contact{}, shared.NewValidationError("REQUIRED", "name", "contact name is required")
	}
	if email == "" && phone == "" {
		return Contact{}, shared.NewValidationError("REQUIRED", "email", "contact requires an email or a phone")
	}
	if err := validateEmail("email", email); err != nil {
		return Contact{}, err
	}
	if err := validatePhone("phone", phone); err != nil {
		return Contact{}, err
	}

	return Contact{
		ID:    uuid.New(),
		Name:  name,
		Email: email,
		Phone: phone,
		Role:  strings.TrimSpace(role),
	}, nil
}

// Qualification is a certification held by a supplier
type Qualification struct {
	ID          uuid.UUID
	Type        string
	IssuingBody string
	ValidFrom   time.Time
	ValidUntil  *time.Time
}

// NewQualification validates and creates a qualification.
// A nil validUntil means the qualification does not expire.
func NewQualification(qualificationType, issuingBody string, validFrom time.Time, validUntil *time.Time) (Qualification, error) {
	qualificationType = strings.TrimSpace(qualificationType)
	issuingBody = strings.TrimSpace(issuingBody)

	if qualificationType == "" {
		return Qualification{}, shared.NewValidationError("REQUIRED", "type", "qualification type is required")
	}
	if issuingBody == "" {
		return Qualification{}, shared.NewValidationError("REQUIRED", "issuingBody", "issuing body is required")
	}
	if validFrom.IsZero() {
		validFrom = time.Now()
	}
	if validUntil != nil && validUntil.Before(validFrom) {
		return Qualification{}, shared.NewValidationError("INVALID_VALIDITY", "validUntil", "validity cannot end before it starts")
	}

	return Qualification{
		ID:          uuid.New(),
		Type:        qualificationType,
		IssuingBody: issuingBody,
		ValidFrom:   validFrom,
		ValidUntil:  validUntil,
	}, nil
}

func (q Qualification) clone() Qualification {
	if q.ValidUntil != nil {
		until := *q.ValidUntil
		q.ValidUntil = &until
	}
	return q
}

// foldTag returns the case-folded key of a tag. Casers are stateful, so a
// new one is created per call.
func foldTag(tag string) string {
	return cases.Fold().String(tag)
}

// normalizeTags trims, drops blanks and removes case-insensitive duplicates
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := foldTag(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
