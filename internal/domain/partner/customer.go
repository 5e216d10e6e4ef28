package partner

import (
	"strings"
	"time"

	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/domain/shared/valueobject"
)

// Customer is the party an inspection is performed for.
// Inspections reference customers by id only.
type Customer struct {
	shared.BaseAggregateRoot
	Code     string
	Name     string
	Email    string
	Phone    string
	Address  *valueobject.Address
	Metadata shared.SourceMetadata
}

// NewCustomer creates a new customer with required fields
func NewCustomer(code, name string) (*Customer, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateCode(code); err != nil {
		return nil, err
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
	}, nil
}

// SetContact sets email and phone
func (c *Customer) SetContact(email, phone string) error {
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if err := validateEmail("email", email); err != nil {
		return err
	}
	if err := validatePhone("phone", phone); err != nil {
		return err
	}
	c.Email = email
	c.Phone = phone
	c.touch()
	return nil
}

// Rename changes the customer's display name
func (c *Customer) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	c.Name = name
	c.touch()
	return nil
}

// SetAddress replaces the customer's address
func (c *Customer) SetAddress(addr valueobject.Address) {
	c.Address = &addr
	c.touch()
}

// SetProvenance records the external system the customer was imported from
func (c *Customer) SetProvenance(meta shared.SourceMetadata) {
	c.Metadata = meta
}

// Provenance returns the external source of the customer, if any
func (c *Customer) Provenance() shared.SourceMetadata {
	return c.Metadata
}

// Snapshot returns a copy suitable for event payloads
func (c *Customer) Snapshot() Customer {
	cp := *c
	cp.ClearDomainEvents()
	if c.Address != nil {
		addr := *c.Address
		cp.Address = &addr
	}
	return cp
}

func (c *Customer) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
