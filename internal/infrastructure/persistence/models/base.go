package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/domain/shared/valueobject"
)

// AggregateModel provides the persistence fields shared by aggregate roots
type AggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
	Version   int       `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates the model from a domain aggregate root
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt.UTC()
	m.UpdatedAt = a.UpdatedAt.UTC()
	m.Version = a.Version
}

// ToDomainAggregateRoot rebuilds the domain aggregate root fields
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
}

// Time columns are stored in UTC. sqlite compares them as text, so a stored
// offset other than the query bound's would break range filters.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// AddressColumns flattens an optional valueobject.Address into columns
type AddressColumns struct {
	Street     string `gorm:"type:varchar(200)"`
	City       string `gorm:"type:varchar(100)"`
	State      string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`
	Country    string `gorm:"type:varchar(100)"`
}

// FromDomain copies addr, clearing the columns when addr is nil
func (c *AddressColumns) FromDomain(addr *valueobject.Address) {
	if addr == nil {
		*c = AddressColumns{}
		return
	}
	c.Street = addr.Street()
	c.City = addr.City()
	c.State = addr.State()
	c.PostalCode = addr.PostalCode()
	c.Country = addr.Country()
}

// ToDomain returns nil when no address was stored
func (c AddressColumns) ToDomain() *valueobject.Address {
	if c == (AddressColumns{}) {
		return nil
	}
	addr, err := valueobject.NewAddressFull(c.Street, c.City, c.State, c.PostalCode, c.Country)
	if err != nil {
		return nil
	}
	return &addr
}

// SourceColumns stores the provenance of records imported from an ERP
type SourceColumns struct {
	SourceSystem string `gorm:"type:varchar(20)"`
	SourceID     string `gorm:"type:varchar(100)"`
}

func (c *SourceColumns) FromDomain(meta shared.SourceMetadata) {
	c.SourceSystem = meta.SourceSystem
	c.SourceID = meta.SourceID
}

func (c SourceColumns) ToDomain() shared.SourceMetadata {
	return shared.SourceMetadata{SourceSystem: c.SourceSystem, SourceID: c.SourceID}
}

// StringList is a []string stored as a JSON array in a text column
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("StringList: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("StringList: %w", err)
	}
	*l = out
	return nil
}
