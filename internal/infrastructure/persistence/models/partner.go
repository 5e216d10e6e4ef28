package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// SupplierModel is the persistence model for the Supplier aggregate
type SupplierModel struct {
	AggregateModel
	Code        string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_suppliers_code"`
	Name        string                 `gorm:"type:varchar(200);not null;index"`
	Status      partner.SupplierStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	Email       string                 `gorm:"type:varchar(200)"`
	Phone       string                 `gorm:"type:varchar(50)"`
	MobilePhone string                 `gorm:"type:varchar(50)"`
	Notes       string                 `gorm:"type:text"`
	AddressColumns
	Tags         StringList      `gorm:"type:text;not null;default:'[]'"`
	PaymentTerms string          `gorm:"type:varchar(50)"`
	TaxCode      string          `gorm:"type:varchar(50)"`
	CreditLimit  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SourceColumns

	Contacts       []SupplierContactModel       `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE"`
	Qualifications []SupplierQualificationModel `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// SupplierContactModel stores one contact owned by a supplier
type SupplierContactModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index"`
	Position   int       `gorm:"not null"`
	Name       string    `gorm:"type:varchar(200);not null"`
	Email      string    `gorm:"type:varchar(200)"`
	Phone      string    `gorm:"type:varchar(50)"`
	Role       string    `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (SupplierContactModel) TableName() string {
	return "supplier_contacts"
}

// SupplierQualificationModel stores one qualification held by a supplier
type SupplierQualificationModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SupplierID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Position    int        `gorm:"not null"`
	Type        string     `gorm:"type:varchar(100);not null;index"`
	IssuingBody string     `gorm:"type:varchar(200);not null"`
	ValidFrom   time.Time  `gorm:"not null"`
	ValidUntil  *time.Time
}

// TableName returns the table name for GORM
func (SupplierQualificationModel) TableName() string {
	return "supplier_qualifications"
}

// SupplierModelFromDomain creates a persistence model, children included
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		Code:         s.Code,
		Name:         s.Name,
		Status:       s.Status,
		Email:        s.Email,
		Phone:        s.Phone,
		MobilePhone:  s.MobilePhone,
		Notes:        s.Notes,
		Tags:         StringList(append([]string{}, s.Tags...)),
		PaymentTerms: s.PaymentTerms,
		TaxCode:      s.TaxCode,
		CreditLimit:  s.CreditLimit,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.AddressColumns.FromDomain(s.Address)
	m.SourceColumns.FromDomain(s.Metadata)

	m.Contacts = make([]SupplierContactModel, len(s.Contacts))
	for i, c := range s.Contacts {
		m.Contacts[i] = SupplierContactModel{
			ID:         c.ID,
			SupplierID: s.ID,
			Position:   i,
			Name:       c.Name,
			Email:      c.Email,
			Phone:      c.Phone,
			Role:       c.Role,
		}
	}
	m.Qualifications = make([]SupplierQualificationModel, len(s.Qualifications))
	for i, q := range s.Qualifications {
		m.Qualifications[i] = SupplierQualificationModel{
			ID:          q.ID,
			SupplierID:  s.ID,
			Position:    i,
			Type:        q.Type,
			IssuingBody: q.IssuingBody,
			ValidFrom:   q.ValidFrom.UTC(),
			ValidUntil:  utcPtr(q.ValidUntil),
		}
	}
	return m
}

// ToDomain converts the model to a Supplier. Children must be loaded
// ordered by position.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	s := &partner.Supplier{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Status:            m.Status,
		Email:             m.Email,
		Phone:             m.Phone,
		MobilePhone:       m.MobilePhone,
		Notes:             m.Notes,
		Address:           m.AddressColumns.ToDomain(),
		Contacts:          make([]partner.Contact, 0, len(m.Contacts)),
		Qualifications:    make([]partner.Qualification, 0, len(m.Qualifications)),
		Tags:              append([]string{}, m.Tags...),
		PaymentTerms:      m.PaymentTerms,
		TaxCode:           m.TaxCode,
		CreditLimit:       m.CreditLimit,
		Metadata:          m.SourceColumns.ToDomain(),
	}
	for _, c := range m.Contacts {
		s.Contacts = append(s.Contacts, partner.Contact{
			ID:    c.ID,
			Name:  c.Name,
			Email: c.Email,
			Phone: c.Phone,
			Role:  c.Role,
		})
	}
	for _, q := range m.Qualifications {
		s.Qualifications = append(s.Qualifications, partner.Qualification{
			ID:          q.ID,
			Type:        q.Type,
			IssuingBody: q.IssuingBody,
			ValidFrom:   q.ValidFrom,
			ValidUntil:  q.ValidUntil,
		})
	}
	return s
}

// CustomerModel is the persistence model for the Customer aggregate
type CustomerModel struct {
	AggregateModel
	Code  string `gorm:"type:varchar(50);not null;uniqueIndex:idx_customers_code"`
	Name  string `gorm:"type:varchar(200);not null;index"`
	Email string `gorm:"type:varchar(200)"`
	Phone string `gorm:"type:varchar(50)"`
	AddressColumns
	SourceColumns
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// CustomerModelFromDomain creates a persistence model from a Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Code:  c.Code,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.AddressColumns.FromDomain(c.Address)
	m.SourceColumns.FromDomain(c.Metadata)
	return m
}

// ToDomain converts the model to a Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.AddressColumns.ToDomain(),
		Metadata:          m.SourceColumns.ToDomain(),
	}
}
