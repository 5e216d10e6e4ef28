package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/partner"
	"github.com/qms/backend/internal/domain/quality"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList(t *testing.T) {
	v, err := StringList{"iso9001", "Preferred"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["iso9001","Preferred"]`, v)

	v, err = StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var l StringList
	require.NoError(t, l.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringList{"a", "b"}, l)
	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)
	require.NoError(t, l.Scan(""))
	assert.Empty(t, l)
	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("{not json"))
}

func TestAddressColumns(t *testing.T) {
	var c AddressColumns
	c.FromDomain(nil)
	assert.Nil(t, c.ToDomain())

	addr := valueobject.MustNewAddress("1 Main St", "Springfield", "US", valueobject.WithPostalCode("12345"))
	c.FromDomain(&addr)
	got := c.ToDomain()
	require.NotNil(t, got)
	assert.True(t, got.Equals(addr))

	c.FromDomain(nil)
	assert.Equal(t, AddressColumns{}, c)
}

func TestSupplierModel_RoundTrip(t *testing.T) {
	s, err := partner.NewSupplier("V001", "Acme Metals")
	require.NoError(t, err)
	s.Email = "ops@acme.test"
	s.CreditLimit = decimal.RequireFromString("2500.50")
	s.AddTags("steel", "Preferred")
	s.UpdateAddress(valueobject.MustNewAddress("1 Main St", "Springfield", "US"))
	s.SetProvenance(shared.SourceMetadata{SourceSystem: "SAP", SourceID: "V001"})

	contact, err := partner.NewContact("Jane Doe", "jane@acme.test", "", "buyer")
	require.NoError(t, err)
	s.AddContact(contact)
	until := time.Now().AddDate(1, 0, 0)
	qual, err := partner.NewQualification("ISO9001", "TUV", time.Now(), &until)
	require.NoError(t, err)
	s.AddQualification(qual)

	m := SupplierModelFromDomain(s)
	assert.Equal(t, s.ID, m.ID)
	require.Len(t, m.Contacts, 1)
	assert.Equal(t, s.ID, m.Contacts[0].SupplierID)
	assert.Equal(t, 0, m.Qualifications[0].Position)

	back := m.ToDomain()
	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.Version, back.Version)
	assert.Equal(t, s.Code, back.Code)
	assert.Equal(t, s.Tags, back.Tags)
	assert.True(t, s.CreditLimit.Equal(back.CreditLimit))
	assert.True(t, s.Address.Equals(*back.Address))
	assert.Equal(t, s.Contacts, back.Contacts)
	assert.Equal(t, s.Qualifications[0].ID, back.Qualifications[0].ID)
	assert.Equal(t, "SAP", back.Metadata.SourceSystem)
	assert.Empty(t, back.GetDomainEvents())
}

func TestCustomerModel_RoundTrip(t *testing.T) {
	c, err := partner.NewCustomer("C100", "Globex")
	require.NoError(t, err)
	require.NoError(t, c.SetContact("qa@globex.test", "+1 555 0100"))

	back := CustomerModelFromDomain(c).ToDomain()
	assert.Equal(t, c.ID, back.ID)
	assert.Equal(t, "qa@globex.test", back.Email)
	assert.Nil(t, back.Address)
	assert.True(t, back.Metadata.IsEmpty())
}

func TestInspectionModel_RoundTrip(t *testing.T) {
	supplierID := uuid.New()
	i, err := quality.NewInspection("incoming", time.Now().Add(24*time.Hour), uuid.New(), &supplierID)
	require.NoError(t, err)
	require.NoError(t, i.Start())
	finding, err := quality.NewFinding("scratched surface", quality.SeverityLow)
	require.NoError(t, err)
	require.NoError(t, i.AddFinding(finding))
	details, err := quality.NewCompletionDetails(quality.InspectionResultConditional, "minor defects")
	require.NoError(t, err)
	require.NoError(t, i.Complete(details))

	m := InspectionModelFromDomain(i)
	require.NotNil(t, m.Result)
	assert.Equal(t, quality.InspectionResultConditional, *m.Result)

	back := m.ToDomain()
	assert.Equal(t, quality.InspectionStatusCompleted, back.Status)
	assert.Equal(t, &supplierID, back.SupplierID)
	require.NotNil(t, back.CompletionDetails)
	assert.Equal(t, "minor defects", back.CompletionDetails.Summary)
	require.Len(t, back.Findings, 1)
	assert.Equal(t, finding.ID, back.Findings[0].ID)

	scheduled, err := quality.NewInspection("audit", time.Now(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Nil(t, InspectionModelFromDomain(scheduled).ToDomain().CompletionDetails)
}
