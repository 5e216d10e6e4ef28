package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() MappingTable {
	return MappingTable{
		Provider:       ProviderSAP,
		EntityType:     EntityTypeSupplier,
		SourceIDField:  "CardCode",
		Discriminators: map[string]string{"CardType": "S"},
		Fields: []FieldMapping{
			{ExternalField: "CardCode", DomainPath: PathCode, Direction: DirectionBoth},
			{ExternalField: "CardName", DomainPath: PathName, Direction: DirectionBoth},
			{ExternalField: "ValidComment", DomainPath: PathNotes, Direction: DirectionInbound},
			{ExternalField: "FreeText", DomainPath: PathNotes, Direction: DirectionOutbound},
		},
	}
}

func TestMappingTable_Directions(t *testing.T) {
	table := sampleTable()
	require.NoError(t, table.Validate())

	assert.Len(t, table.Inbound(), 3)
	assert.Len(t, table.Outbound(), 3)

	field, ok := table.ExternalFieldFor(PathNotes)
	assert.True(t, ok)
	assert.Equal(t, "ValidComment", field)

	_, ok = table.ExternalFieldFor(PathCreditLimit)
	assert.False(t, ok)
}

func TestMappingTable_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MappingTable)
	}{
		{"unknown provider", func(m *MappingTable) { m.Provider = "netsuite" }},
		{"unknown entity", func(m *MappingTable) { m.EntityType = "invoice" }},
		{"no source id", func(m *MappingTable) { m.SourceIDField = "" }},
		{"bad direction", func(m *MappingTable) { m.Fields[0].Direction = "sideways" }},
		{"empty field", func(m *MappingTable) { m.Fields[1].ExternalField = "" }},
		{"duplicate inbound domain path", func(m *MappingTable) {
			m.Fields = append(m.Fields, FieldMapping{ExternalField: "CardFName", DomainPath: PathName, Direction: DirectionInbound})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := sampleTable()
			tt.mutate(&table)
			assert.ErrorIs(t, table.Validate(), ErrInvalidMappingTable)
		})
	}
}

func TestProvider(t *testing.T) {
	assert.Equal(t, ProviderSAP, ParseProvider(" SAP "))
	assert.True(t, ParseProvider("Oracle").IsValid())
	assert.False(t, ParseProvider("unknown").IsValid())
	assert.Equal(t, "SAP", ProviderSAP.SourceSystem())
	assert.Equal(t, "ORACLE", ProviderOracle.SourceSystem())
}

func TestExternalRecord_Has(t *testing.T) {
	r := ExternalRecord{"CardCode": "V001", "Phone1": nil}
	assert.True(t, r.Has("CardCode"))
	assert.False(t, r.Has("Phone1"))
	assert.False(t, r.Has("Cellular"))
}
