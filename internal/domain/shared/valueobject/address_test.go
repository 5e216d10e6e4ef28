package valueobject

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	tests := []struct {
		name    string
		street  string
		city    string
		country string
		opts    []AddressOption
		wantErr error
	}{
		{
			name:    "valid address with required fields",
			street:  "1 Main Street",
			city:    "Springfield",
			country: "US",
		},
		{
			name:    "valid address with state and postal code",
			street:  "221B Baker Street",
			city:    "London",
			country: "UK",
			opts:    []AddressOption{WithState("Greater London"), WithPostalCode("NW1 6XE")},
		},
		{
			name:    "missing street",
			city:    "Springfield",
			country: "US",
			wantErr: ErrAddressStreetRequired,
		},
		{
			name:    "missing city",
			street:  "1 Main Street",
			country: "US",
			wantErr: ErrAddressCityRequired,
		},
		{
			name:    "blank country",
			street:  "1 Main Street",
			city:    "Springfield",
			country: "   ",
			wantErr: ErrAddressCountryRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := NewAddress(tt.street, tt.city, tt.country, tt.opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, addr.IsEmpty())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.street), addr.Street())
			assert.Equal(t, tt.city, addr.City())
			assert.Equal(t, tt.country, addr.Country())
		})
	}
}

func TestNewAddress_LengthLimits(t *testing.T) {
	_, err := NewAddress(strings.Repeat("x", 201), "City", "US")
	assert.Error(t, err)

	_, err = NewAddress("Street", "City", "US", WithPostalCode(strings.Repeat("9", 21)))
	assert.Error(t, err)
}

func TestAddress_Equals(t *testing.T) {
	a := MustNewAddress("1 Main Street", "Springfield", "US", WithState("IL"), WithPostalCode("62701"))
	b := MustNewAddress(" 1 Main Street ", "Springfield", "US", WithState("IL"), WithPostalCode("62701"))
	c := MustNewAddress("1 Main Street", "Springfield", "US", WithState("IL"))

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestAddress_WithMethodsReturnNewInstance(t *testing.T) {
	original := MustNewAddress("1 Main Street", "Springfield", "US")

	moved, err := original.WithCity("Chicago")
	require.NoError(t, err)

	assert.Equal(t, "Springfield", original.City())
	assert.Equal(t, "Chicago", moved.City())

	_, err = original.WithCountry("")
	assert.ErrorIs(t, err, ErrAddressCountryRequired)
}

func TestAddress_FullAddress(t *testing.T) {
	addr := MustNewAddress("1 Main Street", "Springfield", "US", WithState("IL"), WithPostalCode("62701"))
	assert.Equal(t, "1 Main Street, Springfield, IL 62701, US", addr.FullAddress())

	bare := MustNewAddress("1 Main Street", "Springfield", "US")
	assert.Equal(t, "1 Main Street, Springfield, US", bare.String())

	assert.Equal(t, "", Address{}.FullAddress())
}

func TestAddress_JSON(t *testing.T) {
	addr := MustNewAddress("1 Main Street", "Springfield", "US", WithPostalCode("62701"))

	data, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"street":"1 Main Street","city":"Springfield","postalCode":"62701","country":"US"}`, string(data))

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, addr.Equals(decoded))

	var invalid Address
	assert.Error(t, json.Unmarshal([]byte(`{"street":"x","city":"y"}`), &invalid))

	var empty Address
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.IsEmpty())
}
