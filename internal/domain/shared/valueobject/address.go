package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Address validation errors
var (
	ErrAddressStreetRequired  = errors.New("address: street is required")
	ErrAddressCityRequired    = errors.New("address: city is required")
	ErrAddressCountryRequired = errors.New("address: country is required")
)

const (
	maxStreetLength     = 200
	maxCityLength       = 100
	maxStateLength      = 100
	maxPostalCodeLength = 20
	maxCountryLength    = 100
)

// Address is a value object representing a postal address.
// It is immutable: all operations return new Address instances.
// Street, city and country are required; state and postal code are optional.
type Address struct {
	street     string
	city       string
	state      string
	postalCode string
	country    string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithState sets the state or province
func WithState(state string) AddressOption {
	return func(a *Address) {
		a.state = strings.TrimSpace(state)
	}
}

// WithPostalCode sets the postal code for the address
func WithPostalCode(postalCode string) AddressOption {
	return func(a *Address) {
		a.postalCode = strings.TrimSpace(postalCode)
	}
}

// NewAddress creates a new Address with the required fields
func NewAddress(street, city, country string, opts ...AddressOption) (Address, error) {
	addr := Address{
		street:  strings.TrimSpace(street),
		city:    strings.TrimSpace(city),
		country: strings.TrimSpace(country),
	}
	for _, opt := range opts {
		opt(&addr)
	}
	if err := addr.validate(); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// NewAddressFull creates a new Address from all five components
func NewAddressFull(street, city, state, postalCode, country string) (Address, error) {
	return NewAddress(street, city, country, WithState(state), WithPostalCode(postalCode))
}

// MustNewAddress creates a new Address, panics on error
func MustNewAddress(street, city, country string, opts ...AddressOption) Address {
	addr, err := NewAddress(street, city, country, opts...)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) validate() error {
	if a.street == "" {
		return ErrAddressStreetRequired
	}
	if a.city == "" {
		return ErrAddressCityRequired
	}
	if a.country == "" {
		return ErrAddressCountryRequired
	}
	if len(a.street) > maxStreetLength {
		return fmt.Errorf("address: street cannot exceed %d characters", maxStreetLength)
	}
	if len(a.city) > maxCityLength {
		return fmt.Errorf("address: city cannot exceed %d characters", maxCityLength)
	}
	if len(a.state) > maxStateLength {
		return fmt.Errorf("address: state cannot exceed %d characters", maxStateLength)
	}
	if len(a.postalCode) > maxPostalCodeLength {
		return fmt.Errorf("address: postal code cannot exceed %d characters", maxPostalCodeLength)
	}
	if len(a.country) > maxCountryLength {
		return fmt.Errorf("address: country cannot exceed %d characters", maxCountryLength)
	}
	return nil
}

// Street returns the street line
func (a Address) Street() string {
	return a.street
}

// City returns the city
func (a Address) City() string {
	return a.city
}

// State returns the state or province
func (a Address) State() string {
	return a.state
}

// PostalCode returns the postal code
func (a Address) PostalCode() string {
	return a.postalCode
}

// Country returns the country
func (a Address) Country() string {
	return a.country
}

// IsEmpty returns true for the zero Address
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// FullAddress returns the address formatted on one line.
// Format: Street, City, State PostalCode, Country
func (a Address) FullAddress() string {
	if a.IsEmpty() {
		return ""
	}
	parts := []string{a.street, a.city}
	region := strings.TrimSpace(a.state + " " + a.postalCode)
	if region != "" {
		parts = append(parts, region)
	}
	parts = append(parts, a.country)
	return strings.Join(parts, ", ")
}

// String returns a string representation of the address
func (a Address) String() string {
	return a.FullAddress()
}

// Equals returns true if both addresses have identical components
func (a Address) Equals(other Address) bool {
	return a == other
}

// WithStreet returns a new Address with the updated street
func (a Address) WithStreet(street string) (Address, error) {
	return NewAddressFull(street, a.city, a.state, a.postalCode, a.country)
}

// WithCity returns a new Address with the updated city
func (a Address) WithCity(city string) (Address, error) {
	return NewAddressFull(a.street, city, a.state, a.postalCode, a.country)
}

// WithUpdatedState returns a new Address with the updated state
func (a Address) WithUpdatedState(state string) (Address, error) {
	return NewAddressFull(a.street, a.city, state, a.postalCode, a.country)
}

// WithUpdatedPostalCode returns a new Address with the updated postal code
func (a Address) WithUpdatedPostalCode(postalCode string) (Address, error) {
	return NewAddressFull(a.street, a.city, a.state, postalCode, a.country)
}

// WithCountry returns a new Address with the updated country
func (a Address) WithCountry(country string) (Address, error) {
	return NewAddressFull(a.street, a.city, a.state, a.postalCode, country)
}

// AddressDTO is the plain representation used for JSON and persistence
type AddressDTO struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
}

// ToDTO converts Address to AddressDTO
func (a Address) ToDTO() AddressDTO {
	return AddressDTO{
		Street:     a.street,
		City:       a.city,
		State:      a.state,
		PostalCode: a.postalCode,
		Country:    a.country,
	}
}

// IsEmpty returns true if every component is blank
func (d AddressDTO) IsEmpty() bool {
	return strings.TrimSpace(d.Street) == "" &&
		strings.TrimSpace(d.City) == "" &&
		strings.TrimSpace(d.State) == "" &&
		strings.TrimSpace(d.PostalCode) == "" &&
		strings.TrimSpace(d.Country) == ""
}

// ToAddress validates the DTO and builds an Address
func (d AddressDTO) ToAddress() (Address, error) {
	return NewAddressFull(d.Street, d.City, d.State, d.PostalCode, d.Country)
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToDTO())
}

// UnmarshalJSON implements json.Unmarshaler.
// It goes through NewAddressFull so decoded addresses are validated.
func (a *Address) UnmarshalJSON(data []byte) error {
	var v AddressDTO
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.IsEmpty() {
		*a = Address{}
		return nil
	}
	addr, err := v.ToAddress()
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
