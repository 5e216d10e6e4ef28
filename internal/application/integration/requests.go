package integration

import (
	partnerapp "github.com/qms/backend/internal/application/partner"
	"github.com/qms/backend/internal/domain/partner"
	"github.com/qms/backend/internal/domain/shared/valueobject"
)

// Imported partners become service requests so that every write goes through
// the same validation, uniqueness checks and events as an interactive edit.
// Blank ERP values never clear data that already exists locally.

func supplierCreateRequest(s *partner.Supplier) partnerapp.CreateSupplierRequest {
	meta := s.Provenance()
	req := partnerapp.CreateSupplierRequest{
		Code:         s.Code,
		Name:         s.Name,
		Email:        s.Email,
		Phone:        s.Phone,
		MobilePhone:  s.MobilePhone,
		Notes:        s.Notes,
		PaymentTerms: s.PaymentTerms,
		TaxCode:      s.TaxCode,
		Address:      addressDTO(s.Address),
		Metadata:     &meta,
	}
	if !s.CreditLimit.IsZero() {
		limit := s.CreditLimit
		req.CreditLimit = &limit
	}
	return req
}

func supplierUpdateRequest(s *partner.Supplier) partnerapp.UpdateSupplierRequest {
	req := partnerapp.UpdateSupplierRequest{
		Name:         nonEmpty(s.Name),
		Email:        nonEmpty(s.Email),
		Phone:        nonEmpty(s.Phone),
		MobilePhone:  nonEmpty(s.MobilePhone),
		Notes:        nonEmpty(s.Notes),
		PaymentTerms: nonEmpty(s.PaymentTerms),
		TaxCode:      nonEmpty(s.TaxCode),
		Address:      addressDTO(s.Address),
	}
	if !s.CreditLimit.IsZero() {
		limit := s.CreditLimit
		req.CreditLimit = &limit
	}
	return req
}

func customerCreateRequest(c *partner.Customer) partnerapp.CreateCustomerRequest {
	meta := c.Provenance()
	return partnerapp.CreateCustomerRequest{
		Code:     c.Code,
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Address:  addressDTO(c.Address),
		Metadata: &meta,
	}
}

func customerUpdateRequest(c *partner.Customer) partnerapp.UpdateCustomerRequest {
	return partnerapp.UpdateCustomerRequest{
		Name:    nonEmpty(c.Name),
		Email:   nonEmpty(c.Email),
		Phone:   nonEmpty(c.Phone),
		Address: addressDTO(c.Address),
	}
}

func addressDTO(addr *valueobject.Address) *valueobject.AddressDTO {
	if addr == nil {
		return nil
	}
	dto := addr.ToDTO()
	return &dto
}

func nonEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
