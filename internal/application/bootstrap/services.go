// Package bootstrap registers the application service contracts and their
// constructors with the service registry and factory.
package bootstrap

import (
	partnerapp "github.com/qms/backend/internal/application/partner"
	qualityapp "github.com/qms/backend/internal/application/quality"
	"github.com/qms/backend/internal/application/service"
)

// Services holds the wired registry and factory
type Services struct {
	Registry *service.Registry
	Factory  *service.Factory
}

// RegisterServices declares every service contract, validates a default
// implementation against it and registers the per-call constructors.
func RegisterServices(deps service.Dependencies) (*Services, error) {
	registry := service.NewRegistry(deps.Logger)
	factory := service.NewFactory(registry, deps.Logger)

	contracts := []struct {
		name     string
		contract service.Contract
		ctor     service.Constructor
	}{
		{
			name:     partnerapp.SupplierServiceName,
			contract: service.ContractOf[partnerapp.SupplierServiceContract](),
			ctor: func(d service.Dependencies) any {
				return partnerapp.NewSupplierService(d.Suppliers, d.Events, d.Logger)
			},
		},
		{
			name:     partnerapp.CustomerServiceName,
			contract: service.ContractOf[partnerapp.CustomerServiceContract](),
			ctor: func(d service.Dependencies) any {
				return partnerapp.NewCustomerService(d.Customers, d.Events, d.Logger)
			},
		},
		{
			name:     qualityapp.InspectionServiceName,
			contract: service.ContractOf[qualityapp.InspectionServiceContract](),
			ctor: func(d service.Dependencies) any {
				return qualityapp.NewInspectionService(d.Inspections, d.Customers, d.Suppliers, d.Events, d.Logger)
			},
		},
	}

	for _, c := range contracts {
		if err := registry.RegisterInterface(c.name, c.contract); err != nil {
			return nil, err
		}
		if err := registry.SetImplementation(c.name, c.ctor(deps)); err != nil {
			return nil, err
		}
		if err := factory.RegisterServiceType(c.name, c.ctor, deps); err != nil {
			return nil, err
		}
	}

	return &Services{Registry: registry, Factory: factory}, nil
}

// Suppliers returns a fresh supplier service
func (s *Services) Suppliers() (partnerapp.SupplierServiceContract, error) {
	return service.CreateAs[partnerapp.SupplierServiceContract](s.Factory, partnerapp.SupplierServiceName)
}

// Customers returns a fresh customer service
func (s *Services) Customers() (partnerapp.CustomerServiceContract, error) {
	return service.CreateAs[partnerapp.CustomerServiceContract](s.Factory, partnerapp.CustomerServiceName)
}

// Inspections returns a fresh inspection service
func (s *Services) Inspections() (qualityapp.InspectionServiceContract, error) {
	return service.CreateAs[qualityapp.InspectionServiceContract](s.Factory, qualityapp.InspectionServiceName)
}
