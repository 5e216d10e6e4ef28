package service

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/qms/backend/internal/domain/partner"
	"github.com/qms/backend/internal/domain/quality"
	"github.com/qms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Dependencies is the fixed set of shared collaborators a service type is
// built with. Every member must be safe for concurrent use.
type Dependencies struct {
	Suppliers   partner.SupplierRepository
	Customers   partner.CustomerRepository
	Inspections quality.InspectionRepository
	Events      shared.EventPublisher
	Logger      *zap.Logger
}

// Constructor builds one service instance from its dependencies
type Constructor func(deps Dependencies) any

type binding struct {
	ctor Constructor
	deps Dependencies
}

// Factory produces a fresh service instance per call, so concurrent callers
// never share per-call state. Registration happens once at startup.
type Factory struct {
	mu       sync.RWMutex
	registry *Registry
	bindings map[string]binding
	logger   *zap.Logger
}

// NewFactory creates a factory. When registry is non-nil, constructors are
// checked against the contract registered under the same name.
func NewFactory(registry *Registry, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		registry: registry,
		bindings: make(map[string]binding),
		logger:   logger,
	}
}

// RegisterServiceType binds name to a constructor and its dependency set.
// When the registry holds a contract of the same name, one instance is
// built up front and validated so a non-conforming constructor fails here rather than
// at first use.
// Registering the same name again replaces the previous binding.
func (f *Factory) RegisterServiceType(name string, ctor Constructor, deps Dependencies) error {
	if name == "" {
		return fmt.Errorf("%w: service name cannot be empty", shared.ErrInvalidInput)
	}
	if ctor == nil {
		return fmt.Errorf("%w: constructor for '%s' cannot be nil", shared.ErrInvalidInput, name)
	}
	if deps.Logger == nil {
		deps.Logger = f.logger
	}

	if f.registry != nil && f.registry.HasContract(name) {
		if err := f.registry.Validate(name, ctor(deps)); err != nil {
			return err
		}
	} else {
		f.logger.Debug("Service type has no contract, skipping validation", zap.String("name", name))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.bindings[name]; exists {
		f.logger.Warn("Service type re-registered, previous binding replaced", zap.String("name", name))
	}
	f.bindings[name] = binding{ctor: ctor, deps: deps}
	return nil
}

// Create returns a new instance of the named service type
func (f *Factory) Create(name string) (any, error) {
	f.mu.RLock()
	b, ok := f.bindings[name]
	f.mu.RUnlock()

	if !ok {
		return nil, &shared.NotConfiguredError{Contract: name}
	}
	return b.ctor(b.deps), nil
}

// Registered returns the registered service type names
func (f *Factory) Registered() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.bindings))
	for name := range f.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateAs returns a new instance of the named service type typed as I
func CreateAs[I any](f *Factory, name string) (I, error) {
	var zero I
	impl, err := f.Create(name)
	if err != nil {
		return zero, err
	}
	typed, ok := impl.(I)
	if !ok {
		return zero, &shared.ContractViolationError{
			Contract: reflect.TypeOf((*I)(nil)).Elem().String(),
			Missing:  []string{"(service type " + name + " does not satisfy requested type)"},
		}
	}
	return typed, nil
}
