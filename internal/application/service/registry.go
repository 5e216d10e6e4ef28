// Package service holds the contract registry and the stateless service
// factory used to wire application services at startup.
package service

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/qms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Contract is the method set an implementation must provide. It is derived
// from a Go interface type so the compiler owns the method list.
type Contract struct {
	name  string
	iface reflect.Type
}

// ContractOf builds the contract for interface type I.
// It panics when I is not an interface, which is a programming error.
func ContractOf[I any]() Contract {
	t := reflect.TypeOf((*I)(nil)).Elem()
	if t.Kind() != reflect.Interface {
		panic(fmt.Sprintf("service: ContractOf requires an interface type, got %s", t))
	}
	return Contract{name: t.String(), iface: t}
}

// Name returns the qualified interface name
func (c Contract) Name() string {
	return c.name
}

// Methods returns the contract's method names in sorted order
func (c Contract) Methods() []string {
	if c.iface == nil {
		return nil
	}
	names := make([]string, 0, c.iface.NumMethod())
	for i := 0; i < c.iface.NumMethod(); i++ {
		names = append(names, c.iface.Method(i).Name)
	}
	return names
}

// Check returns a *shared.ContractViolationError naming every method impl
// lacks or exposes with the wrong signature.
func (c Contract) Check(impl any) error {
	if impl == nil {
		return &shared.ContractViolationError{Contract: c.name, Missing: c.Methods()}
	}
	implType := reflect.TypeOf(impl)
	if implType.Implements(c.iface) {
		return nil
	}

	var missing []string
	for i := 0; i < c.iface.NumMethod(); i++ {
		want := c.iface.Method(i)
		got, ok := implType.MethodByName(want.Name)
		if !ok {
			missing = append(missing, want.Name)
			continue
		}
		if !sameSignature(want.Type, got.Type) {
			missing = append(missing, want.Name+" (signature mismatch)")
		}
	}
	return &shared.ContractViolationError{Contract: c.name, Missing: missing}
}

// sameSignature compares an interface method type with a concrete method
// type, whose first input is the receiver.
func sameSignature(iface, concrete reflect.Type) bool {
	if concrete.NumIn()-1 != iface.NumIn() || concrete.NumOut() != iface.NumOut() ||
		concrete.IsVariadic() != iface.IsVariadic() {
		return false
	}
	for i := 0; i < iface.NumIn(); i++ {
		if iface.In(i) != concrete.In(i+1) {
			return false
		}
	}
	for i := 0; i < iface.NumOut(); i++ {
		if iface.Out(i) != concrete.Out(i) {
			return false
		}
	}
	return true
}

// Registry maps contract names to contracts and their active implementation.
// One registry is created per process by the composition root and passed to
// whoever needs it.
type Registry struct {
	mu        sync.RWMutex
	contracts map[string]Contract
	impls     map[string]any
	logger    *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		contracts: make(map[string]Contract),
		impls:     make(map[string]any),
		logger:    logger,
	}
}

// RegisterInterface stores a named contract
func (r *Registry) RegisterInterface(name string, contract Contract) error {
	if name == "" {
		return fmt.Errorf("%w: contract name cannot be empty", shared.ErrInvalidInput)
	}
	if contract.iface == nil {
		return fmt.Errorf("%w: contract '%s' has no interface type", shared.ErrInvalidInput, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contracts[name]; exists {
		return fmt.Errorf("%w: contract '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.contracts[name] = contract
	r.logger.Debug("Service contract registered",
		zap.String("name", name),
		zap.String("interface", contract.Name()),
		zap.Int("methods", contract.iface.NumMethod()),
	)
	return nil
}

// SetImplementation binds impl to the named contract after checking that it
// satisfies every method of the contract.
func (r *Registry) SetImplementation(name string, impl any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contract, ok := r.contracts[name]
	if !ok {
		return &shared.NotConfiguredError{Contract: name}
	}
	if err := contract.Check(impl); err != nil {
		r.logger.Error("Service implementation rejected",
			zap.String("name", name),
			zap.Error(err),
		)
		return err
	}
	r.impls[name] = impl
	r.logger.Info("Service implementation bound",
		zap.String("name", name),
		zap.String("implementation", reflect.TypeOf(impl).String()),
	)
	return nil
}

// GetImplementation returns the implementation bound to name
func (r *Registry) GetImplementation(name string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	impl, ok := r.impls[name]
	if !ok {
		return nil, &shared.NotConfiguredError{Contract: name}
	}
	return impl, nil
}

// Validate checks impl against the named contract without binding it.
// A name with no registered contract passes.
func (r *Registry) Validate(name string, impl any) error {
	r.mu.RLock()
	contract, ok := r.contracts[name]
	r.mu.RUnlock()

	if !ok {
		return nil
	}
	return contract.Check(impl)
}

// HasContract returns true if a contract is registered under name
func (r *Registry) HasContract(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.contracts[name]
	return ok
}

// List returns all registered contract names
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.contracts))
	for name := range r.contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the implementation bound to name typed as I
func Resolve[I any](r *Registry, name string) (I, error) {
	var zero I
	impl, err := r.GetImplementation(name)
	if err != nil {
		return zero, err
	}
	typed, ok := impl.(I)
	if !ok {
		return zero, &shared.ContractViolationError{
			Contract: reflect.TypeOf((*I)(nil)).Elem().String(),
			Missing:  []string{"(implementation bound to " + name + " does not satisfy requested type)"},
		}
	}
	return typed, nil
}
