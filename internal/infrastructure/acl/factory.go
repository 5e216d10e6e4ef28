package acl

import (
	"fmt"
	"sync"

	"github.com/qms/backend/internal/domain/integration"
	"github.com/qms/backend/internal/infrastructure/config"
)

// Constructor builds a translator
type Constructor func() integration.Translator

// Factory selects translators by provider key
type Factory struct {
	mu           sync.RWMutex
	constructors map[integration.Provider]Constructor
	cfg          config.ERPConfig
}

var _ integration.TranslatorFactory = (*Factory)(nil)

// NewFactory creates a factory with the SAP and Oracle translators registered.
// cfg.Provider is the provider used by CreateFromConfig.
func NewFactory(cfg config.ERPConfig) *Factory {
	return &Factory{
		constructors: map[integration.Provider]Constructor{
			integration.ProviderSAP:    func() integration.Translator { return NewSAPTranslator() },
			integration.ProviderOracle: func() integration.Translator { return NewOracleTranslator() },
		},
		cfg: cfg,
	}
}

// Register adds a translator for a provider not built in
func (f *Factory) Register(provider string, ctor Constructor) error {
	key := integration.ParseProvider(provider)
	if key == "" || ctor == nil {
		return fmt.Errorf("acl: provider and constructor are required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.constructors[key]; exists {
		return fmt.Errorf("acl: translator for provider %q already registered", key)
	}
	f.constructors[key] = ctor
	return nil
}

// Create returns the translator for provider, matched case-insensitively
func (f *Factory) Create(provider string) (integration.Translator, error) {
	key := integration.ParseProvider(provider)

	f.mu.RLock()
	ctor, ok := f.constructors[key]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrUnsupportedProvider, provider)
	}
	return ctor(), nil
}

// CreateFromConfig returns the translator for the configured erp.provider
func (f *Factory) CreateFromConfig() (integration.Translator, error) {
	return f.Create(f.cfg.Provider)
}
