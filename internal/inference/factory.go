package inference

import (
	"fmt"

	"invosplit/internal/config"
	"invosplit/internal/port"
)

// ProviderFactory is a function that creates an InferenceClient from a
// provider config.
type ProviderFactory func(cfg *config.InferenceProviderConfig) (port.InferenceClient, error)

// registry of inference provider factories, populated explicitly via
// RegisterProvider at startup.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an inference provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewClient creates an InferenceClient from a provider config using the
// registered factory.
func NewClient(cfg *config.InferenceProviderConfig) (port.InferenceClient, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown inference provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
