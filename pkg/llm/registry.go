package llm

import (
	"sync"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
)

// ProviderFactory builds a Client for one provider family.
type ProviderFactory interface {
	// Create validates the provider's credential and returns a client
	// bound to the given model.
	Create(model Model, creds config.Credentials, sys *config.SystemConfig) (Client, error)
}

var (
	providerRegistry = make(map[Provider]ProviderFactory)
	registryMu       sync.RWMutex
)

// RegisterProvider registers a Provider Factory. Adapter packages call it from init().
func RegisterProvider(p Provider, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	providerRegistry[p] = factory
}

// GetProviderFactory returns the factory registered for p.
func GetProviderFactory(p Provider) (ProviderFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := providerRegistry[p]
	return f, ok
}
