package channels

import (
	"sort"
	"sync"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/gateway"

	jsoniter "github.com/json-iterator/go"
)

// ChannelFactory builds a channel from its raw config.json section.
type ChannelFactory interface {
	Create(rawConfig jsoniter.RawMessage, system *config.SystemConfig) (gateway.Channel, error)
}

var (
	channelRegistry = make(map[string]ChannelFactory)
	registryMu      sync.RWMutex
)

// RegisterChannel is called from the init() of each channel package.
func RegisterChannel(name string, factory ChannelFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	channelRegistry[name] = factory
}

func GetChannelFactory(name string) (ChannelFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := channelRegistry[name]
	return f, ok
}

// Registered returns the names of every registered factory, sorted.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(channelRegistry))
	for name := range channelRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
