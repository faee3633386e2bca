package channels

import (
	"log/slog"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/gateway"

	jsoniter "github.com/json-iterator/go"
)

// LoadFromConfig builds a channel for every configured section with a
// registered factory. Unknown or failing channels are logged and skipped.
// It returns the number of channels registered.
func LoadFromConfig(gw *gateway.GatewayManager, configs map[string]jsoniter.RawMessage, system *config.SystemConfig) int {
	if system == nil {
		system = config.DefaultSystemConfig()
	}

	loaded := 0
	for name, rawConfig := range configs {
		factory, ok := GetChannelFactory(name)
		if !ok {
			slog.Warn("Unknown channel type", "name", name, "known", Registered())
			continue
		}

		channel, err := factory.Create(rawConfig, system)
		if err != nil {
			slog.Error("Failed to create channel", "name", name, "error", err)
			continue
		}
		// A factory may decline without error (e.g. disabled in config).
		if channel == nil {
			continue
		}

		gw.Register(channel)
		loaded++
		slog.Info("Channel registered", "name", name)
	}
	return loaded
}
