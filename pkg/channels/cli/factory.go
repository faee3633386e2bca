package cli

import (
	"fmt"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/channels"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/gateway"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CLIFactory creates the terminal channel.
type CLIFactory struct{}

// Create implements channels.ChannelFactory. A disabled section yields no channel.
func (f *CLIFactory) Create(rawConfig jsoniter.RawMessage, _ *config.SystemConfig) (gateway.Channel, error) {
	cfg := CLIConfig{Enabled: true}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse cli config: %w", err)
		}
	}
	if !cfg.Enabled {
		return nil, nil
	}
	return NewCLIChannel(cfg, nil, nil), nil
}

func init() {
	channels.RegisterChannel("cli", &CLIFactory{})
}
