package web

import (
	"fmt"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/channels"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/gateway"

	jsoniter "github.com/json-iterator/go"
)

// WebFactory creates the websocket channel.
type WebFactory struct{}

// Create implements channels.ChannelFactory.
func (f *WebFactory) Create(rawConfig jsoniter.RawMessage, _ *config.SystemConfig) (gateway.Channel, error) {
	cfg := WebConfig{Port: 8080}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse web config: %w", err)
		}
	}
	return NewWebChannel(cfg), nil
}

func init() {
	channels.RegisterChannel("web", &WebFactory{})
}
