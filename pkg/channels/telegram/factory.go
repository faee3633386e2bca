package telegram

import (
	"fmt"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/channels"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/gateway"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TelegramFactory creates the Telegram channel.
type TelegramFactory struct{}

// Create implements channels.ChannelFactory.
func (f *TelegramFactory) Create(rawConfig jsoniter.RawMessage, system *config.SystemConfig) (gateway.Channel, error) {
	var tgCfg TelegramConfig
	if err := json.Unmarshal(rawConfig, &tgCfg); err != nil {
		return nil, fmt.Errorf("failed to parse telegram config: %w", err)
	}
	if tgCfg.Token == "" {
		return nil, fmt.Errorf("missing telegram token")
	}

	ch, err := NewTelegramChannel(tgCfg, system.TelegramMessageLimit)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func init() {
	channels.RegisterChannel("telegram", &TelegramFactory{})
}
