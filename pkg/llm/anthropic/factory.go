package anthropic

import (
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
)

// AnthropicFactory handles creation of Anthropic Clients
type AnthropicFactory struct{}

// Create implements ProviderFactory
func (f *AnthropicFactory) Create(model llm.Model, creds config.Credentials, _ *config.SystemConfig) (llm.Client, error) {
	if err := config.Require(string(llm.ProviderAnthropic), "ANTHROPIC_API_KEY", creds.AnthropicKey); err != nil {
		return nil, err
	}
	return NewClient(creds.AnthropicKey, model.ID), nil
}

func init() {
	llm.RegisterProvider(llm.ProviderAnthropic, &AnthropicFactory{})
}
