package openaicompat

import (
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
)

// CompatFactory handles creation of OpenAI-compatible Clients
type CompatFactory struct{}

// Create implements ProviderFactory
func (f *CompatFactory) Create(model llm.Model, creds config.Credentials, _ *config.SystemConfig) (llm.Client, error) {
	if err := config.Require(string(llm.ProviderOpenAICompatible), "OPENAI_COMPATIBLE_API_KEY", creds.OpenAICompatibleKey); err != nil {
		return nil, err
	}
	if err := config.Require(string(llm.ProviderOpenAICompatible), "OPENAI_COMPATIBLE_BASE_URL", creds.OpenAICompatibleURL); err != nil {
		return nil, err
	}
	return NewClient(creds.OpenAICompatibleKey, creds.OpenAICompatibleURL, model.ID), nil
}

func init() {
	llm.RegisterProvider(llm.ProviderOpenAICompatible, &CompatFactory{})
}
