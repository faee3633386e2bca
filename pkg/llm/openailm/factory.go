package openailm

import (
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
)

// OpenAIFactory handles creation of OpenAI Clients
type OpenAIFactory struct{}

// Create implements ProviderFactory
func (f *OpenAIFactory) Create(model llm.Model, creds config.Credentials, _ *config.SystemConfig) (llm.Client, error) {
	if err := config.Require(string(llm.ProviderOpenAI), "OPENAI_API_KEY", creds.OpenAIKey); err != nil {
		return nil, err
	}
	return NewClient(creds.OpenAIKey, model.ID, ""), nil
}

func init() {
	llm.RegisterProvider(llm.ProviderOpenAI, &OpenAIFactory{})
}
