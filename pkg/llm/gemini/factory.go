package gemini

import (
	"context"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
)

// GeminiFactory handles creation of Gemini Clients
type GeminiFactory struct{}

// Create implements ProviderFactory
func (f *GeminiFactory) Create(model llm.Model, creds config.Credentials, _ *config.SystemConfig) (llm.Client, error) {
	if err := config.Require(string(llm.ProviderGemini), "GEMINI_API_KEY", creds.GeminiKey); err != nil {
		return nil, err
	}
	return NewGeminiClient(context.Background(), creds.GeminiKey, model.ID)
}

func init() {
	llm.RegisterProvider(llm.ProviderGemini, &GeminiFactory{})
}
