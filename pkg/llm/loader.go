package llm

import (
	"fmt"
	"log/slog"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
)

// NewClient resolves the adapter for model and builds it. A missing
// credential fails here, before any request is made.
func NewClient(model Model, creds config.Credentials, sys *config.SystemConfig) (Client, error) {
	if sys == nil {
		sys = config.DefaultSystemConfig()
	}

	factory, ok := GetProviderFactory(model.Provider)
	if !ok {
		return nil, fmt.Errorf("no adapter registered for provider %q (is pkg/llm/autoload imported?)", model.Provider)
	}

	client, err := factory.Create(model, creds, sys)
	if err != nil {
		return nil, err
	}

	if d, ok := client.(DebugSetter); ok {
		d.SetDebug(sys.DebugChunks)
	}

	slog.Info("LLM client initialized", "provider", model.Provider, "model", model.ID)
	return client, nil
}
