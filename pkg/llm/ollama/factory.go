package ollama

import (
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
)

// OllamaFactory handles creation of Ollama Clients
type OllamaFactory struct{}

// Create implements ProviderFactory. Ollama needs no key; the host comes
// from the credentials (OLLAMA_HOST) or the system default.
func (f *OllamaFactory) Create(model llm.Model, creds config.Credentials, sys *config.SystemConfig) (llm.Client, error) {
	host := creds.OllamaHost
	if host == "" {
		host = sys.OllamaDefaultURL
	}
	if err := config.Require(string(llm.ProviderOllama), "OLLAMA_HOST", host); err != nil {
		return nil, err
	}
	return NewOllamaClient(model.ID, normalizeHost(host))
}

// normalizeHost accepts OLLAMA_HOST forms like "127.0.0.1:11434".
func normalizeHost(host string) string {
	for _, scheme := range []string{"http://", "https://"} {
		if len(host) >= len(scheme) && host[:len(scheme)] == scheme {
			return host
		}
	}
	return "http://" + host
}

func init() {
	llm.RegisterProvider(llm.ProviderOllama, &OllamaFactory{})
}
