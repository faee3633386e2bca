package config

import (
	"errors"
	"fmt"
	"os"
)

// ErrMissingCredential is matched by every CredentialError.
var ErrMissingCredential = errors.New("missing credential")

// CredentialError names the provider whose credential is absent and the
// environment variable that would normally carry it.
type CredentialError struct {
	Provider string
	Variable string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s: provider %q requires %s", ErrMissingCredential, e.Provider, e.Variable)
}

func (e *CredentialError) Is(target error) bool {
	return target == ErrMissingCredential
}

// Credentials carries backend secrets explicitly. Nothing in the runtime
// reads the environment on its own; main builds this once and passes it down.
type Credentials struct {
	OpenAIKey           string
	GeminiKey           string
	AnthropicKey        string
	OpenAICompatibleKey string
	OpenAICompatibleURL string
	OllamaHost          string
}

// CredentialsFromEnv reads the conventional environment variables.
func CredentialsFromEnv() Credentials {
	gemini := os.Getenv("GEMINI_API_KEY")
	if gemini == "" {
		gemini = os.Getenv("GOOGLE_API_KEY")
	}
	return Credentials{
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		GeminiKey:           gemini,
		AnthropicKey:        os.Getenv("ANTHROPIC_API_KEY"),
		OpenAICompatibleKey: os.Getenv("OPENAI_COMPATIBLE_API_KEY"),
		OpenAICompatibleURL: os.Getenv("OPENAI_COMPATIBLE_BASE_URL"),
		OllamaHost:          os.Getenv("OLLAMA_HOST"),
	}
}

// Require returns a *CredentialError when the given value is empty.
func Require(provider, variable, value string) error {
	if value == "" {
		return &CredentialError{Provider: provider, Variable: variable}
	}
	return nil
}
