package llm

import (
	"fmt"
	"sort"
	"strings"
)

// Provider identifies a backend family.
type Provider string

const (
	ProviderOpenAI           Provider = "openai"
	ProviderGemini           Provider = "gemini"
	ProviderAnthropic        Provider = "anthropic"
	ProviderOllama           Provider = "ollama"
	ProviderOpenAICompatible Provider = "openai-compatible"
)

// Providers lists every provider family in a stable order.
var Providers = []Provider{
	ProviderOpenAI,
	ProviderGemini,
	ProviderAnthropic,
	ProviderOllama,
	ProviderOpenAICompatible,
}

// Model selects a backend model and the provider that serves it.
type Model struct {
	ID       string
	Provider Provider
}

func (m Model) String() string {
	return string(m.Provider) + "/" + m.ID
}

// DefaultModel is used when no model is configured.
var DefaultModel = Model{ID: "gpt-5-mini", Provider: ProviderOpenAI}

// knownModels maps each canonical model id to exactly one provider.
var knownModels = map[string]Provider{
	"gpt-5.1":    ProviderOpenAI,
	"gpt-5":      ProviderOpenAI,
	"gpt-5-mini": ProviderOpenAI,
	"gpt-5-nano": ProviderOpenAI,
	"o4-mini":    ProviderOpenAI,
	"o3":         ProviderOpenAI,
	"o3-mini":    ProviderOpenAI,
	"o1":         ProviderOpenAI,

	"gemini-3-pro-preview": ProviderGemini,
	"gemini-2.5-pro":       ProviderGemini,
	"gemini-2.5-flash":     ProviderGemini,
	"gemini-2.0-flash":     ProviderGemini,

	"claude-sonnet-4-20250514": ProviderAnthropic,
	"claude-haiku-4-20250514":  ProviderAnthropic,
}

// KnownModels returns the fixed model table sorted by provider then id.
func KnownModels() []Model {
	models := make([]Model, 0, len(knownModels))
	for id, p := range knownModels {
		models = append(models, Model{ID: id, Provider: p})
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].Provider != models[j].Provider {
			return models[i].Provider < models[j].Provider
		}
		return models[i].ID < models[j].ID
	})
	return models
}

// ParseModel resolves a model selector. Known ids resolve through the fixed
// table; anything else must use the explicit "provider/model" form. An
// empty string yields DefaultModel.
func ParseModel(s string) (Model, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultModel, nil
	}

	if p, ok := knownModels[s]; ok {
		return Model{ID: s, Provider: p}, nil
	}

	prefix, id, ok := strings.Cut(s, "/")
	if !ok || id == "" {
		return Model{}, fmt.Errorf("unknown model %q: use a known model id or provider/model", s)
	}

	p := Provider(strings.ToLower(prefix))
	if !p.Valid() {
		return Model{}, fmt.Errorf("unknown provider %q in model %q", prefix, s)
	}

	// A known id must keep its table provider.
	if owner, ok := knownModels[id]; ok && owner != p {
		return Model{}, fmt.Errorf("model %q belongs to provider %q, not %q", id, owner, p)
	}
	return Model{ID: id, Provider: p}, nil
}

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}
