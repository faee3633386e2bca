// Package agent runs the text-protocol tool-calling loop: it prompts a
// model with the available tools, parses tool-call directives out of the
// response, dispatches them and feeds the results back until the model
// answers in plain text or the iteration budget runs out.
package agent

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/config"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/monitor"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/tools"
)

const (
	DefaultMaxIterations = 10
	DefaultMaxTokens     = 4096
)

// ErrInvalidOptions wraps every construction-time validation failure other
// than missing credentials, which surface as config.ErrMissingCredential.
var ErrInvalidOptions = errors.New("invalid agent options")

// Options configures an Agent. Zero values select the defaults.
type Options struct {
	Name        string
	Description string
	Tools       []tools.Tool

	// Model is a known model id or "provider/model". Empty selects llm.DefaultModel.
	Model string
	// Client bypasses model resolution entirely. Model is then informational.
	Client llm.Client

	MaxIterations      int
	MaxTokens          int
	CustomSystemPrompt string

	// Demo reports every tool call and result to Monitor.
	Demo    bool
	Monitor monitor.Monitor

	Credentials  config.Credentials
	SystemConfig *config.SystemConfig
	// Prompts overrides the built-in templates when non-nil.
	Prompts *Prompts
}

// Agent is immutable after New. One Agent may serve many histories, but a
// single history must not be run concurrently.
type Agent struct {
	name          string
	description   string
	customPrompt  string
	registry      *tools.Registry
	client        llm.Client
	maxIterations int
	maxTokens     int
	demo          bool
	monitor       monitor.Monitor

	systemPrompt      string
	finalAnswerPrompt string
}

// New validates opts and resolves the backend client. A missing credential
// for the selected provider fails here rather than on the first run.
func New(opts Options) (*Agent, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidOptions)
	}
	if opts.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidOptions)
	}
	if opts.MaxIterations < 0 {
		return nil, fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidOptions, opts.MaxIterations)
	}
	if opts.MaxTokens < 0 {
		return nil, fmt.Errorf("%w: max tokens must be positive, got %d", ErrInvalidOptions, opts.MaxTokens)
	}

	registry, err := tools.NewRegistry(opts.Tools...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	client := opts.Client
	if client == nil {
		model, err := llm.ParseModel(opts.Model)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
		client, err = llm.NewClient(model, opts.Credentials, opts.SystemConfig)
		if err != nil {
			return nil, err
		}
	}

	a := &Agent{
		name:          opts.Name,
		description:   opts.Description,
		customPrompt:  opts.CustomSystemPrompt,
		registry:      registry,
		client:        client,
		maxIterations: opts.MaxIterations,
		maxTokens:     opts.MaxTokens,
		demo:          opts.Demo,
		monitor:       opts.Monitor,
	}
	if a.maxIterations == 0 {
		a.maxIterations = DefaultMaxIterations
	}
	if a.maxTokens == 0 {
		a.maxTokens = DefaultMaxTokens
	}
	if a.demo && a.monitor == nil {
		a.monitor = monitor.NewCLIMonitor()
	}

	prompts := DefaultPrompts()
	if opts.Prompts != nil {
		prompts = *opts.Prompts
	}
	a.systemPrompt = prompts.BuildSystemPrompt(a.name, a.description, a.customPrompt, registry)
	a.finalAnswerPrompt = prompts.BuildFinalAnswerPrompt(a.name, a.description, a.customPrompt)

	slog.Debug("Agent created",
		"name", a.name,
		"provider", client.Provider(),
		"model", client.Model(),
		"tools", registry.Names(),
		"max_iterations", a.maxIterations,
	)
	return a, nil
}

// OptionsFromConfig maps the agent section of config.json onto Options.
// Tools, credentials and the client are left for the caller.
func OptionsFromConfig(cfg *config.Config, sys *config.SystemConfig) Options {
	prompts := PromptsFromConfig(cfg.Prompts)
	return Options{
		Name:               cfg.Agent.Name,
		Description:        cfg.Agent.Description,
		Model:              cfg.Agent.Model,
		MaxIterations:      cfg.Agent.MaxIterations,
		MaxTokens:          cfg.Agent.MaxTokens,
		CustomSystemPrompt: cfg.Agent.CustomPrompt,
		Demo:               cfg.Agent.Demo,
		SystemConfig:       sys,
		Prompts:            &prompts,
	}
}

func (a *Agent) Name() string              { return a.name }
func (a *Agent) Description() string       { return a.description }
func (a *Agent) Tools() *tools.Registry    { return a.registry }
func (a *Agent) Client() llm.Client        { return a.client }
func (a *Agent) MaxIterations() int        { return a.maxIterations }
func (a *Agent) MaxTokens() int            { return a.maxTokens }
func (a *Agent) SystemPrompt() string      { return a.systemPrompt }
func (a *Agent) FinalAnswerPrompt() string { return a.finalAnswerPrompt }

// Model returns the resolved "provider/model" string.
func (a *Agent) Model() string {
	return llm.Model{ID: a.client.Model(), Provider: a.client.Provider()}.String()
}
