// Package llmtest provides deterministic llm.Client implementations for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
)

// Response configures one backend turn in a scripted sequence.
type Response struct {
	Text string
	Err  error
}

// Text is shorthand for a successful scripted turn.
func Text(s string) Response { return Response{Text: s} }

// Fail is shorthand for a failing scripted turn.
func Fail(err error) Response { return Response{Err: err} }

// Request records what a scripted client was asked to send.
type Request struct {
	SystemPrompt string
	Messages     []llm.Message
	MaxTokens    int
}

// ScriptedClient replays queued responses and records every request.
type ScriptedClient struct {
	mu        sync.Mutex
	index     int
	responses []Response
	requests  []Request

	// Transient decides IsTransientError. Nil means never transient.
	Transient func(error) bool
}

var _ llm.Client = (*ScriptedClient)(nil)

func NewScriptedClient(responses ...Response) *ScriptedClient {
	cloned := make([]Response, len(responses))
	copy(cloned, responses)
	return &ScriptedClient{responses: cloned}
}

func (c *ScriptedClient) Provider() llm.Provider { return "scripted" }

func (c *ScriptedClient) Model() string { return "scripted" }

func (c *ScriptedClient) Send(_ context.Context, systemPrompt string, messages []llm.Message, maxTokens int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := make([]llm.Message, len(messages))
	copy(cp, messages)
	c.requests = append(c.requests, Request{SystemPrompt: systemPrompt, Messages: cp, MaxTokens: maxTokens})

	if c.index >= len(c.responses) {
		return "", fmt.Errorf("script exhausted at step %d", c.index+1)
	}
	current := c.responses[c.index]
	c.index++
	return current.Text, current.Err
}

func (c *ScriptedClient) IsTransientError(err error) bool {
	if c.Transient == nil {
		return false
	}
	return c.Transient(err)
}

// Requests returns a copy of every recorded request, oldest first.
func (c *ScriptedClient) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]Request, len(c.requests))
	copy(cp, c.requests)
	return cp
}

// Calls returns the number of Send invocations so far.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// Remaining returns the number of responses not yet consumed.
func (c *ScriptedClient) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.responses) - c.index
}
