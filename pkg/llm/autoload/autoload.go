// Package autoload registers every built-in provider adapter.
package autoload

import (
	_ "github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm/anthropic"
	_ "github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm/gemini"
	_ "github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm/ollama"
	_ "github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm/openaicompat"
	_ "github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm/openailm"
)
