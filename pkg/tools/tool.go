package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Parameter type tags understood by argument validation.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// HandlerFunc executes a tool. The returned value is stringified for the model.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// Parameter describes one named argument of a tool.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// Tool is a callable capability offered to the model. Parameters keep their
// definition order, which is the order they are rendered in.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Handler     HandlerFunc `json:"-"`
}

// Validate checks that the descriptor can be registered.
func (t Tool) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("tool name is empty")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q has no handler", t.Name)
	}
	seen := make(map[string]bool, len(t.Parameters))
	for _, p := range t.Parameters {
		if p.Name == "" {
			return fmt.Errorf("tool %q has a parameter without a name", t.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("tool %q declares parameter %q twice", t.Name, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Describe renders the tool for the system prompt. Equal descriptors
// always render to identical text.
//
//	- get_weather: Get current weather conditions for any location
//	  Parameters:
//	    - location (string, required): The location to get weather for
func (t Tool) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- %s: %s\n", t.Name, t.Description)
	if len(t.Parameters) == 0 {
		sb.WriteString("  Parameters: none")
		return sb.String()
	}

	sb.WriteString("  Parameters:")
	for _, p := range t.Parameters {
		marker := "optional"
		if p.Required {
			marker = "required"
		}
		typ := p.Type
		if typ == "" {
			typ = "any"
		}
		fmt.Fprintf(&sb, "\n    - %s (%s, %s): %s", p.Name, typ, marker, p.Description)
	}
	return sb.String()
}
