package tools

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateTool is returned when two tools share a name.
var ErrDuplicateTool = errors.New("duplicate tool name")

// Registry is the ordered, immutable set of tools of one agent.
type Registry struct {
	order  []Tool
	byName map[string]int
}

// NewRegistry validates the tools and indexes them in registration order.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		order:  make([]Tool, 0, len(tools)),
		byName: make(map[string]int, len(tools)),
	}
	for _, t := range tools {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name)
		}
		r.byName[t.Name] = len(r.order)
		r.order = append(r.order, t)
	}
	return r, nil
}

// Get looks a tool up by exact name.
func (r *Registry) Get(name string) (Tool, bool) {
	if r == nil {
		return Tool{}, false
	}
	i, ok := r.byName[name]
	if !ok {
		return Tool{}, false
	}
	return r.order[i], true
}

// All returns the tools in registration order.
func (r *Registry) All() []Tool {
	if r == nil {
		return nil
	}
	cp := make([]Tool, len(r.order))
	copy(cp, r.order)
	return cp
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.order))
	for i, t := range r.order {
		names[i] = t.Name
	}
	return names
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Describe renders every tool in registration order, separated by blank lines.
func (r *Registry) Describe() string {
	if r.Len() == 0 {
		return ""
	}
	blocks := make([]string, len(r.order))
	for i, t := range r.order {
		blocks[i] = t.Describe()
	}
	return strings.Join(blocks, "\n\n")
}
