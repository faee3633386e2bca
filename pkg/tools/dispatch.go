package tools

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrNoSuchTool marks a directive naming a tool that is not registered.
	ErrNoSuchTool = errors.New("no such tool")
	// ErrInvalidArguments marks arguments that do not match the declared parameters.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Result is the outcome of one dispatch: either a value or an error, never both.
type Result struct {
	Value string
	Err   error
}

// OK reports whether the tool succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Text renders the result for the message log.
func (r Result) Text(toolName string) string {
	switch {
	case r.Err == nil:
		return r.Value
	case errors.Is(r.Err, ErrNoSuchTool):
		return r.Err.Error()
	default:
		return fmt.Sprintf("Error executing tool '%s': %s", toolName, r.Err.Error())
	}
}

// Dispatch resolves name in the registry and invokes it. An unknown name
// never reaches a handler.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) Result {
	t, ok := r.Get(name)
	if !ok {
		return Result{Err: fmt.Errorf("%w: %s", ErrNoSuchTool, name)}
	}
	return Invoke(ctx, t, args)
}

// Invoke runs the tool handler behind an isolating boundary: argument
// mismatches, returned errors and panics all become an error Result.
func Invoke(ctx context.Context, t Tool, args map[string]any) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.ErrorContext(ctx, "Tool execution panicked", "tool", t.Name, "error", rec)
			res = Result{Err: fmt.Errorf("%v", rec)}
		}
	}()

	if args == nil {
		args = map[string]any{}
	}
	if err := ValidateArguments(t.Parameters, args); err != nil {
		return Result{Err: err}
	}

	value, err := t.Handler(ctx, args)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Value: Stringify(value)}
}

// ValidateArguments checks args against the declared parameters: every
// required parameter is present, no undeclared names appear, and values
// match their type tag. Parameters with an unknown tag accept any value.
func ValidateArguments(params []Parameter, args map[string]any) error {
	declared := make(map[string]Parameter, len(params))
	for _, p := range params {
		declared[p.Name] = p
		if _, ok := args[p.Name]; !ok && p.Required {
			return fmt.Errorf("%w: missing required argument %q", ErrInvalidArguments, p.Name)
		}
	}

	// Sorted so the reported name is stable.
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p, ok := declared[name]
		if !ok {
			return fmt.Errorf("%w: unexpected argument %q", ErrInvalidArguments, name)
		}
		if !matchesType(p.Type, args[name]) {
			return fmt.Errorf("%w: argument %q must be %s, got %s", ErrInvalidArguments, name, p.Type, describeValue(args[name]))
		}
	}
	return nil
}

func matchesType(typ string, v any) bool {
	switch typ {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		_, ok := toFloat(v)
		return ok
	case TypeInteger:
		f, ok := toFloat(v)
		return ok && f == math.Trunc(f)
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	case TypeArray:
		_, ok := v.([]any)
		return ok
	default:
		return true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case stdjson.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func describeValue(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

// Stringify converts a handler result into message text.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int, int64, int32, bool:
		return fmt.Sprint(val)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
