package tools

import "fmt"

// String returns args[name] as a string. Handlers call it after validation,
// so a mismatch only happens for optional parameters that were omitted.
func String(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// Number returns args[name] as a float64, or 0 when absent.
func Number(args map[string]any, name string) float64 {
	f, _ := toFloat(args[name])
	return f
}

// Integer returns args[name] as an int64, or 0 when absent.
func Integer(args map[string]any, name string) int64 {
	f, _ := toFloat(args[name])
	return int64(f)
}

// Bool returns args[name] as a bool, or false when absent.
func Bool(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}

// RequireString is String for handlers invoked without validation.
func RequireString(args map[string]any, name string) (string, error) {
	s, ok := args[name].(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %q must be a string", ErrInvalidArguments, name)
	}
	return s, nil
}
