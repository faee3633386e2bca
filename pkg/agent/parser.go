package agent

import (
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Directive markers. The payload between them is a JSON object
// {"name": "...", "parameters": {...}}.
const (
	OpenMarker  = "<tool_call>"
	CloseMarker = "</tool_call>"
)

// ErrMalformedDirective wraps every payload decode failure.
var ErrMalformedDirective = errors.New("malformed tool call")

// ParseState is the terminal state of one scan.
type ParseState int

const (
	// NoDirective means the whole text is a final answer.
	NoDirective ParseState = iota
	// DirectiveFound means Name and Arguments hold the requested call,
	// or Err holds the reason the payload could not be decoded.
	DirectiveFound
)

func (s ParseState) String() string {
	switch s {
	case NoDirective:
		return "NO_DIRECTIVE"
	case DirectiveFound:
		return "DIRECTIVE_FOUND"
	default:
		return fmt.Sprintf("ParseState(%d)", int(s))
	}
}

// Directive is the outcome of scanning one model response.
type Directive struct {
	State     ParseState
	Name      string
	Arguments map[string]any
	// Raw is the payload between the markers, untrimmed.
	Raw string
	// Err is set when a marker pair was found but its payload is unusable.
	Err error
}

// Malformed reports whether a directive was found but could not be decoded.
func (d Directive) Malformed() bool {
	return d.State == DirectiveFound && d.Err != nil
}

type scanState int

const (
	scanning scanState = iota
	inDirective
)

// ParseDirective scans text for the first marker pair. Text after the first
// directive is ignored; an opening marker with no closing marker is plain text.
func ParseDirective(text string) Directive {
	state := scanning
	payloadStart := 0
	for i := 0; i < len(text); {
		switch state {
		case scanning:
			if strings.HasPrefix(text[i:], OpenMarker) {
				i += len(OpenMarker)
				payloadStart = i
				state = inDirective
				continue
			}
		case inDirective:
			if strings.HasPrefix(text[i:], CloseMarker) {
				raw := text[payloadStart:i]
				d := Directive{State: DirectiveFound, Raw: raw}
				d.Name, d.Arguments, d.Err = decodePayload(raw)
				return d
			}
		}
		i++
	}
	return Directive{State: NoDirective}
}

func decodePayload(raw string) (string, map[string]any, error) {
	payload := strings.TrimSpace(raw)
	if payload == "" {
		return "", nil, fmt.Errorf("%w: empty payload", ErrMalformedDirective)
	}

	var fields map[string]any
	if err := json.UnmarshalFromString(payload, &fields); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedDirective, err)
	}
	if fields == nil {
		return "", nil, fmt.Errorf("%w: payload must be an object", ErrMalformedDirective)
	}

	name, ok := fields["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return "", nil, fmt.Errorf("%w: missing or non-string \"name\" field", ErrMalformedDirective)
	}

	// Both fields are mandatory; a null mapping counts as missing.
	value, present := fields["parameters"]
	if !present || value == nil {
		return "", nil, fmt.Errorf("%w: missing \"parameters\" object", ErrMalformedDirective)
	}
	params, ok := value.(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("%w: \"parameters\" must be an object", ErrMalformedDirective)
	}
	return name, params, nil
}
