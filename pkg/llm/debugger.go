package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PayloadDebugger dumps raw request and response payloads of one backend
// call. It centralizes directory creation, file naming and safe writing.
type PayloadDebugger struct {
	file    *os.File
	enabled bool
}

// NewPayloadDebugger opens debug/chunks/[<debug-id>/]<provider>/<timestamp>.log
// when enabled. Failures disable the debugger instead of failing the call.
func NewPayloadDebugger(ctx context.Context, provider Provider, enabled bool) *PayloadDebugger {
	if !enabled {
		return &PayloadDebugger{}
	}

	debugDir := filepath.Join("debug", "chunks", string(provider))
	if id := DebugID(ctx); id != "" {
		debugDir = filepath.Join("debug", "chunks", id, string(provider))
	}

	if err := os.MkdirAll(debugDir, 0755); err != nil {
		slog.Error("Failed to create debug directory", "dir", debugDir, "error", err)
		return &PayloadDebugger{}
	}

	timestamp := time.Now().Format("20060102_150405.000")
	filename := filepath.Join(debugDir, fmt.Sprintf("%s.log", timestamp))

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		slog.Error("Failed to open debug file", "file", filename, "error", err)
		return &PayloadDebugger{}
	}

	slog.DebugContext(ctx, "Debug mode ON", "provider", provider, "file", filename)
	return &PayloadDebugger{file: f, enabled: true}
}

// WriteJSON marshals v and appends it under a label line.
func (d *PayloadDebugger) WriteJSON(label string, v any) {
	if !d.enabled || d.file == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		d.WriteString(fmt.Sprintf("%s: <unmarshalable %T: %v>", label, v, err))
		return
	}
	d.WriteString(label + ": " + string(data))
}

// WriteString appends s followed by a newline.
func (d *PayloadDebugger) WriteString(s string) {
	if !d.enabled || d.file == nil {
		return
	}
	if _, err := d.file.WriteString(s + "\n"); err != nil {
		slog.Warn("Failed to write to debug file", "error", err)
	}
}

// Close closes the debug file handle.
func (d *PayloadDebugger) Close() {
	if d.file != nil {
		d.file.Close()
		d.file = nil
	}
}
