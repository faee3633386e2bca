package utils

import (
	"strings"
	"testing"
)

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateID()
		if len(id) != 24 {
			t.Fatalf("len(%q) = %d, want 24", id, len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestDebugID(t *testing.T) {
	id := DebugID("web_abc")
	if len(id) != 8+1+len("web_abc") || !strings.HasSuffix(id, "_web_abc") {
		t.Fatalf("DebugID = %q", id)
	}
}
