package llm

import "testing"

func TestTurns(t *testing.T) {
	msgs := []Message{
		NewSystemMessage("sys"),
		NewUserMessage("weather?"),
		NewToolCallMessage("<tool_call>...</tool_call>"),
		NewToolResultMessage("sunny"),
		NewAssistantMessage("It is sunny."),
	}

	got := Turns(msgs)
	want := []Turn{
		{Assistant: false, Text: "weather?"},
		{Assistant: true, Text: "<tool_call>...</tool_call>"},
		{Assistant: false, Text: "Tool result: sunny"},
		{Assistant: true, Text: "It is sunny."},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d turns, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("turn %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMergeTurns(t *testing.T) {
	in := []Turn{
		{Text: "a"},
		{Text: "b"},
		{Assistant: true, Text: "c"},
		{Text: "d"},
		{Assistant: true, Text: "e"},
		{Assistant: true, Text: "f"},
	}
	got := MergeTurns(in)
	want := []Turn{
		{Text: "a\n\nb"},
		{Assistant: true, Text: "c"},
		{Text: "d"},
		{Assistant: true, Text: "e\n\nf"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d turns, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("turn %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAssistant, RoleSystem, RoleToolCall, RoleToolResult} {
		if !r.Valid() {
			t.Fatalf("%q should be valid", r)
		}
	}
	if Role("tool").Valid() {
		t.Fatal(`"tool" should not be valid`)
	}
}

func TestNewMessage(t *testing.T) {
	a := NewUserMessage("x")
	b := NewUserMessage("x")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids not unique: %q %q", a.ID, b.ID)
	}
	if a.Timestamp == 0 {
		t.Fatal("timestamp not set")
	}
	if a.String() != "[user] x" {
		t.Fatalf("String() = %q", a.String())
	}
}
