package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"
	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/utils"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	s, err := NewStore(context.Background(), dsn)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	session := "test_" + utils.GenerateID()
	t.Cleanup(func() { _ = s.Delete(ctx, session) })

	msgs := []llm.Message{
		llm.NewSystemMessage("sys"),
		llm.NewUserMessage("weather in Tokyo?"),
		llm.NewToolCallMessage(`<tool_call>{"name":"get_weather"}</tool_call>`),
		llm.NewToolResultMessage("Weather in Tokyo: 70°F, sunny"),
		llm.NewAssistantMessage("It is sunny."),
	}
	if err := s.Save(ctx, session, msgs); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, session)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(msgs) {
		t.Fatalf("Load returned %d messages, want %d", len(got), len(msgs))
	}
	for i := range msgs {
		if got[i].ID != msgs[i].ID || got[i].Role != msgs[i].Role || got[i].Content != msgs[i].Content {
			t.Fatalf("message %d = %+v, want %+v", i, got[i], msgs[i])
		}
	}

	// A shorter save replaces the whole session.
	if err := s.Save(ctx, session, msgs[:1]); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ = s.Load(ctx, session)
	if len(got) != 1 {
		t.Fatalf("after rewrite got %d messages, want 1", len(got))
	}

	if err := s.Delete(ctx, session); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = s.Load(ctx, session)
	if err != nil || len(got) != 0 {
		t.Fatalf("after delete got %d messages, err %v", len(got), err)
	}
}

func TestStoreWithSessionManager(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	session := "test_" + utils.GenerateID()
	t.Cleanup(func() { _ = s.Delete(ctx, session) })

	sm := llm.NewSessionManager(s)
	h, err := sm.GetHistory(ctx, session)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	h.Add(llm.NewUserMessage("hello"))
	if err := sm.SaveSession(ctx, session); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	reloaded, err := llm.NewSessionManager(s).GetHistory(ctx, session)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if reloaded.Len() != 1 {
		t.Fatalf("reloaded history has %d messages, want 1", reloaded.Len())
	}
}
