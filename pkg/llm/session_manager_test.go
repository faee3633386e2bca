package llm

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
)

func TestSessionManagerIsolation(t *testing.T) {
	ctx := context.Background()
	sm := NewSessionManager(nil)

	a, err := sm.GetHistory(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := sm.GetHistory(ctx, "b")
	a.Add(NewUserMessage("for a"))

	if b.Len() != 0 {
		t.Fatal("sessions share a history")
	}
	again, _ := sm.GetHistory(ctx, "a")
	if again != a {
		t.Fatal("GetHistory returned a different history for the same id")
	}

	ids := sm.Sessions()
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("Sessions() = %v", ids)
	}
}

func TestSessionManagerConcurrentGet(t *testing.T) {
	ctx := context.Background()
	sm := NewSessionManager(nil)

	var wg sync.WaitGroup
	results := make([]*ChatHistory, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = sm.GetHistory(ctx, "shared")
		}(i)
	}
	wg.Wait()

	for _, h := range results {
		if h != results[0] {
			t.Fatal("concurrent GetHistory created more than one history")
		}
	}
}

func TestSessionManagerWithFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	sm := NewSessionManager(store)
	h, _ := sm.GetHistory(ctx, "telegram_42")
	h.Add(NewUserMessage("hello"), NewAssistantMessage("hi"))
	if err := sm.SaveSession(ctx, "telegram_42"); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	restored, err := NewSessionManager(store).GetHistory(ctx, "telegram_42")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if restored.Len() != 2 {
		t.Fatalf("restored %d messages, want 2", restored.Len())
	}

	if err := sm.ResetSession(ctx, "telegram_42"); err != nil {
		t.Fatalf("ResetSession: %v", err)
	}
	if h.Len() != 0 {
		t.Fatal("ResetSession left messages in memory")
	}
	if _, err := os.Stat(store.path("telegram_42")); !os.IsNotExist(err) {
		t.Fatalf("session file still present: %v", err)
	}

	// Saving an unknown session is a no-op.
	if err := sm.SaveSession(ctx, "never-loaded"); err != nil {
		t.Fatalf("SaveSession unknown: %v", err)
	}
}

func TestFileStoreSanitizesIDs(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	id := "../web/../../etc"
	if err := store.Save(ctx, id, []Message{NewUserMessage("x")}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	msgs, err := store.Load(ctx, id)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("Load = %d, %v", len(msgs), err)
	}
	if dir := filepath.Dir(store.path(id)); dir != store.dir {
		t.Fatalf("session file escaped the store: %s", store.path(id))
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestFileStoreKeepsSimilarIDsApart(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := store.Save(ctx, "web_a/b", []Message{NewUserMessage("slash")}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, "web_a_b", []Message{NewUserMessage("underscore")}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	for id, want := range map[string]string{"web_a/b": "slash", "web_a_b": "underscore"} {
		msgs, err := store.Load(ctx, id)
		if err != nil {
			t.Fatalf("Load(%q): %v", id, err)
		}
		if len(msgs) != 1 || msgs[0].Content != want {
			t.Fatalf("Load(%q) = %+v, want one message %q", id, msgs, want)
		}
	}
}
