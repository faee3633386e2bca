package llm

import (
	"context"
	"sync"
)

// SessionManager manages multiple conversation histories isolated by session ID.
// Histories are created lazily and, when a store is set, loaded from and
// saved to it.
type SessionManager struct {
	histories map[string]*ChatHistory
	store     HistoryStore
	mu        sync.RWMutex
}

// NewSessionManager creates a manager. A nil store keeps histories in memory only.
func NewSessionManager(store HistoryStore) *SessionManager {
	return &SessionManager{
		histories: make(map[string]*ChatHistory),
		store:     store,
	}
}

// GetHistory retrieves an existing ChatHistory for a session or creates/loads a new one.
func (sm *SessionManager) GetHistory(ctx context.Context, sessionID string) (*ChatHistory, error) {
	sm.mu.RLock()
	h, ok := sm.histories[sessionID]
	sm.mu.RUnlock()

	if ok {
		return h, nil
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Double check under lock
	if h, ok = sm.histories[sessionID]; ok {
		return h, nil
	}

	h = NewChatHistory()
	if sm.store != nil {
		msgs, err := sm.store.Load(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		h.Add(msgs...)
	}

	sm.histories[sessionID] = h
	return h, nil
}

// SaveSession persists a specific session's history.
func (sm *SessionManager) SaveSession(ctx context.Context, sessionID string) error {
	sm.mu.RLock()
	h, ok := sm.histories[sessionID]
	sm.mu.RUnlock()

	if !ok || sm.store == nil {
		return nil
	}
	return sm.store.Save(ctx, sessionID, h.GetMessages())
}

// ResetSession clears a session in memory and in the store.
func (sm *SessionManager) ResetSession(ctx context.Context, sessionID string) error {
	sm.mu.Lock()
	if h, ok := sm.histories[sessionID]; ok {
		h.Reset()
	}
	sm.mu.Unlock()

	if sm.store == nil {
		return nil
	}
	return sm.store.Delete(ctx, sessionID)
}

// Sessions returns the ids of the sessions currently held in memory.
func (sm *SessionManager) Sessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	ids := make([]string, 0, len(sm.histories))
	for id := range sm.histories {
		ids = append(ids, id)
	}
	return ids
}
