package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// HistoryStore persists message logs keyed by session id.
type HistoryStore interface {
	// Load returns the stored log; an unknown session yields an empty log.
	Load(ctx context.Context, sessionID string) ([]Message, error)
	// Save replaces the stored log of a session.
	Save(ctx context.Context, sessionID string, messages []Message) error
	// Delete forgets a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error
}

// FileStore keeps one history_<id>.json file per session. The id is
// base64url-encoded so distinct ids never share a file.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(sessionID string) string {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(sessionID))
	return filepath.Join(s.dir, fmt.Sprintf("history_%s.json", encoded))
}

func (s *FileStore) Load(_ context.Context, sessionID string) ([]Message, error) {
	h := NewChatHistory()
	if err := h.Load(s.path(sessionID)); err != nil {
		return nil, err
	}
	return h.GetMessages(), nil
}

func (s *FileStore) Save(_ context.Context, sessionID string, messages []Message) error {
	return NewChatHistory(messages...).Save(s.path(sessionID))
}

func (s *FileStore) Delete(_ context.Context, sessionID string) error {
	err := os.Remove(s.path(sessionID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
