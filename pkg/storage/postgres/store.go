// Package postgres persists conversation histories in PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/llm"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversation_messages (
	session_id TEXT        NOT NULL,
	position   INTEGER     NOT NULL,
	message_id TEXT        NOT NULL,
	role       TEXT        NOT NULL,
	content    TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (session_id, position)
);`

// Store implements llm.HistoryStore. A session is rewritten as a whole on
// every save, inside one transaction.
type Store struct {
	DB *pgxpool.Pool
}

var _ llm.HistoryStore = (*Store)(nil)

// NewStore connects to Postgres and ensures the schema exists.
func NewStore(ctx context.Context, connStr string) (*Store, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach Postgres: %w", err)
	}
	s := &Store{DB: db}
	if err := s.CreateSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	if s != nil && s.DB != nil {
		s.DB.Close()
	}
}

// Load returns the session's messages in order. An unknown session is empty.
func (s *Store) Load(ctx context.Context, sessionID string) ([]llm.Message, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT message_id, role, content, created_at
		FROM conversation_messages
		WHERE session_id = $1
		ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (llm.Message, error) {
		var (
			m       llm.Message
			role    string
			created time.Time
		)
		if err := row.Scan(&m.ID, &role, &m.Content, &created); err != nil {
			return m, err
		}
		m.Role = llm.Role(role)
		if !m.Role.Valid() {
			return m, fmt.Errorf("unknown role %q", role)
		}
		m.Timestamp = created.Unix()
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}
	return msgs, nil
}

// Save replaces the stored session with messages.
func (s *Store) Save(ctx context.Context, sessionID string, messages []llm.Message) (err error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM conversation_messages WHERE session_id = $1`, sessionID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, m := range messages {
		batch.Queue(`
			INSERT INTO conversation_messages (session_id, position, message_id, role, content, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			sessionID, i, m.ID, string(m.Role), m.Content, time.Unix(m.Timestamp, 0).UTC())
	}
	if batch.Len() > 0 {
		if err = tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save session %s: %w", sessionID, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM conversation_messages WHERE session_id = $1`, sessionID)
	return err
}
