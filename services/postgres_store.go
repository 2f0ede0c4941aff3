package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"guesser/config"
	"guesser/models"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS conversation_turns (
    seq        BIGSERIAL PRIMARY KEY,
    turn_id    UUID NOT NULL,
    id         TEXT NOT NULL,
    role       TEXT NOT NULL,
    content    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS conversation_turns_id_seq ON conversation_turns (id, seq);
`

// PostgresStore orders turns by a BIGSERIAL column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, cfg config.StoreConfig) (*PostgresStore, error) {
	if cfg.URI == "" {
		return nil, errors.New("postgres: store uri is required")
	}

	db, err := sql.Open("postgres", withSSLMode(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// connection check
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	st := NewPostgresStoreWithDB(db)
	if err := st.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, conversationID string, role models.Role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_turns (turn_id, id, role, content) VALUES ($1, $2, $3, $4)`,
		newTurnID(), conversationID, string(role), content,
	)
	if err != nil {
		return storageErr("append", err)
	}
	return nil
}

func (s *PostgresStore) ReadAll(ctx context.Context, conversationID string) ([]models.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT seq, turn_id, id, role, content, created_at
        FROM conversation_turns
        WHERE id = $1
        ORDER BY seq ASC
    `, conversationID)
	if err != nil {
		return nil, storageErr("read", err)
	}
	defer rows.Close()

	turns := make([]models.Turn, 0)
	for rows.Next() {
		var (
			t    models.Turn
			seq  int64
			role string
		)
		if err := rows.Scan(&seq, &t.ID, &t.ConversationID, &role, &t.Content, &t.CreatedAt); err != nil {
			return nil, storageErr("read", err)
		}
		t.Role = models.Role(role)
		t.Seq = strconv.FormatInt(seq, 10)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("read", err)
	}
	return turns, nil
}

func (s *PostgresStore) Close(_ context.Context) error {
	return s.db.Close()
}

// withSSLMode disables TLS for local databases that do not say otherwise.
// Remote hosts keep lib/pq's default of sslmode=require.
func withSSLMode(uri string) string {
	if strings.Contains(uri, "sslmode=") || !isLocalPostgres(uri) {
		return uri
	}
	if strings.HasPrefix(uri, "postgres://") || strings.HasPrefix(uri, "postgresql://") {
		if strings.Contains(uri, "?") {
			return uri + "&sslmode=disable"
		}
		return uri + "?sslmode=disable"
	}
	return uri + " sslmode=disable"
}

func isLocalPostgres(uri string) bool {
	var host string
	if strings.HasPrefix(uri, "postgres://") || strings.HasPrefix(uri, "postgresql://") {
		u, err := url.Parse(uri)
		if err != nil {
			return false
		}
		host = u.Hostname()
	} else {
		for _, kv := range strings.Fields(uri) {
			if v, ok := strings.CutPrefix(kv, "host="); ok {
				host = v
			}
		}
	}
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	return strings.HasPrefix(host, "/")
}

var _ ConversationStore = (*PostgresStore)(nil)
