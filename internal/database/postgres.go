package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"room-client/internal/models"
	"room-client/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	username    TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL,
	parsed      JSONB NOT NULL DEFAULT '[]',
	sent_at     BIGINT NOT NULL,
	deleted_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS chat_messages_sent_at_idx ON chat_messages (sent_at);
CREATE INDEX IF NOT EXISTS chat_messages_user_id_idx ON chat_messages (user_id);
`

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

// Migrate creates the transcript table when it does not exist.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

func (db *PostgresDB) SaveMessage(ctx context.Context, msg models.ChatMessage) error {
	parsed, err := json.Marshal(msg.ParsedText)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO chat_messages (id, user_id, username, content, parsed, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`
	_, err = db.pool.Exec(ctx, query, msg.ID, msg.UserID, msg.Username, msg.Text, parsed, msg.Timestamp)
	return err
}

// Deletions are soft so the archive still shows what moderators removed.
func (db *PostgresDB) DeleteMessage(ctx context.Context, id string) error {
	_, err := db.pool.Exec(ctx, `UPDATE chat_messages SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

func (db *PostgresDB) DeleteUserMessages(ctx context.Context, userID string) error {
	_, err := db.pool.Exec(ctx, `UPDATE chat_messages SET deleted_at = NOW() WHERE user_id = $1 AND deleted_at IS NULL`, userID)
	return err
}

func (db *PostgresDB) DeleteAllMessages(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `UPDATE chat_messages SET deleted_at = NOW() WHERE deleted_at IS NULL`)
	return err
}

func (db *PostgresDB) LoadRecentMessages(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, user_id, username, content, parsed, sent_at
		FROM chat_messages
		WHERE deleted_at IS NULL
		ORDER BY sent_at DESC
		LIMIT $1`

	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ChatMessage, error) {
		var (
			msg    models.ChatMessage
			parsed []byte
		)
		if err := row.Scan(&msg.ID, &msg.UserID, &msg.Username, &msg.Text, &parsed, &msg.Timestamp); err != nil {
			return msg, err
		}
		msg.Kind = models.MessageKindChat
		if err := json.Unmarshal(parsed, &msg.ParsedText); err != nil {
			return msg, err
		}
		return msg, nil
	})
	if err != nil {
		return nil, err
	}

	// Reverse to show oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
