package chatcontext

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type postgresStore struct {
	db     *sql.DB
	window int
}

// NewPostgresStore — история в таблице chat_turns.
// Драйвер (lib/pq) подключается в main.
func NewPostgresStore(db *sql.DB, window int) Store {
	if window <= 0 {
		window = DefaultWindow
	}
	return &postgresStore{db: db, window: window}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS chat_turns (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT        NOT NULL,
	entry      TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS chat_turns_user_id_idx ON chat_turns (user_id, id);
`

// EnsureSchema создаёт таблицу, если её ещё нет
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create chat_turns: %w", err)
	}
	return nil
}

func (r *postgresStore) Append(ctx context.Context, userID, entry string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// сериализуем запись по одному пользователю
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, userID,
	); err != nil {
		return fmt.Errorf("lock user %s: %w", userID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chat_turns (user_id, entry, created_at)
		VALUES ($1, $2, $3)
	`, userID, entry, time.Now()); err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM chat_turns
		WHERE user_id = $1
		  AND id NOT IN (
			SELECT id FROM chat_turns
			WHERE user_id = $1
			ORDER BY id DESC
			LIMIT $2
		  )
	`, userID, r.window); err != nil {
		return fmt.Errorf("trim turns: %w", err)
	}

	return tx.Commit()
}

func (r *postgresStore) Read(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entry FROM (
			SELECT id, entry FROM chat_turns
			WHERE user_id = $1
			ORDER BY id DESC
			LIMIT $2
		) last
		ORDER BY id ASC
	`, userID, r.window)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (r *postgresStore) EvictIdle(ctx context.Context, before time.Time) (int, error) {
	var users int
	err := r.db.QueryRowContext(ctx, `
		WITH idle AS (
			SELECT user_id FROM chat_turns
			GROUP BY user_id
			HAVING max(created_at) < $1
		), gone AS (
			DELETE FROM chat_turns
			WHERE user_id IN (SELECT user_id FROM idle)
		)
		SELECT count(*) FROM idle
	`, before).Scan(&users)
	if err != nil {
		return 0, fmt.Errorf("evict idle: %w", err)
	}
	return users, nil
}
