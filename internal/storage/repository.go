package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Preferences are the display toggles remembered between sessions.
type Preferences struct {
	RelativeTime bool
	ShowNumbers  bool
	Compact      bool
}

var DefaultPreferences = Preferences{RelativeTime: true, ShowNumbers: true}

// Draft is compose text that failed to post. InReplyToID is empty for a new
// top-level status.
type Draft struct {
	Account     string
	InReplyToID string
	Content     string
	Visibility  string
	UpdatedAt   time.Time
}

type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS preferences (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS drafts (
  account TEXT NOT NULL,
  in_reply_to_id TEXT NOT NULL DEFAULT '',
  content TEXT NOT NULL,
  visibility TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL,
  PRIMARY KEY (account, in_reply_to_id)
);
`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *Repository) SavePreferences(ctx context.Context, p Preferences) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO preferences (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  value=excluded.value,
  updated_at=excluded.updated_at
`)
	if err != nil {
		return fmt.Errorf("prepare preference statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	values := map[string]bool{
		"relative_time": p.RelativeTime,
		"show_numbers":  p.ShowNumbers,
		"compact":       p.Compact,
	}
	for key, value := range values {
		if _, err := stmt.ExecContext(ctx, key, boolText(value), now); err != nil {
			return fmt.Errorf("save preference %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// LoadPreferences returns DefaultPreferences for keys never saved.
func (r *Repository) LoadPreferences(ctx context.Context) (Preferences, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM preferences`)
	if err != nil {
		return Preferences{}, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	p := DefaultPreferences
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Preferences{}, fmt.Errorf("scan preference: %w", err)
		}
		switch key {
		case "relative_time":
			p.RelativeTime = value == "1"
		case "show_numbers":
			p.ShowNumbers = value == "1"
		case "compact":
			p.Compact = value == "1"
		}
	}
	if err := rows.Err(); err != nil {
		return Preferences{}, fmt.Errorf("iterate preferences: %w", err)
	}
	return p, nil
}

func (r *Repository) SaveDraft(ctx context.Context, d Draft) error {
	if d.Account == "" {
		return errors.New("draft requires an account")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO drafts (account, in_reply_to_id, content, visibility, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(account, in_reply_to_id) DO UPDATE SET
  content=excluded.content,
  visibility=excluded.visibility,
  updated_at=excluded.updated_at
`, d.Account, d.InReplyToID, d.Content, d.Visibility, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// LoadDraft reports false when no draft exists for the reply target.
func (r *Repository) LoadDraft(ctx context.Context, account, inReplyToID string) (Draft, bool, error) {
	d := Draft{Account: account, InReplyToID: inReplyToID}
	var updatedAt string
	err := r.db.QueryRowContext(ctx, `
SELECT content, visibility, updated_at
FROM drafts
WHERE account = ? AND in_reply_to_id = ?
`, account, inReplyToID).Scan(&d.Content, &d.Visibility, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, false, nil
	}
	if err != nil {
		return Draft{}, false, fmt.Errorf("load draft: %w", err)
	}
	d.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return Draft{}, false, fmt.Errorf("parse draft updated_at %q: %w", updatedAt, err)
	}
	return d, true, nil
}

func (r *Repository) DeleteDraft(ctx context.Context, account, inReplyToID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE account = ? AND in_reply_to_id = ?`, account, inReplyToID)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func boolText(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
