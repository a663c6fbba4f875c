package db

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store provides access to the asltutor SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".asltutor", "asltutor.sqlite")
}

// Open opens (creating if needed) the database at path in WAL mode and
// applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddTranslation appends a saved translation.
func (s *Store) AddTranslation(ctx context.Context, text string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translations (id, text, timestamp) VALUES (?, ?, ?)
	`, uuid.NewString(), text, formatTime(at))
	if err != nil {
		return fmt.Errorf("insert translation: %w", err)
	}
	return nil
}

// Translations returns saved translations in the order they were saved.
func (s *Store) Translations(ctx context.Context) ([]Translation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, timestamp
		FROM translations
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	defer rows.Close()

	var out []Translation
	for rows.Next() {
		var t Translation
		var ts string
		if err := rows.Scan(&t.ID, &t.Text, &ts); err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		if t.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTranslation removes the translation at the given position of
// Translations. An out-of-range index returns ErrNotFound.
func (s *Store) DeleteTranslation(ctx context.Context, index int) error {
	if index < 0 {
		return fmt.Errorf("translation %d: %w", index, ErrNotFound)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx, `
		SELECT seq FROM translations ORDER BY seq ASC LIMIT 1 OFFSET ?
	`, index).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("translation %d: %w", index, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("find translation: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM translations WHERE seq = ?`, seq); err != nil {
		return fmt.Errorf("delete translation: %w", err)
	}
	return tx.Commit()
}

// CreateUser inserts a user. The ID and CreatedAt are filled in when empty.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, u.Email).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return ErrDuplicateEmail
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.PasswordHash, formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return tx.Commit()
}

// UserByEmail looks up a user. Returns ErrNotFound if none exists.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE email = ?
	`, email)

	var u User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Preference decodes the JSON value stored under key into v. It reports
// false when the key is unset.
func (s *Store) Preference(ctx context.Context, key string, v any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read preference %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode preference %s: %w", key, err)
	}
	return true, nil
}

// SetPreference stores v as JSON under key.
func (s *Store) SetPreference(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode preference %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, string(data))
	if err != nil {
		return fmt.Errorf("write preference %s: %w", key, err)
	}
	return nil
}

// DeletePreference removes key. Deleting an unset key is not an error.
func (s *Store) DeletePreference(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	return nil
}

// SetCompleted marks a gesture learned (or not) for a user.
func (s *Store) SetCompleted(ctx context.Context, email, gestureID string, done bool) error {
	var err error
	if done {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO progress (user_email, gesture_id, completed_at) VALUES (?, ?, ?)
			ON CONFLICT(user_email, gesture_id) DO NOTHING
		`, email, gestureID, formatTime(s.now()))
	} else {
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM progress WHERE user_email = ? AND gesture_id = ?
		`, email, gestureID)
	}
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// CompletedGestures returns gesture IDs the user has learned, with the time
// each was marked.
func (s *Store) CompletedGestures(ctx context.Context, email string) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT gesture_id, completed_at FROM progress WHERE user_email = ?
	`, email)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		t, err := parseTime(at)
		if err != nil {
			return nil, err
		}
		out[id] = t
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
