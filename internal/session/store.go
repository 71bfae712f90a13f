// Package session is the console's durable session mirror: the access
// token, refresh token and serialized user survive process restarts.
// The auth state container is the only writer; everything else reads
// through it. Corrupt or unreadable rows are read as an empty session,
// never as an error.
package session

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"admin-console/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db  *sql.DB
	box *sealbox
}

// Open opens (creating if needed) the sqlite-backed store at path and
// runs migrations. When stateKey is non-empty the token columns are
// sealed at rest with a key derived from it.
func Open(path string, stateKey string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping state db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	var box *sealbox
	if stateKey != "" {
		box, err = newSealbox(stateKey)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init state key: %w", err)
		}
	}

	return &Store{db: db, box: box}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// Save writes the session's token fields and serialized user in one
// transaction, so a reader never observes a partial write.
func (s *Store) Save(sess model.Session) error {
	userJSON := []byte("null")
	if sess.User != nil {
		encoded, err := json.Marshal(sess.User)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		userJSON = encoded
	}

	access, err := s.encode(sess.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}

	refresh, err := s.encode(sess.RefreshToken)
	if err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO console_session (id, access_token, refresh_token, user_json, saved_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			user_json = excluded.user_json,
			saved_at = excluded.saved_at`,
		access, refresh, string(userJSON), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

// Load returns the last saved session. Missing, unreadable or corrupt
// state all come back as the empty (unauthenticated) session.
func (s *Store) Load() model.Session {
	var access, refresh, userJSON string
	err := s.db.QueryRow(
		`SELECT access_token, refresh_token, user_json FROM console_session WHERE id = 1`,
	).Scan(&access, &refresh, &userJSON)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.Warn("session state unreadable, starting unauthenticated", "error", err)
		}
		return model.Session{}
	}

	accessToken, err := s.decode(access)
	if err != nil {
		slog.Warn("stored access token unreadable, starting unauthenticated", "error", err)
		return model.Session{}
	}

	refreshToken, err := s.decode(refresh)
	if err != nil {
		slog.Warn("stored refresh token unreadable, starting unauthenticated", "error", err)
		return model.Session{}
	}

	var user *model.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		slog.Warn("stored user unreadable, starting unauthenticated", "error", err)
		return model.Session{}
	}

	return model.Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
}

// AccessToken is the read path the outbound gateway uses per request.
func (s *Store) AccessToken() string {
	return s.Load().AccessToken
}

// Clear removes the saved session.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM console_session WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) encode(token string) (string, error) {
	if s.box == nil || token == "" {
		return token, nil
	}

	return s.box.seal(token)
}

func (s *Store) decode(stored string) (string, error) {
	return openStored(s.box, stored)
}
