package main

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const sessionTokenKey = "api_token"

// sessionStore is the portal's local-storage analog: it keeps the bearer
// token captured from a login callback and small UI preferences.
type sessionStore struct {
	db   *sql.DB
	path string
}

func openSessionStore(path string) (*sessionStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrateSessionStore(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sessionStore{db: db, path: path}, nil
}

func migrateSessionStore(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS session (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("session store migration failed: %w", err)
		}
	}
	return nil
}

func (s *sessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sessionStore) Get(key string) (string, error) {
	if s == nil || s.db == nil {
		return "", nil
	}
	var value string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *sessionStore) Set(key, value string) error {
	if s == nil || s.db == nil {
		return nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO session (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	return err
}

func (s *sessionStore) Delete(key string) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(`DELETE FROM session WHERE key = ?`, key)
	return err
}

func (s *sessionStore) Token() string {
	value, err := s.Get(sessionTokenKey)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

func (s *sessionStore) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Delete(sessionTokenKey)
	}
	return s.Set(sessionTokenKey, token)
}
