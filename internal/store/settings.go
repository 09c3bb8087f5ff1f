package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested key does not exist.
var ErrNotFound = errors.New("not found")

// CommandsEnabledKey holds "true" or "false" for the command toggle.
const CommandsEnabledKey = "commands.enabled"

// Settings provides key-value access to the settings table.
type Settings struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *Settings {
	return &Settings{db: s.db}
}

// Get returns the value stored under key.
func (r *Settings) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set inserts or replaces the value under key.
func (r *Settings) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// Delete removes key. Deleting a missing key returns ErrNotFound.
func (r *Settings) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Keys returns all stored keys in order.
func (r *Settings) Keys() ([]string, error) {
	rows, err := r.db.Query(`SELECT key FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
