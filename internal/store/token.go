package store

import (
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
)

// SpotifyTokenKey is the settings key holding the Spotify OAuth token.
const SpotifyTokenKey = "spotify.token"

// TokenStore keeps an OAuth token as JSON under a settings key.
type TokenStore struct {
	settings *Settings
	key      string
}

// Tokens returns a token store for key.
func (s *Store) Tokens(key string) *TokenStore {
	return &TokenStore{settings: s.Settings(), key: key}
}

// LoadToken returns the stored token, or ErrNotFound.
func (t *TokenStore) LoadToken() (*oauth2.Token, error) {
	raw, err := t.settings.Get(t.key)
	if err != nil {
		return nil, err
	}

	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &tok, nil
}

// SaveToken stores tok, replacing any previous token.
func (t *TokenStore) SaveToken(tok *oauth2.Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	return t.settings.Set(t.key, string(raw))
}
