package tuvibe

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Profile is the admin user attached to a session.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is the credential passed explicitly to every gateway call.
type Session struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// Valid reports whether the session carries a bearer token.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.Token) != ""
}

// SessionStore persists the credential between CLI invocations.
type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileSessionStore keeps the session as a JSON file readable only by the owner.
type FileSessionStore struct {
	Path string
}

// DefaultSessionPath returns ~/.config/tuvibe-admin/session.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("tuvibe: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "tuvibe-admin", "session.json"), nil
}

// Load returns the stored session. A missing file yields an empty session.
func (s FileSessionStore) Load() (Session, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("tuvibe: read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("tuvibe: parse session: %w", err)
	}
	return sess, nil
}

// Save writes the session, creating parent directories.
func (s FileSessionStore) Save(sess Session) error {
	if !sess.Valid() {
		return ErrMissingCredential
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("tuvibe: mkdir %s: %w", filepath.Dir(s.Path), err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("tuvibe: encode session: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("tuvibe: write session: %w", err)
	}
	return nil
}

// Clear removes the stored session.
func (s FileSessionStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("tuvibe: remove session: %w", err)
	}
	return nil
}
