// Package session persists the login token and UI preferences between
// runs in a small YAML file.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Session is the explicit per-user context handed to the API client and
// the CLI.
type Session struct {
	mu   sync.RWMutex
	path string

	Username    string            `yaml:"username,omitempty"`
	Role        string            `yaml:"role,omitempty"`
	AuthToken   string            `yaml:"token,omitempty"`
	Preferences map[string]string `yaml:"preferences,omitempty"`
}

// DefaultPath returns the session file location under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ncdintake-session.yaml"
	}
	return filepath.Join(dir, "ncdintake", "session.yaml")
}

// Load reads the session at path. A missing file yields an empty session.
func Load(path string) (*Session, error) {
	s := &Session{path: path, Preferences: map[string]string{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	if s.Preferences == nil {
		s.Preferences = map[string]string{}
	}
	return s, nil
}

// Path returns the file the session is saved to.
func (s *Session) Path() string { return s.path }

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AuthToken
}

// LoggedIn reports whether a token is present.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// SetLogin records a successful login.
func (s *Session) SetLogin(username, role, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Username, s.Role, s.AuthToken = username, role, token
}

// Preference returns a stored preference, or def.
func (s *Session) Preference(key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.Preferences[key]; ok {
		return v
	}
	return def
}

// SetPreference stores a UI preference such as the last used registry.
func (s *Session) SetPreference(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Preferences == nil {
		s.Preferences = map[string]string{}
	}
	s.Preferences[key] = value
}

// Clear forgets the login and keeps the preferences.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Username, s.Role, s.AuthToken = "", "", ""
}

// Save writes the session to its file with owner-only permissions.
func (s *Session) Save() error {
	s.mu.RLock()
	data, err := yaml.Marshal(s)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
