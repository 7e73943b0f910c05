package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.LoggedIn() {
		t.Error("expected an empty session")
	}
	if got := s.Preference("registry", "diabetes"); got != "diabetes" {
		t.Errorf("expected default preference, got %q", got)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	s.SetLogin("alice@example.org", "Doctor", "jwt-token")
	s.SetPreference("registry", "asthma")
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Token() != "jwt-token" || loaded.Username != "alice@example.org" || loaded.Role != "Doctor" {
		t.Errorf("unexpected session %+v", loaded)
	}
	if got := loaded.Preference("registry", ""); got != "asthma" {
		t.Errorf("expected registry preference asthma, got %q", got)
	}
}

func TestClearKeepsPreferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	s, _ := Load(path)
	s.SetLogin("bob", "Nurse", "t")
	s.SetPreference("theme", "dark")
	s.Clear()
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	loaded, _ := Load(path)
	if loaded.LoggedIn() {
		t.Error("expected logged out session")
	}
	if loaded.Preference("theme", "") != "dark" {
		t.Error("expected preferences to survive Clear")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("token: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected a parse error")
	}
}
