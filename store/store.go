// Package store persists the local user profile between sessions. The
// profile is a single JSON file under the OS user config dir; losing it
// only means re-onboarding, so corruption is treated as absence.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"chekinn/log"
)

// Profile is the locally remembered identity: enough to resume a
// conversation without asking the backend who we are.
type Profile struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	City        string `json:"city,omitempty"`
	CurrentRole string `json:"current_role,omitempty"`
	Track       string `json:"track,omitempty"`
	Voice       string `json:"voice,omitempty"`
}

type Store struct {
	path string
}

// New places the profile under dir, or under the OS user config dir when
// dir is empty.
func New(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "chekinn")
	}
	return &Store{path: filepath.Join(dir, "user.json")}, nil
}

func (s *Store) Path() string { return s.path }

// Load returns the saved profile, or nil when none exists. An unreadable
// or corrupt file is logged and treated as absent.
func (s *Store) Load() (*Profile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warnf("profile file unreadable, ignoring: %v", err)
		return nil, nil
	}
	if p.UserID == "" {
		log.Warn("profile file has no user id, ignoring")
		return nil, nil
	}
	return &p, nil
}

func (s *Store) Save(p Profile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the saved profile; clearing an absent profile is fine.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
