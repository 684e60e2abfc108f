package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"partnerdash/internal/session"
)

type savedSession struct {
	ID          string    `yaml:"id"`
	AccessToken string    `yaml:"access_token"`
	UserID      string    `yaml:"user_id"`
	Email       string    `yaml:"email"`
	ExpiresAt   time.Time `yaml:"expires_at"`
}

// sessionFile keeps the bearer session between invocations. The file is
// readable by the owner only.
type sessionFile struct {
	path string
}

func (f *sessionFile) Load() (*session.Session, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var saved savedSession
	if err := yaml.Unmarshal(raw, &saved); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	if saved.AccessToken == "" {
		return nil, nil
	}
	return &session.Session{
		ID:          saved.ID,
		AccessToken: saved.AccessToken,
		User:        session.User{ID: saved.UserID, Email: saved.Email},
		ExpiresAt:   saved.ExpiresAt,
	}, nil
}

// Save writes s, or removes the file when s is nil.
func (f *sessionFile) Save(s *session.Session) error {
	if s == nil {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	raw, err := yaml.Marshal(savedSession{
		ID:          s.ID,
		AccessToken: s.AccessToken,
		UserID:      s.User.ID,
		Email:       s.User.Email,
		ExpiresAt:   s.ExpiresAt,
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o600)
}
