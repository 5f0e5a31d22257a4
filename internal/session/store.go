// Package session persists the session cookie between CLI invocations.
package session

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/eshaffer321/agencia-go/internal/types"
	"github.com/pkg/errors"
)

// Cookie is the persisted form of a session cookie
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// File is the on-disk session record
type File struct {
	BaseURL string    `json:"baseUrl"`
	Cookies []Cookie  `json:"cookies"`
	SavedAt time.Time `json:"savedAt"`
}

// Store reads and writes the session file
type Store struct {
	path   string
	logger types.Logger
}

// NewStore creates a store for path
func NewStore(path string, logger types.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the session file path
func (s *Store) Path() string {
	return s.path
}

// Save writes the cookies for baseURL
func (s *Store) Save(baseURL string, cookies []*http.Cookie) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create session directory")
	}

	f := File{BaseURL: baseURL, SavedAt: time.Now().UTC()}
	for _, c := range cookies {
		f.Cookies = append(f.Cookies, Cookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write session file")
	}

	if s.logger != nil {
		s.logger.Info("Session saved", "path", s.path, "cookies", len(f.Cookies))
	}
	return nil
}

// Load returns the cookies saved for baseURL. A missing file, or one saved
// for another base URL, yields ErrNoSession.
func (s *Store) Load(baseURL string) ([]*http.Cookie, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrNoSession
		}
		return nil, errors.Wrap(err, "failed to read session file")
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal session")
	}

	if f.BaseURL != baseURL || len(f.Cookies) == 0 {
		return nil, types.ErrNoSession
	}

	cookies := make([]*http.Cookie, 0, len(f.Cookies))
	for _, c := range f.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}

	if s.logger != nil {
		s.logger.Info("Session loaded", "path", s.path)
	}
	return cookies, nil
}

// Clear removes the session file
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove session file")
	}
	return nil
}
