// Package partials serves the static pages and HTML fragments shared by
// every page of the web application.
package partials

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
)

//go:embed assets/*
var assetsFS embed.FS

// Names of the embedded assets
const (
	Navbar = "navbar.html"
	Page   = "page.html"
	Login  = "login.html"
)

// Loader loads assets from the embedded filesystem
type Loader struct {
	cache map[string]string
	mu    sync.RWMutex
}

// NewLoader creates a new asset loader
func NewLoader() *Loader {
	return &Loader{
		cache: make(map[string]string),
	}
}

// Load loads an asset by name
func (l *Loader) Load(name string) (string, error) {
	l.mu.RLock()
	if content, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return content, nil
	}
	l.mu.RUnlock()

	content, err := assetsFS.ReadFile(path.Join("assets", name))
	if err != nil {
		return "", fmt.Errorf("failed to load asset %s: %w", name, err)
	}

	l.mu.Lock()
	l.cache[name] = string(content)
	l.mu.Unlock()

	return string(content), nil
}

// MustLoad loads an asset and panics if it is missing
func (l *Loader) MustLoad(name string) string {
	content, err := l.Load(name)
	if err != nil {
		// Assets are embedded, this only fails on a bad name
		panic(err)
	}
	return content
}

// List returns the names of all HTML assets
func (l *Loader) List() ([]string, error) {
	entries, err := fs.ReadDir(assetsFS, "assets")
	if err != nil {
		return nil, fmt.Errorf("failed to read assets: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Global loader instance
var defaultLoader = NewLoader()

// MustLoad is a convenience function using the default loader
func MustLoad(name string) string {
	return defaultLoader.MustLoad(name)
}
