// Package store persists journal documents as a YAML file or in SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cleared-dev/ledgr/internal/config"
	"github.com/cleared-dev/ledgr/internal/document"
)

// Backend loads and saves the whole journal document.
type Backend interface {
	Load(ctx context.Context) (*document.Document, error)
	Save(ctx context.Context, doc *document.Document) error
	Close() error
}

// Open returns the backend configured in cfg. Relative paths are resolved
// against root.
func Open(root string, cfg config.StorageConfig) (Backend, error) {
	path := cfg.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	switch cfg.Backend {
	case config.BackendYAML, "":
		return NewFile(path), nil
	case config.BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// File keeps the document in a single YAML file.
type File struct {
	path string
}

// NewFile returns a backend for the YAML document at path.
func NewFile(path string) *File { return &File{path: path} }

// Path returns the document path.
func (f *File) Path() string { return f.path }

// Load reads the document. A missing file is an empty journal.
func (f *File) Load(ctx context.Context) (*document.Document, error) {
	doc, err := document.Load(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &document.Document{Version: document.Version, Entries: []document.Entry{}}, nil
	}
	return doc, err
}

// Save writes the document, creating the parent directory if needed.
func (f *File) Save(ctx context.Context, doc *document.Document) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}
	return doc.Save(f.path)
}

// Close is a no-op.
func (f *File) Close() error { return nil }
