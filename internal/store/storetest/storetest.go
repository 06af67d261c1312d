// Package storetest provides a fyne.Storage rooted in a plain directory, so
// tests can reopen persisted documents without a running fyne app.
package storetest

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"github.com/kmrtax/kmr-leads/internal/config"
)

// Dir is a fyne.Storage over one directory. Like an app's document storage,
// Create fails for an existing document and Save fails for a missing one.
type Dir struct {
	Path string
}

// NewDir returns a Dir in a fresh temporary directory removed after the test.
func NewDir(t testing.TB) *Dir {
	t.Helper()
	return &Dir{Path: t.TempDir()}
}

type document struct {
	*os.File
}

func (d document) URI() fyne.URI { return storage.NewFileURI(d.Name()) }

func (s *Dir) path(name string) string { return filepath.Join(s.Path, name) }

// RootURI returns the directory URI.
func (s *Dir) RootURI() fyne.URI { return storage.NewFileURI(s.Path) }

// Create opens a new document for writing.
func (s *Dir) Create(name string) (fyne.URIWriteCloser, error) {
	f, err := os.OpenFile(s.path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, config.FilePermUserRW)
	if err != nil {
		return nil, err
	}
	return document{f}, nil
}

// Open opens an existing document for reading.
func (s *Dir) Open(name string) (fyne.URIReadCloser, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, err
	}
	return document{f}, nil
}

// Save truncates an existing document for writing.
func (s *Dir) Save(name string) (fyne.URIWriteCloser, error) {
	f, err := os.OpenFile(s.path(name), os.O_WRONLY|os.O_TRUNC, config.FilePermUserRW)
	if err != nil {
		return nil, err
	}
	return document{f}, nil
}

// Remove deletes a document.
func (s *Dir) Remove(name string) error {
	return os.Remove(s.path(name))
}

// List returns the document names.
func (s *Dir) List() []string {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
