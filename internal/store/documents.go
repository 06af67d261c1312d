package store

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/kmrtax/kmr-leads/internal/config"
)

// Documents keeps each value in its own document of an app's fyne.Storage.
// SetString returns only after the document is written and closed, so values
// survive a process that never runs the GUI event loop.
type Documents struct {
	mu      sync.Mutex
	storage fyne.Storage
}

// NewDocuments wraps the document storage of an app created with app.NewWithID.
func NewDocuments(s fyne.Storage) *Documents {
	return &Documents{storage: s}
}

// String returns the document named key, or "" when it does not exist or
// cannot be read.
func (d *Documents) String(key string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, err := d.storage.Open(key)
	if err != nil {
		return ""
	}
	defer func() {
		_ = r.Close()
	}()

	raw, err := io.ReadAll(r)
	if err != nil {
		slog.Warn(config.ErrStoreRead,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyKey, key,
			config.LogKeyError, err)
		return ""
	}
	return string(raw)
}

// SetString replaces the document named key with value.
func (d *Documents) SetString(key string, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.write(key, []byte(value)); err != nil {
		slog.Warn(config.ErrStoreWrite,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyKey, key,
			config.LogKeyError, err)
	}
}

// RemoveValue deletes the document named key. A missing document is not an error.
func (d *Documents) RemoveValue(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.storage.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn(config.ErrStoreRemove,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyKey, key,
			config.LogKeyError, err)
	}
}

// write uses Save for an existing document and Create for a new one.
func (d *Documents) write(key string, data []byte) error {
	w, err := d.storage.Save(key)
	if err != nil {
		w, err = d.storage.Create(key)
		if err != nil {
			return err
		}
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
