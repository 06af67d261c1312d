// Package store persists the lead collection and the last cloud backup time
// on the device.
//
// Both values live under fixed keys of a key-value backend. The CLI uses
// Documents, one synchronous document per key in the app's fyne storage. The
// collection is always rewritten whole, as one JSON blob. Every
// failure is logged and swallowed: the in-memory collection stays
// authoritative for the session.
package store

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/lead"
)

// Preferences is the key-value backend the store needs. Both Documents and
// fyne.Preferences satisfy it.
type Preferences interface {
	String(key string) string
	SetString(key string, value string)
	RemoveValue(key string)
}

// LocalStore reads and writes the persisted collection.
type LocalStore struct {
	prefs Preferences
}

// New wraps a key-value backend.
func New(prefs Preferences) *LocalStore {
	return &LocalStore{prefs: prefs}
}

// Load returns the cached collection. Missing or corrupt content yields an empty collection.
func (s *LocalStore) Load() []lead.Lead {
	raw := s.prefs.String(config.PrefLeads)
	if raw == "" {
		return []lead.Lead{}
	}

	var leads []lead.Lead
	if err := json.Unmarshal([]byte(raw), &leads); err != nil {
		slog.Warn(config.ErrStoreCorrupt,
			config.LogKeyComponent, config.CompStore,
			config.LogKeySizeBytes, len(raw),
			config.LogKeyError, err)
		return []lead.Lead{}
	}
	if leads == nil {
		return []lead.Lead{}
	}
	return leads
}

// Save replaces the persisted collection.
func (s *LocalStore) Save(leads []lead.Lead) {
	if leads == nil {
		leads = []lead.Lead{}
	}
	raw, err := json.Marshal(leads)
	if err != nil {
		slog.Warn(config.ErrStoreEncode,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyError, err)
		return
	}
	s.prefs.SetString(config.PrefLeads, string(raw))
	slog.Debug(config.MsgCommit,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyCount, len(leads),
		config.LogKeySizeBytes, len(raw))
}

// LastBackup returns the time of the last successful scheduled backup.
// ok is false when none was recorded or the stored value is unreadable.
func (s *LocalStore) LastBackup() (time.Time, bool) {
	raw := s.prefs.String(config.PrefLastBackup)
	if raw == "" {
		return time.Time{}, false
	}
	t, ok := lead.ParseTimestamp(raw)
	if !ok {
		slog.Warn(config.ErrStoreStamp,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyLast, raw)
		return time.Time{}, false
	}
	return t, true
}

// SetLastBackup records t as the last successful scheduled backup.
func (s *LocalStore) SetLastBackup(t time.Time) {
	s.prefs.SetString(config.PrefLastBackup, lead.FormatTimestamp(t))
}

// Reset removes both persisted values.
func (s *LocalStore) Reset() {
	s.prefs.RemoveValue(config.PrefLeads)
	s.prefs.RemoveValue(config.PrefLastBackup)
}
