// Package engine owns the canonical lead collection.
//
// The local collection is always the source of truth for readers. Remote
// results arrive later on background goroutines and enter only through Merge,
// which replaces the collection wholesale. Mutations are serialised in the
// order they are issued; readers get whole snapshots and never see a torn
// update.
//
// Every commit persists the collection locally, notifies observers and gives
// the backup scheduler a chance to upload a daily snapshot.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kmrtax/kmr-leads/internal/codec"
	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/lead"
	"github.com/kmrtax/kmr-leads/internal/metrics"
	"github.com/kmrtax/kmr-leads/internal/remote"
)

// Gateway is the remote backend. A gateway without a backend returns
// remote.ErrUnavailable from every call.
type Gateway interface {
	FetchAll(ctx context.Context) ([]lead.Lead, error)
	InsertOne(ctx context.Context, l lead.Lead) error
	UploadBackup(ctx context.Context, data []byte, label string) error
	// BackupAvailable reports whether UploadBackup has a bucket to write to.
	BackupAvailable() bool
}

// Store persists the collection and the last backup time. Implementations
// swallow their own failures and must be safe for concurrent use.
type Store interface {
	Load() []lead.Lead
	Save(leads []lead.Lead)
	LastBackup() (time.Time, bool)
	SetLastBackup(t time.Time)
}

// Engine coordinates the local store, the remote gateway and the backup scheduler.
type Engine struct {
	store   Store
	gateway Gateway
	clock   Clock

	mu        sync.Mutex // serialises mutations
	ctx       context.Context
	observers []func([]lead.Lead)

	leads     atomic.Pointer[[]lead.Lead]
	backingUp atomic.Bool
	tasks     sync.WaitGroup
}

// New creates an engine with an empty collection. Call Load or Start next.
func New(store Store, gateway Gateway, clock Clock) *Engine {
	if clock == nil {
		clock = RealClock{}
	}
	e := &Engine{
		store:   store,
		gateway: gateway,
		clock:   clock,
		ctx:     context.Background(),
	}
	empty := []lead.Lead{}
	e.leads.Store(&empty)
	return e
}

// Load replaces the collection with the locally cached one.
func (e *Engine) Load() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.commitLocked(Merge(e.store.Load(), nil))
	slog.Info(config.MsgEngineStarted,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, len(e.snapshot()))
}

// Start loads the local collection and fetches the remote one in the
// background. ctx bounds every background task the engine starts afterwards.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	e.ctx = ctx
	e.mu.Unlock()

	e.Load()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.goRemoteLocked(func(ctx context.Context) {
		_, _ = e.Refresh(ctx)
	})
}

// Refresh fetches the remote collection and merges it in. It returns the
// number of remote records. A missing backend yields remote.ErrUnavailable and
// a failed fetch a *remote.Error; in both cases the collection is untouched.
func (e *Engine) Refresh(ctx context.Context) (int, error) {
	log := slog.With(config.LogKeyComponent, config.CompEngine, config.LogKeyOp, config.OpFetch)

	incoming, err := e.gateway.FetchAll(ctx)
	switch {
	case errors.Is(err, remote.ErrUnavailable):
		log.Info(config.MsgFetchSkipped)
		return 0, err
	case err != nil:
		log.Warn(config.MsgFetchFailed, config.LogKeyError, err)
		return 0, err
	}

	before := len(e.snapshot())
	e.Merge(incoming)
	log.Info(config.MsgFetchMerged,
		config.LogKeyCount, len(incoming),
		config.LogKeyBefore, before,
		config.LogKeyAfter, len(e.snapshot()))
	return len(incoming), nil
}

// Leads returns a copy of the canonical collection, newest first.
func (e *Engine) Leads() []lead.Lead {
	cur := e.snapshot()
	out := make([]lead.Lead, len(cur))
	copy(out, cur)
	return out
}

// Find returns the lead with the given id.
func (e *Engine) Find(id string) (lead.Lead, bool) {
	for _, l := range e.snapshot() {
		if l.ID == id {
			return l, true
		}
	}
	return lead.Lead{}, false
}

// Add puts l at the front of the collection and pushes it to the remote
// table in the background. A failed push is logged and not retried.
func (e *Engine) Add(l lead.Lead) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.snapshot()
	next := make([]lead.Lead, 0, len(cur)+1)
	next = append(next, l)
	next = append(next, cur...)
	e.commitLocked(next)

	e.goRemoteLocked(func(ctx context.Context) {
		log := slog.With(
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyOp, config.OpInsert,
			config.LogKeyLeadID, l.ID)

		err := e.gateway.InsertOne(ctx, l)
		switch {
		case errors.Is(err, remote.ErrUnavailable):
			log.Debug(config.MsgRemoteSkipped)
		case err != nil:
			log.Warn(config.MsgInsertFailed, config.LogKeyError, err)
		default:
			log.Debug(config.MsgInsertDone)
		}
	})
}

// Delete removes the lead with the given id locally. The remote copy is kept.
// It reports whether a lead was removed.
func (e *Engine) Delete(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.snapshot()
	next := make([]lead.Lead, 0, len(cur))
	for _, l := range cur {
		if l.ID != id {
			next = append(next, l)
		}
	}
	if len(next) == len(cur) {
		return false
	}
	e.commitLocked(next)
	return true
}

// Merge reconciles incoming into the collection.
func (e *Engine) Merge(incoming []lead.Lead) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.commitLocked(Merge(e.snapshot(), incoming))
}

// Import merges a JSON backup into the collection and returns the number of
// records in the payload. Invalid payloads fail with codec.ErrInvalidFormat
// and leave the collection untouched.
func (e *Engine) Import(data []byte) (int, error) {
	incoming, err := codec.DecodeJSON(data)
	if err != nil {
		return 0, err
	}
	e.Merge(incoming)
	slog.Info(config.MsgImportDone,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, len(incoming))
	return len(incoming), nil
}

// BackupNow uploads the collection immediately, whatever the schedule, and
// returns the object label. The scheduled backup time is not updated.
func (e *Engine) BackupNow(ctx context.Context) (string, error) {
	if !e.gateway.BackupAvailable() {
		return "", remote.ErrUnavailable
	}
	data, err := codec.ExportJSON(e.snapshot())
	if err != nil {
		return "", err
	}
	label := codec.RemoteBackupLabel(e.clock.Now())

	if err := e.gateway.UploadBackup(ctx, data, label); err != nil {
		if !errors.Is(err, remote.ErrUnavailable) {
			metrics.RecordBackup(config.ResultError)
		}
		return "", err
	}
	metrics.RecordBackup(config.ResultOK)
	slog.Info(config.MsgBackupDone,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyLabel, label,
		config.LogKeySizeBytes, len(data))
	return label, nil
}

// Subscribe registers fn to receive every new collection, starting with the
// current one. fn runs while the engine is locked: it must not mutate the
// engine nor modify the slice.
func (e *Engine) Subscribe(fn func([]lead.Lead)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.observers = append(e.observers, fn)
	fn(e.snapshot())
}

// Wait blocks until every background task has finished.
func (e *Engine) Wait() {
	e.tasks.Wait()
}

// Drain waits for background tasks for at most timeout and reports whether they all finished.
func (e *Engine) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		e.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		slog.Warn(config.MsgDrainTimeout,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyDuration, timeout.Milliseconds())
		return false
	}
}

func (e *Engine) snapshot() []lead.Lead {
	return *e.leads.Load()
}

// commitLocked publishes next as the canonical collection. Callers hold e.mu.
func (e *Engine) commitLocked(next []lead.Lead) {
	e.leads.Store(&next)
	e.store.Save(next)
	metrics.SetLeads(len(next))

	for _, fn := range e.observers {
		fn(next)
	}
	e.scheduleBackupLocked(next)
}

// scheduleBackupLocked starts the daily backup when it is due. Empty
// collections are never uploaded and only one upload runs at a time. The
// due check, the label and the recorded timestamp share one clock reading.
func (e *Engine) scheduleBackupLocked(leads []lead.Lead) {
	if len(leads) == 0 || !e.gateway.BackupAvailable() {
		return
	}
	now := e.clock.Now()
	last, hasLast := e.store.LastBackup()
	if !IsDue(last, hasLast, now) {
		return
	}

	log := slog.With(config.LogKeyComponent, config.CompEngine, config.LogKeyOp, config.OpUpload)
	if !e.backingUp.CompareAndSwap(false, true) {
		log.Debug(config.MsgBackupBusy)
		return
	}

	data, err := codec.ExportJSON(leads)
	if err != nil {
		e.backingUp.Store(false)
		log.Warn(config.MsgBackupFailed, config.LogKeyError, err)
		return
	}
	label := codec.RemoteBackupLabel(now)
	log.Debug(config.MsgBackupDue, config.LogKeyLabel, label)

	e.goRemoteLocked(func(ctx context.Context) {
		defer e.backingUp.Store(false)

		err := e.gateway.UploadBackup(ctx, data, label)
		switch {
		case errors.Is(err, remote.ErrUnavailable):
			log.Debug(config.MsgRemoteSkipped)
		case err != nil:
			metrics.RecordBackup(config.ResultError)
			log.Warn(config.MsgBackupFailed, config.LogKeyError, err)
		default:
			e.store.SetLastBackup(now)
			metrics.RecordBackup(config.ResultOK)
			log.Info(config.MsgBackupDone,
				config.LogKeyLabel, label,
				config.LogKeySizeBytes, len(data))
		}
	})
}

// goRemoteLocked runs fn on a tracked goroutine bounded by RemoteTimeout.
// Callers hold e.mu.
func (e *Engine) goRemoteLocked(fn func(ctx context.Context)) {
	parent := e.ctx
	e.tasks.Add(1)
	go func() {
		defer e.tasks.Done()
		ctx, cancel := context.WithTimeout(parent, config.RemoteTimeout)
		defer cancel()
		fn(ctx)
	}()
}
