// Package remote is the boundary to the Supabase backend: the leads table and
// the backup bucket.
//
// Which backend serves the table is decided once by New. A Client with no
// table and no bucket is the local-only steady state: every call returns
// ErrUnavailable, which callers treat as a normal outcome rather than a
// failure. Transport, auth and decode problems come back as *Error.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/lead"
	"github.com/kmrtax/kmr-leads/internal/metrics"
)

// ErrUnavailable means no remote backend is configured for the operation.
var ErrUnavailable = errors.New(config.ErrRemoteUnavailable)

// Error is a failed remote operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %v", config.ErrRemoteFailure, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Table reads and writes rows of the leads table.
type Table interface {
	Select(ctx context.Context) ([]Row, error)
	Insert(ctx context.Context, row Row) error
}

// Bucket stores backup blobs.
type Bucket interface {
	Upload(ctx context.Context, path string, data []byte) error
}

// Client implements the gateway operations over an optional Table and Bucket.
type Client struct {
	table   Table
	bucket  Bucket
	backend string
}

// NewClient assembles a client from explicit backends. Either may be nil.
func NewClient(table Table, bucket Bucket, backend string) *Client {
	if table == nil && backend == "" {
		backend = config.BackendNone
	}
	return &Client{table: table, bucket: bucket, backend: backend}
}

// New picks the backends from settings. A DATABASE_URL selects direct
// Postgres access; otherwise Supabase credentials select PostgREST. Backups
// need Supabase credentials in both cases.
func New(ctx context.Context, s config.Settings) *Client {
	var (
		table   Table
		bucket  Bucket
		backend = config.BackendNone
	)

	if s.DatabaseURL != "" {
		t, err := OpenSQLTable(ctx, s.DatabaseURL, s.Table)
		if err != nil {
			slog.Warn(config.MsgDBFallback,
				config.LogKeyComponent, config.CompRemote,
				config.LogKeyError, err)
		} else {
			table, backend = t, config.BackendSQL
		}
	}

	if s.StorageConfigured() {
		b, err := NewStorageBucket(s.SupabaseURL, s.SupabaseKey, s.Bucket)
		if err != nil {
			slog.Warn(config.ErrInvalidURL,
				config.LogKeyComponent, config.CompRemote,
				config.LogKeyError, err)
		} else {
			if table == nil {
				table, backend = b.table(s.Table), config.BackendREST
			}
			bucket = b
		}
	}

	slog.Info(config.MsgRemoteSelected,
		config.LogKeyComponent, config.CompRemote,
		config.LogKeyBackend, backend,
		config.LogKeyLabel, s.Bucket)

	return NewClient(table, bucket, backend)
}

// Available reports whether the leads table can be reached.
func (c *Client) Available() bool { return c.table != nil }

// BackupAvailable reports whether backups have a bucket to go to.
func (c *Client) BackupAvailable() bool { return c.bucket != nil }

// Backend names the table backend.
func (c *Client) Backend() string { return c.backend }

// FetchAll returns every remote lead, newest first.
func (c *Client) FetchAll(ctx context.Context) ([]lead.Lead, error) {
	if c.table == nil {
		metrics.RecordRemote(config.OpFetch, config.ResultSkipped)
		return nil, ErrUnavailable
	}

	rows, err := c.table.Select(ctx)
	if err != nil {
		metrics.RecordRemote(config.OpFetch, config.ResultError)
		return nil, &Error{Op: config.OpFetch, Err: err}
	}
	metrics.RecordRemote(config.OpFetch, config.ResultOK)

	leads := make([]lead.Lead, 0, len(rows))
	for _, r := range rows {
		leads = append(leads, r.Lead())
	}
	return leads, nil
}

// InsertOne pushes a single lead to the table.
func (c *Client) InsertOne(ctx context.Context, l lead.Lead) error {
	if c.table == nil {
		metrics.RecordRemote(config.OpInsert, config.ResultSkipped)
		return ErrUnavailable
	}
	if err := c.table.Insert(ctx, RowFromLead(l)); err != nil {
		metrics.RecordRemote(config.OpInsert, config.ResultError)
		return &Error{Op: config.OpInsert, Err: err}
	}
	metrics.RecordRemote(config.OpInsert, config.ResultOK)
	return nil
}

// UploadBackup stores data in the backup bucket under label.
func (c *Client) UploadBackup(ctx context.Context, data []byte, label string) error {
	if c.bucket == nil {
		metrics.RecordRemote(config.OpUpload, config.ResultSkipped)
		return ErrUnavailable
	}
	if err := c.bucket.Upload(ctx, label, data); err != nil {
		metrics.RecordRemote(config.OpUpload, config.ResultError)
		return &Error{Op: config.OpUpload, Err: err}
	}
	metrics.RecordRemote(config.OpUpload, config.ResultOK)
	return nil
}

// Close releases the table connection pool, if any.
func (c *Client) Close() error {
	if closer, ok := c.table.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
