// Package server publishes read-only lead feeds over HTTP on the loopback
// interface, so spreadsheets, address books and calendar clients can
// subscribe to the local collection.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kmrtax/kmr-leads/internal/codec"
	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/lead"
	"github.com/kmrtax/kmr-leads/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// cacheItem stores a rendered feed and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// feed is one rendered view of the collection.
type feed struct {
	route       string
	contentType string
	render      func(leads []lead.Lead, now time.Time) ([]byte, error)

	// Readers vastly outnumber updates, so the hot path is a single atomic load.
	cache atomic.Pointer[cacheItem]
}

// FeedServer serves the lead feeds with conditional GET support.
type FeedServer struct {
	Port string

	feeds  []*feed
	router chi.Router
	now    func() time.Time
}

// NewFeedServer creates a server for the given port. Feeds answer 503 until
// the first Update.
func NewFeedServer(port string) *FeedServer {
	s := &FeedServer{
		Port: port,
		now:  func() time.Time { return time.Now().UTC() },
		feeds: []*feed{
			{route: config.RouteCSV, contentType: config.MimeCSV, render: renderCSV},
			{route: config.RouteJSON, contentType: config.MimeJSONUTF8, render: renderJSON},
			{route: config.RouteVCard, contentType: config.MimeVCard, render: renderVCard},
			{route: config.RouteFollowUps, contentType: config.MimeTextCalendar, render: codec.ExportFollowUps},
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	for _, f := range s.feeds {
		r.Handle(f.route, s.handleFeed(f))
	}
	r.Get(config.RouteHealth, s.handleHealth)
	r.Handle(config.RouteMetrics, promhttp.Handler())
	s.router = r

	return s
}

func renderCSV(leads []lead.Lead, _ time.Time) ([]byte, error) { return codec.LeadsCSV(leads), nil }
func renderJSON(leads []lead.Lead, _ time.Time) ([]byte, error) { return codec.ExportJSON(leads) }
func renderVCard(leads []lead.Lead, _ time.Time) ([]byte, error) { return codec.ExportVCard(leads) }

// Handler returns the router serving every route.
func (s *FeedServer) Handler() http.Handler {
	return s.router
}

// Start binds to the loopback interface and blocks until the context is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return fmt.Errorf(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update re-renders every feed from leads. A feed whose content did not
// change keeps its ETag and Last-Modified; a feed that fails to render keeps
// serving its previous snapshot.
func (s *FeedServer) Update(leads []lead.Lead) {
	now := s.now()
	for _, f := range s.feeds {
		data, err := f.render(leads, now)
		if err != nil {
			slog.Error(config.ErrRender,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyRoute, f.route,
				config.LogKeyError, err,
			)
			continue
		}

		hash := sha256.Sum256(data)
		etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))
		if cur := f.cache.Load(); cur != nil && cur.etag == etag {
			continue
		}

		f.cache.Store(&cacheItem{
			data:         data,
			etag:         etag,
			lastModified: now.Format(http.TimeFormat),
		})

		slog.Debug(config.MsgCacheUpdated,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRoute, f.route,
			config.LogKeySizeBytes, len(data),
			config.LogKeyETag, etag,
		)
	}
}

func (s *FeedServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(config.HeaderContentType, config.MimeTextPlain)
	if _, err := io.WriteString(w, config.HealthOK); err != nil {
		slog.Error(config.ErrWriteResp, config.LogKeyComponent, config.CompServer, config.LogKeyError, err)
	}
}

func (s *FeedServer) handleFeed(f *feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set(config.HeaderAllow, config.AllowedMethods)
			http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
			return
		}

		item := f.cache.Load()
		if item == nil {
			w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
			http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
			return
		}

		w.Header().Set(config.HeaderContentType, f.contentType)
		w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
		w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
		w.Header().Set(config.HeaderETag, item.etag)
		w.Header().Set(config.HeaderLastModified, item.lastModified)

		if notModified(r, item) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if r.Method == http.MethodGet {
			if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
				slog.Error(config.ErrWriteResp,
					config.LogKeyComponent, config.CompServer,
					config.LogKeyRoute, f.route,
					config.LogKeyError, err,
				)
			}
		}
	}
}

// notModified evaluates If-None-Match first; If-Modified-Since is only
// consulted when no entity tag was sent.
func notModified(r *http.Request, item *cacheItem) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == item.etag
	}

	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, item.lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}
