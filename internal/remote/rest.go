package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/kmrtax/kmr-leads/internal/config"
)

// api is an authenticated HTTP client for one Supabase project.
type api struct {
	client *http.Client
	base   *url.URL
	key    string
}

// newAPI validates the project URL and prepares the client.
func newAPI(baseURL, key string) (*api, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%s: missing host", config.ErrInvalidURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""

	return &api{
		client: &http.Client{Timeout: config.HTTPTimeout},
		base:   u,
		key:    key,
	}, nil
}

// do sends one request and returns the size-limited body of a 2xx response.
// The query string is kept out of the logs.
func (a *api) do(ctx context.Context, method, path string, query url.Values, body []byte, header http.Header) (io.ReadCloser, error) {
	u := *a.base
	u.Path += path
	u.RawQuery = query.Encode()
	safeURL := u.Scheme + "://" + u.Host + u.Path

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompRemote),
		slog.String(config.LogKeyURL, safeURL),
	)
	log.Debug(config.MsgRequest, slog.String(config.LogKeyOp, method))

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAPIKey, a.key)
	req.Header.Set(config.HeaderAuthorization, config.BearerPrefix+a.key)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		log.Warn(config.ErrUnexpectedStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("%s: %d %s", config.ErrUnexpectedStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, config.MaxHTTPResponseSize),
		Closer: resp.Body,
	}, nil
}

// limitedReadCloser reads through a size limit and closes the underlying body.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}

func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	return l.Reader.Read(p)
}

func (l *limitedReadCloser) Close() error {
	return l.Closer.Close()
}

// RESTTable accesses the leads table through PostgREST.
type RESTTable struct {
	api  *api
	name string
}

// NewRESTTable creates a PostgREST table client for the project at baseURL.
func NewRESTTable(baseURL, key, table string) (*RESTTable, error) {
	a, err := newAPI(baseURL, key)
	if err != nil {
		return nil, err
	}
	return &RESTTable{api: a, name: table}, nil
}

// Select returns all rows, newest first.
func (t *RESTTable) Select(ctx context.Context) ([]Row, error) {
	q := url.Values{}
	q.Set(config.QuerySelect, config.SelectAll)
	q.Set(config.QueryOrder, config.OrderNewest)

	h := http.Header{}
	h.Set(config.HeaderAccept, config.MimeJSON)

	body, err := t.api.do(ctx, http.MethodGet, config.PathREST+t.name, q, nil, h)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	var rows []Row
	if err := json.NewDecoder(body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDecodeRows, err)
	}
	return rows, nil
}

// Insert adds one row.
func (t *RESTTable) Insert(ctx context.Context, row Row) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeJSON, err)
	}

	h := http.Header{}
	h.Set(config.HeaderContentType, config.MimeJSON)
	h.Set(config.HeaderPrefer, config.PreferMinimal)

	body, err := t.api.do(ctx, http.MethodPost, config.PathREST+t.name, nil, payload, h)
	if err != nil {
		return err
	}
	return body.Close()
}
