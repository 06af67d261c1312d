package remote

import (
	"context"
	"net/http"
	"strings"

	"github.com/kmrtax/kmr-leads/internal/config"
)

// StorageBucket uploads JSON blobs to a Supabase Storage bucket.
type StorageBucket struct {
	api  *api
	name string
}

// NewStorageBucket creates a bucket client for the project at baseURL.
func NewStorageBucket(baseURL, key, bucket string) (*StorageBucket, error) {
	a, err := newAPI(baseURL, key)
	if err != nil {
		return nil, err
	}
	return &StorageBucket{api: a, name: bucket}, nil
}

// table returns a PostgREST client for the same project, sharing the HTTP client.
func (b *StorageBucket) table(name string) *RESTTable {
	return &RESTTable{api: b.api, name: name}
}

// Upload writes data at path, replacing any object already there.
func (b *StorageBucket) Upload(ctx context.Context, path string, data []byte) error {
	h := http.Header{}
	h.Set(config.HeaderContentType, config.MimeJSON)
	h.Set(config.HeaderUpsert, config.UpsertTrue)

	body, err := b.api.do(ctx, http.MethodPost,
		config.PathStorage+b.name+"/"+strings.TrimLeft(path, "/"), nil, data, h)
	if err != nil {
		return err
	}
	return body.Close()
}
