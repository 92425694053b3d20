// Package blobstore uploads and serves book cover images through an
// S3-compatible object storage HTTP API (Supabase storage layout). Covers are
// stored under a per-bucket path; the public URL for a stored object is a
// pure function of bucket and path, so resolved URLs are memoized.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/parishlib/libris/internal/conf"
	"github.com/parishlib/libris/internal/errors"
	"github.com/parishlib/libris/internal/httpclient"
	"github.com/parishlib/libris/internal/logging"
)

var (
	serviceLogger   *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	serviceLogger, _, err = logging.NewFileLogger("logs/blobstore.log", "blobstore", serviceLevelVar)
	if err != nil || serviceLogger == nil {
		serviceLogger = slog.New(slog.NewJSONHandler(io.Discard, nil)).With("service", "blobstore")
	}
}

// Config holds object storage connection settings.
type Config struct {
	// URL is the storage service base URL, e.g. https://x.supabase.co.
	URL string
	// Bucket is the bucket holding cover images.
	Bucket string
	// APIKey authorizes uploads and removals.
	APIKey string
	// Timeout bounds each storage request. Zero uses a 30s default.
	Timeout time.Duration
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(settings *conf.Settings) Config {
	return Config{
		URL:    settings.Storage.URL,
		Bucket: settings.Storage.Bucket,
		APIKey: settings.Storage.APIKey,
	}
}

// Client talks to the object storage API.
type Client struct {
	http    *httpclient.Client
	baseURL string
	bucket  string
	apiKey  string
	urls    *gocache.Cache
}

// NewClient creates a storage client. URL and Bucket are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.Newf("storage URL is required").
			Category(errors.CategoryConfiguration).
			Component("blobstore").
			Build()
	}
	if cfg.Bucket == "" {
		return nil, errors.Newf("storage bucket is required").
			Category(errors.CategoryConfiguration).
			Component("blobstore").
			Build()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	hc := httpclient.New(&httpclient.Config{
		DefaultTimeout: timeout,
		Token:          func() string { return cfg.APIKey },
	})
	hc.SetBeforeRequestHook(func(req *http.Request) {
		if cfg.APIKey != "" {
			req.Header.Set("apikey", cfg.APIKey)
		}
	})

	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		bucket:  cfg.Bucket,
		apiKey:  cfg.APIKey,
		urls:    gocache.New(12*time.Hour, time.Hour),
	}, nil
}

// Close releases connection pool resources.
func (c *Client) Close() {
	if c.http != nil {
		c.http.Close()
	}
}

func (c *Client) objectURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, objectPath)
}

// Upload stores an image and returns its object path. The stored name is
// randomized to avoid collisions between covers with the same filename.
func (c *Client) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.Newf("empty upload for %q", filename).
			Category(errors.CategoryImageUpload).
			Component("blobstore").
			Build()
	}

	objectPath := uuid.NewString() + path.Ext(filename)
	resp, err := c.http.Post(ctx, c.objectURL(objectPath), contentType, data)
	if err != nil {
		return "", errors.Newf("uploading %q: %w", filename, err).
			Category(errors.CategoryImageUpload).
			Component("blobstore").
			Context("object_path", objectPath).
			Build()
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode >= 400 {
		return "", errors.Newf("uploading %q: storage returned status %d", filename, resp.StatusCode).
			Category(errors.CategoryImageUpload).
			Component("blobstore").
			Context("object_path", objectPath).
			Context("status_code", resp.StatusCode).
			Build()
	}

	serviceLogger.Debug("uploaded cover image",
		"object_path", objectPath,
		"size_bytes", len(data))
	return objectPath, nil
}

// PublicURL resolves the publicly servable URL for a stored object.
func (c *Client) PublicURL(objectPath string) string {
	if cached, ok := c.urls.Get(objectPath); ok {
		return cached.(string)
	}
	u := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, objectPath)
	c.urls.SetDefault(objectPath, u)
	return u
}

// Remove deletes a stored object. Removing a missing object is not an error:
// the desired end state is "object absent" either way.
func (c *Client) Remove(ctx context.Context, objectPath string) error {
	if objectPath == "" {
		return nil
	}

	resp, err := c.http.Delete(ctx, c.objectURL(objectPath), "application/json", nil)
	if err != nil {
		return errors.Newf("removing %q: %w", objectPath, err).
			Category(errors.CategoryNetwork).
			Component("blobstore").
			Build()
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		return errors.Newf("removing %q: storage returned status %d", objectPath, resp.StatusCode).
			Category(errors.CategoryNetwork).
			Component("blobstore").
			Context("status_code", resp.StatusCode).
			Build()
	}

	c.urls.Delete(objectPath)
	return nil
}
