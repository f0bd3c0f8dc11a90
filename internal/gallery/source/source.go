// Package source fetches the gallery's catalog and template resources from
// local files, HTTP(S) endpoints, or object storage.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResourceSize = 10 * 1024 * 1024
)

var (
	errUnsupportedScheme = errors.New("source: unsupported location scheme")
	errNoObjectReader    = errors.New("source: object storage reader not configured")
	errTooLarge          = errors.New("source: resource exceeds size limit")
)

// LoadError reports a resource that could not be fetched or parsed. It is
// fatal for the gallery instance that requested it.
type LoadError struct {
	Resource string
	Location string
	Err      error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s from %q: %v", e.Resource, e.Location, e.Err)
}

// Unwrap exposes the underlying error.
func (e *LoadError) Unwrap() error { return e.Err }

// ObjectReader opens objects from a bucket-addressed store (gs:// locations).
type ObjectReader interface {
	NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// Fetcher resolves resource locations to their bytes.
type Fetcher struct {
	http    *http.Client
	objects ObjectReader
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the client used for http(s) locations.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.http = client
		}
	}
}

// WithObjectReader enables gs:// locations.
func WithObjectReader(reader ObjectReader) Option {
	return func(f *Fetcher) {
		f.objects = reader
	}
}

// NewFetcher constructs a Fetcher with a 30s HTTP timeout by default.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fetch reads the resource at location. Plain paths and file:// URLs are read
// from disk; http(s) URLs are requested with GET; gs://bucket/object URLs go
// through the configured ObjectReader.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("source: location is required")
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Windows drive letters parse as one-letter schemes.
		return readFile(location)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return readFile(u.Path)
	case "http", "https":
		return f.fetchHTTP(ctx, u.String())
	case "gs":
		return f.fetchObject(ctx, u)
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedScheme, u.Scheme)
	}
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return readLimited(file)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch: HTTP %d", resp.StatusCode)
	}
	return readLimited(resp.Body)
}

func (f *Fetcher) fetchObject(ctx context.Context, u *url.URL) ([]byte, error) {
	if f.objects == nil {
		return nil, errNoObjectReader
	}
	bucket := u.Host
	object := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || object == "" {
		return nil, fmt.Errorf("source: invalid object location %q", u.String())
	}
	rc, err := f.objects.NewReader(ctx, bucket, object)
	if err != nil {
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	defer rc.Close()
	return readLimited(rc)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxResourceSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read: %w", err)
	}
	if len(data) > maxResourceSize {
		return nil, errTooLarge
	}
	return data, nil
}
