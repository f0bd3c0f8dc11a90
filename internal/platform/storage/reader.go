package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var (
	errInvalidBucket = errors.New("storage: bucket name is required")
	errInvalidObject = errors.New("storage: object name is required")
	errClosed        = errors.New("storage: reader closed")
)

// Reader opens Cloud Storage objects. The underlying client is created on the
// first read so deployments that never reference gs:// locations need no
// credentials.
type Reader struct {
	opts []option.ClientOption

	mu     sync.Mutex
	client *storage.Client
	closed bool

	newClient func(ctx context.Context, opts ...option.ClientOption) (*storage.Client, error)
}

// ReaderOption customises reader behaviour.
type ReaderOption func(*Reader)

// WithEndpoint points the client at an alternative endpoint such as an emulator.
func WithEndpoint(endpoint string) ReaderOption {
	return func(r *Reader) {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint != "" {
			r.opts = append(r.opts, option.WithEndpoint(endpoint))
		}
	}
}

// WithoutAuthentication reads public buckets without credentials.
func WithoutAuthentication() ReaderOption {
	return func(r *Reader) {
		r.opts = append(r.opts, option.WithoutAuthentication())
	}
}

// NewReader constructs a lazily connected object reader.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{newClient: storage.NewClient}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// NewReader opens bucket/object for reading. Callers must close the returned reader.
func (r *Reader) NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errInvalidBucket
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return nil, errInvalidObject
	}

	client, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: open gs://%s/%s: %w", bucket, object, err)
	}
	return rc, nil
}

// Close releases the underlying client if one was created.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *Reader) connect(ctx context.Context) (*storage.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errClosed
	}
	if r.client != nil {
		return r.client, nil
	}
	client, err := r.newClient(ctx, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	r.client = client
	return client, nil
}
