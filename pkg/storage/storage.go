// Package storage fetches statement documents from the local filesystem,
// Amazon S3 or Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/ArionMiles/mynt2koinly/pkg/logging"
)

// Supported location schemes.
const (
	SchemeFile = "file"
	SchemeS3   = "s3"
	SchemeGCS  = "gs"
)

// ErrUnsupportedScheme is returned for locations whose scheme has no backend.
var ErrUnsupportedScheme = errors.New("unsupported location scheme")

// Fetcher returns the full contents of the document at location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Backend reads one object. For the file scheme bucket is empty and key is
// the filesystem path.
type Backend interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// Opener creates a Backend on first use.
type Opener func(ctx context.Context) (Backend, error)

// Location is a parsed statement location.
type Location struct {
	Scheme string
	Bucket string
	// Key is the object key, or the filesystem path for the file scheme.
	Key string
}

// Ext returns the lower-cased extension of the location's key.
func (l Location) Ext() string {
	if l.Scheme == SchemeFile {
		return strings.ToLower(filepath.Ext(l.Key))
	}
	return strings.ToLower(path.Ext(l.Key))
}

func (l Location) String() string {
	if l.Scheme == SchemeFile {
		return l.Key
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// ParseLocation accepts a bare path, a file:// URL, s3://bucket/key or
// gs://bucket/object.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, errors.New("empty location")
	}

	scheme, rest, found := strings.Cut(raw, "://")
	if !found {
		return Location{Scheme: SchemeFile, Key: raw}, nil
	}
	scheme = strings.ToLower(scheme)

	switch scheme {
	case SchemeFile:
		u, err := url.Parse(raw)
		if err != nil {
			return Location{}, fmt.Errorf("parsing file url: %w", err)
		}
		if u.Path == "" {
			return Location{}, fmt.Errorf("file url %q has no path", raw)
		}
		return Location{Scheme: SchemeFile, Key: u.Path}, nil
	case SchemeS3, SchemeGCS:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("location %q must be %s://bucket/key", raw, scheme)
		}
		return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

// Router dispatches fetches to a backend by location scheme. Backends are
// opened lazily and reused. Router is not safe for concurrent use.
type Router struct {
	openers  map[string]Opener
	backends map[string]Backend
	logger   *slog.Logger
}

// NewRouter creates a Router that serves the file scheme from the local
// filesystem. Remote schemes must be registered with Register.
func NewRouter(logger *slog.Logger) *Router {
	r := &Router{
		openers:  make(map[string]Opener),
		backends: make(map[string]Backend),
		logger:   logging.OrNop(logger).With("component", "storage"),
	}
	r.Register(SchemeFile, func(context.Context) (Backend, error) { return Local{}, nil })
	return r
}

// Register installs the opener for scheme, replacing any previous one.
func (r *Router) Register(scheme string, open Opener) {
	r.openers[scheme] = open
	delete(r.backends, scheme)
}

// Fetch implements Fetcher.
func (r *Router) Fetch(ctx context.Context, location string) ([]byte, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	backend, err := r.backend(ctx, loc.Scheme)
	if err != nil {
		return nil, err
	}

	data, err := backend.Get(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", loc, err)
	}

	r.logger.Debug("fetched statement", "location", loc.String(), "bytes", len(data))
	return data, nil
}

// Close closes every opened backend that holds resources.
func (r *Router) Close() error {
	var errs []error
	for scheme, b := range r.backends {
		if c, ok := b.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s backend: %w", scheme, err))
			}
		}
	}
	clear(r.backends)
	return errors.Join(errs...)
}

func (r *Router) backend(ctx context.Context, scheme string) (Backend, error) {
	if b, ok := r.backends[scheme]; ok {
		return b, nil
	}

	open, ok := r.openers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}

	b, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", scheme, err)
	}
	r.backends[scheme] = b
	return b, nil
}
