package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCS reads objects from Google Cloud Storage using application default
// credentials.
type GCS struct {
	client *gcs.Client
}

// NewGCS creates the storage client.
func NewGCS(ctx context.Context) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}
	return &GCS{client: client}, nil
}

// GCSOpener returns an Opener for Router.Register.
func GCSOpener() Opener {
	return func(ctx context.Context) (Backend, error) {
		return NewGCS(ctx)
	}
}

// Get downloads bucket/object.
func (c *GCS) Get(ctx context.Context, bucket, object string) ([]byte, error) {
	r, err := c.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening gcs object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading gcs object: %w", err)
	}
	return data, nil
}

// Close releases the underlying client.
func (c *GCS) Close() error {
	return c.client.Close()
}
