// Package publish uploads the written snapshot to Google Cloud Storage so a
// static front-end can read it from a bucket.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// ContentType is set on the uploaded object
const ContentType = "application/json; charset=utf-8"

// Config captures the parameters required to publish to GCS
type Config struct {
	Bucket       string
	Object       string
	CacheControl string
}

// Attrs are the object attributes set on upload
type Attrs struct {
	ContentType  string
	CacheControl string
}

// WriterFactory opens a writer for bucket/object
type WriterFactory func(ctx context.Context, bucket, object string, attrs Attrs) io.WriteCloser

// GCS writes the snapshot to a configured bucket
type GCS struct {
	cfg       Config
	newWriter WriterFactory
	client    *storage.Client
}

// NewGCS creates a publisher using Application Default Credentials
func NewGCS(ctx context.Context, cfg Config) (*GCS, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	g := newGCS(cfg, clientWriter(client))
	g.client = client
	return g, nil
}

func newGCS(cfg Config, factory WriterFactory) *GCS {
	return &GCS{
		cfg:       cfg,
		newWriter: factory,
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("bucket name is required")
	}
	if strings.TrimSpace(c.Object) == "" {
		return fmt.Errorf("object name is required")
	}
	return nil
}

func clientWriter(client *storage.Client) WriterFactory {
	return func(ctx context.Context, bucket, object string, attrs Attrs) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = attrs.ContentType
		w.CacheControl = attrs.CacheControl
		return w
	}
}

// Publish uploads data and returns the gs:// URI of the object
func (g *GCS) Publish(ctx context.Context, data []byte) (string, error) {
	writer := g.newWriter(ctx, g.cfg.Bucket, g.cfg.Object, Attrs{
		ContentType:  ContentType,
		CacheControl: g.cfg.CacheControl,
	})

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			return "", fmt.Errorf("copy object: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("copy object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", g.cfg.Bucket, g.cfg.Object), nil
}

// Close releases the storage client
func (g *GCS) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
