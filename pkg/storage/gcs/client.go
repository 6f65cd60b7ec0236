package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/dkowalski/containerdepot-backend/pkg/config"
	"github.com/dkowalski/containerdepot-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

// Client wraps the GCS SDK with the configured default bucket.
type Client struct {
	sdk           *storage.Client
	defaultBucket string
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient builds a GCS client and verifies the configured bucket is reachable.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	var opts []option.ClientOption
	switch {
	case gcp.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case gcp.ApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}

	sdk, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}

	client := &Client{
		sdk:           sdk,
		defaultBucket: cfg.BucketName,
	}

	if err := client.Ping(ctx); err != nil {
		_ = sdk.Close()
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "gcs client initialized")
	}

	return client, nil
}

// DefaultBucket reports the configured bucket name.
func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.defaultBucket
}

// Upload streams the reader into the default bucket and returns the public object URL.
func (c *Client) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	if c == nil || c.sdk == nil {
		return "", errors.New("gcs client not initialized")
	}
	if objectName == "" {
		return "", errors.New("object name is required")
	}

	w := c.sdk.Bucket(c.defaultBucket).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("uploading object %q: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing object %q: %w", objectName, err)
	}

	return c.ObjectURL(objectName), nil
}

// Delete removes the named object from the default bucket.
func (c *Client) Delete(ctx context.Context, objectName string) error {
	if c == nil || c.sdk == nil {
		return errors.New("gcs client not initialized")
	}
	err := c.sdk.Bucket(c.defaultBucket).Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting object %q: %w", objectName, err)
	}
	return nil
}

// ObjectURL returns the canonical public URL for an object in the default bucket.
func (c *Client) ObjectURL(objectName string) string {
	return fmt.Sprintf(
		"https://storage.googleapis.com/%s/%s",
		url.PathEscape(c.defaultBucket),
		url.PathEscape(objectName),
	)
}

// Ping verifies the configured bucket exists and is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.sdk == nil {
		return errors.New("gcs client not initialized")
	}
	if c.defaultBucket == "" {
		return errors.New("gcs bucket not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.sdk.Bucket(c.defaultBucket).Attrs(ctx); err != nil {
		return fmt.Errorf("checking bucket %q: %w", c.defaultBucket, err)
	}
	return nil
}

// Close releases the underlying SDK resources.
func (c *Client) Close() error {
	if c == nil || c.sdk == nil {
		return nil
	}
	return c.sdk.Close()
}
