// Package snapshot archives the rendered listing-page HTML to S3/MinIO.
//
// The page's DOM is undocumented and changes without notice; when the filter
// or extractor heuristics stop matching, the snapshot of the run that broke
// is the only way to diagnose the drift offline. Snapshots are optional and
// never fail a run.
package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tenderwatch/pkg/models"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client wraps the MinIO/S3 client for snapshot uploads.
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new snapshot client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put uploads one rendered page under snapshots/{host}/{timestamp}-{id}.html
// and returns the object name.
func (c *Client) Put(ctx context.Context, sourceURL, html string) (string, error) {
	host := "unknown"
	if u, err := url.Parse(sourceURL); err == nil && u.Host != "" {
		host = u.Host
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	id := models.TenderID(fmt.Sprintf("%s-%d", sourceURL, time.Now().UnixNano()))[:8]
	objectName := path.Join("snapshots", host, fmt.Sprintf("%s-%s.html", timestamp, id))

	reader := strings.NewReader(html)
	_, err := c.minioClient.PutObject(ctx, c.bucket, objectName, reader, int64(len(html)), minio.PutObjectOptions{
		ContentType: "text/html",
	})
	if err != nil {
		return "", fmt.Errorf("failed to put snapshot: %w", err)
	}

	return objectName, nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}
