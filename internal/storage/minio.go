package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"ongelEstate/internal/config"
)

// Client wraps the MinIO client with the small surface the API needs.
// The bucket holds publicly readable listing images, so reads go through
// plain public URLs rather than presigned links.
type Client struct {
	internalClient *minio.Client
	bucketName     string
	publicBaseURL  string
}

// NewClient initializes the MinIO client and ensures the target bucket exists.
func NewClient(cfg config.MinIOConfig) (*Client, error) {
	internalClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	parsedPublicEndpoint, err := url.Parse(cfg.PublicEndpoint)
	if err != nil {
		return nil, fmt.Errorf("parse minio public endpoint: %w", err)
	}
	if parsedPublicEndpoint.Host == "" {
		return nil, fmt.Errorf("invalid minio public endpoint, host missing")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := internalClient.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := internalClient.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Client{
		internalClient: internalClient,
		bucketName:     cfg.Bucket,
		publicBaseURL:  strings.TrimRight(parsedPublicEndpoint.String(), "/"),
	}, nil
}

// UploadFile stores an object in the bucket.
func (c *Client) UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := c.internalClient.PutObject(ctx, c.bucketName, objectKey, reader, size, opts); err != nil {
		return fmt.Errorf("put object %q: %w", objectKey, err)
	}
	return nil
}

// PublicURL returns the browser-facing URL of an object.
func (c *Client) PublicURL(objectKey string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucketName, objectKey)
}

// DeleteObject removes an object. A missing object counts as success.
func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil
	}
	if err := c.internalClient.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		if IsNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}
