package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config encapsulates the connection info for an S3-compatible store.
// An empty Endpoint targets AWS S3 in the configured region.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Timeout   time.Duration
}

// S3Client implements ObjectStore for AWS S3 and S3-compatible services.
type S3Client struct {
	client *minio.Client
	cfg    S3Config
	aws    bool
}

// NewS3Client builds a new S3Client backed by minio-go.
func NewS3Client(cfg S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	cfg.Region = region

	endpoint := strings.TrimSpace(cfg.Endpoint)
	aws := endpoint == ""
	useSSL := cfg.UseSSL
	if aws {
		endpoint = fmt.Sprintf("s3.%s.amazonaws.com", region)
		useSSL = true
	} else {
		if strings.HasPrefix(endpoint, "https://") {
			endpoint = strings.TrimPrefix(endpoint, "https://")
			useSSL = true
		} else if strings.HasPrefix(endpoint, "http://") {
			endpoint = strings.TrimPrefix(endpoint, "http://")
			useSSL = false
		}
	}
	cfg.UseSSL = useSSL

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &S3Client{client: client, cfg: cfg, aws: aws}, nil
}

// Stat checks object metadata only; the object body is never fetched.
func (c *S3Client) Stat(ctx context.Context, key string) error {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	_, err := c.client.StatObject(ctx, c.cfg.Bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" {
		return fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	return &StatError{Key: key, Status: resp.StatusCode, Err: err}
}

// Put uploads data under key with the given content type. Objects are
// marked public-read so the public URL is servable immediately.
func (c *S3Client) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	_, err := c.client.PutObject(ctx, c.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"x-amz-acl": "public-read"},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// PublicURL builds the public URL for a key: virtual-host style for AWS,
// path style for custom endpoints.
func (c *S3Client) PublicURL(key string) string {
	if c.aws {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.cfg.Bucket, c.cfg.Region, EncodePath(key))
	}
	scheme := "https"
	if !c.cfg.UseSSL {
		scheme = "http"
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(c.cfg.Endpoint, "https://"), "http://")
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, c.cfg.Bucket, EncodePath(key))
}

var _ ObjectStore = (*S3Client)(nil)
