package objstore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/areaewhy/JoplinView/internal/models"
)

// S3Config holds the connection settings for an S3-compatible bucket.
// Endpoint may point at any S3-compatible service; path-style
// addressing is used so self-hosted endpoints work out of the box.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// Timeout bounds each List/Get call.
	Timeout time.Duration
}

// S3 implements Store backed by an S3-compatible bucket.
type S3 struct {
	client  *minio.Client
	bucket  string
	timeout time.Duration
}

// NewS3 creates the bucket client. It does not touch the network;
// connectivity failures surface on the first List call.
func NewS3(cfg S3Config) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("objstore: s3 client: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &S3{client: client, bucket: cfg.Bucket, timeout: timeout}, nil
}

// List implements Store. Non-Markdown objects (resource blobs and the
// like) are filtered out here so the pipeline only ever sees .md keys.
func (s *S3) List(ctx context.Context, prefix string) ([]models.ObjectInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var out []models.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("objstore: list %s: %w", s.bucket, obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".md") {
			continue
		}
		out = append(out, models.ObjectInfo{Key: obj.Key, Size: obj.Size})
	}
	return out, nil
}

// Get implements Store.
func (s *S3) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("objstore: get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("objstore: read %s: %w", key, err)
	}
	return data, nil
}
