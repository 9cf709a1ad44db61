// Package archive stores copies of stamped images in S3 compatible storage.
package archive

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/arnauagrupocobra-tech/geostamp/internal/logger"
)

// Config is the archive bucket configuration.
type Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// Enabled reports whether c names a bucket to archive to.
func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// Store saves stamped images.
type Store interface {
	Put(ctx context.Context, name string, data []byte, meta map[string]string) error
}

// bucketClient is the part of *minio.Client used by Bucket.
type bucketClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Bucket is a Store writing to an S3 bucket.
type Bucket struct {
	client bucketClient
	config Config
}

// New connects to the bucket of cfg and checks that it exists.
func New(ctx context.Context, cfg Config) (*Bucket, error) {
	if !cfg.Enabled() {
		return nil, errors.New("archive: endpoint and bucket are required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("archive: access key and secret key are required")
	}

	endpoint := strings.TrimPrefix(cfg.Endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupAuto,
	})
	if err != nil {
		return nil, errors.Wrap(err, "archive: creating client")
	}
	return newBucket(ctx, client, cfg)
}

func newBucket(ctx context.Context, client bucketClient, cfg Config) (*Bucket, error) {
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "archive: checking bucket")
	}
	if !exists {
		return nil, errors.Errorf("archive: bucket %s does not exist", cfg.Bucket)
	}

	logger.Info("Archiving stamped images to %s, bucket %s", cfg.Endpoint, cfg.Bucket)
	return &Bucket{client: client, config: cfg}, nil
}

// Put uploads data as name below the configured prefix.
// Entries of meta are stored as user metadata.
func (b *Bucket) Put(ctx context.Context, name string, data []byte, meta map[string]string) error {
	key := b.objectKey(name)
	info, err := b.client.PutObject(ctx, b.config.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "image/jpeg",
		UserMetadata: meta,
	})
	if err != nil {
		return errors.Wrapf(err, "archive: uploading %s", key)
	}
	logger.Debug("Archived %s (%d bytes, etag: %s)", key, info.Size, info.ETag)
	return nil
}

func (b *Bucket) objectKey(name string) string {
	prefix := strings.Trim(b.config.Prefix, "/")
	name = strings.TrimPrefix(name, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
