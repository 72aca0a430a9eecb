// Package storage keeps avatar images in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Config holds MinIO connection details.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base used to build object URLs. When empty the
	// endpoint is used.
	PublicURL string
}

// AvatarStore uploads avatars to MinIO.
type AvatarStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewAvatarStore connects to MinIO and makes sure the bucket exists.
func NewAvatarStore(ctx context.Context, cfg Config, log *zap.Logger) (*AvatarStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("created avatar bucket", zap.String("bucket", cfg.Bucket))
	}

	return &AvatarStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: BaseURL(cfg),
	}, nil
}

// BaseURL returns the URL prefix objects in cfg's bucket are served from.
func BaseURL(cfg Config) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}

// ObjectName returns a fresh object key for a user's avatar.
func ObjectName(userID, ext string) string {
	return path.Join("avatars", userID, uuid.New().String()+ext)
}

// PutAvatar uploads body and returns its public URL.
func (s *AvatarStore) PutAvatar(ctx context.Context, userID string, body io.Reader, size int64, contentType, ext string) (string, error) {
	name := ObjectName(userID, ext)
	_, err := s.client.PutObject(ctx, s.bucket, name, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return s.publicURL + "/" + name, nil
}

// Ping checks that the bucket is reachable.
func (s *AvatarStore) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}
