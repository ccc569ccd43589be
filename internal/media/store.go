// Package media stores observation images in an S3-compatible bucket.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

const maxImageSize = 10 << 20

var (
	ErrTooLarge        = errors.New("image exceeds 10 MiB")
	ErrUnsupportedType = errors.New("unsupported image type")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageStore keeps uploaded images and hands out short-lived read URLs.
type ImageStore interface {
	Put(ctx context.Context, ownerID string, r io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type MinioStore struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	logger internal.Logger
}

// NewMinioStore connects and makes sure the bucket exists.
func NewMinioStore(ctx context.Context, cfg MinioConfig, logger internal.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
		logger.Infof("media: created bucket %s", cfg.Bucket)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, expiry: 15 * time.Minute, logger: logger}, nil
}

// ObjectKey names an upload <owner>/<uuid><ext>.
func ObjectKey(ownerID, contentType string) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedType
	}
	if ownerID == "" || strings.ContainsAny(ownerID, "/\\") {
		return "", fmt.Errorf("%w: invalid owner", internal.ErrValidation)
	}
	return path.Join(ownerID, uuid.NewString()+ext), nil
}

func (m *MinioStore) Put(ctx context.Context, ownerID string, r io.Reader, size int64, contentType string) (string, error) {
	if size > maxImageSize {
		return "", ErrTooLarge
	}
	key, err := ObjectKey(ownerID, contentType)
	if err != nil {
		return "", err
	}
	_, err = m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		m.logger.Errorf("media: upload %s failed: %v", key, err)
		return "", fmt.Errorf("%w: %v", internal.ErrStorage, err)
	}
	return key, nil
}

func (m *MinioStore) URL(ctx context.Context, key string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", internal.ErrStorage, err)
	}
	return u.String(), nil
}

var _ ImageStore = (*MinioStore)(nil)
