package services

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores a binary blob and returns its public URL. Keys are
// scoped by folder ("task_assets", "user_profiles").
type Uploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader, size int64) (string, error)
}

// S3Uploader is an Uploader backed by any S3-compatible object store.
type S3Uploader struct {
	client   *minio.Client
	bucket   string
	endpoint string
	secure   bool
}

// NewS3Uploader creates an Uploader for the given endpoint and bucket.
func NewS3Uploader(endpoint, accessKey, secretKey, bucket string, secure bool) (*S3Uploader, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &S3Uploader{
		client:   client,
		bucket:   bucket,
		endpoint: endpoint,
		secure:   secure,
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader, size int64) (string, error) {
	// Random key prevents collisions between same-named uploads
	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), path.Ext(filename))

	_, err := u.client.PutObject(ctx, u.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	scheme := "https"
	if !u.secure {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, u.endpoint, u.bucket, key), nil
}
