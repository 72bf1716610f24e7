package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 10 << 20

// ValidateImage checks an upload before it is analyzed or stored.
func ValidateImage(size int64, contentType string) error {
	switch {
	case size <= 0:
		return fmt.Errorf("%w: file is empty", ErrInvalidInput)
	case !strings.HasPrefix(contentType, "image/"):
		return fmt.Errorf("%w: file must be an image", ErrInvalidInput)
	case size > MaxImageSize:
		return fmt.Errorf("%w: file size exceeds maximum limit of 10MB", ErrInvalidInput)
	}
	return nil
}

// ImageStore keeps uploaded meal photos and returns a reference to the stored object.
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType, filename string) (string, error)
}

// imageKey builds a unique object name, keeping the original extension when there is one.
func imageKey(contentType, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		switch contentType {
		case "image/jpeg", "image/jpg":
			ext = ".jpg"
		default:
			if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
				ext = exts[0]
			} else if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 {
				ext = "." + parts[1]
			}
		}
	}
	return uuid.NewString() + ext
}

// ObjectPutter is the subset of the S3 client used by S3ImageStore.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type bucketHeader interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type S3ImageStore struct {
	client    ObjectPutter
	bucket    string
	publicURL string
}

func NewS3ImageStore(client ObjectPutter, bucket, publicURL string) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *S3ImageStore) Save(ctx context.Context, data []byte, contentType, filename string) (string, error) {
	key := fmt.Sprintf("meals/%s/%s", time.Now().UTC().Format("2006/01/02"), imageKey(contentType, filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	if s.publicURL == "" {
		return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
	}
	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}

// Ping checks that the bucket is reachable when the client supports HeadBucket.
func (s *S3ImageStore) Ping(ctx context.Context) error {
	h, ok := s.client.(bucketHeader)
	if !ok {
		return nil
	}
	if _, err := h.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("bucket %s: %w", s.bucket, err)
	}
	return nil
}

// LocalImageStore writes uploads into a directory on disk.
type LocalImageStore struct {
	dir string
}

func NewLocalImageStore(dir string) *LocalImageStore {
	return &LocalImageStore{dir: dir}
}

// Ping checks that the upload directory exists, or can be created, and is writable.
func (s *LocalImageStore) Ping(_ context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}
	f, err := os.CreateTemp(s.dir, ".ping-*")
	if err != nil {
		return fmt.Errorf("upload dir not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// Save returns the stored file name relative to the upload directory.
func (s *LocalImageStore) Save(_ context.Context, data []byte, contentType, filename string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	name := imageKey(contentType, filename)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return name, nil
}
