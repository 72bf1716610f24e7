package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage(1024, "image/jpeg"))
	assert.NoError(t, ValidateImage(MaxImageSize, "image/png"))
	assert.ErrorIs(t, ValidateImage(0, "image/jpeg"), ErrInvalidInput)
	assert.ErrorIs(t, ValidateImage(10, "application/pdf"), ErrInvalidInput)
	assert.ErrorIs(t, ValidateImage(10, ""), ErrInvalidInput)
	assert.ErrorIs(t, ValidateImage(MaxImageSize+1, "image/jpeg"), ErrInvalidInput)
}

func TestImageKey(t *testing.T) {
	assert.True(t, strings.HasSuffix(imageKey("image/jpeg", ""), ".jpg"))
	assert.True(t, strings.HasSuffix(imageKey("image/png", "lunch.PNG"), ".png"))
	assert.NotEqual(t, imageKey("image/jpeg", "a.jpg"), imageKey("image/jpeg", "a.jpg"))
}

func TestLocalImageStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewLocalImageStore(dir)

	name, err := store.Save(context.Background(), []byte("jpeg-bytes"), "image/jpeg", "plate.jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestLocalImageStorePing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	require.NoError(t, NewLocalImageStore(dir).Ping(context.Background()))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "ping leaves no files behind")

	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.Error(t, NewLocalImageStore(file).Ping(context.Background()))
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3ImageStore(t *testing.T) {
	put := &fakePutter{}
	store := NewS3ImageStore(put, "meal-photos", "https://cdn.example.com/")

	ref, err := store.Save(context.Background(), []byte("png"), "image/png", "dinner.png")
	require.NoError(t, err)

	key := aws.ToString(put.in.Key)
	assert.Equal(t, "meal-photos", aws.ToString(put.in.Bucket))
	assert.True(t, strings.HasPrefix(key, "meals/"))
	assert.Equal(t, "image/png", aws.ToString(put.in.ContentType))
	assert.Equal(t, "png", string(put.body))
	assert.Equal(t, "https://cdn.example.com/"+key, ref)

	ref, err = NewS3ImageStore(put, "b", "").Save(context.Background(), []byte("x"), "image/png", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "s3://b/meals/"))

	put.err = errors.New("denied")
	_, err = store.Save(context.Background(), []byte("x"), "image/png", "")
	assert.Error(t, err)
}

type fakeBucketClient struct {
	fakePutter
	bucket string
	err    error
}

func (f *fakeBucketClient) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	return &s3.HeadBucketOutput{}, f.err
}

func TestS3ImageStorePing(t *testing.T) {
	client := &fakeBucketClient{}
	store := NewS3ImageStore(client, "meal-photos", "")
	require.NoError(t, store.Ping(context.Background()))
	assert.Equal(t, "meal-photos", client.bucket)

	client.err = errors.New("forbidden")
	err := store.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meal-photos")

	assert.NoError(t, NewS3ImageStore(&fakePutter{}, "b", "").Ping(context.Background()))
}
