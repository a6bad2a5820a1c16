package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrEmptyKey = errors.New("storage: empty object key")

//go:generate mockgen -source=storage.go -destination=mock/storage_mock.go -package=mock
type FileDeleter interface {
	Delete(ctx context.Context, key string) error
}

type s3API interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Deleter removes employee documents from a single bucket.
type S3Deleter struct {
	client s3API
	bucket string
}

func NewS3Deleter(client s3API, bucket string) *S3Deleter {
	return &S3Deleter{client: client, bucket: bucket}
}

func (d *S3Deleter) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// NoopDeleter is used when no bucket is configured.
type NoopDeleter struct{}

func (NoopDeleter) Delete(context.Context, string) error { return nil }

// DeleteAll attempts every key and returns the ones that failed.
func DeleteAll(ctx context.Context, d FileDeleter, keys []string) (failed []string, err error) {
	var errs []error
	for _, k := range keys {
		if derr := d.Delete(ctx, k); derr != nil {
			failed = append(failed, k)
			errs = append(errs, derr)
		}
	}
	return failed, errors.Join(errs...)
}
