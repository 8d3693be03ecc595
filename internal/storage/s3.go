package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the slice of the S3 client the store uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes artifacts to a single bucket.
type S3Store struct {
	api    PutObjectAPI
	bucket string
}

// NewS3Store binds api to bucket.
func NewS3Store(api PutObjectAPI, bucket string) (*S3Store, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("storage: bucket name is required")
	}
	if api == nil {
		return nil, errors.New("storage: s3 client is required")
	}
	return &S3Store{api: api, bucket: bucket}, nil
}

// NewS3StoreFromConfig builds an S3Store from a loaded AWS config.
func NewS3StoreFromConfig(cfg aws.Config, bucket string) (*S3Store, error) {
	return NewS3Store(s3.NewFromConfig(cfg), bucket)
}

// Bucket returns the target bucket.
func (s *S3Store) Bucket() string { return s.bucket }

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string, meta map[string]string) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		Metadata:      meta,
	})
	if err != nil {
		return fmt.Errorf("storage: put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

var _ ObjectWriter = (*S3Store)(nil)
