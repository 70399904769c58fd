package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps each report as a JSON object at <prefix>/<file_name>.json.
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store returns a store writing to bucket under prefix.
func NewS3Store(client S3API, bucket, prefix string) (*S3Store, error) {
	if client == nil {
		return nil, errors.New("s3 store: client is required")
	}
	if bucket == "" {
		return nil, errors.New("s3 store: bucket is required")
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}, nil
}

// Key returns the object key of fileName.
func (s *S3Store) Key(fileName string) string {
	return path.Join(s.prefix, fileName+".json")
}

func (s *S3Store) Put(ctx context.Context, report *models.DeviceReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report %q: %w", report.FileName, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(report.FileName)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, s.Key(report.FileName), err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, fileName string) (*models.DeviceReport, error) {
	key := s.Key(fileName)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err)
	}
	var r models.DeviceReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %q: %w", fileName, err)
	}
	return &r, nil
}

func (s *S3Store) Close() error { return nil }
