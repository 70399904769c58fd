package source

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads every object under a bucket prefix. Documents are named
// after the object's base name.
type S3Source struct {
	Client S3API
	Bucket string
	Prefix string
}

func (s S3Source) Documents(ctx context.Context) ([]Document, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(s.Prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", s.Bucket, s.Prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			// Skip "directory" placeholder objects.
			if key == "" || key[len(key)-1] == '/' {
				continue
			}
			keys = append(keys, key)
		}
	}

	docs := make([]Document, 0, len(keys))
	for _, key := range keys {
		doc, err := s.read(ctx, key)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s S3Source) read(ctx context.Context, key string) (Document, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Document{}, fmt.Errorf("get s3://%s/%s: %w", s.Bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, MaxConfigSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("read s3://%s/%s: %w", s.Bucket, key, err)
	}
	return NewDocument(path.Base(key), data)
}
