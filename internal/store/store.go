// Package store keeps analysed device reports keyed by file name so fleet
// runs can be drilled into later.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// ErrNotFound is returned by Get when no report is stored under the key.
var ErrNotFound = errors.New("report not found")

// ReportStore is a key-value store of device reports keyed by file name.
// Put replaces any earlier report of the same file.
type ReportStore interface {
	Get(ctx context.Context, fileName string) (*models.DeviceReport, error)
	Put(ctx context.Context, report *models.DeviceReport) error
	Close() error
}

// Backend names a ReportStore implementation.
type Backend string

const (
	BackendNone   Backend = "none"
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
	BackendS3     Backend = "s3"
)

// Options configures Open.
type Options struct {
	Backend    Backend
	SQLitePath string
	S3         S3API
	S3Bucket   string
	S3Prefix   string
}

// Open returns the store selected by opts.Backend. BackendNone and the empty
// backend return a nil store and no error.
func Open(opts Options) (ReportStore, error) {
	switch opts.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		if opts.SQLitePath == "" {
			return nil, errors.New("sqlite store: path is required")
		}
		s, err := NewSQLiteStore(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendS3:
		s, err := NewS3Store(opts.S3, opts.S3Bucket, opts.S3Prefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
