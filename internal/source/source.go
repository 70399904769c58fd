// Package source loads device configuration text for batch analysis and
// enforces the input rules the engine relies on: bounded size and plain text.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxConfigSize is the largest configuration accepted, in bytes.
const MaxConfigSize = 5 << 20

var (
	// ErrTooLarge is returned for configurations above MaxConfigSize.
	ErrTooLarge = errors.New("configuration exceeds 5 MiB")
	// ErrNotText is returned for content that is not valid UTF-8 text.
	ErrNotText = errors.New("configuration is not plain text")
)

// Document is one device configuration ready for analysis.
type Document struct {
	// Name is the display file name used as the report key.
	Name string
	// Content is the raw configuration text.
	Content string
}

// Source yields device configurations.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
}

// Validate checks that data may be handed to the engine.
func Validate(name string, data []byte) error {
	if len(data) > MaxConfigSize {
		return fmt.Errorf("%s: %w", name, ErrTooLarge)
	}
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return fmt.Errorf("%s: %w", name, ErrNotText)
	}
	return nil
}

// NewDocument validates data and wraps it as a Document.
func NewDocument(name string, data []byte) (Document, error) {
	if err := Validate(name, data); err != nil {
		return Document{}, err
	}
	return Document{Name: name, Content: string(data)}, nil
}
