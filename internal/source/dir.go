package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// configExtensions are the file suffixes picked up when walking a directory.
var configExtensions = map[string]bool{".txt": true, ".cfg": true, ".conf": true, ".log": true}

// DirSource reads configurations from files and directories. Directories
// are walked recursively and only files with a known configuration
// extension are read; explicitly named files are always read.
type DirSource struct {
	Paths []string
}

func (s DirSource) Documents(ctx context.Context) ([]Document, error) {
	var files []string
	for _, p := range s.Paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && configExtensions[strings.ToLower(filepath.Ext(path))] {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}

	docs := make([]Document, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := ReadFile(f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ReadFile reads and validates one configuration file. The document is named
// after the file's base name.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// Read one byte past the limit so oversized files are detected without
	// loading them whole.
	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return NewDocument(filepath.Base(path), data)
}
