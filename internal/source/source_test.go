package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"plain text", []byte("hostname r1\n"), nil},
		{"empty", nil, nil},
		{"nul byte", []byte("hostname\x00r1"), ErrNotText},
		{"invalid utf8", []byte{'h', 0xff, 0xfe}, ErrNotText},
		{"too large", make([]byte, MaxConfigSize+1), ErrTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate("r1.txt", tc.data)
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v; want %v", err, tc.want)
			}
		})
	}
}

func TestValidate_ExactLimitAccepted(t *testing.T) {
	data := []byte(strings.Repeat("a", MaxConfigSize))
	if err := Validate("big.txt", data); err != nil {
		t.Errorf("config of exactly %d bytes rejected: %v", MaxConfigSize, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func names(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Name)
	}
	return out
}

func TestDirSource_WalksDirectoryAndFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b-router.cfg"), "hostname b\n")
	writeFile(t, filepath.Join(dir, "a-switch.txt"), "hostname a\n")
	writeFile(t, filepath.Join(dir, "notes.md"), "not a config")
	writeFile(t, filepath.Join(dir, "site2", "c-core.conf"), "hostname c\n")
	single := filepath.Join(t.TempDir(), "edge.ios")
	writeFile(t, single, "hostname edge\n")

	docs, err := DirSource{Paths: []string{dir, single}}.Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	want := []string{"a-switch.txt", "b-router.cfg", "c-core.conf", "edge.ios"}
	if got := names(docs); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v; want %v", got, want)
	}
	if docs[0].Content != "hostname a\n" {
		t.Errorf("content: got %q", docs[0].Content)
	}
}

func TestDirSource_MissingPath(t *testing.T) {
	_, err := DirSource{Paths: []string{filepath.Join(t.TempDir(), "nope")}}.Documents(context.Background())
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestReadFile_RejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.txt")
	writeFile(t, path, "\x00\x01\x02")
	if _, err := ReadFile(path); !errors.Is(err, ErrNotText) {
		t.Errorf("got %v; want ErrNotText", err)
	}
}
