// Package blob stores uploaded attachment files on the local filesystem and
// maps them to stable public URL paths.
package blob

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// URLPrefix is the public path prefix uploads are served under.
const URLPrefix = "/uploads/"

// Store writes attachments under a root directory. Object keys are
// slash-separated relative paths; the public URL for a key is URLPrefix+key.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob store: root directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the filesystem directory backing the store.
func (s *Store) Root() string {
	return s.root
}

// CommentImageKey builds the object key for a comment attachment:
// comments/{taskID}/{unix-millis}-{sanitized filename}.
func CommentImageKey(taskID, filename string) string {
	return path.Join("comments", taskID, fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(filename)))
}

// Save writes the object under key and returns its public URL path.
// Keys must stay inside the store root; traversal segments are rejected.
func (s *Store) Save(key string, r io.Reader) (string, error) {
	rel, err := safeRelPath(key)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}

	return URLPrefix + path.Clean(filepath.ToSlash(rel)), nil
}

// Open returns a reader for the object at key.
func (s *Store) Open(key string) (io.ReadCloser, error) {
	rel, err := safeRelPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.root, rel))
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

func safeRelPath(key string) (string, error) {
	key = strings.TrimPrefix(key, URLPrefix)
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("blob store: empty key")
	}
	// Clean("/"+key) collapses any ".." so the result cannot escape the root.
	return filepath.FromSlash(strings.TrimPrefix(clean, "/")), nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(filepath.ToSlash(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	return name
}
