package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Compile-time checks that FileSystem implements ObjectStore and Opener.
var (
	_ ObjectStore = (*FileSystem)(nil)
	_ Opener      = (*FileSystem)(nil)
)

// metaSuffix names the sidecar file holding an object's headers.
const metaSuffix = ".meta.json"

type objectMeta struct {
	ContentType  string `json:"content_type"`
	CacheControl string `json:"cache_control"`
}

// FileSystem implements ObjectStore using the local filesystem.
// Objects are stored at <basePath>/<path> and served under <baseURL>/<path>.
type FileSystem struct {
	basePath string
	baseURL  string
}

// NewFileSystem creates a new FileSystem storage rooted at basePath whose
// objects are publicly reachable under baseURL.
func NewFileSystem(basePath, baseURL string) *FileSystem {
	return &FileSystem{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}
}

// objectPath maps a slash-separated object path to a file path, rejecting
// anything that would escape basePath.
func (fs *FileSystem) objectPath(p string) (string, error) {
	clean := path.Clean("/" + p)
	if clean == "/" || strings.HasSuffix(clean, metaSuffix) {
		return "", fmt.Errorf("invalid object path %q", p)
	}
	return filepath.Join(fs.basePath, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Write writes data to disk using atomic write (temp file + rename).
func (fs *FileSystem) Write(ctx context.Context, p string, data io.Reader, opts WriteOptions) (int64, error) {
	dst, err := fs.objectPath(p)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if !opts.Overwrite {
		if _, err := os.Stat(dst); err == nil {
			return 0, fmt.Errorf("write %s: %w", p, ErrExists)
		}
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Write to a temp file in the same directory for atomic rename.
	tmp, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, data)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("writing data: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}

	meta, err := json.Marshal(objectMeta{ContentType: opts.ContentType, CacheControl: opts.CacheControl})
	if err != nil {
		return 0, fmt.Errorf("marshal object meta: %w", err)
	}
	if err := os.WriteFile(dst+metaSuffix, meta, 0644); err != nil {
		return 0, fmt.Errorf("writing object meta: %w", err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return 0, fmt.Errorf("renaming temp file to %s: %w", dst, err)
	}

	// Rename succeeded; prevent deferred cleanup from removing the final file.
	tmpPath = ""

	return n, nil
}

// PublicURL returns <baseURL>/<path>.
func (fs *FileSystem) PublicURL(p string) string {
	return fs.baseURL + "/" + strings.TrimLeft(p, "/")
}

// Open returns the stored object and its headers.
func (fs *FileSystem) Open(_ context.Context, p string) (*Object, error) {
	src, err := fs.objectPath(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("opening file %s: %w", src, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", src, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", p, ErrNotFound)
	}

	obj := &Object{Body: f, Size: info.Size()}
	if raw, err := os.ReadFile(src + metaSuffix); err == nil {
		var meta objectMeta
		if json.Unmarshal(raw, &meta) == nil {
			obj.ContentType = meta.ContentType
			obj.CacheControl = meta.CacheControl
		}
	}
	return obj, nil
}
