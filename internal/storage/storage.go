package storage

import (
	"context"
	"errors"
	"io"
)

// ErrExists is returned by Write when Overwrite is false and an object is
// already stored at the path.
var ErrExists = errors.New("object already exists")

// ErrNotFound is returned by Open when no object is stored at the path.
var ErrNotFound = errors.New("object not found")

// WriteOptions controls how an object is written.
type WriteOptions struct {
	ContentType  string
	CacheControl string
	Overwrite    bool
}

// Object is a stored object opened for reading.
type Object struct {
	Body         io.ReadCloser
	ContentType  string
	CacheControl string
	Size         int64
}

// ObjectStore defines the interface for remote object storage.
type ObjectStore interface {
	// Write stores data at path (a slash-separated key such as
	// "restaurants/<uuid>.webp") and returns the number of bytes written.
	Write(ctx context.Context, path string, data io.Reader, opts WriteOptions) (int64, error)

	// PublicURL resolves the publicly reachable URL of path.
	PublicURL(path string) string
}

// Opener is implemented by stores whose objects this process serves itself.
type Opener interface {
	Open(ctx context.Context, path string) (*Object, error)
}
