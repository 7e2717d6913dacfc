package storage

import (
	"context"
	"io"
)

// Uploader is the minimal interface export jobs need from an object store.
type Uploader interface {
	// Put stores an object under the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error
}
