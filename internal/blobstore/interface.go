package blobstore

import (
	"context"
	"io"
)

// AvatarFiles is the file-storage abstraction used by AvatarService.
type AvatarFiles interface {
	Resolve(studentID int64, filename string) (string, error)
	Write(ctx context.Context, path string, r io.Reader) (int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}

var _ AvatarFiles = (*LocalFS)(nil)
