package blobstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// copyBufferSize bounds the memory used while streaming one avatar to disk.
const copyBufferSize = 1024

var (
	// ErrMissingExtension is returned when an upload filename has no usable extension.
	ErrMissingExtension = errors.New("filename has no extension")
	// ErrInvalidExtension is returned when the extension would escape the avatars directory.
	ErrInvalidExtension = errors.New("filename extension is invalid")
)

// LocalFS stores avatar files as <root>/<studentID>.<ext>.
type LocalFS struct {
	root string
}

// NewLocalFS creates a local avatar store rooted at root.
func NewLocalFS(root string) (*LocalFS, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("avatars root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &LocalFS{root: abs}, nil
}

// Root returns the absolute directory avatars are written under.
func (l *LocalFS) Root() string {
	if l == nil {
		return ""
	}
	return l.root
}

// Resolve computes the destination path for a student's avatar. The
// extension is taken verbatim from the text after the last dot.
func (l *LocalFS) Resolve(studentID int64, filename string) (string, error) {
	if l == nil {
		return "", fmt.Errorf("avatar store is not configured")
	}
	ext, err := extensionOf(filename)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.root, strconv.FormatInt(studentID, 10)+"."+ext), nil
}

// Write replaces the file at path with the content of r and returns the
// number of bytes written. A partially written file is left in place on error.
func (l *LocalFS) Write(ctx context.Context, path string, r io.Reader) (int64, error) {
	if l == nil {
		return 0, fmt.Errorf("avatar store is not configured")
	}
	if r == nil {
		return 0, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(path) == "" {
		return 0, fmt.Errorf("avatar path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create avatar dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("remove previous avatar: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create avatar file: %w", err)
	}

	src := bufio.NewReaderSize(&ctxReader{ctx: ctx, r: r}, copyBufferSize)
	dst := bufio.NewWriterSize(f, copyBufferSize)
	n, err := io.CopyBuffer(dst, src, make([]byte, copyBufferSize))
	if err != nil {
		_ = f.Close()
		return n, fmt.Errorf("copy avatar: %w", err)
	}
	if err := dst.Flush(); err != nil {
		_ = f.Close()
		return n, fmt.Errorf("flush avatar: %w", err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("close avatar: %w", err)
	}
	return n, nil
}

// Open returns a reader for the avatar file at path. A missing file yields
// an error wrapping os.ErrNotExist.
func (l *LocalFS) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if l == nil {
		return nil, fmt.Errorf("avatar store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("avatar path is required")
	}
	return os.Open(path)
}

// Remove deletes the avatar file at path. Missing files are ignored.
func (l *LocalFS) Remove(ctx context.Context, path string) error {
	if l == nil {
		return fmt.Errorf("avatar store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func extensionOf(filename string) (string, error) {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return "", ErrMissingExtension
	}
	ext := filename[idx+1:]
	if strings.ContainsAny(ext, `/\`) || strings.ContainsRune(ext, 0) {
		return "", ErrInvalidExtension
	}
	return ext, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
