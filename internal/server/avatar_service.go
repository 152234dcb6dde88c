package server

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"

	"roster/internal/blobstore"
	"roster/internal/models"
	"roster/internal/store"
)

const fallbackAvatarMediaType = "application/octet-stream"

// StudentLookup is the only student capability the avatar service needs.
type StudentLookup interface {
	StudentExists(ctx context.Context, id int64) (bool, error)
}

// AvatarService orchestrates avatar upload and retrieval.
type AvatarService struct {
	students StudentLookup
	avatars  store.AvatarStore
	files    blobstore.AvatarFiles
	maxBytes int64
	logger   *slog.Logger
}

// AvatarUpload describes one uploaded image. Open must return a fresh
// reader over the full content on every call.
type AvatarUpload struct {
	Filename  string
	Size      int64
	MediaType string
	Open      func() (io.ReadCloser, error)
}

// AvatarPreview is the inline copy of an avatar.
type AvatarPreview struct {
	Data      []byte
	MediaType string
	ETag      string
}

// AvatarContent describes a streamed full-size avatar.
type AvatarContent struct {
	Reader    io.ReadCloser
	SizeBytes int64
	MediaType string
	ETag      string
}

// NewAvatarService constructs an AvatarService.
func NewAvatarService(students StudentLookup, avatars store.AvatarStore, files blobstore.AvatarFiles, logger *slog.Logger) *AvatarService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvatarService{
		students: students,
		avatars:  avatars,
		files:    files,
		maxBytes: models.AvatarMaxBytes,
		logger:   logger,
	}
}

func (s *AvatarService) configured() bool {
	return s != nil && s.students != nil && s.avatars != nil && s.files != nil
}

// Upload stores the image on disk and records it for the student,
// replacing any earlier avatar.
func (s *AvatarService) Upload(ctx context.Context, studentID int64, in AvatarUpload) (*models.Avatar, error) {
	if !s.configured() {
		return nil, internalError(fmt.Errorf("avatar service is not configured"))
	}
	if in.Size > s.maxBytes {
		return nil, payloadTooLarge(fmt.Errorf("avatar is %d bytes, limit is %d", in.Size, s.maxBytes))
	}
	if in.Open == nil {
		return nil, badRequestCode(fmt.Errorf("avatar content is required"), ErrCodeMissingRequired)
	}
	if err := s.ensureStudentExists(ctx, studentID); err != nil {
		return nil, err
	}

	path, err := s.files.Resolve(studentID, in.Filename)
	if err != nil {
		if errors.Is(err, blobstore.ErrMissingExtension) || errors.Is(err, blobstore.ErrInvalidExtension) {
			return nil, badRequestCode(fmt.Errorf("avatar filename %q: %w", in.Filename, err), ErrCodeInvalidFilename)
		}
		return nil, internalError(err)
	}

	previous, err := s.avatars.GetAvatarByStudent(ctx, studentID)
	if err != nil {
		return nil, storeFailure(err)
	}

	written, err := s.writeFile(ctx, path, in.Open)
	if err != nil {
		return nil, ioFailure(fmt.Errorf("write avatar for student %d: %w", studentID, err))
	}

	data, err := readUpload(in.Open)
	if err != nil {
		return nil, ioFailure(fmt.Errorf("read avatar for student %d: %w", studentID, err))
	}

	avatar, err := s.avatars.UpsertAvatar(ctx, &models.Avatar{
		StudentID: studentID,
		FilePath:  path,
		FileSize:  written,
		MediaType: in.MediaType,
		Data:      data,
		Checksum:  checksum(data),
	})
	if err != nil {
		return nil, storeFailure(err)
	}

	if previous != nil && previous.FilePath != path {
		s.logger.Warn("avatar extension changed; previous file left in place",
			"student_id", studentID, "previous_path", previous.FilePath, "path", path)
	}
	s.logger.Info("avatar stored", "student_id", studentID, "path", path, "bytes", written, "media_type", in.MediaType)
	return avatar, nil
}

// FindAvatar returns the avatar record of a student.
func (s *AvatarService) FindAvatar(ctx context.Context, studentID int64) (*models.Avatar, error) {
	if !s.configured() {
		return nil, internalError(fmt.Errorf("avatar service is not configured"))
	}
	avatar, err := s.avatars.GetAvatarByStudent(ctx, studentID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if avatar == nil {
		return nil, notFoundCode(fmt.Errorf("avatar not found for student %d", studentID), ErrCodeAvatarNotFound)
	}
	return avatar, nil
}

// Preview returns the inline copy without touching the filesystem.
func (s *AvatarService) Preview(ctx context.Context, studentID int64) (*AvatarPreview, error) {
	avatar, err := s.FindAvatar(ctx, studentID)
	if err != nil {
		return nil, err
	}
	data := avatar.Data
	if data == nil {
		data = []byte{}
	}
	return &AvatarPreview{Data: data, MediaType: avatar.MediaType, ETag: avatar.ETag()}, nil
}

// OpenDownload opens the full-size file for streaming. Size and media type
// come from the record, not the file.
func (s *AvatarService) OpenDownload(ctx context.Context, studentID int64) (*AvatarContent, error) {
	avatar, err := s.FindAvatar(ctx, studentID)
	if err != nil {
		return nil, err
	}

	rc, err := s.files.Open(ctx, avatar.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFoundCode(fmt.Errorf("avatar file missing for student %d", studentID), ErrCodeAvatarFileMissing)
		}
		return nil, ioFailure(fmt.Errorf("open avatar for student %d: %w", studentID, err))
	}

	return &AvatarContent{Reader: rc, SizeBytes: avatar.FileSize, MediaType: avatar.MediaType, ETag: avatar.ETag()}, nil
}

// ListAvatars returns one page of avatar records in insertion order.
func (s *AvatarService) ListAvatars(ctx context.Context, page, size int) ([]models.Avatar, error) {
	if !s.configured() {
		return nil, internalError(fmt.Errorf("avatar service is not configured"))
	}
	avatars, err := s.avatars.ListAvatars(ctx, page, size)
	if err != nil {
		if errors.Is(err, store.ErrInvalidPage) {
			return nil, badRequestCode(fmt.Errorf("page must be >= 0 and size >= 1"), ErrCodeInvalidPage)
		}
		return nil, storeFailure(err)
	}
	return avatars, nil
}

// storedPath returns the file path recorded for a student, or "" without an avatar.
func (s *AvatarService) storedPath(ctx context.Context, studentID int64) (string, error) {
	if !s.configured() {
		return "", nil
	}
	avatar, err := s.avatars.GetAvatarByStudent(ctx, studentID)
	if err != nil || avatar == nil {
		return "", err
	}
	return avatar.FilePath, nil
}

// removeFile deletes an orphaned avatar file. Failures are logged only.
func (s *AvatarService) removeFile(ctx context.Context, studentID int64, path string) {
	if !s.configured() || strings.TrimSpace(path) == "" {
		return
	}
	if err := s.files.Remove(ctx, path); err != nil {
		s.logger.Warn("remove avatar file", "student_id", studentID, "path", path, "error", err)
		return
	}
	s.logger.Debug("avatar file removed", "student_id", studentID, "path", path)
}

func (s *AvatarService) ensureStudentExists(ctx context.Context, id int64) error {
	exists, err := s.students.StudentExists(ctx, id)
	if err != nil {
		return storeFailure(err)
	}
	if !exists {
		return notFoundCode(fmt.Errorf("student %d not found", id), ErrCodeStudentNotFound)
	}
	return nil
}

func (s *AvatarService) writeFile(ctx context.Context, path string, open func() (io.ReadCloser, error)) (int64, error) {
	rc, err := open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	return s.files.Write(ctx, path, rc)
}

func readUpload(open func() (io.ReadCloser, error)) ([]byte, error) {
	rc, err := open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
