package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roster/internal/models"
)

const (
	avatarSummaryColumns = "id, student_id, file_path, file_size, media_type, checksum, created_at, updated_at"
	avatarColumns        = avatarSummaryColumns + ", data"
)

// ErrInvalidPage is returned for a negative page index or a page size below one.
var ErrInvalidPage = errors.New("invalid page request")

// GetAvatarByStudent returns the avatar of a student, or nil when none exists.
func (s *Store) GetAvatarByStudent(ctx context.Context, studentID int64) (*models.Avatar, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+avatarColumns+" FROM avatars WHERE student_id = ?", studentID)
	return scanAvatar(row, true)
}

// UpsertAvatar inserts the avatar or replaces every field of the existing
// row for the same student. The row id of an existing avatar is kept.
func (s *Store) UpsertAvatar(ctx context.Context, avatar *models.Avatar) (*models.Avatar, error) {
	if avatar == nil {
		return nil, fmt.Errorf("avatar is required")
	}
	if avatar.FileSize < 0 {
		return nil, fmt.Errorf("file_size must be >= 0")
	}
	now := time.Now().UTC()
	if avatar.CreatedAt.IsZero() {
		avatar.CreatedAt = now
	}
	avatar.UpdatedAt = now

	data := avatar.Data
	if data == nil {
		data = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO avatars (student_id, file_path, file_size, media_type, data, checksum, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(student_id) DO UPDATE SET
			file_path = excluded.file_path,
			file_size = excluded.file_size,
			media_type = excluded.media_type,
			data = excluded.data,
			checksum = excluded.checksum,
			updated_at = excluded.updated_at
	`, avatar.StudentID, avatar.FilePath, avatar.FileSize, avatar.MediaType, data, avatar.Checksum,
		formatTime(avatar.CreatedAt), formatTime(avatar.UpdatedAt))
	if err != nil {
		return nil, err
	}

	return s.GetAvatarByStudent(ctx, avatar.StudentID)
}

// ListAvatars returns one page of avatars ordered by insertion. Inline data
// is not loaded.
func (s *Store) ListAvatars(ctx context.Context, page, size int) ([]models.Avatar, error) {
	if page < 0 || size < 1 {
		return nil, ErrInvalidPage
	}
	offset := int64(page) * int64(size)

	rows, err := s.db.QueryContext(ctx, "SELECT "+avatarSummaryColumns+" FROM avatars ORDER BY id ASC LIMIT ? OFFSET ?", size, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	avatars := []models.Avatar{}
	for rows.Next() {
		avatar, err := scanAvatar(rows, false)
		if err != nil {
			return nil, err
		}
		if avatar == nil {
			continue
		}
		avatars = append(avatars, *avatar)
	}
	return avatars, rows.Err()
}

// DeleteAvatarByStudent removes the avatar row of a student, if any.
func (s *Store) DeleteAvatarByStudent(ctx context.Context, studentID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM avatars WHERE student_id = ?", studentID)
	return err
}

func scanAvatar(scanner interface {
	Scan(dest ...any) error
}, withData bool) (*models.Avatar, error) {
	avatar := models.Avatar{}
	var createdAt, updatedAt string

	dest := []any{
		&avatar.ID,
		&avatar.StudentID,
		&avatar.FilePath,
		&avatar.FileSize,
		&avatar.MediaType,
		&avatar.Checksum,
		&createdAt,
		&updatedAt,
	}
	if withData {
		dest = append(dest, &avatar.Data)
	}

	if err := scanner.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	var err error
	if avatar.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if avatar.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &avatar, nil
}
