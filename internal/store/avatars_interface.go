package store

import (
	"context"

	"roster/internal/models"
)

// AvatarStore is the metadata persistence surface for student avatars.
//
// It is kept apart from StudentStore so the avatar service can be wired
// against a narrow dependency.
type AvatarStore interface {
	GetAvatarByStudent(ctx context.Context, studentID int64) (*models.Avatar, error)
	UpsertAvatar(ctx context.Context, avatar *models.Avatar) (*models.Avatar, error)
	ListAvatars(ctx context.Context, page, size int) ([]models.Avatar, error)
	DeleteAvatarByStudent(ctx context.Context, studentID int64) error
}

var _ AvatarStore = (*Store)(nil)
