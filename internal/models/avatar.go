package models

import "time"

// Avatar is the stored image record for one student.
//
// FilePath points at the full-size copy on disk; Data holds the same bytes
// inline for preview responses.
type Avatar struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	FilePath  string    `json:"file_path"`
	FileSize  int64     `json:"file_size"`
	MediaType string    `json:"media_type"`
	Checksum  string    `json:"checksum"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ETag returns the strong entity tag for the avatar content.
func (a *Avatar) ETag() string {
	if a == nil || a.Checksum == "" {
		return ""
	}
	return `"` + a.Checksum + `"`
}
