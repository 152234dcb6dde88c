package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"roster/internal/models"
)

const facultyColumns = "id, name, color, created_at, updated_at"

// CreateFaculty inserts a faculty and assigns its id.
func (s *Store) CreateFaculty(ctx context.Context, faculty *models.Faculty) error {
	if faculty == nil {
		return fmt.Errorf("faculty is required")
	}
	now := time.Now().UTC()
	if faculty.CreatedAt.IsZero() {
		faculty.CreatedAt = now
	}
	faculty.UpdatedAt = faculty.CreatedAt

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO faculties (name, color, created_at, updated_at) VALUES (?, ?, ?, ?)
	`, faculty.Name, faculty.Color, formatTime(faculty.CreatedAt), formatTime(faculty.UpdatedAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	faculty.ID = id
	return nil
}

// GetFaculty returns a faculty by id, or nil when absent.
func (s *Store) GetFaculty(ctx context.Context, id int64) (*models.Faculty, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+facultyColumns+" FROM faculties WHERE id = ?", id)
	return scanFaculty(row)
}

// FacultyExists checks whether a faculty exists by id.
func (s *Store) FacultyExists(ctx context.Context, id int64) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM faculties WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateFaculty replaces name and color. It reports false when no row matched.
func (s *Store) UpdateFaculty(ctx context.Context, faculty *models.Faculty) (bool, error) {
	if faculty == nil {
		return false, fmt.Errorf("faculty is required")
	}
	faculty.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE faculties SET name = ?, color = ?, updated_at = ? WHERE id = ?
	`, faculty.Name, faculty.Color, formatTime(faculty.UpdatedAt), faculty.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteFaculty removes a faculty; its students are detached.
func (s *Store) DeleteFaculty(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM faculties WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListFaculties lists all faculties ordered by id.
func (s *Store) ListFaculties(ctx context.Context) ([]models.Faculty, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+facultyColumns+" FROM faculties ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	faculties := []models.Faculty{}
	for rows.Next() {
		faculty, err := scanFaculty(rows)
		if err != nil {
			return nil, err
		}
		if faculty == nil {
			continue
		}
		faculties = append(faculties, *faculty)
	}
	return faculties, rows.Err()
}

// SearchFaculties returns faculties whose name or color contains part,
// ignoring case. SQLite's lower() only folds ASCII, so matching happens here.
func (s *Store) SearchFaculties(ctx context.Context, part string) ([]models.Faculty, error) {
	all, err := s.ListFaculties(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(part)
	matches := []models.Faculty{}
	for _, faculty := range all {
		if strings.Contains(strings.ToLower(faculty.Name), needle) || strings.Contains(strings.ToLower(faculty.Color), needle) {
			matches = append(matches, faculty)
		}
	}
	return matches, nil
}

func scanFaculty(scanner interface {
	Scan(dest ...any) error
}) (*models.Faculty, error) {
	faculty := models.Faculty{}
	var createdAt, updatedAt string

	err := scanner.Scan(&faculty.ID, &faculty.Name, &faculty.Color, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if faculty.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if faculty.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &faculty, nil
}
