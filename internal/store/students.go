package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roster/internal/models"
)

const studentColumns = "id, name, age, faculty_id, created_at, updated_at"

// ErrUnknownFaculty is returned when a student references a faculty that does not exist.
var ErrUnknownFaculty = errors.New("unknown faculty")

// CreateStudent inserts a student and assigns its id.
func (s *Store) CreateStudent(ctx context.Context, student *models.Student) error {
	if student == nil {
		return fmt.Errorf("student is required")
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = student.CreatedAt

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO students (name, age, faculty_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, student.Name, student.Age, nullInt64(student.FacultyID), formatTime(student.CreatedAt), formatTime(student.UpdatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUnknownFaculty
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	student.ID = id
	return nil
}

// GetStudent returns a student by id, or nil when absent.
func (s *Store) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+studentColumns+" FROM students WHERE id = ?", id)
	return scanStudent(row)
}

// StudentExists checks whether a student exists by id.
func (s *Store) StudentExists(ctx context.Context, id int64) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM students WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateStudent replaces the mutable fields of a student. It reports false
// when no row matched.
func (s *Store) UpdateStudent(ctx context.Context, student *models.Student) (bool, error) {
	if student == nil {
		return false, fmt.Errorf("student is required")
	}
	student.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE students SET name = ?, age = ?, faculty_id = ?, updated_at = ? WHERE id = ?
	`, student.Name, student.Age, nullInt64(student.FacultyID), formatTime(student.UpdatedAt), student.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrUnknownFaculty
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteStudent removes a student. The avatar row goes with it.
func (s *Store) DeleteStudent(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListStudents lists all students ordered by id.
func (s *Store) ListStudents(ctx context.Context) ([]models.Student, error) {
	return s.queryStudents(ctx, "SELECT "+studentColumns+" FROM students ORDER BY id ASC")
}

// ListStudentsByAge lists students of exactly the given age.
func (s *Store) ListStudentsByAge(ctx context.Context, age int) ([]models.Student, error) {
	return s.queryStudents(ctx, "SELECT "+studentColumns+" FROM students WHERE age = ? ORDER BY id ASC", age)
}

// ListStudentsByAgeRange lists students whose age lies in [minAge, maxAge].
func (s *Store) ListStudentsByAgeRange(ctx context.Context, minAge, maxAge int) ([]models.Student, error) {
	return s.queryStudents(ctx, "SELECT "+studentColumns+" FROM students WHERE age BETWEEN ? AND ? ORDER BY id ASC", minAge, maxAge)
}

// ListStudentsByFaculty lists members of one faculty.
func (s *Store) ListStudentsByFaculty(ctx context.Context, facultyID int64) ([]models.Student, error) {
	return s.queryStudents(ctx, "SELECT "+studentColumns+" FROM students WHERE faculty_id = ? ORDER BY id ASC", facultyID)
}

// ListLastStudents returns the most recently created students, newest first.
func (s *Store) ListLastStudents(ctx context.Context, limit int) ([]models.Student, error) {
	if limit <= 0 {
		return []models.Student{}, nil
	}
	return s.queryStudents(ctx, "SELECT "+studentColumns+" FROM students ORDER BY id DESC LIMIT ?", limit)
}

// CountStudents returns the number of students.
func (s *Store) CountStudents(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM students").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// AverageStudentAge returns the mean age, or 0 with no students.
func (s *Store) AverageStudentAge(ctx context.Context) (float64, error) {
	var avg float64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(AVG(age), 0) FROM students").Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

func (s *Store) queryStudents(ctx context.Context, query string, args ...any) ([]models.Student, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		if student == nil {
			continue
		}
		students = append(students, *student)
	}
	return students, rows.Err()
}

func scanStudent(scanner interface {
	Scan(dest ...any) error
}) (*models.Student, error) {
	student := models.Student{}
	var facultyID sql.NullInt64
	var createdAt, updatedAt string

	err := scanner.Scan(&student.ID, &student.Name, &student.Age, &facultyID, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if facultyID.Valid {
		id := facultyID.Int64
		student.FacultyID = &id
	}

	if student.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if student.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &student, nil
}
