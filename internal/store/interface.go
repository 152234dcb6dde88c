package store

import (
	"context"

	"roster/internal/models"
)

// StudentStore abstracts student storage backends.
type StudentStore interface {
	CreateStudent(ctx context.Context, student *models.Student) error
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	StudentExists(ctx context.Context, id int64) (bool, error)
	UpdateStudent(ctx context.Context, student *models.Student) (bool, error)
	DeleteStudent(ctx context.Context, id int64) (bool, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
	ListStudentsByAge(ctx context.Context, age int) ([]models.Student, error)
	ListStudentsByAgeRange(ctx context.Context, minAge, maxAge int) ([]models.Student, error)
	ListStudentsByFaculty(ctx context.Context, facultyID int64) ([]models.Student, error)
	ListLastStudents(ctx context.Context, limit int) ([]models.Student, error)
	CountStudents(ctx context.Context) (int, error)
	AverageStudentAge(ctx context.Context) (float64, error)
}

// FacultyStore abstracts faculty storage backends.
type FacultyStore interface {
	CreateFaculty(ctx context.Context, faculty *models.Faculty) error
	GetFaculty(ctx context.Context, id int64) (*models.Faculty, error)
	FacultyExists(ctx context.Context, id int64) (bool, error)
	UpdateFaculty(ctx context.Context, faculty *models.Faculty) (bool, error)
	DeleteFaculty(ctx context.Context, id int64) (bool, error)
	ListFaculties(ctx context.Context) ([]models.Faculty, error)
	SearchFaculties(ctx context.Context, part string) ([]models.Faculty, error)
}

var (
	_ StudentStore = (*Store)(nil)
	_ FacultyStore = (*Store)(nil)
)
