package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"roster/internal/models"
	"roster/internal/store"
)

// FacultyInput carries the writable faculty fields.
type FacultyInput struct {
	Name  string
	Color string
}

// FacultyService owns faculty validation and queries.
type FacultyService struct {
	faculties store.FacultyStore
	students  store.StudentStore
	logger    *slog.Logger
}

// NewFacultyService constructs a FacultyService.
func NewFacultyService(faculties store.FacultyStore, students store.StudentStore, logger *slog.Logger) *FacultyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FacultyService{faculties: faculties, students: students, logger: logger}
}

func (s *FacultyService) Create(ctx context.Context, in FacultyInput) (models.Faculty, error) {
	faculty, err := validateFacultyInput(in)
	if err != nil {
		return models.Faculty{}, err
	}
	if err := s.faculties.CreateFaculty(ctx, &faculty); err != nil {
		return models.Faculty{}, storeFailure(err)
	}
	s.logger.Info("faculty created", "faculty_id", faculty.ID)
	return faculty, nil
}

func (s *FacultyService) Get(ctx context.Context, id int64) (models.Faculty, error) {
	faculty, err := s.faculties.GetFaculty(ctx, id)
	if err != nil {
		return models.Faculty{}, storeFailure(err)
	}
	if faculty == nil {
		return models.Faculty{}, facultyNotFound(id)
	}
	return *faculty, nil
}

func (s *FacultyService) Update(ctx context.Context, id int64, in FacultyInput) (models.Faculty, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return models.Faculty{}, err
	}
	faculty, err := validateFacultyInput(in)
	if err != nil {
		return models.Faculty{}, err
	}
	faculty.ID = id
	faculty.CreatedAt = existing.CreatedAt

	ok, err := s.faculties.UpdateFaculty(ctx, &faculty)
	if err != nil {
		return models.Faculty{}, storeFailure(err)
	}
	if !ok {
		return models.Faculty{}, facultyNotFound(id)
	}
	s.logger.Info("faculty updated", "faculty_id", id)
	return faculty, nil
}

func (s *FacultyService) Delete(ctx context.Context, id int64) error {
	ok, err := s.faculties.DeleteFaculty(ctx, id)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return facultyNotFound(id)
	}
	s.logger.Info("faculty deleted", "faculty_id", id)
	return nil
}

// List returns every faculty, or those whose name or color contains query.
func (s *FacultyService) List(ctx context.Context, query string) ([]models.Faculty, error) {
	var (
		faculties []models.Faculty
		err       error
	)
	if query = strings.TrimSpace(query); query != "" {
		faculties, err = s.faculties.SearchFaculties(ctx, query)
	} else {
		faculties, err = s.faculties.ListFaculties(ctx)
	}
	if err != nil {
		return nil, storeFailure(err)
	}
	return faculties, nil
}

// LongestName returns the longest faculty name by character count. Ties go
// to the earliest faculty.
func (s *FacultyService) LongestName(ctx context.Context) (string, error) {
	faculties, err := s.faculties.ListFaculties(ctx)
	if err != nil {
		return "", storeFailure(err)
	}
	if len(faculties) == 0 {
		return models.NoFacultiesName, nil
	}
	longest := faculties[0].Name
	for _, faculty := range faculties[1:] {
		if utf8.RuneCountInString(faculty.Name) > utf8.RuneCountInString(longest) {
			longest = faculty.Name
		}
	}
	return longest, nil
}

// Students lists the members of one faculty.
func (s *FacultyService) Students(ctx context.Context, id int64) ([]models.Student, error) {
	exists, err := s.faculties.FacultyExists(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	if !exists {
		return nil, facultyNotFound(id)
	}
	students, err := s.students.ListStudentsByFaculty(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	return students, nil
}

func validateFacultyInput(in FacultyInput) (models.Faculty, error) {
	name, err := models.ParseName(in.Name)
	if err != nil {
		return models.Faculty{}, badRequestCode(err, ErrCodeInvalidName)
	}
	color, err := models.ParseColor(in.Color)
	if err != nil {
		return models.Faculty{}, badRequestCode(err, ErrCodeInvalidColor)
	}
	return models.Faculty{Name: name, Color: color}, nil
}

func facultyNotFound(id int64) error {
	return notFoundCode(fmt.Errorf("faculty %d not found", id), ErrCodeFacultyNotFound)
}
