package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"roster/internal/models"
	"roster/internal/store"
)

// StudentInput carries the writable student fields.
type StudentInput struct {
	Name      string
	Age       int
	FacultyID *int64
}

// StudentFilter narrows a student listing. Age and the range are exclusive.
type StudentFilter struct {
	Age    *int
	MinAge *int
	MaxAge *int
}

// StudentService owns student validation and lifecycle.
type StudentService struct {
	students  store.StudentStore
	faculties store.FacultyStore
	avatars   *AvatarService
	logger    *slog.Logger
}

// NewStudentService constructs a StudentService. avatars may be nil.
func NewStudentService(students store.StudentStore, faculties store.FacultyStore, avatars *AvatarService, logger *slog.Logger) *StudentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StudentService{students: students, faculties: faculties, avatars: avatars, logger: logger}
}

func (s *StudentService) Create(ctx context.Context, in StudentInput) (models.Student, error) {
	student, err := s.validate(ctx, in)
	if err != nil {
		return models.Student{}, err
	}
	if err := s.students.CreateStudent(ctx, &student); err != nil {
		return models.Student{}, s.mapWriteError(err)
	}
	s.logger.Info("student created", "student_id", student.ID)
	return student, nil
}

func (s *StudentService) Get(ctx context.Context, id int64) (models.Student, error) {
	student, err := s.students.GetStudent(ctx, id)
	if err != nil {
		return models.Student{}, storeFailure(err)
	}
	if student == nil {
		return models.Student{}, studentNotFound(id)
	}
	return *student, nil
}

// Update replaces every writable field of an existing student.
func (s *StudentService) Update(ctx context.Context, id int64, in StudentInput) (models.Student, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return models.Student{}, err
	}
	student, err := s.validate(ctx, in)
	if err != nil {
		return models.Student{}, err
	}
	student.ID = id
	student.CreatedAt = existing.CreatedAt

	ok, err := s.students.UpdateStudent(ctx, &student)
	if err != nil {
		return models.Student{}, s.mapWriteError(err)
	}
	if !ok {
		return models.Student{}, studentNotFound(id)
	}
	s.logger.Info("student updated", "student_id", id)
	return student, nil
}

// Delete removes the student and its avatar record. The avatar file is
// removed on a best-effort basis.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	avatarPath, err := s.avatars.storedPath(ctx, id)
	if err != nil {
		return storeFailure(err)
	}
	ok, err := s.students.DeleteStudent(ctx, id)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return studentNotFound(id)
	}
	s.avatars.removeFile(ctx, id, avatarPath)
	s.logger.Info("student deleted", "student_id", id)
	return nil
}

func (s *StudentService) List(ctx context.Context, filter StudentFilter) ([]models.Student, error) {
	var (
		students []models.Student
		err      error
	)
	switch {
	case filter.Age != nil && (filter.MinAge != nil || filter.MaxAge != nil):
		return nil, badRequestCode(fmt.Errorf("age cannot be combined with min_age/max_age"), ErrCodeInvalidQuery)
	case filter.Age != nil:
		if !models.IsValidAge(*filter.Age) {
			return nil, badRequestCode(fmt.Errorf("age must be between %d and %d", models.AgeMin, models.AgeMax), ErrCodeInvalidAge)
		}
		students, err = s.students.ListStudentsByAge(ctx, *filter.Age)
	case filter.MinAge != nil || filter.MaxAge != nil:
		if filter.MinAge == nil || filter.MaxAge == nil {
			return nil, badRequestCode(fmt.Errorf("min_age and max_age are both required"), ErrCodeMissingRequired)
		}
		span := models.AgeRange{Min: *filter.MinAge, Max: *filter.MaxAge}
		if err := span.Validate(); err != nil {
			return nil, badRequestCode(err, ErrCodeInvalidAgeRange)
		}
		students, err = s.students.ListStudentsByAgeRange(ctx, span.Min, span.Max)
	default:
		students, err = s.students.ListStudents(ctx)
	}
	if err != nil {
		return nil, storeFailure(err)
	}
	return students, nil
}

func (s *StudentService) Count(ctx context.Context) (int, error) {
	count, err := s.students.CountStudents(ctx)
	if err != nil {
		return 0, storeFailure(err)
	}
	return count, nil
}

func (s *StudentService) AverageAge(ctx context.Context) (float64, error) {
	avg, err := s.students.AverageStudentAge(ctx)
	if err != nil {
		return 0, storeFailure(err)
	}
	return avg, nil
}

// LastFive returns the most recently created students, newest first.
func (s *StudentService) LastFive(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.ListLastStudents(ctx, models.LastStudentsLimit)
	if err != nil {
		return nil, storeFailure(err)
	}
	return students, nil
}

// NamesWithPrefix returns upper-cased student names starting with prefix,
// compared case-insensitively, sorted.
func (s *StudentService) NamesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, badRequestCode(fmt.Errorf("prefix is required"), ErrCodeMissingRequired)
	}
	students, err := s.students.ListStudents(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	names := []string{}
	for _, student := range students {
		name := strings.ToUpper(student.Name)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Faculty returns the faculty a student belongs to.
func (s *StudentService) Faculty(ctx context.Context, id int64) (models.Faculty, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return models.Faculty{}, err
	}
	if student.FacultyID == nil {
		return models.Faculty{}, notFoundCode(fmt.Errorf("student %d has no faculty", id), ErrCodeNoFacultyAssigned)
	}
	faculty, err := s.faculties.GetFaculty(ctx, *student.FacultyID)
	if err != nil {
		return models.Faculty{}, storeFailure(err)
	}
	if faculty == nil {
		return models.Faculty{}, notFoundCode(fmt.Errorf("student %d has no faculty", id), ErrCodeNoFacultyAssigned)
	}
	return *faculty, nil
}

func (s *StudentService) validate(ctx context.Context, in StudentInput) (models.Student, error) {
	name, err := models.ParseName(in.Name)
	if err != nil {
		return models.Student{}, badRequestCode(err, ErrCodeInvalidName)
	}
	if !models.IsValidAge(in.Age) {
		return models.Student{}, badRequestCode(fmt.Errorf("age must be between %d and %d", models.AgeMin, models.AgeMax), ErrCodeInvalidAge)
	}
	if in.FacultyID != nil {
		exists, err := s.faculties.FacultyExists(ctx, *in.FacultyID)
		if err != nil {
			return models.Student{}, storeFailure(err)
		}
		if !exists {
			return models.Student{}, unknownFaculty(*in.FacultyID)
		}
	}
	return models.Student{Name: name, Age: in.Age, FacultyID: in.FacultyID}, nil
}

func (s *StudentService) mapWriteError(err error) error {
	if errors.Is(err, store.ErrUnknownFaculty) {
		return badRequestCode(err, ErrCodeUnknownFaculty)
	}
	return storeFailure(err)
}

func studentNotFound(id int64) error {
	return notFoundCode(fmt.Errorf("student %d not found", id), ErrCodeStudentNotFound)
}

func unknownFaculty(id int64) error {
	return badRequestCode(fmt.Errorf("faculty %d does not exist", id), ErrCodeUnknownFaculty)
}
