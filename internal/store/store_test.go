package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"roster/internal/models"
)

// testStore creates a temporary store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func mustCreateStudent(t *testing.T, st *Store, name string, age int, facultyID *int64) *models.Student {
	t.Helper()
	student := &models.Student{Name: name, Age: age, FacultyID: facultyID}
	if err := st.CreateStudent(context.Background(), student); err != nil {
		t.Fatalf("create student %q: %v", name, err)
	}
	return student
}

func mustCreateFaculty(t *testing.T, st *Store, name, color string) *models.Faculty {
	t.Helper()
	faculty := &models.Faculty{Name: name, Color: color}
	if err := st.CreateFaculty(context.Background(), faculty); err != nil {
		t.Fatalf("create faculty %q: %v", name, err)
	}
	return faculty
}

func TestCreateAndGetStudent(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	student := mustCreateStudent(t, st, "Harry", 11, nil)
	if student.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := st.GetStudent(ctx, student.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected student, got nil")
	}
	if got.Name != "Harry" || got.Age != 11 {
		t.Fatalf("unexpected student %#v", got)
	}
	if got.FacultyID != nil {
		t.Fatalf("expected no faculty, got %d", *got.FacultyID)
	}

	missing, err := st.GetStudent(ctx, student.ID+100)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing student, got %#v", missing)
	}

	exists, err := st.StudentExists(ctx, student.ID)
	if err != nil || !exists {
		t.Fatalf("expected student to exist: exists=%v err=%v", exists, err)
	}
}

func TestCreateStudentUnknownFaculty(t *testing.T) {
	st := testStore(t)
	missing := int64(404)
	err := st.CreateStudent(context.Background(), &models.Student{Name: "Ghost", Age: 12, FacultyID: &missing})
	if !errors.Is(err, ErrUnknownFaculty) {
		t.Fatalf("expected ErrUnknownFaculty, got %v", err)
	}
}

func TestUpdateAndDeleteStudent(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	faculty := mustCreateFaculty(t, st, "Gryffindor", "red")
	student := mustCreateStudent(t, st, "Ron", 11, nil)

	student.Age = 12
	student.FacultyID = &faculty.ID
	ok, err := st.UpdateStudent(ctx, student)
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}

	got, err := st.GetStudent(ctx, student.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Age != 12 || got.FacultyID == nil || *got.FacultyID != faculty.ID {
		t.Fatalf("update not applied: %#v", got)
	}

	ok, err = st.UpdateStudent(ctx, &models.Student{ID: 999, Name: "x", Age: 1})
	if err != nil || ok {
		t.Fatalf("expected no-op update for missing id: ok=%v err=%v", ok, err)
	}

	ok, err = st.DeleteStudent(ctx, student.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = st.DeleteStudent(ctx, student.ID)
	if err != nil || ok {
		t.Fatalf("expected second delete to report false: ok=%v err=%v", ok, err)
	}
}

func TestStudentQueries(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	ages := []int{11, 12, 12, 14, 17, 11}
	for i, age := range ages {
		mustCreateStudent(t, st, string(rune('A'+i)), age, nil)
	}

	byAge, err := st.ListStudentsByAge(ctx, 12)
	if err != nil {
		t.Fatalf("by age: %v", err)
	}
	if len(byAge) != 2 {
		t.Fatalf("expected 2 students aged 12, got %d", len(byAge))
	}

	inRange, err := st.ListStudentsByAgeRange(ctx, 12, 14)
	if err != nil {
		t.Fatalf("by range: %v", err)
	}
	if len(inRange) != 3 {
		t.Fatalf("expected 3 students in [12,14], got %d", len(inRange))
	}

	count, err := st.CountStudents(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != len(ages) {
		t.Fatalf("expected %d students, got %d", len(ages), count)
	}

	avg, err := st.AverageStudentAge(ctx)
	if err != nil {
		t.Fatalf("avg: %v", err)
	}
	if math.Abs(avg-77.0/6.0) > 1e-9 {
		t.Fatalf("expected average %v, got %v", 77.0/6.0, avg)
	}

	last, err := st.ListLastStudents(ctx, models.LastStudentsLimit)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if len(last) != 5 {
		t.Fatalf("expected 5 students, got %d", len(last))
	}
	if last[0].Name != "F" || last[4].Name != "B" {
		t.Fatalf("expected newest first, got %q..%q", last[0].Name, last[4].Name)
	}
}

func TestAverageStudentAgeEmpty(t *testing.T) {
	st := testStore(t)
	avg, err := st.AverageStudentAge(context.Background())
	if err != nil {
		t.Fatalf("avg: %v", err)
	}
	if avg != 0 {
		t.Fatalf("expected 0 for empty table, got %v", avg)
	}
}

func TestFacultyCRUDAndSearch(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	gryffindor := mustCreateFaculty(t, st, "Gryffindor", "Red")
	mustCreateFaculty(t, st, "Hufflepuff", "Жёлтый")
	mustCreateFaculty(t, st, "Ravenclaw", "blue")

	tests := []struct {
		query string
		want  int
	}{
		{query: "RED", want: 1},
		{query: "жёлтый", want: 1},
		{query: "claw", want: 1},
		{query: "f", want: 2},
		{query: "zzz", want: 0},
	}
	for _, tc := range tests {
		got, err := st.SearchFaculties(ctx, tc.query)
		if err != nil {
			t.Fatalf("search %q: %v", tc.query, err)
		}
		if len(got) != tc.want {
			t.Fatalf("search %q: expected %d matches, got %d", tc.query, tc.want, len(got))
		}
	}

	gryffindor.Color = "scarlet"
	ok, err := st.UpdateFaculty(ctx, gryffindor)
	if err != nil || !ok {
		t.Fatalf("update faculty: ok=%v err=%v", ok, err)
	}
	got, err := st.GetFaculty(ctx, gryffindor.ID)
	if err != nil {
		t.Fatalf("get faculty: %v", err)
	}
	if got.Color != "scarlet" {
		t.Fatalf("expected updated color, got %q", got.Color)
	}

	all, err := st.ListFaculties(ctx)
	if err != nil {
		t.Fatalf("list faculties: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 faculties, got %d", len(all))
	}
}

func TestDeleteFacultyDetachesStudents(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	faculty := mustCreateFaculty(t, st, "Slytherin", "green")
	student := mustCreateStudent(t, st, "Draco", 11, &faculty.ID)

	members, err := st.ListStudentsByFaculty(ctx, faculty.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}

	ok, err := st.DeleteFaculty(ctx, faculty.ID)
	if err != nil || !ok {
		t.Fatalf("delete faculty: ok=%v err=%v", ok, err)
	}

	got, err := st.GetStudent(ctx, student.ID)
	if err != nil {
		t.Fatalf("get student: %v", err)
	}
	if got.FacultyID != nil {
		t.Fatalf("expected faculty to be cleared, got %d", *got.FacultyID)
	}
}

func TestStats(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	mustCreateFaculty(t, st, "Gryffindor", "red")
	student := mustCreateStudent(t, st, "Harry", 11, nil)
	if _, err := st.UpsertAvatar(ctx, &models.Avatar{StudentID: student.ID, FilePath: "/x/1.png", FileSize: 1, MediaType: "image/png"}); err != nil {
		t.Fatalf("upsert avatar: %v", err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := Stats{SchemaVersion: 2, Students: 1, Faculties: 1, Avatars: 1}
	if stats != want {
		t.Fatalf("expected %#v, got %#v", want, stats)
	}
}
