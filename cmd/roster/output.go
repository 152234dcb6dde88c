package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"roster/internal/api"
	"roster/internal/format"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

// writeJSON writes payload with the selected structured formatter.
func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeStudentList(students []api.StudentResponse) error {
	if len(students) == 0 {
		return writePlain("no students\n")
	}
	for _, student := range students {
		if err := writePlain("%s\n", formatStudentLine(student)); err != nil {
			return err
		}
	}
	return nil
}

func writeStudentDetail(student api.StudentResponse) error {
	lines := []string{
		fmt.Sprintf("id: %d", student.ID),
		fmt.Sprintf("name: %s", student.Name),
		fmt.Sprintf("age: %d", student.Age),
	}
	if student.FacultyID != nil {
		lines = append(lines, fmt.Sprintf("faculty_id: %d", *student.FacultyID))
	}
	lines = append(lines,
		fmt.Sprintf("created_at: %s", formatTime(student.CreatedAt)),
		fmt.Sprintf("updated_at: %s", formatTime(student.UpdatedAt)),
	)
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatStudentLine(student api.StudentResponse) string {
	line := fmt.Sprintf("%d  %s (%d)", student.ID, student.Name, student.Age)
	if student.FacultyID != nil {
		line += fmt.Sprintf(" [faculty %d]", *student.FacultyID)
	}
	return line
}

func writeFacultyList(faculties []api.FacultyResponse) error {
	if len(faculties) == 0 {
		return writePlain("no faculties\n")
	}
	for _, faculty := range faculties {
		if err := writePlain("%s\n", formatFacultyLine(faculty)); err != nil {
			return err
		}
	}
	return nil
}

func writeFacultyDetail(faculty api.FacultyResponse) error {
	lines := []string{
		fmt.Sprintf("id: %d", faculty.ID),
		fmt.Sprintf("name: %s", faculty.Name),
		fmt.Sprintf("color: %s", faculty.Color),
		fmt.Sprintf("created_at: %s", formatTime(faculty.CreatedAt)),
		fmt.Sprintf("updated_at: %s", formatTime(faculty.UpdatedAt)),
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatFacultyLine(faculty api.FacultyResponse) string {
	return fmt.Sprintf("%d  %s [%s]", faculty.ID, faculty.Name, faculty.Color)
}

func writeAvatarList(avatars []api.AvatarResponse) error {
	if len(avatars) == 0 {
		return writePlain("no avatars\n")
	}
	for _, avatar := range avatars {
		if err := writePlain("%s\n", formatAvatarLine(avatar)); err != nil {
			return err
		}
	}
	return nil
}

func writeAvatarDetail(avatar api.AvatarResponse) error {
	lines := []string{
		fmt.Sprintf("id: %d", avatar.ID),
		fmt.Sprintf("student_id: %d", avatar.StudentID),
		fmt.Sprintf("file_path: %s", avatar.FilePath),
		fmt.Sprintf("file_size: %s (%d bytes)", humanize.IBytes(uint64(avatar.FileSize)), avatar.FileSize),
		fmt.Sprintf("media_type: %s", avatar.MediaType),
		fmt.Sprintf("checksum: %s", avatar.Checksum),
		fmt.Sprintf("updated_at: %s (%s)", formatTime(avatar.UpdatedAt), humanize.Time(avatar.UpdatedAt)),
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatAvatarLine(avatar api.AvatarResponse) string {
	return fmt.Sprintf("%d  student %d  %s  %s  %s",
		avatar.ID, avatar.StudentID, humanize.IBytes(uint64(avatar.FileSize)), avatar.MediaType, avatar.FilePath)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
