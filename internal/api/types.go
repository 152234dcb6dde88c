package api

import "roster/internal/models"

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// StudentRequest is the body for creating or replacing a student.
type StudentRequest struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	FacultyID *int64 `json:"faculty_id,omitempty"`
}

// FacultyRequest is the body for creating or replacing a faculty.
type FacultyRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type StudentResponse = models.Student

type FacultyResponse = models.Faculty

// AvatarResponse is avatar metadata; inline bytes are never serialized.
type AvatarResponse = models.Avatar

type CountResponse struct {
	Count int `json:"count"`
}

type AverageAgeResponse struct {
	AverageAge float64 `json:"average_age"`
}

type NameResponse struct {
	Name string `json:"name"`
}

type NamesResponse struct {
	Names []string `json:"names"`
}

// InfoResponse reports server storage details.
type InfoResponse struct {
	DBPath        string `json:"db_path"`
	AvatarsDir    string `json:"avatars_dir"`
	SchemaVersion int    `json:"schema_version"`
	Students      int    `json:"students"`
	Faculties     int    `json:"faculties"`
	Avatars       int    `json:"avatars"`
}
