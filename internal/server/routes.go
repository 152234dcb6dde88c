package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)

	// Students collection.
	mux.HandleFunc("POST /v1/students", s.handleCreateStudent)
	mux.HandleFunc("GET /v1/students", s.handleListStudents)

	// Student aggregates.
	mux.HandleFunc("GET /v1/students/count", s.handleStudentCount)
	mux.HandleFunc("GET /v1/students/average-age", s.handleStudentAverageAge)
	mux.HandleFunc("GET /v1/students/last-five", s.handleLastFiveStudents)
	mux.HandleFunc("GET /v1/students/names", s.handleStudentNames)

	// Single student.
	mux.HandleFunc("GET /v1/students/{id}", s.handleGetStudent)
	mux.HandleFunc("PUT /v1/students/{id}", s.handleUpdateStudent)
	mux.HandleFunc("DELETE /v1/students/{id}", s.handleDeleteStudent)
	mux.HandleFunc("GET /v1/students/{id}/faculty", s.handleStudentFaculty)

	// Avatars.
	mux.HandleFunc("POST /v1/students/{id}/avatar", s.handleUploadAvatar)
	mux.HandleFunc("GET /v1/students/{id}/avatar", s.handleAvatarDownload)
	mux.HandleFunc("GET /v1/students/{id}/avatar/preview", s.handleAvatarPreview)
	mux.HandleFunc("GET /v1/students/{id}/avatar/meta", s.handleGetAvatarMeta)
	mux.HandleFunc("GET /v1/avatars", s.handleListAvatars)

	// Faculties.
	mux.HandleFunc("POST /v1/faculties", s.handleCreateFaculty)
	mux.HandleFunc("GET /v1/faculties", s.handleListFaculties)
	mux.HandleFunc("GET /v1/faculties/longest-name", s.handleLongestFacultyName)
	mux.HandleFunc("GET /v1/faculties/{id}", s.handleGetFaculty)
	mux.HandleFunc("PUT /v1/faculties/{id}", s.handleUpdateFaculty)
	mux.HandleFunc("DELETE /v1/faculties/{id}", s.handleDeleteFaculty)
	mux.HandleFunc("GET /v1/faculties/{id}/students", s.handleFacultyStudents)

	return s.withRequestID(s.withRequestLogging(mux))
}
