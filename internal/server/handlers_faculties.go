package server

import (
	"net/http"

	"roster/internal/api"
)

func (s *Server) handleCreateFaculty(w http.ResponseWriter, r *http.Request) {
	var req api.FacultyRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	faculty, err := s.facultyService.Create(r.Context(), FacultyInput(req))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, faculty)
}

func (s *Server) handleListFaculties(w http.ResponseWriter, r *http.Request) {
	faculties, err := s.facultyService.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, faculties)
}

func (s *Server) handleGetFaculty(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	faculty, err := s.facultyService.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, faculty)
}

func (s *Server) handleUpdateFaculty(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	var req api.FacultyRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	faculty, err := s.facultyService.Update(r.Context(), id, FacultyInput(req))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, faculty)
}

func (s *Server) handleDeleteFaculty(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	if err := s.facultyService.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleLongestFacultyName(w http.ResponseWriter, r *http.Request) {
	name, err := s.facultyService.LongestName(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.NameResponse{Name: name})
}

func (s *Server) handleFacultyStudents(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	students, err := s.facultyService.Students(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, students)
}
