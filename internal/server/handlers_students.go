package server

import (
	"net/http"

	"roster/internal/api"
)

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req api.StudentRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	student, err := s.studentService.Create(r.Context(), StudentInput(req))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, student)
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseStudentFilter(r)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	students, err := s.studentService.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, students)
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	student, err := s.studentService.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, student)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	var req api.StudentRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	student, err := s.studentService.Update(r.Context(), id, StudentInput(req))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, student)
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	if err := s.studentService.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleStudentCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.studentService.Count(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CountResponse{Count: count})
}

func (s *Server) handleStudentAverageAge(w http.ResponseWriter, r *http.Request) {
	avg, err := s.studentService.AverageAge(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.AverageAgeResponse{AverageAge: avg})
}

func (s *Server) handleLastFiveStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.studentService.LastFive(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, students)
}

func (s *Server) handleStudentNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.studentService.NamesWithPrefix(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.NamesResponse{Names: names})
}

func (s *Server) handleStudentFaculty(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	faculty, err := s.studentService.Faculty(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, faculty)
}

func parseStudentFilter(r *http.Request) (StudentFilter, error) {
	var filter StudentFilter
	var err error
	if filter.Age, err = queryOptionalInt(r, "age"); err != nil {
		return filter, err
	}
	if filter.MinAge, err = queryOptionalInt(r, "min_age"); err != nil {
		return filter, err
	}
	if filter.MaxAge, err = queryOptionalInt(r, "max_age"); err != nil {
		return filter, err
	}
	return filter, nil
}
