package server

import (
	"net/http"

	"roster/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, storeFailure(err))
		return
	}

	resp := api.InfoResponse{
		DBPath:        s.dbPath,
		AvatarsDir:    s.files.Root(),
		SchemaVersion: stats.SchemaVersion,
		Students:      stats.Students,
		Faculties:     stats.Faculties,
		Avatars:       stats.Avatars,
	}

	s.writeJSON(w, http.StatusOK, resp)
}
