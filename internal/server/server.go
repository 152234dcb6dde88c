package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"roster/internal/blobstore"
	"roster/internal/store"
)

const (
	allowRemoteEnvKey = "ROSTER_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
)

// Store is the persistence surface the server is wired against.
type Store interface {
	store.StudentStore
	store.FacultyStore
	store.AvatarStore
	Stats(ctx context.Context) (store.Stats, error)
}

// Server wraps HTTP handlers for the roster API.
type Server struct {
	addr           string
	dbPath         string
	store          Store
	files          *blobstore.LocalFS
	studentService *StudentService
	facultyService *FacultyService
	avatarService  *AvatarService
	logger         *slog.Logger
}

// New creates a new server instance. Avatar files live under the root of files.
func New(addr, dbPath string, st Store, files *blobstore.LocalFS, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	var avatarFiles blobstore.AvatarFiles
	if files != nil {
		avatarFiles = files
	}
	avatarService := NewAvatarService(st, st, avatarFiles, logger)
	return &Server{
		addr:           addr,
		dbPath:         dbPath,
		store:          st,
		files:          files,
		studentService: NewStudentService(st, st, avatarService, logger),
		facultyService: NewFacultyService(st, st, logger),
		avatarService:  avatarService,
		logger:         logger,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr, "avatars_dir", s.files.Root())
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return server.ListenAndServe()
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
