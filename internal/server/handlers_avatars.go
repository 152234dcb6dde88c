package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"roster/internal/api"
	"roster/internal/models"
)

const (
	avatarUploadMaxBody   = 1 << 20 // 1 MiB
	avatarMultipartMemory = 1 << 20 // 1 MiB
	avatarCopyBufferSize  = 32 << 10
)

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	studentID, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(avatarUploadMaxBody))
	if err := r.ParseMultipartForm(avatarMultipartMemory); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, classifyMultipartError(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(api.AvatarFormField)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("%s is required", api.AvatarFormField), ErrCodeMissingRequired))
		return
	}
	_ = file.Close()

	_, err = s.avatarService.Upload(r.Context(), studentID, AvatarUpload{
		Filename:  header.Filename,
		Size:      header.Size,
		MediaType: header.Header.Get("Content-Type"),
		Open:      multipartOpener(header),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetAvatarMeta(w http.ResponseWriter, r *http.Request) {
	studentID, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	avatar, err := s.avatarService.FindAvatar(r.Context(), studentID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, avatar)
}

func (s *Server) handleAvatarPreview(w http.ResponseWriter, r *http.Request) {
	studentID, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	preview, err := s.avatarService.Preview(r.Context(), studentID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if notModified(w, r, preview.ETag) {
		return
	}

	setAvatarHeaders(w, preview.MediaType, int64(len(preview.Data)), preview.ETag)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(preview.Data); err != nil {
		s.log().Debug("write avatar preview", "student_id", studentID, "error", err)
	}
}

func (s *Server) handleAvatarDownload(w http.ResponseWriter, r *http.Request) {
	studentID, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	content, err := s.avatarService.OpenDownload(r.Context(), studentID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer content.Reader.Close()

	if notModified(w, r, content.ETag) {
		return
	}

	setAvatarHeaders(w, content.MediaType, content.SizeBytes, content.ETag)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.CopyBuffer(w, content.Reader, make([]byte, avatarCopyBufferSize)); err != nil {
		// Headers are already sent; the client sees a truncated body.
		s.log().Warn("stream avatar", "student_id", studentID, "error", err)
	}
}

func (s *Server) handleListAvatars(w http.ResponseWriter, r *http.Request) {
	page, err := queryIntDefault(r, "page", models.DefaultAvatarPage)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	size, err := queryIntDefault(r, "size", models.DefaultAvatarPageSize)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	avatars, err := s.avatarService.ListAvatars(r.Context(), page, size)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, avatars)
}

func multipartOpener(header *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

func setAvatarHeaders(w http.ResponseWriter, mediaType string, size int64, etag string) {
	if strings.TrimSpace(mediaType) == "" {
		mediaType = fallbackAvatarMediaType
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
}

// notModified answers a matching If-None-Match with 304.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	if etag == "" {
		return false
	}
	header := r.Header.Get("If-None-Match")
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}
	return false
}

func classifyMultipartError(err error) error {
	if err == nil {
		return nil
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		return payloadTooLarge(fmt.Errorf("request body too large"))
	}
	return badRequestCode(err, ErrCodeInvalidMultipart)
}
