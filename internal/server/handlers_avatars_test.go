package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"roster/internal/api"
	"roster/internal/models"
)

func TestAvatarUploadPreviewAndDownload(t *testing.T) {
	srv := newTestServer(t)
	student := seedStudent(t, srv, "Hermione", 17, nil)
	content := []byte("\x89PNG\r\n\x1a\nfake image body")

	w := doUpload(t, srv, student.ID, "portrait.png", "image/png", content)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty upload body, got %q", w.Body.String())
	}

	expectedPath := filepath.Join(srv.files.Root(), strconv.FormatInt(student.ID, 10)+".png")
	onDisk, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("read avatar file: %v", err)
	}
	if !bytes.Equal(onDisk, content) {
		t.Fatalf("unexpected file content: %q", onDisk)
	}

	preview := doJSON(t, srv, http.MethodGet, avatarPath(student.ID)+"/preview", nil)
	if preview.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", preview.Code, preview.Body.String())
	}
	if got := preview.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
	if got := preview.Header().Get("Content-Length"); got != strconv.Itoa(len(content)) {
		t.Fatalf("expected content length %d, got %q", len(content), got)
	}
	if !bytes.Equal(preview.Body.Bytes(), content) {
		t.Fatalf("unexpected preview body: %q", preview.Body.Bytes())
	}
	etag := preview.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag on preview")
	}

	download := doJSON(t, srv, http.MethodGet, avatarPath(student.ID), nil)
	if download.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", download.Code, download.Body.String())
	}
	if got := download.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
	if got := download.Header().Get("Content-Length"); got != strconv.Itoa(len(content)) {
		t.Fatalf("expected content length %d, got %q", len(content), got)
	}
	if !bytes.Equal(download.Body.Bytes(), content) {
		t.Fatalf("unexpected download body: %q", download.Body.Bytes())
	}
	if got := download.Header().Get("ETag"); got != etag {
		t.Fatalf("expected download ETag %q, got %q", etag, got)
	}

	meta := doJSON(t, srv, http.MethodGet, avatarPath(student.ID)+"/meta", nil)
	if meta.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", meta.Code, meta.Body.String())
	}
	var avatar models.Avatar
	if err := json.Unmarshal(meta.Body.Bytes(), &avatar); err != nil {
		t.Fatalf("decode avatar meta: %v", err)
	}
	if avatar.FilePath != expectedPath || avatar.FileSize != int64(len(content)) || avatar.MediaType != "image/png" {
		t.Fatalf("unexpected avatar meta: %+v", avatar)
	}
	if strings.Contains(meta.Body.String(), `"data"`) {
		t.Fatalf("meta must not expose inline data: %s", meta.Body.String())
	}
}

func TestAvatarConditionalGet(t *testing.T) {
	srv := newTestServer(t)
	student := seedStudent(t, srv, "Ron", 17, nil)
	if w := doUpload(t, srv, student.ID, "ron.jpg", "image/jpeg", []byte("jpeg")); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	first := doJSON(t, srv, http.MethodGet, avatarPath(student.ID)+"/preview", nil)
	etag := first.Header().Get("ETag")

	for _, path := range []string{avatarPath(student.ID), avatarPath(student.ID) + "/preview"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("If-None-Match", etag)
		w := httptest.NewRecorder()
		srv.routes().ServeHTTP(w, req)
		if w.Code != http.StatusNotModified {
			t.Fatalf("%s: expected 304, got %d", path, w.Code)
		}
		if w.Body.Len() != 0 {
			t.Fatalf("%s: expected empty body on 304", path)
		}
	}

	req := httptest.NewRequest(http.MethodGet, avatarPath(student.ID), nil)
	req.Header.Set("If-None-Match", `"stale"`)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for stale etag, got %d", w.Code)
	}
}

func TestAvatarMediaTypeIsStoredVerbatim(t *testing.T) {
	srv := newTestServer(t)
	student := seedStudent(t, srv, "Luna", 16, nil)

	if w := doUpload(t, srv, student.ID, "luna.png", "image/x-Custom; q=1", []byte("abc")); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	preview := doJSON(t, srv, http.MethodGet, avatarPath(student.ID)+"/preview", nil)
	if got := preview.Header().Get("Content-Type"); got != "image/x-Custom; q=1" {
		t.Fatalf("expected verbatim media type, got %q", got)
	}
}

func TestAvatarUploadSizeLimit(t *testing.T) {
	srv := newTestServer(t)
	student := seedStudent(t, srv, "Neville", 17, nil)

	atLimit := bytes.Repeat([]byte{'a'}, models.AvatarMaxBytes)
	if w := doUpload(t, srv, student.ID, "big.png", "image/png", atLimit); w.Code != http.StatusOK {
		t.Fatalf("expected 200 at limit, got %d (%s)", w.Code, w.Body.String())
	}

	overLimit := bytes.Repeat([]byte{'b'}, models.AvatarMaxBytes+1)
	w := doUpload(t, srv, student.ID, "big.png", "image/png", overLimit)
	expectErrorCode(t, w, http.StatusBadRequest, ErrCodePayloadTooLarge)
	if code := decodeError(t, w).Code; code != "payload_too_large" {
		t.Fatalf("expected payload_too_large, got %q", code)
	}

	// The rejected upload must not replace the stored file.
	onDisk, err := os.ReadFile(filepath.Join(srv.files.Root(), strconv.FormatInt(student.ID, 10)+".png"))
	if err != nil {
		t.Fatalf("read avatar file: %v", err)
	}
	if !bytes.Equal(onDisk, atLimit) {
		t.Fatal("expected previous avatar to remain on disk")
	}

	hugeBody := bytes.Repeat([]byte{'c'}, 2<<20)
	w = doUpload(t, srv, student.ID, "huge.png", "image/png", hugeBody)
	expectErrorCode(t, w, http.StatusBadRequest, ErrCodePayloadTooLarge)
}

func TestAvatarUploadValidation(t *testing.T) {
	srv := newTestServer(t)
	student := seedStudent(t, srv, "Draco", 17, nil)

	tests := []struct {
		name      string
		studentID int64
		filename  string
		status    int
		code      int
	}{
		{name: "unknown student", studentID: student.ID + 100, filename: "x.png", status: http.StatusNotFound, code: ErrCodeStudentNotFound},
		{name: "missing extension", studentID: student.ID, filename: "avatar", status: http.StatusBadRequest, code: ErrCodeInvalidFilename},
		{name: "trailing dot", studentID: student.ID, filename: "avatar.", status: http.StatusBadRequest, code: ErrCodeInvalidFilename},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doUpload(t, srv, tc.studentID, tc.filename, "image/png", []byte("x"))
			expectErrorCode(t, w, tc.status, tc.code)
		})
	}

	t.Run("missing form field", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		_ = writer.WriteField("other", "value")
		if err := writer.Close(); err != nil {
			t.Fatalf("close multipart writer: %v", err)
		}
		req := httptest.NewRequest(http.MethodPost, avatarPath(student.ID), body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		srv.routes().ServeHTTP(w, req)
		expectErrorCode(t, w, http.StatusBadRequest, ErrCodeMissingRequired)
	})

	t.Run("not multipart", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodPost, avatarPath(student.ID), map[string]string{"avatar": "x"})
		expectErrorCode(t, w, http.StatusBadRequest, ErrCodeInvalidMultipart)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodGet, "/v1/students/abc/avatar", nil)
		expectErrorCode(t, w, http.StatusBadRequest, ErrCodeInvalidID)
	})
}

func TestAvatarReuploadKeepsSingleRecord(t *testing.T) {
	srv := newTestServer(t)
	student := seedStudent(t, srv, "Ginny", 15, nil)

	if w := doUpload(t, srv, student.ID, "one.png", "image/png", []byte("first")); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	first := fetchAvatarMeta(t, srv, student.ID)

	if w := doUpload(t, srv, student.ID, "two.png", "image/png", []byte("second!")); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	second := fetchAvatarMeta(t, srv, student.ID)
	if second.ID != first.ID {
		t.Fatalf("expected record id %d to be preserved, got %d", first.ID, second.ID)
	}
	if second.FileSize != int64(len("second!")) || second.Checksum == first.Checksum {
		t.Fatalf("expected replaced fields, got %+v", second)
	}

	if w := doUpload(t, srv, student.ID, "three.JPG", "image/jpeg", []byte("third")); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	third := fetchAvatarMeta(t, srv, student.ID)
	if !strings.HasSuffix(third.FilePath, strconv.FormatInt(student.ID, 10)+".JPG") {
		t.Fatalf("expected extension case preserved, got %q", third.FilePath)
	}

	// Changing the extension leaves the earlier file in place.
	if _, err := os.Stat(second.FilePath); err != nil {
		t.Fatalf("expected previous file to remain: %v", err)
	}

	avatars := fetchAvatarPage(t, srv, "")
	if len(avatars) != 1 {
		t.Fatalf("expected 1 avatar record, got %d", len(avatars))
	}
}

func TestAvatarDownloadMissingFile(t *testing.T) {
	srv := newTestServer(t)
	student := seedStudent(t, srv, "Fred", 18, nil)

	w := doJSON(t, srv, http.MethodGet, avatarPath(student.ID), nil)
	expectErrorCode(t, w, http.StatusNotFound, ErrCodeAvatarNotFound)

	if w := doUpload(t, srv, student.ID, "fred.gif", "image/gif", []byte("gif")); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	meta := fetchAvatarMeta(t, srv, student.ID)
	if err := os.Remove(meta.FilePath); err != nil {
		t.Fatalf("remove avatar file: %v", err)
	}

	w = doJSON(t, srv, http.MethodGet, avatarPath(student.ID), nil)
	expectErrorCode(t, w, http.StatusNotFound, ErrCodeAvatarFileMissing)

	// Preview is served from the record and does not need the file.
	preview := doJSON(t, srv, http.MethodGet, avatarPath(student.ID)+"/preview", nil)
	if preview.Code != http.StatusOK || preview.Body.String() != "gif" {
		t.Fatalf("expected preview from record, got %d (%s)", preview.Code, preview.Body.String())
	}
}

func TestListAvatarsPaging(t *testing.T) {
	srv := newTestServer(t)
	ids := make([]int64, 0, 7)
	for i := range 7 {
		student := seedStudent(t, srv, fmt.Sprintf("Student %d", i), 18, nil)
		if w := doUpload(t, srv, student.ID, "a.png", "image/png", []byte{byte(i)}); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		ids = append(ids, student.ID)
	}

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{name: "defaults", query: "", want: ids[:5]},
		{name: "second page", query: "?page=1&size=5", want: ids[5:]},
		{name: "small pages", query: "?page=1&size=3", want: ids[3:6]},
		{name: "past the end", query: "?page=4&size=3", want: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			avatars := fetchAvatarPage(t, srv, tc.query)
			if len(avatars) != len(tc.want) {
				t.Fatalf("expected %d avatars, got %d", len(tc.want), len(avatars))
			}
			for i, avatar := range avatars {
				if avatar.StudentID != tc.want[i] {
					t.Fatalf("position %d: expected student %d, got %d", i, tc.want[i], avatar.StudentID)
				}
			}
		})
	}

	invalid := []struct {
		query string
		code  int
	}{
		{query: "?page=-1", code: ErrCodeInvalidPage},
		{query: "?size=0", code: ErrCodeInvalidPage},
		{query: "?page=abc", code: ErrCodeInvalidQuery},
	}
	for _, tc := range invalid {
		w := doJSON(t, srv, http.MethodGet, "/v1/avatars"+tc.query, nil)
		expectErrorCode(t, w, http.StatusBadRequest, tc.code)
	}
}

func TestDeleteStudentRemovesAvatar(t *testing.T) {
	srv := newTestServer(t)
	student := seedStudent(t, srv, "George", 18, nil)
	if w := doUpload(t, srv, student.ID, "george.png", "image/png", []byte("png")); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	meta := fetchAvatarMeta(t, srv, student.ID)

	w := doJSON(t, srv, http.MethodDelete, "/v1/students/"+strconv.FormatInt(student.ID, 10), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	if _, err := os.Stat(meta.FilePath); !os.IsNotExist(err) {
		t.Fatalf("expected avatar file to be removed, stat err: %v", err)
	}
	w = doJSON(t, srv, http.MethodGet, avatarPath(student.ID)+"/meta", nil)
	expectErrorCode(t, w, http.StatusNotFound, ErrCodeAvatarNotFound)
	if avatars := fetchAvatarPage(t, srv, ""); len(avatars) != 0 {
		t.Fatalf("expected no avatar records, got %d", len(avatars))
	}
}

func avatarPath(studentID int64) string {
	return "/v1/students/" + strconv.FormatInt(studentID, 10) + "/avatar"
}

func doUpload(t *testing.T, srv *Server, studentID int64, filename, mediaType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, api.AvatarFormField, filename))
	if mediaType != "" {
		header.Set("Content-Type", mediaType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create form part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, avatarPath(studentID), body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)
	return w
}

func fetchAvatarMeta(t *testing.T, srv *Server, studentID int64) models.Avatar {
	t.Helper()
	w := doJSON(t, srv, http.MethodGet, avatarPath(studentID)+"/meta", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var avatar models.Avatar
	if err := json.Unmarshal(w.Body.Bytes(), &avatar); err != nil {
		t.Fatalf("decode avatar meta: %v", err)
	}
	return avatar
}

func fetchAvatarPage(t *testing.T, srv *Server, query string) []models.Avatar {
	t.Helper()
	w := doJSON(t, srv, http.MethodGet, "/v1/avatars"+query, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var avatars []models.Avatar
	if err := json.Unmarshal(w.Body.Bytes(), &avatars); err != nil {
		t.Fatalf("decode avatar list: %v", err)
	}
	return avatars
}
