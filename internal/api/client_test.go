package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHTTPTimeoutFromEnv(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})

	t.Run("duration format", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "45s")
		if got := httpTimeoutFromEnv(); got != 45*time.Second {
			t.Fatalf("expected 45s timeout, got %v", got)
		}
	})

	t.Run("integer seconds", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "25")
		if got := httpTimeoutFromEnv(); got != 25*time.Second {
			t.Fatalf("expected 25s timeout, got %v", got)
		}
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "invalid")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})
}

func TestDecodeErrorStructured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"avatar is 400000 bytes","code":"payload_too_large","error_code":1015}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GetStudent(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != "payload_too_large" || apiErr.ErrorCode != 1015 {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
	if ErrorCodeOf(err) != 1015 || ErrorCodeOf(errors.New("plain")) != 0 {
		t.Fatalf("unexpected error code lookup for %v", err)
	}
}

func TestUploadAvatarSendsMultipart(t *testing.T) {
	var gotPath, gotFilename, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		file, header, err := r.FormFile(AvatarFormField)
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotFilename = header.Filename
		gotType = header.Header.Get("Content-Type")
		gotBody = string(data)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "me.PNG")
	if err := os.WriteFile(path, []byte("pixels"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := NewClient(srv.URL).UploadAvatar(context.Background(), 7, path, "image/png"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if gotPath != "/v1/students/7/avatar" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotFilename != "me.PNG" || gotType != "image/png" || gotBody != "pixels" {
		t.Fatalf("unexpected upload: filename=%q type=%q body=%q", gotFilename, gotType, gotBody)
	}
}

func TestListAvatarsSendsPaging(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"student_id":3,"file_path":"/a/3.png","file_size":4,"media_type":"image/png"}]`))
	}))
	defer srv.Close()

	avatars, err := NewClient(srv.URL).ListAvatars(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotQuery != "page=2&size=5" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if len(avatars) != 1 || avatars[0].StudentID != 3 {
		t.Fatalf("unexpected avatars %#v", avatars)
	}
}
