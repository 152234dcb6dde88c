package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "ROSTER_HTTP_TIMEOUT"

	// AvatarFormField is the multipart field carrying an uploaded avatar.
	AvatarFormField = "avatar"
)

// Client is a simple HTTP client for the roster API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateStudent(ctx context.Context, req StudentRequest) (StudentResponse, error) {
	var resp StudentResponse
	err := c.do(ctx, http.MethodPost, "/v1/students", nil, req, &resp)
	return resp, err
}

func (c *Client) GetStudent(ctx context.Context, id int64) (StudentResponse, error) {
	var resp StudentResponse
	err := c.do(ctx, http.MethodGet, studentPath(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdateStudent(ctx context.Context, id int64, req StudentRequest) (StudentResponse, error) {
	var resp StudentResponse
	err := c.do(ctx, http.MethodPut, studentPath(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteStudent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, studentPath(id), nil, nil, nil)
}

// ListStudents accepts age, min_age and max_age query filters.
func (c *Client) ListStudents(ctx context.Context, query url.Values) ([]StudentResponse, error) {
	var resp []StudentResponse
	err := c.do(ctx, http.MethodGet, "/v1/students", query, nil, &resp)
	return resp, err
}

func (c *Client) CountStudents(ctx context.Context) (CountResponse, error) {
	var resp CountResponse
	err := c.do(ctx, http.MethodGet, "/v1/students/count", nil, nil, &resp)
	return resp, err
}

func (c *Client) AverageAge(ctx context.Context) (AverageAgeResponse, error) {
	var resp AverageAgeResponse
	err := c.do(ctx, http.MethodGet, "/v1/students/average-age", nil, nil, &resp)
	return resp, err
}

func (c *Client) LastFiveStudents(ctx context.Context) ([]StudentResponse, error) {
	var resp []StudentResponse
	err := c.do(ctx, http.MethodGet, "/v1/students/last-five", nil, nil, &resp)
	return resp, err
}

func (c *Client) StudentNames(ctx context.Context, prefix string) (NamesResponse, error) {
	var resp NamesResponse
	err := c.do(ctx, http.MethodGet, "/v1/students/names", url.Values{"prefix": {prefix}}, nil, &resp)
	return resp, err
}

func (c *Client) StudentFaculty(ctx context.Context, id int64) (FacultyResponse, error) {
	var resp FacultyResponse
	err := c.do(ctx, http.MethodGet, studentPath(id)+"/faculty", nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateFaculty(ctx context.Context, req FacultyRequest) (FacultyResponse, error) {
	var resp FacultyResponse
	err := c.do(ctx, http.MethodPost, "/v1/faculties", nil, req, &resp)
	return resp, err
}

func (c *Client) GetFaculty(ctx context.Context, id int64) (FacultyResponse, error) {
	var resp FacultyResponse
	err := c.do(ctx, http.MethodGet, facultyPath(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdateFaculty(ctx context.Context, id int64, req FacultyRequest) (FacultyResponse, error) {
	var resp FacultyResponse
	err := c.do(ctx, http.MethodPut, facultyPath(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteFaculty(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, facultyPath(id), nil, nil, nil)
}

// ListFaculties lists all faculties, or searches name and color when q is set.
func (c *Client) ListFaculties(ctx context.Context, q string) ([]FacultyResponse, error) {
	var query url.Values
	if strings.TrimSpace(q) != "" {
		query = url.Values{"q": {q}}
	}
	var resp []FacultyResponse
	err := c.do(ctx, http.MethodGet, "/v1/faculties", query, nil, &resp)
	return resp, err
}

func (c *Client) LongestFacultyName(ctx context.Context) (NameResponse, error) {
	var resp NameResponse
	err := c.do(ctx, http.MethodGet, "/v1/faculties/longest-name", nil, nil, &resp)
	return resp, err
}

func (c *Client) FacultyStudents(ctx context.Context, id int64) ([]StudentResponse, error) {
	var resp []StudentResponse
	err := c.do(ctx, http.MethodGet, facultyPath(id)+"/students", nil, nil, &resp)
	return resp, err
}

// UploadAvatar sends the file at path as the student's avatar.
func (c *Client) UploadAvatar(ctx context.Context, studentID int64, path, mediaType string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, AvatarFormField, filepath.Base(path)))
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	header.Set("Content-Type", mediaType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+studentPath(studentID)+"/avatar", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) GetAvatarMeta(ctx context.Context, studentID int64) (AvatarResponse, error) {
	var resp AvatarResponse
	err := c.do(ctx, http.MethodGet, studentPath(studentID)+"/avatar/meta", nil, nil, &resp)
	return resp, err
}

// DownloadAvatar copies the avatar bytes to w. With preview set the inline
// copy is fetched instead of the full-size file. It returns the media type.
func (c *Client) DownloadAvatar(ctx context.Context, studentID int64, preview bool, w io.Writer) (string, error) {
	path := studentPath(studentID) + "/avatar"
	if preview {
		path += "/preview"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", decodeError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", err
	}
	return resp.Header.Get("Content-Type"), nil
}

func (c *Client) ListAvatars(ctx context.Context, page, size int) ([]AvatarResponse, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	var resp []AvatarResponse
	err := c.do(ctx, http.MethodGet, "/v1/avatars", query, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return &APIError{Status: resp.StatusCode, Code: errResp.Code, ErrorCode: errResp.ErrorCode, Message: errResp.Error}
	}
	return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("api error: %s", resp.Status)}
}

func studentPath(id int64) string {
	return "/v1/students/" + strconv.FormatInt(id, 10)
}

func facultyPath(id int64) string {
	return "/v1/faculties/" + strconv.FormatInt(id, 10)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
