package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client talks to the clinic REST backend. The backend is the single owner
// of patients, users and service entries; this client never caches.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
		logger: logger,
	}
}

// ReadyCheck pings the backend health endpoint for /readyz.
func (c *Client) ReadyCheck() func(context.Context) error {
	return func(ctx context.Context) error {
		return c.Health(ctx)
	}
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, "", nil, nil)
}

// --- auth ---

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	in := map[string]string{"username": username, "password": password}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, token, nil, nil)
}

// --- patients ---

func (c *Client) ListPatients(ctx context.Context, token, q string) ([]Patient, error) {
	var query url.Values
	if q != "" {
		query = url.Values{"q": {q}}
	}
	var out []Patient
	if err := c.do(ctx, http.MethodGet, "/patients/", query, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPatient(ctx context.Context, token string, id int) (*Patient, error) {
	var out Patient
	if err := c.do(ctx, http.MethodGet, "/patients/"+strconv.Itoa(id), nil, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePatient(ctx context.Context, token string, p Patient) (*Patient, error) {
	var out Patient
	if err := c.do(ctx, http.MethodPost, "/patients/", nil, token, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePatient(ctx context.Context, token string, id int, p Patient) (*Patient, error) {
	var out Patient
	if err := c.do(ctx, http.MethodPut, "/patients/"+strconv.Itoa(id), nil, token, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePatient(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodDelete, "/patients/"+strconv.Itoa(id), nil, token, nil, nil)
}

// --- patient files ---

func (c *Client) ListPatientFiles(ctx context.Context, token string, patientID int) ([]PatientFile, error) {
	var out []PatientFile
	path := fmt.Sprintf("/patients/%d/files", patientID)
	if err := c.do(ctx, http.MethodGet, path, nil, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UploadPatientFile(ctx context.Context, token string, patientID int, filename string, file io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	u := fmt.Sprintf("%s/patients/%d/files", c.baseURL, patientID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}
	return nil
}

func (c *Client) DeletePatientFile(ctx context.Context, token string, patientID int, fileID, filename string) error {
	path := fmt.Sprintf("/patients/%d/files/%s", patientID, url.PathEscape(fileID))
	return c.do(ctx, http.MethodDelete, path, url.Values{"filename": {filename}}, token, nil, nil)
}

// --- services ---

// ListServices returns a patient's service entries, optionally filtered by
// service_category (appointment/attendance) and sheet_type.
func (c *Client) ListServices(ctx context.Context, token string, patientID int, category, sheetType string) ([]ServiceEntry, error) {
	query := url.Values{}
	if category != "" {
		query.Set("service_category", category)
	}
	if sheetType != "" {
		query.Set("sheet_type", sheetType)
	}
	var out []ServiceEntry
	path := fmt.Sprintf("/patients/%d/services", patientID)
	if err := c.do(ctx, http.MethodGet, path, query, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateService(ctx context.Context, token string, patientID int, in ServiceEntryInput) (*ServiceEntry, error) {
	var out struct {
		Success bool         `json:"success"`
		Service ServiceEntry `json:"service"`
	}
	path := fmt.Sprintf("/patients/%d/services", patientID)
	if err := c.do(ctx, http.MethodPost, path, nil, token, in, &out); err != nil {
		return nil, err
	}
	return &out.Service, nil
}

// UpdateService applies a partial update to one entry, typically flipping
// its attendance flag.
func (c *Client) UpdateService(ctx context.Context, token string, serviceID int, in ServiceEntryUpdate) (*ServiceEntry, error) {
	var out struct {
		Success bool         `json:"success"`
		Service ServiceEntry `json:"service"`
	}
	path := "/services/" + strconv.Itoa(serviceID)
	if err := c.do(ctx, http.MethodPut, path, nil, token, in, &out); err != nil {
		return nil, err
	}
	return &out.Service, nil
}

// CreateRecurringServices submits the base payload plus expansion
// parameters; the backend generates the series and reports how many entries
// it created.
func (c *Client) CreateRecurringServices(ctx context.Context, token string, patientID int, in RecurringRequest) (*RecurringResult, error) {
	var out RecurringResult
	path := fmt.Sprintf("/patients/%d/recurring-services", patientID)
	if err := c.do(ctx, http.MethodPost, path, nil, token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- authorizations ---

func (c *Client) ListAuthorizations(ctx context.Context, token string, patientID int) ([]Authorization, error) {
	var out []Authorization
	path := fmt.Sprintf("/patients/%d/authorizations", patientID)
	if err := c.do(ctx, http.MethodGet, path, nil, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAuthorization(ctx context.Context, token string, patientID int, in AuthorizationInput) (*Authorization, error) {
	var out Authorization
	path := fmt.Sprintf("/patients/%d/authorizations", patientID)
	if err := c.do(ctx, http.MethodPost, path, nil, token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAuthorization(ctx context.Context, token string, id int, in AuthorizationInput) (*Authorization, error) {
	var out Authorization
	if err := c.do(ctx, http.MethodPut, "/authorizations/"+strconv.Itoa(id), nil, token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAuthorization(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodDelete, "/authorizations/"+strconv.Itoa(id), nil, token, nil, nil)
}

// --- users ---

func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/users/", nil, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, in CreateUserInput) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPost, "/users/", nil, token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ToggleUserStatus(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%d/toggle-status", id), nil, token, nil, nil)
}

func (c *Client) ResetUserPassword(ctx context.Context, token string, id int, newPassword string) error {
	in := ResetPasswordInput{NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%d/reset-password", id), nil, token, in, nil)
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, token, nil, nil)
}

// --- plumbing ---

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = b
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	issue := func() (*http.Response, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return c.httpc.Do(req)
	}

	var resp *http.Response
	var err error
	if method == http.MethodGet {
		// GETs are idempotent; retry transient transport failures before
		// surfacing them.
		resp, err = backoff.Retry(ctx, issue,
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxTries(3),
			backoff.WithMaxElapsedTime(10*time.Second),
		)
	} else {
		resp, err = issue()
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := readAPIError(resp)
		c.logger.Warn("backend rejected request",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func readAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Detail string `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		detail = body.Detail
	} else {
		detail = strings.TrimSpace(string(raw))
	}
	return &APIError{Status: resp.StatusCode, Detail: detail}
}
