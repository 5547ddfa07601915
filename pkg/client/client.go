package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ifaraag/2019-VSCode4Teaching/pkg/domain"
)

// CourseRequest is the payload for creating or editing a course.
type CourseRequest struct {
	Name string `json:"name"`
}

// ExerciseRequest is the payload for creating or editing an exercise.
type ExerciseRequest struct {
	Name string `json:"name"`
}

// SignupRequest is the payload for registering a new account.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
}

// Client talks to the teaching platform. All credentials come from the
// injected Session on every request; the client holds no auth state itself.
type Client struct {
	session    *Session
	httpClient *http.Client
}

// New creates an API client bound to a session store.
func New(session *Session) *Client {
	return &Client{
		session: session,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Session returns the session store the client was built with.
func (c *Client) Session() *Session {
	return c.session
}

// Login authenticates against baseURL and returns the bearer token. The base
// URL is stored so the CSRF bootstrap and later requests target the same
// server; the token itself is the caller's to store.
func (c *Client) Login(ctx context.Context, username, password, baseURL string) (string, error) {
	c.session.SetBaseURL(baseURL)
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		JWTToken string `json:"jwtToken"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/api/login", body, &resp); err != nil {
		return "", fmt.Errorf("client.Login: %w", err)
	}
	return resp.JWTToken, nil
}

// FetchCsrfToken primes the double-submit CSRF token from the Set-Cookie
// header of /api/csrf. A response without the cookie leaves the token empty
// and is not an error; later authenticated calls will fail server-side with a
// clear status instead.
func (c *Client) FetchCsrfToken(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/csrf", nil, "")
	if err != nil {
		return fmt.Errorf("client.FetchCsrfToken: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client.FetchCsrfToken: do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck

	// The cookie can ride along on any status, so read it before judging.
	for _, ck := range resp.Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			c.session.SetCSRFToken(ck.Value)
			break
		}
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("client.FetchCsrfToken: %w", &HTTPError{StatusCode: resp.StatusCode, Message: resp.Status})
	}
	return nil
}

// GetCurrentUser returns the authenticated user's profile, roles and courses.
func (c *Client) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/currentuser", &u); err != nil {
		return nil, fmt.Errorf("client.GetCurrentUser: %w", err)
	}
	return &u, nil
}

// GetExercises fetches the exercises of a course in server order.
func (c *Client) GetExercises(ctx context.Context, courseID int64) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	if err := c.get(ctx, "/api/courses/"+formatID(courseID)+"/exercises", &exercises); err != nil {
		return nil, fmt.Errorf("client.GetExercises: %w", err)
	}
	return exercises, nil
}

// GetExerciseFiles fetches an exercise's file bundle as raw bytes.
func (c *Client) GetExerciseFiles(ctx context.Context, exerciseID int64) ([]byte, error) {
	data, err := c.doBinary(ctx, http.MethodGet, "/api/exercises/"+formatID(exerciseID)+"/files", nil, "")
	if err != nil {
		return nil, fmt.Errorf("client.GetExerciseFiles: %w", err)
	}
	return data, nil
}

// AddCourse creates a course.
func (c *Client) AddCourse(ctx context.Context, course CourseRequest) (*domain.Course, error) {
	var created domain.Course
	if err := c.doRequest(ctx, http.MethodPost, "/api/courses", course, &created); err != nil {
		return nil, fmt.Errorf("client.AddCourse: %w", err)
	}
	return &created, nil
}

// EditCourse renames a course.
func (c *Client) EditCourse(ctx context.Context, id int64, course CourseRequest) (*domain.Course, error) {
	var edited domain.Course
	if err := c.doRequest(ctx, http.MethodPut, "/api/courses/"+formatID(id), course, &edited); err != nil {
		return nil, fmt.Errorf("client.EditCourse: %w", err)
	}
	return &edited, nil
}

// DeleteCourse deletes a course by ID.
func (c *Client) DeleteCourse(ctx context.Context, id int64) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/courses/"+formatID(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteCourse: %w", err)
	}
	return nil
}

// AddExercise creates an exercise in a course.
func (c *Client) AddExercise(ctx context.Context, courseID int64, exercise ExerciseRequest) (*domain.Exercise, error) {
	var created domain.Exercise
	if err := c.doRequest(ctx, http.MethodPost, "/api/courses/"+formatID(courseID)+"/exercises", exercise, &created); err != nil {
		return nil, fmt.Errorf("client.AddExercise: %w", err)
	}
	return &created, nil
}

// EditExercise renames an exercise.
func (c *Client) EditExercise(ctx context.Context, id int64, exercise ExerciseRequest) (*domain.Exercise, error) {
	var edited domain.Exercise
	if err := c.doRequest(ctx, http.MethodPut, "/api/exercises/"+formatID(id), exercise, &edited); err != nil {
		return nil, fmt.Errorf("client.EditExercise: %w", err)
	}
	return &edited, nil
}

// DeleteExercise deletes an exercise by ID.
func (c *Client) DeleteExercise(ctx context.Context, id int64) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/exercises/"+formatID(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteExercise: %w", err)
	}
	return nil
}

// UploadExerciseTemplate uploads the zipped template bundle for an exercise.
func (c *Client) UploadExerciseTemplate(ctx context.Context, exerciseID int64, bundle []byte) error {
	_, err := c.doBinary(ctx, http.MethodPost, "/api/exercises/"+formatID(exerciseID)+"/files/template",
		bytes.NewReader(bundle), "application/zip")
	if err != nil {
		return fmt.Errorf("client.UploadExerciseTemplate: %w", err)
	}
	return nil
}

// Signup registers a new student account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	var created domain.User
	if err := c.doRequest(ctx, http.MethodPost, "/api/register", req, &created); err != nil {
		return nil, fmt.Errorf("client.Signup: %w", err)
	}
	return &created, nil
}

// SignupTeacher registers a new teacher account.
func (c *Client) SignupTeacher(ctx context.Context, req SignupRequest) (*domain.User, error) {
	var created domain.User
	if err := c.doRequest(ctx, http.MethodPost, "/api/teachers/register", req, &created); err != nil {
		return nil, fmt.Errorf("client.SignupTeacher: %w", err)
	}
	return &created, nil
}

// GetCourseWithCode joins the authenticated student to the course behind a
// sharing code and returns it.
func (c *Client) GetCourseWithCode(ctx context.Context, code string) (*domain.Course, error) {
	var course domain.Course
	if err := c.get(ctx, "/api/courses/code/"+code, &course); err != nil {
		return nil, fmt.Errorf("client.GetCourseWithCode: %w", err)
	}
	return &course, nil
}

// GetSharingCode returns the join code for a course.
func (c *Client) GetSharingCode(ctx context.Context, courseID int64) (string, error) {
	data, err := c.doBinary(ctx, http.MethodGet, "/api/courses/"+formatID(courseID)+"/code", nil, "")
	if err != nil {
		return "", fmt.Errorf("client.GetSharingCode: %w", err)
	}
	return string(data), nil
}

// GetExerciseUserInfo returns per-student progress for an exercise (teacher only).
func (c *Client) GetExerciseUserInfo(ctx context.Context, exerciseID int64) ([]domain.ExerciseUserInfo, error) {
	var euis []domain.ExerciseUserInfo
	if err := c.get(ctx, "/api/exercises/"+formatID(exerciseID)+"/info/teacher", &euis); err != nil {
		return nil, fmt.Errorf("client.GetExerciseUserInfo: %w", err)
	}
	return euis, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// newRequest builds a request against the configured base URL with the
// session's auth headers attached. The CSRF token rides both as a header and
// as a cookie (double-submit), even when it is still empty; the bearer header
// is attached only once a token exists.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	base := c.session.BaseURL()
	if base == "" {
		return nil, fmt.Errorf("no server URL configured")
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	csrf := c.session.CSRFToken()
	req.Header.Set("X-XSRF-TOKEN", csrf)
	req.Header.Set("Cookie", "XSRF-TOKEN="+csrf)
	if tok := c.session.BearerToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, reqBody, contentType)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return readHTTPError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// doBinary performs a request whose body is raw bytes in, raw bytes out.
func (c *Client) doBinary(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return nil, readHTTPError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

func readHTTPError(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if readErr != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	var apiErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(respBody, &apiErr) == nil {
		if apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		if apiErr.Message != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
		}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}
