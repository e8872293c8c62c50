// Package api is the HTTP client for the todo REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ashishacharya123/pkms-todos/internal/dto"
	apierrors "github.com/ashishacharya123/pkms-todos/internal/errors"
	"github.com/ashishacharya123/pkms-todos/internal/models"
)

// Client calls the todo API rooted at baseURL (for example
// http://localhost:8080/api/v1).
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a client for the given address or URL.
func NewClient(addr string, opts ...Option) *Client {
	baseURL := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	c := &Client{baseURL: baseURL, client: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListParams are the query filters accepted by GET /todos.
type ListParams struct {
	Status      models.TodoStatus
	Priority    models.TodoPriority
	ProjectUUID string
	Tag         string
	Search      string
	IsArchived  *bool
	Overdue     bool
	Page        int
	Limit       int
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.Priority != "" {
		q.Set("priority", string(p.Priority))
	}
	if p.ProjectUUID != "" {
		q.Set("project_uuid", p.ProjectUUID)
	}
	if p.Tag != "" {
		q.Set("tag", p.Tag)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.IsArchived != nil {
		q.Set("is_archived", strconv.FormatBool(*p.IsArchived))
	}
	if p.Overdue {
		q.Set("overdue", "true")
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

// Health checks that the server is reachable. The health endpoint lives at
// the server root, outside the versioned API prefix.
func (c *Client) Health(ctx context.Context) error {
	root := c.baseURL
	if u, err := url.Parse(c.baseURL); err == nil {
		u.Path = ""
		root = u.String()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, root+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readErrorResponse(resp)
	}
	return nil
}

// ListTodos returns one page of todos.
func (c *Client) ListTodos(ctx context.Context, params ListParams) (*dto.TodoListResponse, error) {
	var response dto.TodoListResponse
	if err := c.do(ctx, http.MethodGet, "/todos", params.values(), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetTodo returns a single todo with subtasks and dependency edges.
func (c *Client) GetTodo(ctx context.Context, uuid string) (*dto.TodoDTO, error) {
	return c.todo(ctx, http.MethodGet, todoPath(uuid), nil)
}

// CreateTodo creates a todo. The server assigns its uuid and position.
func (c *Client) CreateTodo(ctx context.Context, req dto.CreateTodoRequest) (*dto.TodoDTO, error) {
	return c.todo(ctx, http.MethodPost, "/todos", req)
}

// UpdateTodo applies a partial update.
func (c *Client) UpdateTodo(ctx context.Context, uuid string, req dto.UpdateTodoRequest) (*dto.TodoDTO, error) {
	return c.todo(ctx, http.MethodPut, todoPath(uuid), req)
}

// DeleteTodo permanently deletes a todo.
func (c *Client) DeleteTodo(ctx context.Context, uuid string) error {
	return c.do(ctx, http.MethodDelete, todoPath(uuid), nil, nil, nil)
}

// CompleteTodo moves a todo to done.
func (c *Client) CompleteTodo(ctx context.Context, uuid string) (*dto.TodoDTO, error) {
	return c.todo(ctx, http.MethodPost, todoPath(uuid)+"/complete", nil)
}

// ArchiveTodo archives a todo.
func (c *Client) ArchiveTodo(ctx context.Context, uuid string) (*dto.TodoDTO, error) {
	return c.todo(ctx, http.MethodPost, todoPath(uuid)+"/archive", nil)
}

// UnarchiveTodo restores an archived todo.
func (c *Client) UnarchiveTodo(ctx context.Context, uuid string) (*dto.TodoDTO, error) {
	return c.todo(ctx, http.MethodPost, todoPath(uuid)+"/unarchive", nil)
}

// UpdateTodoStatus moves a todo to another status lane.
func (c *Client) UpdateTodoStatus(ctx context.Context, uuid string, status models.TodoStatus) (*dto.TodoDTO, error) {
	return c.todo(ctx, http.MethodPatch, todoPath(uuid)+"/status", dto.UpdateStatusRequest{Status: status})
}

// ReorderTodo moves a todo to orderIndex within its lane.
func (c *Client) ReorderTodo(ctx context.Context, uuid string, orderIndex int) (*dto.TodoDTO, error) {
	return c.todo(ctx, http.MethodPatch, todoPath(uuid)+"/reorder", dto.ReorderRequest{OrderIndex: &orderIndex})
}

// GetStats returns aggregate counts.
func (c *Client) GetStats(ctx context.Context) (*dto.StatsDTO, error) {
	var response dto.StatsDTO
	if err := c.do(ctx, http.MethodGet, "/todos/stats", nil, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetBlockingTodos returns the todos uuid blocks.
func (c *Client) GetBlockingTodos(ctx context.Context, uuid string) ([]dto.TodoSummaryDTO, error) {
	return c.summaries(ctx, todoPath(uuid)+"/blocking")
}

// GetBlockedByTodos returns the todos blocking uuid.
func (c *Client) GetBlockedByTodos(ctx context.Context, uuid string) ([]dto.TodoSummaryDTO, error) {
	return c.summaries(ctx, todoPath(uuid)+"/blocked-by")
}

// AddDependency marks uuid as blocked by blockerUUID.
func (c *Client) AddDependency(ctx context.Context, uuid, blockerUUID string) error {
	return c.do(ctx, http.MethodPost, todoPath(uuid)+"/dependencies", nil,
		dto.AddDependencyRequest{BlockerUUID: blockerUUID}, nil)
}

// RemoveDependency removes the blockerUUID edge from uuid.
func (c *Client) RemoveDependency(ctx context.Context, uuid, blockerUUID string) error {
	return c.do(ctx, http.MethodDelete, todoPath(uuid)+"/dependencies/"+url.PathEscape(blockerUUID), nil, nil, nil)
}

// ListProjects returns every project.
func (c *Client) ListProjects(ctx context.Context) ([]dto.ProjectDTO, error) {
	var response dto.ProjectListResponse
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Projects, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, req dto.CreateProjectRequest) (*dto.ProjectDTO, error) {
	var response dto.ProjectDTO
	if err := c.do(ctx, http.MethodPost, "/projects", nil, req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// UpdateProject applies a partial project update.
func (c *Client) UpdateProject(ctx context.Context, uuid string, req dto.UpdateProjectRequest) (*dto.ProjectDTO, error) {
	var response dto.ProjectDTO
	if err := c.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(uuid), nil, req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// DeleteProject deletes a project. Its todos are unlinked, not deleted.
func (c *Client) DeleteProject(ctx context.Context, uuid string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(uuid), nil, nil, nil)
}

func (c *Client) todo(ctx context.Context, method, path string, payload any) (*dto.TodoDTO, error) {
	var response dto.TodoDTO
	if err := c.do(ctx, method, path, nil, payload, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) summaries(ctx context.Context, path string) ([]dto.TodoSummaryDTO, error) {
	var response dto.TodoSummaryListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &response); err != nil {
		return nil, err
	}
	if response.Todos == nil {
		return []dto.TodoSummaryDTO{}, nil
	}
	return response.Todos, nil
}

// do sends one request. A nil payload sends no body; a nil dest discards the
// response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, dest any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readErrorResponse(resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// readErrorResponse turns a non-2xx response into an APIError, keeping the
// server's message when the body carries one.
func readErrorResponse(resp *http.Response) error {
	apiErr := &apierrors.APIError{Status: resp.StatusCode}
	var payload apierrors.APIError
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
		apiErr.Details = payload.Details
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed: %s", resp.Status)
	}
	return apiErr
}

func todoPath(uuid string) string {
	return "/todos/" + url.PathEscape(uuid)
}
