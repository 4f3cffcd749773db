// Package client is the in-process counterpart of the browser front end: an
// HTTP client for the todo API plus a state controller that keeps a working
// copy of the list and reconciles server responses into it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RequestTimeout is the per-call timeout for API requests.
const RequestTimeout = 10 * time.Second

// Todo is the wire shape of a todo as the API returns it.
type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	UserID      string     `json:"userId"`
}

// CreateTodoInput is the body of a create call. Zero values are omitted.
type CreateTodoInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"` // "2026-02-19" or RFC3339
}

// UpdateTodoInput is a partial update. Nil fields are omitted from the body.
// DueDate is sent only when DueDateSet is true; a set nil encodes as an
// explicit null, which clears the deadline server-side.
type UpdateTodoInput struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *string
	DueDate     *time.Time
	DueDateSet  bool
}

func (in UpdateTodoInput) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{})
	if in.Title != nil {
		m["title"] = *in.Title
	}
	if in.Description != nil {
		m["description"] = *in.Description
	}
	if in.Completed != nil {
		m["completed"] = *in.Completed
	}
	if in.Priority != nil {
		m["priority"] = *in.Priority
	}
	if in.DueDateSet {
		if in.DueDate != nil {
			m["dueDate"] = in.DueDate.Format(time.RFC3339)
		} else {
			m["dueDate"] = nil
		}
	}
	return json.Marshal(m)
}

// APIError is a non-2xx response decoded from the server's {"error": ...}.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client talks to the todo API using a cookie session.
type Client struct {
	baseURL   string
	http      *http.Client
	sessionID string
}

// New creates a Client for the API at baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: RequestTimeout},
	}
}

// SetSession installs a previously saved session ID.
func (c *Client) SetSession(id string) { c.sessionID = id }

// Session returns the current session ID, empty if not logged in.
func (c *Client) Session() string { return c.sessionID }

// Login authenticates and keeps the session cookie for later calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp, "Failed to log in")
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session_id" {
			c.sessionID = cookie.Value
			return nil
		}
	}
	return fmt.Errorf("login: no session cookie in response")
}

// Logout invalidates the session server-side and drops it locally.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, "Failed to log out")
	c.sessionID = ""
	return err
}

// FetchTodos returns the caller's todos, newest first.
func (c *Client) FetchTodos(ctx context.Context) ([]Todo, error) {
	var list []Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &list, "Failed to fetch todos"); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateTodo creates a todo and returns the server's record.
func (c *Client) CreateTodo(ctx context.Context, in CreateTodoInput) (Todo, error) {
	var t Todo
	if err := c.do(ctx, http.MethodPost, "/api/todos", in, &t, "Failed to create todo"); err != nil {
		return Todo{}, err
	}
	return t, nil
}

// UpdateTodo applies a partial update and returns the server's record.
func (c *Client) UpdateTodo(ctx context.Context, id string, in UpdateTodoInput) (Todo, error) {
	var t Todo
	if err := c.do(ctx, http.MethodPut, "/api/todos/"+id, in, &t, "Failed to update todo"); err != nil {
		return Todo{}, err
	}
	return t, nil
}

// DeleteTodo removes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/"+id, nil, nil, "Failed to delete todo")
}

// do sends one request. A non-2xx status decodes into APIError, falling back
// to the given message when the body carries no error string.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, fallback string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: c.sessionID})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, fallback)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response, fallback string) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := fallback
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
