package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "todoapp/internal/domain"
)

// DueDate parses dueDate from JSON as either date-only ("2006-01-02") or
// RFC3339. Date-only is stored as start of that day in UTC.
//
// It also remembers whether the key was present at all, so a PUT can tell
// apart "dueDate omitted" (leave as is) from "dueDate": null (clear it).
type DueDate struct {
	present bool
	t       *time.Time
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	d.present = true
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		"2006-01-02",     // date only
		time.RFC3339,     // 2006-01-02T15:04:05Z07:00
		time.RFC3339Nano, // with nanoseconds
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			// If it was date-only (no time component), use start of day UTC
			if layout == "2006-01-02" {
				parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			}
			d.t = &parsed
			return nil
		}
	}
	return fmt.Errorf("dueDate: use date (YYYY-MM-DD) or RFC3339 datetime")
}

// Present reports whether the key appeared in the request body.
func (d DueDate) Present() bool { return d.present }

// Ptr returns *time.Time for use in service/domain. Nil means no deadline.
func (d DueDate) Ptr() *time.Time { return d.t }

// OptString is a string field that distinguishes omitted from present.
// A present null decodes as the empty string.
type OptString struct {
	present bool
	s       string
}

func (o *OptString) UnmarshalJSON(data []byte) error {
	o.present = true
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		o.s = ""
		return nil
	}
	o.s = *raw
	return nil
}

// Present reports whether the key appeared in the request body.
func (o OptString) Present() bool { return o.present }

// Value returns the decoded string ("" for null).
func (o OptString) Value() string { return o.s }

// No binding tags here: shape problems are validated in the service so the
// endpoint can keep its coarse parse-error behavior.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"` // optional: LOW, MEDIUM or HIGH
	DueDate     DueDate `json:"dueDate"`  // optional: "2026-02-19" or RFC3339
}

type UpdateTodoRequest struct {
	Title       OptString `json:"title"`
	Description OptString `json:"description"`
	Completed   *bool     `json:"completed"`
	Priority    *string   `json:"priority"`
	DueDate     DueDate   `json:"dueDate"` // omitted = keep, null = clear
}

type TodoResponse struct {
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

// DeleteTodoResponse is the body of a successful DELETE.
type DeleteTodoResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromTodo maps a domain todo onto the wire shape.
func FromTodo(t dom.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		UserID:      t.UserID,
	}
}

// FromTodos maps a list, never returning nil so it encodes as [].
func FromTodos(list []dom.Todo) []TodoResponse {
	out := make([]TodoResponse, len(list))
	for i := range list {
		out[i] = FromTodo(list[i])
	}
	return out
}
