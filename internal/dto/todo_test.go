package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"todoapp/internal/dto"
)

func TestDueDateParsing(t *testing.T) {
	tests := []struct {
		name string
		body string
		want time.Time
	}{
		{
			name: "date only is start of day UTC",
			body: `{"dueDate":"2026-03-01"}`,
			want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "RFC3339",
			body: `{"dueDate":"2026-03-01T15:04:05Z"}`,
			want: time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC),
		},
		{
			name: "datetime without zone",
			body: `{"dueDate":"2026-03-01T15:04:05"}`,
			want: time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.CreateTodoRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got := req.DueDate.Ptr()
			if got == nil || !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDueDateRejectsGarbage(t *testing.T) {
	var req dto.CreateTodoRequest
	err := json.Unmarshal([]byte(`{"dueDate":"next tuesday"}`), &req)
	if err == nil {
		t.Error("expected a parse error")
	}
}

func TestUpdateRequestTriState(t *testing.T) {
	var omitted dto.UpdateTodoRequest
	if err := json.Unmarshal([]byte(`{"title":"x"}`), &omitted); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if omitted.DueDate.Present() {
		t.Error("omitted dueDate reported present")
	}

	var cleared dto.UpdateTodoRequest
	if err := json.Unmarshal([]byte(`{"dueDate":null}`), &cleared); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !cleared.DueDate.Present() {
		t.Error("null dueDate reported absent")
	}
	if cleared.DueDate.Ptr() != nil {
		t.Errorf("null dueDate should decode to nil, got %v", cleared.DueDate.Ptr())
	}

	var set dto.UpdateTodoRequest
	if err := json.Unmarshal([]byte(`{"dueDate":"2026-03-01"}`), &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !set.DueDate.Present() || set.DueDate.Ptr() == nil {
		t.Error("set dueDate not decoded")
	}
}

func TestOptStringTriState(t *testing.T) {
	var req dto.UpdateTodoRequest
	if err := json.Unmarshal([]byte(`{"description":null,"title":"x"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !req.Description.Present() || req.Description.Value() != "" {
		t.Errorf("null description should be present and empty, got %v %q",
			req.Description.Present(), req.Description.Value())
	}
	if !req.Title.Present() || req.Title.Value() != "x" {
		t.Error("title not decoded")
	}
	if req.Completed != nil || req.Priority != nil {
		t.Error("omitted fields should stay nil")
	}
}
