package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"todoapp/internal/app"
	"todoapp/internal/auth"
	"todoapp/internal/handlers"
	"todoapp/internal/service"
	"todoapp/internal/testutil"

	"github.com/gin-gonic/gin"
)

const (
	alice = "11111111-1111-1111-1111-111111111111"
	bob   = "22222222-2222-2222-2222-222222222222"
)

func newServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := testutil.NewFakeSessions()
	sessions.Add("sess-alice", alice)
	sessions.Add("sess-bob", bob)

	svc := service.NewTodoService(testutil.NewMemTodoRepo(), nil)
	h := handlers.NewTodoHandler(svc)

	r := gin.New()
	api := r.Group("/api", auth.RequireSession(sessions))
	app.RegisterTodoRoutes(api, h)
	return r
}

// request runs one request as the given session ("" = anonymous) and decodes
// the JSON response body into a map.
func request(t *testing.T, r *gin.Engine, session, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: session})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var payload map[string]interface{}
	if len(w.Body.Bytes()) > 0 && w.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return w.Code, payload
}

func listTodos(t *testing.T, r *gin.Engine, session string) []map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: session})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v (body %q)", err, w.Body.String())
	}
	return list
}

func TestUnauthorizedBeforeAnyLogic(t *testing.T) {
	r := newServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/todos"},
		{http.MethodPost, "/api/todos"},
		{http.MethodPut, "/api/todos/" + alice},
		{http.MethodDelete, "/api/todos/" + alice},
	} {
		code, payload := request(t, r, "", tc.method, tc.path, "")
		if code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, code)
		}
		if payload["error"] != "Unauthorized" {
			t.Errorf("%s %s: unexpected body %v", tc.method, tc.path, payload)
		}
	}
}

func TestCreateUpdateDeleteScenario(t *testing.T) {
	r := newServer(t)

	code, created := request(t, r, "sess-alice", http.MethodPost, "/api/todos", `{"title":"Write spec"}`)
	if code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%v)", code, created)
	}
	if created["completed"] != false {
		t.Errorf("expected completed=false, got %v", created["completed"])
	}
	if created["priority"] != "MEDIUM" {
		t.Errorf("expected priority MEDIUM, got %v", created["priority"])
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("expected an id")
	}

	code, updated := request(t, r, "sess-alice", http.MethodPut, "/api/todos/"+id, `{"completed":true}`)
	if code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (%v)", code, updated)
	}
	if updated["completed"] != true {
		t.Errorf("expected completed=true, got %v", updated["completed"])
	}
	if updated["title"] != "Write spec" {
		t.Errorf("title changed: %v", updated["title"])
	}

	code, deleted := request(t, r, "sess-alice", http.MethodDelete, "/api/todos/"+id, "")
	if code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", code)
	}
	if deleted["message"] != "Todo deleted successfully" {
		t.Errorf("unexpected delete body: %v", deleted)
	}

	if list := listTodos(t, r, "sess-alice"); len(list) != 0 {
		t.Errorf("expected empty list after delete, got %v", list)
	}
}

func TestCreateOwnerComesFromSession(t *testing.T) {
	r := newServer(t)

	// userId in the body must be ignored.
	code, created := request(t, r, "sess-alice", http.MethodPost, "/api/todos",
		`{"title":"mine","userId":"`+bob+`"}`)
	if code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", code)
	}
	if created["userId"] != alice {
		t.Errorf("expected owner %s, got %v", alice, created["userId"])
	}
}

func TestCreateValidation(t *testing.T) {
	r := newServer(t)

	code, payload := request(t, r, "sess-alice", http.MethodPost, "/api/todos", `{"title":"   "}`)
	if code != http.StatusBadRequest {
		t.Errorf("blank title: expected 400, got %d", code)
	}
	if payload["error"] != "Title is required" {
		t.Errorf("unexpected message %v", payload["error"])
	}

	code, payload = request(t, r, "sess-alice", http.MethodPost, "/api/todos",
		`{"title":"x","priority":"URGENT"}`)
	if code != http.StatusBadRequest {
		t.Errorf("bad priority: expected 400, got %d", code)
	}
	if payload["error"] != "Invalid priority value" {
		t.Errorf("unexpected message %v", payload["error"])
	}
}

func TestMalformedJSONIsServerError(t *testing.T) {
	r := newServer(t)

	code, payload := request(t, r, "sess-alice", http.MethodPost, "/api/todos", `{"title":`)
	if code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
	if payload["error"] != "Internal Server Error" {
		t.Errorf("expected opaque error, got %v", payload["error"])
	}
}

func TestCrossUserLooksLikeMissing(t *testing.T) {
	r := newServer(t)

	_, created := request(t, r, "sess-alice", http.MethodPost, "/api/todos", `{"title":"alice's"}`)
	id := created["id"].(string)

	code, payload := request(t, r, "sess-bob", http.MethodPut, "/api/todos/"+id, `{"completed":true}`)
	if code != http.StatusNotFound {
		t.Errorf("cross-user update: expected 404, got %d", code)
	}
	if payload["error"] != "Todo not found" {
		t.Errorf("unexpected body %v", payload)
	}

	code, _ = request(t, r, "sess-bob", http.MethodDelete, "/api/todos/"+id, "")
	if code != http.StatusNotFound {
		t.Errorf("cross-user delete: expected 404, got %d", code)
	}

	// Alice still sees it untouched.
	list := listTodos(t, r, "sess-alice")
	if len(list) != 1 || list[0]["completed"] != false {
		t.Errorf("alice's todo was modified: %v", list)
	}
}

func TestDueDateWireTriState(t *testing.T) {
	r := newServer(t)

	_, created := request(t, r, "sess-alice", http.MethodPost, "/api/todos",
		`{"title":"x","dueDate":"2026-03-01"}`)
	id := created["id"].(string)
	if created["dueDate"] == nil {
		t.Fatal("expected a due date")
	}

	// Omitting dueDate keeps it.
	_, updated := request(t, r, "sess-alice", http.MethodPut, "/api/todos/"+id, `{"title":"y"}`)
	if updated["dueDate"] == nil {
		t.Error("omitted dueDate was cleared")
	}

	// Explicit null clears it.
	_, updated = request(t, r, "sess-alice", http.MethodPut, "/api/todos/"+id, `{"dueDate":null}`)
	if updated["dueDate"] != nil {
		t.Errorf("explicit null did not clear dueDate: %v", updated["dueDate"])
	}
}

func TestUnknownAndMalformedIDs(t *testing.T) {
	r := newServer(t)

	code, _ := request(t, r, "sess-alice", http.MethodDelete,
		"/api/todos/33333333-3333-3333-3333-333333333333", "")
	if code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", code)
	}

	code, payload := request(t, r, "sess-alice", http.MethodDelete, "/api/todos/not-a-uuid", "")
	if code != http.StatusNotFound {
		t.Errorf("malformed id: expected 404, got %d", code)
	}
	if payload["error"] != "Todo not found" {
		t.Errorf("unexpected body %v", payload)
	}
}

func TestListIsJSONArray(t *testing.T) {
	r := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-alice"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("empty list must encode as [], got %q", body)
	}
}
