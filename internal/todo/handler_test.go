package todo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-forge/internal/auth"
)

type stubTaskStore struct {
	tasks  []Task
	nextID int64
	err    error
}

func (s *stubTaskStore) CreateTask(ctx context.Context, userID int64, name string) (*Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	task := Task{ID: s.nextID, Name: name, UserID: userID}
	s.tasks = append(s.tasks, task)
	return &task, nil
}

func (s *stubTaskStore) ListTasks(ctx context.Context, userID int64) ([]Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	tasks := []Task{}
	for _, task := range s.tasks {
		if task.UserID == userID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (s *stubTaskStore) UpdateTaskName(ctx context.Context, userID, id int64, name string) (*Task, *Task, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	for i, task := range s.tasks {
		if task.ID == id && task.UserID == userID {
			old := task
			s.tasks[i].Name = name
			updated := s.tasks[i]
			return &old, &updated, nil
		}
	}
	return nil, nil, nil
}

func (s *stubTaskStore) DeleteTask(ctx context.Context, userID, id int64) (*Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i, task := range s.tasks {
		if task.ID == id && task.UserID == userID {
			deleted := task
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return &deleted, nil
		}
	}
	return nil, nil
}

// newTaskRouter は認証済みユーザーを注入した状態でタスクルートを組み立てます。
func newTaskRouter(store TaskStore, user *auth.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(auth.ContextUserKey, user)
		}
		c.Next()
	})
	router.GET("/todos", ListHandler(store, nil))
	router.POST("/todos", CreateHandler(store, nil))
	router.PUT("/todos/:id", UpdateHandler(store, nil))
	router.DELETE("/todos/:id", DeleteHandler(store, nil))
	return router
}

func doJSON(router *gin.Engine, method, path, payload string) *httptest.ResponseRecorder {
	var req *http.Request
	if payload == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v body=%s", err, rec.Body.String())
	}
	return body
}

func TestCreateThenList(t *testing.T) {
	store := &stubTaskStore{}
	user := &auth.User{ID: 1, Username: "alice"}
	router := newTaskRouter(store, user)

	rec := doJSON(router, http.MethodPost, "/todos", `{"name":"buy milk"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	created, _ := parseBody(t, rec)["created_task"].(map[string]any)
	if created["name"] != "buy milk" {
		t.Fatalf("unexpected created task: %#v", created)
	}
	if created["user_id"] != float64(1) {
		t.Fatalf("unexpected owner: %#v", created)
	}

	rec = doJSON(router, http.MethodGet, "/todos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	tasks, _ := parseBody(t, rec)["tasks"].([]any)
	if len(tasks) != 1 {
		t.Fatalf("unexpected task count: %d", len(tasks))
	}
	task, _ := tasks[0].(map[string]any)
	if task["name"] != "buy milk" || task["id"] == float64(0) {
		t.Fatalf("unexpected task: %#v", task)
	}
}

func TestListEmpty(t *testing.T) {
	router := newTaskRouter(&stubTaskStore{}, &auth.User{ID: 1})

	rec := doJSON(router, http.MethodGet, "/todos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	tasks, ok := parseBody(t, rec)["tasks"].([]any)
	if !ok {
		t.Fatalf("expected tasks array, got %s", rec.Body.String())
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty list, got %d tasks", len(tasks))
	}
}

func TestCreateEmptyName(t *testing.T) {
	router := newTaskRouter(&stubTaskStore{}, &auth.User{ID: 1})

	for _, payload := range []string{`{}`, `{"name":""}`, `{"name":"   "}`} {
		rec := doJSON(router, http.MethodPost, "/todos", payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %s: unexpected status %d", payload, rec.Code)
		}
		if parseBody(t, rec)["error"] != "name is required" {
			t.Fatalf("payload %s: unexpected error %s", payload, rec.Body.String())
		}
	}
}

func TestCreateInvalidJSON(t *testing.T) {
	router := newTaskRouter(&stubTaskStore{}, &auth.User{ID: 1})

	rec := doJSON(router, http.MethodPost, "/todos", `not-json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestUpdateReturnsOldAndNew(t *testing.T) {
	store := &stubTaskStore{}
	user := &auth.User{ID: 1}
	router := newTaskRouter(store, user)

	doJSON(router, http.MethodPost, "/todos", `{"name":"old name"}`)

	rec := doJSON(router, http.MethodPut, "/todos/1", `{"name":"new name"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}

	body := parseBody(t, rec)
	old, _ := body["old_task"].(map[string]any)
	updated, _ := body["updated_task"].(map[string]any)
	if old["name"] != "old name" {
		t.Fatalf("unexpected old task: %#v", old)
	}
	if updated["name"] != "new name" {
		t.Fatalf("unexpected updated task: %#v", updated)
	}
	// 名前以外は変わらないこと
	if old["id"] != updated["id"] || old["user_id"] != updated["user_id"] {
		t.Fatalf("id/owner must not change: old=%#v updated=%#v", old, updated)
	}
}

func TestUpdateNotFound(t *testing.T) {
	router := newTaskRouter(&stubTaskStore{}, &auth.User{ID: 1})

	rec := doJSON(router, http.MethodPut, "/todos/99", `{"name":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if parseBody(t, rec)["error"] != "task not found" {
		t.Fatalf("unexpected error: %s", rec.Body.String())
	}
}

func TestUpdateOtherUsersTask(t *testing.T) {
	store := &stubTaskStore{}
	owner := &auth.User{ID: 1}
	other := &auth.User{ID: 2}

	doJSON(newTaskRouter(store, owner), http.MethodPost, "/todos", `{"name":"private"}`)

	// 他ユーザーのタスクは存在しないタスクと区別できないこと
	rec := doJSON(newTaskRouter(store, other), http.MethodPut, "/todos/1", `{"name":"stolen"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestUpdateNonNumericID(t *testing.T) {
	router := newTaskRouter(&stubTaskStore{}, &auth.User{ID: 1})

	rec := doJSON(router, http.MethodPut, "/todos/abc", `{"name":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if parseBody(t, rec)["error"] != "invalid task id" {
		t.Fatalf("unexpected error: %s", rec.Body.String())
	}
}

func TestDeleteReturnsTask(t *testing.T) {
	store := &stubTaskStore{}
	user := &auth.User{ID: 1}
	router := newTaskRouter(store, user)

	doJSON(router, http.MethodPost, "/todos", `{"name":"doomed"}`)

	rec := doJSON(router, http.MethodDelete, "/todos/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	deleted, _ := parseBody(t, rec)["deleted_task"].(map[string]any)
	if deleted["name"] != "doomed" {
		t.Fatalf("unexpected deleted task: %#v", deleted)
	}

	// 削除は即時かつ最終的であること
	rec = doJSON(router, http.MethodDelete, "/todos/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status after delete: %d", rec.Code)
	}
}

func TestDeleteOtherUsersTask(t *testing.T) {
	store := &stubTaskStore{}
	doJSON(newTaskRouter(store, &auth.User{ID: 1}), http.MethodPost, "/todos", `{"name":"private"}`)

	rec := doJSON(newTaskRouter(store, &auth.User{ID: 2}), http.MethodDelete, "/todos/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if len(store.tasks) != 1 {
		t.Fatal("task must not be deleted by non-owner")
	}
}

func TestStoreFailureIsGeneric(t *testing.T) {
	store := &stubTaskStore{err: errors.New("disk on fire")}
	router := newTaskRouter(store, &auth.User{ID: 1})

	rec := doJSON(router, http.MethodGet, "/todos", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	// 内部エラーの詳細を漏らさないこと
	if parseBody(t, rec)["error"] != "internal server error" {
		t.Fatalf("unexpected error: %s", rec.Body.String())
	}
}

func TestHandlersWithoutUser(t *testing.T) {
	router := newTaskRouter(&stubTaskStore{}, nil)

	for _, tc := range []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/todos", ""},
		{http.MethodPost, "/todos", `{"name":"x"}`},
		{http.MethodPut, "/todos/1", `{"name":"x"}`},
		{http.MethodDelete, "/todos/1", ""},
	} {
		rec := doJSON(router, tc.method, tc.path, tc.body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: unexpected status %d", tc.method, tc.path, rec.Code)
		}
	}
}
