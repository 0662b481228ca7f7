package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/auth"
	"github.com/BuzzLyutic/todo-api/internal/filter"
	"github.com/BuzzLyutic/todo-api/internal/middleware"
	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
	"github.com/BuzzLyutic/todo-api/internal/service"
)

// fakeTodoRepo - репозиторий в памяти, чтобы гонять хэндлеры без БД.
// List переиспользует эталонный filter.Match.
type fakeTodoRepo struct {
	mu     sync.Mutex
	todos  map[int64]model.Todo
	nextID int64
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: make(map[int64]model.Todo), nextID: 1}
}

func (f *fakeTodoRepo) Create(ctx context.Context, t model.Todo) (model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t.ID = f.nextID
	f.nextID++
	f.todos[t.ID] = t
	return t, nil
}

func (f *fakeTodoRepo) Get(ctx context.Context, id int64, scope repo.Scope) (model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.todos[id]
	if !ok || (!scope.Admin && t.UserID != scope.UserID) {
		return model.Todo{}, repo.ErrorNotFound
	}
	return t, nil
}

func (f *fakeTodoRepo) List(ctx context.Context, fl filter.Filter, p filter.Page) (model.TodoPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p = p.Normalize()
	matched := []model.Todo{}
	for _, t := range f.todos {
		if fl.Match(t) {
			matched = append(matched, t)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page := model.TodoPage{Items: matched, Page: p.Number, Size: p.Size, TotalItems: int64(len(matched))}
	page.TotalPages = int((page.TotalItems + int64(p.Size) - 1) / int64(p.Size))
	return page, nil
}

func (f *fakeTodoRepo) Update(ctx context.Context, t model.Todo, scope repo.Scope) (model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.todos[t.ID]
	if !ok || (!scope.Admin && stored.UserID != scope.UserID) || stored.Version != t.Version {
		return model.Todo{}, repo.ErrorConflict
	}
	t.UserID = stored.UserID
	t.CreatedAt = stored.CreatedAt
	t.Version = stored.Version + 1
	f.todos[t.ID] = t
	return t, nil
}

func (f *fakeTodoRepo) Delete(ctx context.Context, id int64, scope repo.Scope) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.todos[id]
	if !ok || (!scope.Admin && t.UserID != scope.UserID) {
		return repo.ErrorNotFound
	}
	delete(f.todos, id)
	return nil
}

func setupTodoServer(t *testing.T) (*httptest.Server, string, *fakeTodoRepo) {
	t.Helper()

	tokens := auth.NewTokenManager("very-long-strong-secret-key-atleast-256-bits", time.Hour)
	blacklist := auth.NewBlacklist(zap.NewNop())
	todoRepo := newFakeTodoRepo()

	h := NewTodoHandler(service.NewTodoService(todoRepo), zap.NewNop())
	authn := middleware.Authenticator(tokens, blacklist)

	r := chi.NewRouter()
	r.Route("/api/todos", func(r chi.Router) {
		r.Use(authn)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Patch)
		r.Delete("/{id}", h.Delete)
	})

	token, err := tokens.Issue(model.User{ID: 1, Email: "alice@example.com", Role: model.RoleUser})
	require.NoError(t, err)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, token, todoRepo
}

func todoRequest(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestTodoHandler_Create(t *testing.T) {
	server, token, _ := setupTodoServer(t)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
	}{
		{
			name:     "successful creation",
			body:     map[string]string{"title": "Buy milk", "status": "PENDING", "priority": "LOW"},
			wantCode: http.StatusCreated,
		},
		{
			name:     "empty body",
			body:     nil,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing required fields",
			body:     map[string]string{"title": "No status"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown enum value",
			body:     map[string]string{"title": "Buy milk", "status": "DONE", "priority": "LOW"},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := todoRequest(t, http.MethodPost, server.URL+"/api/todos", token, tt.body)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)

			if tt.wantCode == http.StatusCreated {
				var created model.Todo
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
				assert.NotZero(t, created.ID)
				assert.False(t, created.Completed)
				assert.Contains(t, resp.Header.Get("Location"), "/api/todos/")
			}
		})
	}
}

func TestTodoHandler_Unauthorized(t *testing.T) {
	server, _, _ := setupTodoServer(t)

	resp, err := http.Get(server.URL + "/api/todos")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTodoHandler_List_BadParams(t *testing.T) {
	server, token, _ := setupTodoServer(t)

	for _, query := range []string{
		"?status=BOGUS",
		"?priority=URGENT",
		"?completed=maybe",
		"?dueDate=tomorrow",
		"?userId=abc",
	} {
		t.Run(query, func(t *testing.T) {
			resp := todoRequest(t, http.MethodGet, server.URL+"/api/todos"+query, token, nil)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestTodoHandler_List_Filters(t *testing.T) {
	server, token, _ := setupTodoServer(t)

	for _, body := range []map[string]string{
		{"title": "Buy milk", "status": "PENDING", "priority": "LOW"},
		{"title": "Write report", "status": "IN_PROGRESS", "priority": "HIGH"},
		{"title": "Buy more milk", "status": "PENDING", "priority": "HIGH"},
	} {
		resp := todoRequest(t, http.MethodPost, server.URL+"/api/todos", token, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?status=PENDING", 2},
		{"?search=milk", 2},
		{"?search=MILK&priority=HIGH", 1},
		{"?status=COMPLETED", 0},
	}

	for _, tt := range tests {
		t.Run("query "+tt.query, func(t *testing.T) {
			resp := todoRequest(t, http.MethodGet, server.URL+"/api/todos"+tt.query, token, nil)
			defer resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)
			var page model.TodoPage
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
			assert.Len(t, page.Items, tt.want)
		})
	}
}

func TestTodoHandler_Update_StaleVersion(t *testing.T) {
	server, token, _ := setupTodoServer(t)

	resp := todoRequest(t, http.MethodPost, server.URL+"/api/todos", token,
		map[string]string{"title": "Original", "status": "PENDING", "priority": "LOW"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Todo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	url := fmt.Sprintf("%s/api/todos/%d", server.URL, created.ID)
	full := map[string]interface{}{
		"title": "Updated", "status": "IN_PROGRESS", "priority": "HIGH", "completed": false,
		"version": created.Version,
	}

	resp = todoRequest(t, http.MethodPut, url, token, full)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Повтор с той же версией - уже конфликт
	resp = todoRequest(t, http.MethodPut, url, token, full)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestTodoHandler_DeleteAndGet(t *testing.T) {
	server, token, _ := setupTodoServer(t)

	resp := todoRequest(t, http.MethodPost, server.URL+"/api/todos", token,
		map[string]string{"title": "Doomed", "status": "PENDING", "priority": "LOW"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Todo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	url := fmt.Sprintf("%s/api/todos/%d", server.URL, created.ID)

	resp = todoRequest(t, http.MethodDelete, url, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = todoRequest(t, http.MethodGet, url, token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
