package todo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastvite/todo-api/internal/auth"
	"github.com/fastvite/todo-api/internal/logging"
)

type todoTestServer struct {
	router *chi.Mux
	paseto *auth.PasetoService
	repo   *fakeTodoRepo
}

func newTodoTestServer(t *testing.T) *todoTestServer {
	t.Helper()

	pasetoService, err := auth.NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	logger := logging.NewLogger(true)
	repo := newFakeTodoRepo()
	handler := NewHandler(NewService(repo, logger, 100), logger)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(pasetoService).RequireAuth)
		r.Get("/todos", handler.List)
		r.Post("/todos", handler.Create)
		r.Patch("/todos/{id}", handler.Update)
		r.Delete("/todos/{id}", handler.Delete)
	})

	return &todoTestServer{router: r, paseto: pasetoService, repo: repo}
}

func (s *todoTestServer) request(t *testing.T, method, path string, body any, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)

	token, err := s.paseto.CreateToken(userID, "a@x.com", 15*time.Minute)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestTodosRequireAuthentication(t *testing.T) {
	srv := newTodoTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndListTodos(t *testing.T) {
	srv := newTodoTestServer(t)
	owner := uuid.New()

	rec := srv.request(t, http.MethodPost, "/todos", CreateTodoRequest{Title: "Buy milk"}, owner)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, owner, created.UserID)

	rec = srv.request(t, http.MethodPost, "/todos", CreateTodoRequest{Title: "Walk dog"}, owner)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.request(t, http.MethodGet, "/todos", nil, owner)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Buy milk", listed[0].Title, "creation order preserved")
	assert.Equal(t, "Walk dog", listed[1].Title)
}

func TestCreateTodoValidation(t *testing.T) {
	srv := newTodoTestServer(t)
	owner := uuid.New()

	rec := srv.request(t, http.MethodPost, "/todos", CreateTodoRequest{Title: "  "}, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPaginationQuery(t *testing.T) {
	srv := newTodoTestServer(t)
	owner := uuid.New()

	for _, title := range []string{"first", "second"} {
		rec := srv.request(t, http.MethodPost, "/todos", CreateTodoRequest{Title: title}, owner)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := srv.request(t, http.MethodGet, "/todos?offset=0&limit=1", nil, owner)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "first", listed[0].Title)
}

func TestUpdateTodoOverHTTP(t *testing.T) {
	srv := newTodoTestServer(t)
	owner := uuid.New()

	rec := srv.request(t, http.MethodPost, "/todos", CreateTodoRequest{Title: "Buy milk"}, owner)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = srv.request(t, http.MethodPatch, "/todos/"+created.ID.String(), Patch{Completed: boolptr(true)}, owner)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title)

	rec = srv.request(t, http.MethodPatch, "/todos/not-a-uuid", Patch{Completed: boolptr(true)}, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForeignTodoIsIndistinguishableFromMissing(t *testing.T) {
	srv := newTodoTestServer(t)
	owner := uuid.New()
	intruder := uuid.New()

	rec := srv.request(t, http.MethodPost, "/todos", CreateTodoRequest{Title: "secret"}, owner)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	foreign := srv.request(t, http.MethodDelete, "/todos/"+created.ID.String(), nil, intruder)
	missing := srv.request(t, http.MethodDelete, fmt.Sprintf("/todos/%s", uuid.New()), nil, intruder)

	assert.Equal(t, http.StatusNotFound, foreign.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.JSONEq(t, missing.Body.String(), foreign.Body.String(),
		"foreign and missing todos must produce identical responses")

	// The owner's todo survived the foreign delete attempt
	rec = srv.request(t, http.MethodGet, "/todos", nil, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)
}

func TestDeleteTodoOverHTTP(t *testing.T) {
	srv := newTodoTestServer(t)
	owner := uuid.New()

	rec := srv.request(t, http.MethodPost, "/todos", CreateTodoRequest{Title: "Buy milk"}, owner)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = srv.request(t, http.MethodDelete, "/todos/"+created.ID.String(), nil, owner)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.request(t, http.MethodDelete, "/todos/"+created.ID.String(), nil, owner)
	assert.Equal(t, http.StatusNotFound, rec.Code, "second delete finds nothing")
}
