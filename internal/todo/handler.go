package todo

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fastvite/todo-api/internal/auth"
	"github.com/fastvite/todo-api/internal/httputil"
	"github.com/fastvite/todo-api/internal/logging"
)

// Handler contains HTTP handlers for todo endpoints.
// All routes sit behind auth.Middleware.RequireAuth.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// CreateTodoRequest represents the todo creation request body
type CreateTodoRequest struct {
	Title string `json:"title"`
}

// List returns the caller's todos
// @Summary      List todos
// @Description  Returns the caller's todos in creation order
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        offset query int false "Pagination offset"
// @Param        limit  query int false "Page size, clamped to the configured maximum"
// @Success      200 {array} Todo
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /todos [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)

	todos, err := h.service.List(r.Context(), userID, offset, limit)
	if err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to list todos", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list todos", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, todos, http.StatusOK)
}

// Create adds a new todo for the caller
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateTodoRequest true "Todo fields"
// @Success      201 {object} Todo
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /todos [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid todo request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), userID, req.Title)
	if err != nil {
		if errors.Is(err, ErrTitleRequired) {
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeTitleRequired, http.StatusBadRequest)
			return
		}
		logger.Error("failed to create todo", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create todo", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// Update patches the caller's todo
// @Summary      Update a todo
// @Description  Patch title and/or completion state of an owned todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string true "Todo ID"
// @Param        request body Patch true "Fields to change"
// @Success      200 {object} Todo
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "Todo not found"
// @Router       /todos/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	todoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid todo id", httputil.CodeInvalidTodoID, http.StatusBadRequest)
		return
	}

	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, todoID, patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyPatch):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmptyPatch, http.StatusBadRequest)
		case errors.Is(err, ErrTitleRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeTitleRequired, http.StatusBadRequest)
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
			// Same response either way so non-owners cannot probe for ids
			respondNotFound(w)
		default:
			logger.Error("failed to update todo", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update todo", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, updated, http.StatusOK)
}

// Delete removes the caller's todo
// @Summary      Delete a todo
// @Tags         todos
// @Security     BearerAuth
// @Param        id path string true "Todo ID"
// @Success      204 "Todo deleted"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "Todo not found"
// @Router       /todos/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	todoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid todo id", httputil.CodeInvalidTodoID, http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), userID, todoID); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			respondNotFound(w)
			return
		}
		logger.Error("failed to delete todo", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete todo", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, nil, http.StatusNoContent)
}

func respondNotFound(w http.ResponseWriter) {
	httputil.RespondErrorWithCode(w, "todo not found", httputil.CodeTodoNotFound, http.StatusNotFound)
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}
