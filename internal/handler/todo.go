package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/auth"
	"github.com/BuzzLyutic/todo-api/internal/middleware"
	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
	"github.com/BuzzLyutic/todo-api/internal/service"
	"github.com/BuzzLyutic/todo-api/pkg/respond"
)

type TodoHandler struct {
	service *service.TodoService
	logger  *zap.Logger
}

func NewTodoHandler(srv *service.TodoService, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "unauthorized")
		return
	}

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "empty request body")
		return
	}

	var req model.TodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("invalid json: %v", err))
		return
	}

	todo, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/todos/%d", todo.ID))
	respond.JSON(w, r, http.StatusCreated, todo)
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromContext(r.Context())
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	todo, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, todo)
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromContext(r.Context())

	params, err := listParams(r)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	page, err := h.service.List(r.Context(), caller, params)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, page)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromContext(r.Context())
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var req model.TodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
		return
	}

	todo, err := h.service.Update(r.Context(), caller, id, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, todo)
}

func (h *TodoHandler) Patch(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromContext(r.Context())
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var req model.TodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
		return
	}

	todo, err := h.service.Patch(r.Context(), caller, id, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, todo)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromContext(r.Context())
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listParams разбирает query-параметры списка. Отсутствующий
// параметр остается nil и не попадает в фильтр.
func listParams(r *http.Request) (service.ListParams, error) {
	q := r.URL.Query()
	var params service.ListParams

	if search := q.Get("search"); search != "" {
		params.Search = &search
	}
	if s := q.Get("status"); s != "" {
		status := model.Status(s)
		if !status.Valid() {
			return params, fmt.Errorf("unknown status %q", s)
		}
		params.Status = &status
	}
	if p := q.Get("priority"); p != "" {
		priority := model.Priority(p)
		if !priority.Valid() {
			return params, fmt.Errorf("unknown priority %q", p)
		}
		params.Priority = &priority
	}
	if c := q.Get("completed"); c != "" {
		completed, err := strconv.ParseBool(c)
		if err != nil {
			return params, fmt.Errorf("invalid completed flag %q", c)
		}
		params.Completed = &completed
	}
	if d := q.Get("dueDate"); d != "" {
		due, err := time.Parse(time.RFC3339, d)
		if err != nil {
			return params, fmt.Errorf("invalid dueDate %q, want RFC3339", d)
		}
		params.DueBefore = &due
	}
	if u := q.Get("userId"); u != "" {
		userID, err := strconv.ParseInt(u, 10, 64)
		if err != nil {
			return params, fmt.Errorf("invalid userId %q", u)
		}
		params.UserID = &userID
	}

	params.Page.Number, _ = strconv.Atoi(q.Get("page"))
	params.Page.Size, _ = strconv.Atoi(q.Get("size"))
	params.Page.SortBy = q.Get("sortBy")
	params.Page.Direction = q.Get("direction")

	return params, nil
}

func (h *TodoHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "RESOURCE_NOT_FOUND", "not found")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "OPTIMISTIC_LOCK_ERROR", "conflict due to concurrent modification, retry with fresh data")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "validation error")
	case errors.Is(err, service.ErrForbidden):
		respond.Error(w, r, http.StatusForbidden, "ACCESS_DENIED", "access denied")
	case errors.Is(err, auth.ErrInvalidToken):
		respond.Error(w, r, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "unauthorized")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}
