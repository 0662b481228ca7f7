package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BuzzLyutic/todo-api/internal/auth"
	"github.com/BuzzLyutic/todo-api/internal/filter"
	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

type TodoService struct {
	repo repo.TodoRepository
}

func NewTodoService(repo repo.TodoRepository) *TodoService {
	return &TodoService{repo: repo}
}

// ListParams — опциональные фильтры списка плюс пагинация.
// UserID позволяет админу смотреть чужие списки.
type ListParams struct {
	Search    *string
	Status    *model.Status
	Priority  *model.Priority
	Completed *bool
	DueBefore *time.Time
	UserID    *int64
	Page      filter.Page
}

func (s *TodoService) Create(ctx context.Context, caller auth.Identity, req model.TodoRequest) (model.Todo, error) {
	if err := validateCreate(req); err != nil {
		return model.Todo{}, err
	}

	// Временные метки и стартовые значения выставляем здесь, а не
	// хуками БД: completed при создании всегда false.
	now := time.Now().UTC()
	t := model.Todo{
		UserID:      caller.UserID,
		Title:       *req.Title,
		Description: req.Description,
		Status:      *req.Status,
		Priority:    *req.Priority,
		DueDate:     req.DueDate,
		Completed:   false,
		Version:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.repo.Create(ctx, t)
}

func (s *TodoService) Get(ctx context.Context, caller auth.Identity, id int64) (model.Todo, error) {
	return s.repo.Get(ctx, id, scope(caller))
}

func (s *TodoService) List(ctx context.Context, caller auth.Identity, params ListParams) (model.TodoPage, error) {
	ownerID := caller.UserID
	if params.UserID != nil {
		if !caller.IsAdmin() && *params.UserID != caller.UserID {
			return model.TodoPage{}, ErrForbidden
		}
		ownerID = *params.UserID
	}

	f := filter.Filter{
		OwnerID:   ownerID,
		Search:    params.Search,
		Status:    params.Status,
		Priority:  params.Priority,
		Completed: params.Completed,
		DueBefore: params.DueBefore,
	}
	return s.repo.List(ctx, f, params.Page)
}

// Update — полная замена изменяемых полей. Версию берем из запроса,
// а без нее - из только что прочитанной записи; гонку между чтением
// и UPDATE все равно поймает проверка версии в репозитории.
func (s *TodoService) Update(ctx context.Context, caller auth.Identity, id int64, req model.TodoRequest) (model.Todo, error) {
	if err := validateUpdate(req); err != nil {
		return model.Todo{}, err
	}

	existing, err := s.repo.Get(ctx, id, scope(caller))
	if err != nil {
		return model.Todo{}, err
	}

	existing.Title = *req.Title
	existing.Description = req.Description
	existing.Status = *req.Status
	existing.Priority = *req.Priority
	existing.DueDate = req.DueDate
	existing.Completed = *req.Completed
	if req.Version != nil {
		existing.Version = *req.Version
	}
	existing.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, existing, scope(caller))
}

// Patch меняет только присланные поля.
func (s *TodoService) Patch(ctx context.Context, caller auth.Identity, id int64, req model.TodoRequest) (model.Todo, error) {
	existing, err := s.repo.Get(ctx, id, scope(caller))
	if err != nil {
		return model.Todo{}, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return model.Todo{}, ErrValidation
		}
		existing.Title = *req.Title
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return model.Todo{}, ErrValidation
		}
		existing.Status = *req.Status
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return model.Todo{}, ErrValidation
		}
		existing.Priority = *req.Priority
	}
	if req.DueDate != nil {
		existing.DueDate = req.DueDate
	}
	if req.Completed != nil {
		existing.Completed = *req.Completed
	}
	existing.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, existing, scope(caller))
}

func (s *TodoService) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	return s.repo.Delete(ctx, id, scope(caller))
}

func scope(caller auth.Identity) repo.Scope {
	return repo.Scope{UserID: caller.UserID, Admin: caller.IsAdmin()}
}

func validateCreate(req model.TodoRequest) error {
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return ErrValidation
	}
	if req.Status == nil || !req.Status.Valid() {
		return ErrValidation
	}
	if req.Priority == nil || !req.Priority.Valid() {
		return ErrValidation
	}
	return nil
}

func validateUpdate(req model.TodoRequest) error {
	if err := validateCreate(req); err != nil {
		return err
	}
	if req.Completed == nil {
		return ErrValidation
	}
	return nil
}
