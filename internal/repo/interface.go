package repo

import (
	"context"

	"github.com/BuzzLyutic/todo-api/internal/filter"
	"github.com/BuzzLyutic/todo-api/internal/model"
)

// Scope ограничивает выборку владельцем записи. Для админа
// ограничение снимается.
type Scope struct {
	UserID int64
	Admin  bool
}

// TodoRepository определяет интерфейс для работы с задачами
type TodoRepository interface {
	Create(ctx context.Context, t model.Todo) (model.Todo, error)
	Get(ctx context.Context, id int64, scope Scope) (model.Todo, error)
	List(ctx context.Context, f filter.Filter, p filter.Page) (model.TodoPage, error)
	Update(ctx context.Context, t model.Todo, scope Scope) (model.Todo, error)
	Delete(ctx context.Context, id int64, scope Scope) error
}

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}
