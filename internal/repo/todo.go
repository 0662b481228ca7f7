package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-api/internal/filter"
	"github.com/BuzzLyutic/todo-api/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const todoColumns = "id, user_id, title, description, status, priority, due_date, completed, version, created_at, updated_at"

type TodoRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTodoRepo(pool *pgxpool.Pool) *TodoRepo { // Конструктор
	return &TodoRepo{
		pool: pool,
	}
}

func (r *TodoRepo) Create(ctx context.Context, t model.Todo) (model.Todo, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO todos (user_id, title, description, status, priority, due_date, completed, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, t.UserID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
		t.Completed, t.Version, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	return t, err
}

func (r *TodoRepo) Get(ctx context.Context, id int64, scope Scope) (model.Todo, error) {
	var t model.Todo
	err := r.pool.QueryRow(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE id = $1 AND ($2 OR user_id = $3)
	`, id, scope.Admin, scope.UserID).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.Completed, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TodoRepo) List(ctx context.Context, f filter.Filter, p filter.Page) (model.TodoPage, error) {
	p = p.Normalize()
	where, args := filter.Where(f.Predicates())

	page := model.TodoPage{
		Items: []model.Todo{},
		Page:  p.Number,
		Size:  p.Size,
	}

	if err := r.pool.QueryRow(ctx,
		"SELECT count(*) FROM todos "+where, args...,
	).Scan(&page.TotalItems); err != nil {
		return page, err
	}
	page.TotalPages = int((page.TotalItems + int64(p.Size) - 1) / int64(p.Size))

	query := fmt.Sprintf(
		"SELECT %s FROM todos %s %s LIMIT $%d OFFSET $%d",
		todoColumns, where, p.OrderBy(), len(args)+1, len(args)+2,
	)
	args = append(args, p.Size, p.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.DueDate, &t.Completed, &t.Version, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return page, err
		}
		page.Items = append(page.Items, t)
	}
	return page, rows.Err()
}

// Update перезаписывает изменяемые поля с проверкой версии.
// Нет строки с такой версией - значит запись успели поменять.
func (r *TodoRepo) Update(ctx context.Context, t model.Todo, scope Scope) (model.Todo, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE todos
		SET title = $2, description = $3, status = $4, priority = $5,
		    due_date = $6, completed = $7, version = version + 1, updated_at = $8
		WHERE id = $1 AND version = $9 AND ($10 OR user_id = $11)
		RETURNING `+todoColumns+`
	`, t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
		t.Completed, t.UpdatedAt, t.Version, scope.Admin, scope.UserID,
	).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.Completed, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorConflict
	}
	return t, err
}

func (r *TodoRepo) Delete(ctx context.Context, id int64, scope Scope) error {
	cmd, err := r.pool.Exec(ctx,
		"DELETE FROM todos WHERE id = $1 AND ($2 OR user_id = $3)",
		id, scope.Admin, scope.UserID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrorConflict
		}
	}
	return err
}
