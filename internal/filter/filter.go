package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

// Predicate — одно условие WHERE. Кроме SQL-фрагмента несет
// эталонную in-memory проверку, чтобы семантику конъюнкции можно
// было тестировать без БД.
type Predicate struct {
	expr  string // фрагмент с %d на месте номера аргумента
	arg   any
	match func(model.Todo) bool
}

func (p Predicate) Match(t model.Todo) bool { return p.match(t) }

// Filter — набор опциональных условий списка задач. OwnerID обязателен,
// остальные поля участвуют только если не nil. Каждое условие
// независимо от остальных: новые фильтры не порождают новых веток.
type Filter struct {
	OwnerID   int64
	Search    *string
	Status    *model.Status
	Priority  *model.Priority
	Completed *bool
	DueBefore *time.Time
}

// Predicates разворачивает фильтр в список условий.
// Владелец всегда первый.
func (f Filter) Predicates() []Predicate {
	preds := []Predicate{ownerIs(f.OwnerID)}

	if f.Search != nil && *f.Search != "" {
		preds = append(preds, titleContains(*f.Search))
	}
	if f.Status != nil {
		preds = append(preds, statusIs(*f.Status))
	}
	if f.Priority != nil {
		preds = append(preds, priorityIs(*f.Priority))
	}
	if f.Completed != nil {
		preds = append(preds, completedIs(*f.Completed))
	}
	if f.DueBefore != nil {
		preds = append(preds, dueOnOrBefore(*f.DueBefore))
	}
	return preds
}

// Match — эталонная оценка фильтра в памяти: AND по всем условиям.
func (f Filter) Match(t model.Todo) bool {
	for _, p := range f.Predicates() {
		if !p.Match(t) {
			return false
		}
	}
	return true
}

// Where собирает WHERE-клаузу из условий, нумеруя аргументы с $1.
func Where(preds []Predicate) (string, []any) {
	parts := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	for _, p := range preds {
		parts = append(parts, fmt.Sprintf(p.expr, len(args)+1))
		args = append(args, p.arg)
	}
	return "WHERE " + strings.Join(parts, " AND "), args
}

func ownerIs(userID int64) Predicate {
	return Predicate{
		expr:  "user_id = $%d",
		arg:   userID,
		match: func(t model.Todo) bool { return t.UserID == userID },
	}
}

func titleContains(search string) Predicate {
	return Predicate{
		expr: "title ILIKE $%d",
		arg:  "%" + search + "%",
		match: func(t model.Todo) bool {
			return strings.Contains(strings.ToLower(t.Title), strings.ToLower(search))
		},
	}
}

func statusIs(status model.Status) Predicate {
	return Predicate{
		expr:  "status = $%d",
		arg:   status,
		match: func(t model.Todo) bool { return t.Status == status },
	}
}

func priorityIs(priority model.Priority) Predicate {
	return Predicate{
		expr:  "priority = $%d",
		arg:   priority,
		match: func(t model.Todo) bool { return t.Priority == priority },
	}
}

func completedIs(completed bool) Predicate {
	return Predicate{
		expr:  "completed = $%d",
		arg:   completed,
		match: func(t model.Todo) bool { return t.Completed == completed },
	}
}

// dueOnOrBefore — задачи со сроком не позже cutoff. Задачи без срока
// не проходят.
func dueOnOrBefore(cutoff time.Time) Predicate {
	return Predicate{
		expr: "due_date <= $%d",
		arg:  cutoff,
		match: func(t model.Todo) bool {
			return t.DueDate != nil && !t.DueDate.After(cutoff)
		},
	}
}
