package filter

import (
	"fmt"
	"strings"
)

const (
	defaultSize = 10
	maxSize     = 100
)

// sortColumns — разрешенные поля сортировки и их колонки.
// Неизвестное поле падает на created_at, а не в 500.
var sortColumns = map[string]string{
	"id":        "id",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
	"completed": "completed",
	"dueDate":   "due_date",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type Page struct {
	Number    int
	Size      int
	SortBy    string
	Direction string
}

func (p Page) Normalize() Page {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = defaultSize
	}
	if p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

func (p Page) Offset() int {
	return p.Number * p.Size
}

// OrderBy строит ORDER BY с вторичной сортировкой по id для
// стабильного порядка страниц.
func (p Page) OrderBy() string {
	col, ok := sortColumns[p.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(p.Direction, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", col, dir, dir)
}
