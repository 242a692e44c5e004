package repository

import (
	"fmt"
	"strings"
)

// where accumulates numbered-placeholder conditions for dynamic filters.
type where struct {
	clauses []string
	args    []any
}

// arg registers a value and returns its placeholder.
func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *where) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders.
func (w *where) page(limit, offset int) string {
	return fmt.Sprintf(" LIMIT %s OFFSET %s", w.arg(limit), w.arg(offset))
}

func likePattern(s string) string {
	return "%" + strings.TrimSpace(s) + "%"
}
