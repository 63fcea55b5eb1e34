package db

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Read-only query builder for the catalog's hand-written SELECTs (reference counts,
// orphan listings). Tables, columns and ON expressions are copied into the SQL text
// unescaped, so only constants belong there. Compared values always become bind arguments.

// Operator is a comparison used in a WHERE predicate
type Operator string

const (
	Equal     Operator = "="
	NotEqual  Operator = "<>"
	In        Operator = "IN"
	NotIn     Operator = "NOT IN"
	IsNull    Operator = "IS NULL"
	IsNotNull Operator = "IS NOT NULL"
)

type join struct {
	kind  string
	table string
	on    string
}

type predicate struct {
	column string
	op     Operator
	value  interface{}
}

// SelectQuery accumulates the parts of a single SELECT statement
type SelectQuery struct {
	from     string
	columns  []string
	distinct bool
	joins    []join
	preds    []predicate
	order    []string
	limit    int
}

// From starts a SELECT over a trusted table name
func From(table string) *SelectQuery {
	return &SelectQuery{from: table}
}

// Columns sets the select list. An empty list selects every column.
func (q *SelectQuery) Columns(cols ...string) *SelectQuery {
	q.columns = cols
	return q
}

// Count replaces the select list with COUNT(*)
func (q *SelectQuery) Count() *SelectQuery {
	return q.Columns("COUNT(*)")
}

// Distinct removes duplicate rows from the result
func (q *SelectQuery) Distinct() *SelectQuery {
	q.distinct = true
	return q
}

// Join adds an INNER JOIN
func (q *SelectQuery) Join(table, on string) *SelectQuery {
	q.joins = append(q.joins, join{kind: "INNER JOIN", table: table, on: on})
	return q
}

// LeftJoin adds a LEFT JOIN
func (q *SelectQuery) LeftJoin(table, on string) *SelectQuery {
	q.joins = append(q.joins, join{kind: "LEFT JOIN", table: table, on: on})
	return q
}

// Where adds a predicate; all predicates are AND-ed
func (q *SelectQuery) Where(column string, op Operator, value interface{}) *SelectQuery {
	q.preds = append(q.preds, predicate{column: column, op: op, value: value})
	return q
}

// WhereNull matches rows where column IS NULL
func (q *SelectQuery) WhereNull(column string) *SelectQuery {
	return q.Where(column, IsNull, nil)
}

// OrderBy appends an ascending or descending sort key
func (q *SelectQuery) OrderBy(column string, desc bool) *SelectQuery {
	if desc {
		column += " DESC"
	} else {
		column += " ASC"
	}
	q.order = append(q.order, column)
	return q
}

// Limit caps the number of rows; zero or less means no limit
func (q *SelectQuery) Limit(n int) *SelectQuery {
	q.limit = max(n, 0)
	return q
}

// Build renders the statement and its bind arguments in placeholder order
func (q *SelectQuery) Build() (string, []interface{}) {
	parts := []string{"SELECT"}
	if q.distinct {
		parts = append(parts, "DISTINCT")
	}

	cols := "*"
	if len(q.columns) > 0 {
		cols = strings.Join(q.columns, ", ")
	}
	parts = append(parts, cols, "FROM", q.from)

	for _, j := range q.joins {
		parts = append(parts, j.kind, j.table, "ON", j.on)
	}

	var args []interface{}
	if len(q.preds) > 0 {
		clauses := make([]string, len(q.preds))
		for i, p := range q.preds {
			var predArgs []interface{}
			clauses[i], predArgs = p.render()
			args = append(args, predArgs...)
		}
		parts = append(parts, "WHERE", strings.Join(clauses, " AND "))
	}

	if len(q.order) > 0 {
		parts = append(parts, "ORDER BY", strings.Join(q.order, ", "))
	}
	if q.limit > 0 {
		parts = append(parts, "LIMIT", strconv.Itoa(q.limit))
	}

	return strings.Join(parts, " "), args
}

func (p predicate) render() (string, []interface{}) {
	switch p.op {
	case IsNull, IsNotNull:
		return p.column + " " + string(p.op), nil
	case In, NotIn:
		return p.renderSet()
	default:
		return fmt.Sprintf("%s %s ?", p.column, p.op), []interface{}{p.value}
	}
}

// renderSet expands a slice into one placeholder per element.
// An empty set never matches IN and always matches NOT IN.
func (p predicate) renderSet() (string, []interface{}) {
	empty := "1 = 0"
	if p.op == NotIn {
		empty = "1 = 1"
	}
	if p.value == nil {
		return empty, nil
	}

	v := reflect.ValueOf(p.value)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return fmt.Sprintf("%s %s (?)", p.column, p.op), []interface{}{p.value}
	}
	if v.Len() == 0 {
		return empty, nil
	}

	args := make([]interface{}, v.Len())
	for i := range args {
		args[i] = v.Index(i).Interface()
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	return fmt.Sprintf("%s %s (%s)", p.column, p.op, placeholders), args
}
