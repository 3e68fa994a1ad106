package query

import (
	"fmt"
	"strings"

	"github.com/cdtdelta/stresstrip/internal/model"
)

// Table is the exported sample table the builder targets.
const Table = "stress_samples"

// Logic determines how multiple predicates are combined.
type Logic int

const (
	AND Logic = iota
	OR
)

// Operator represents a SQL comparison operator.
type Operator string

const (
	Equal          Operator = "="
	NotEqual       Operator = "!="
	Like           Operator = "LIKE"
	NotLike        Operator = "NOT LIKE"
	GreaterOrEqual Operator = ">="
	LessOrEqual    Operator = "<="
	Greater        Operator = ">"
	Less           Operator = "<"
)

// validOperators is the set of allowed operators for validation.
var validOperators = map[Operator]bool{
	Equal: true, NotEqual: true, Like: true, NotLike: true,
	GreaterOrEqual: true, LessOrEqual: true, Greater: true, Less: true,
}

// Predicate represents a single filter condition or a composite of conditions.
// Predicates use parameterized values to prevent SQL injection.
type Predicate struct {
	kind  predicateKind
	field string
	op    Operator
	value any
	from  int64
	to    int64
	left  *Predicate
	right *Predicate
	logic Logic
}

type predicateKind int

const (
	predNone predicateKind = iota
	predSimple
	predTime
	predComposite
)

// Simple creates a predicate that compares a field to a value.
// Returns nil if the field name is invalid or the operator is unrecognized.
func Simple(field string, op Operator, value any) *Predicate {
	if !isValidField(field) || !validOperators[op] {
		return nil
	}
	return &Predicate{
		kind:  predSimple,
		field: field,
		op:    op,
		value: value,
	}
}

// TimeRange creates a predicate on the sample timestamp, both bounds
// inclusive, in epoch milliseconds.
func TimeRange(from, to int64) *Predicate {
	return &Predicate{
		kind: predTime,
		from: from,
		to:   to,
	}
}

// Combine joins multiple predicates with the given logic (AND or OR).
// Returns nil for an empty slice. Returns the single predicate if only one is given.
// Nil predicates in the slice are skipped.
func Combine(preds []*Predicate, logic Logic) *Predicate {
	filtered := make([]*Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			filtered = append(filtered, p)
		}
	}

	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}

	result := &Predicate{
		kind:  predComposite,
		left:  filtered[0],
		right: filtered[1],
		logic: logic,
	}

	for i := 2; i < len(filtered); i++ {
		result = &Predicate{
			kind:  predComposite,
			left:  result,
			right: filtered[i],
			logic: logic,
		}
	}

	return result
}

// WhereClause returns the SQL WHERE fragment and its parameter values
// using the default dialect. For example: "(kind = ?)", []any{"stress"}
func (p *Predicate) WhereClause() (string, []any) {
	next := 1
	return p.whereClause(DefaultDialect, &next)
}

// WhereClauseFor is WhereClause for a specific dialect. Placeholders are
// numbered from 1.
func (p *Predicate) WhereClauseFor(d QueryDialect) (string, []any) {
	next := 1
	return p.whereClause(d, &next)
}

// whereClause renders the predicate, taking placeholder numbers from next.
func (p *Predicate) whereClause(d QueryDialect, next *int) (string, []any) {
	if p == nil {
		return "", nil
	}

	switch p.kind {
	case predNone:
		return "", nil

	case predSimple:
		ph := d.Placeholder(*next)
		*next++
		col := d.QuoteColumn(p.field)
		if p.op == Like || p.op == NotLike {
			return fmt.Sprintf("(%s %s %s)", col, p.op, ph),
				[]any{"%" + fmt.Sprint(p.value) + "%"}
		}
		return fmt.Sprintf("(%s %s %s)", col, p.op, ph),
			[]any{p.value}

	case predTime:
		ph1 := d.Placeholder(*next)
		ph2 := d.Placeholder(*next + 1)
		*next += 2
		return fmt.Sprintf("(%s BETWEEN %s AND %s)", d.QuoteColumn("timestamp"), ph1, ph2),
			[]any{p.from, p.to}

	case predComposite:
		leftSQL, leftArgs := p.left.whereClause(d, next)
		rightSQL, rightArgs := p.right.whereClause(d, next)

		if leftSQL == "" && rightSQL == "" {
			return "", nil
		}
		if leftSQL == "" {
			return rightSQL, rightArgs
		}
		if rightSQL == "" {
			return leftSQL, leftArgs
		}

		logicStr := "AND"
		if p.logic == OR {
			logicStr = "OR"
		}

		sql := fmt.Sprintf("(%s %s %s)", leftSQL, logicStr, rightSQL)
		args := append(leftArgs, rightArgs...)
		return sql, args

	default:
		return "", nil
	}
}

// Fields returns the list of field names referenced by this predicate tree.
func (p *Predicate) Fields() []string {
	if p == nil {
		return nil
	}

	switch p.kind {
	case predNone:
		return nil
	case predSimple:
		return []string{p.field}
	case predTime:
		return []string{"timestamp"}
	case predComposite:
		seen := make(map[string]bool)
		var result []string
		for _, f := range append(p.left.Fields(), p.right.Fields()...) {
			if !seen[f] {
				seen[f] = true
				result = append(result, f)
			}
		}
		return result
	default:
		return nil
	}
}

// Query builds a full SELECT statement over the sample table from
// predicates, ordering, and pagination.
type Query struct {
	dialect    QueryDialect
	predicates []*Predicate
	logic      Logic
	orderBy    string
	desc       bool
	pageSize   int
	page       int
}

// New creates a new Query with the given page size.
// Pass 0 for no pagination.
func New(pageSize int) *Query {
	return &Query{
		dialect:  DefaultDialect,
		logic:    AND,
		pageSize: pageSize,
		page:     1,
	}
}

// SetDialect switches placeholder and quoting rules, e.g. to PostgreSQL.
func (q *Query) SetDialect(d QueryDialect) {
	if d != nil {
		q.dialect = d
	}
}

// SetLogic sets how top-level predicates are combined (AND or OR).
func (q *Query) SetLogic(logic Logic) {
	q.logic = logic
}

// AddPredicate appends a predicate to the query. Nil predicates are ignored.
func (q *Query) AddPredicate(p *Predicate) {
	if p != nil {
		q.predicates = append(q.predicates, p)
	}
}

// ClearPredicates removes all predicates from the query.
func (q *Query) ClearPredicates() {
	q.predicates = nil
}

// OrderBy sets the column to sort results by, descending if desc is set.
// Pass an empty string to clear ordering.
// Returns an error if the field name is not valid.
func (q *Query) OrderBy(field string, desc bool) error {
	if field == "" {
		q.orderBy = ""
		q.desc = false
		return nil
	}
	if !isValidField(field) {
		return fmt.Errorf("invalid order by field: %s", field)
	}
	q.orderBy = field
	q.desc = desc
	return nil
}

// SetPage sets the current page number (1-based).
func (q *Query) SetPage(page int) {
	if page >= 1 {
		q.page = page
	}
}

// PageNumber returns the current page number (1-based).
func (q *Query) PageNumber() int {
	return q.page
}

// Build generates the full SQL SELECT statement and its parameter values.
// Columns are selected in model.SampleFields order.
func (q *Query) Build() (string, []any) {
	cols := make([]string, len(model.SampleFields))
	for i, f := range model.SampleFields {
		cols[i] = q.dialect.QuoteColumn(f)
	}
	sql := "SELECT " + strings.Join(cols, ", ") + " FROM " + Table

	where, args := q.where()
	sql += where

	if q.orderBy != "" {
		sql += " ORDER BY " + q.dialect.QuoteColumn(q.orderBy)
		if q.desc {
			sql += " DESC"
		}
	}

	if q.pageSize > 0 {
		offset := q.pageSize * (q.page - 1)
		sql += fmt.Sprintf(" LIMIT %d OFFSET %d", q.pageSize, offset)
	}

	return sql, args
}

// BuildCount generates a COUNT query using the same predicates.
func (q *Query) BuildCount() (string, []any) {
	where, args := q.where()
	return "SELECT COUNT(*) FROM " + Table + where, args
}

func (q *Query) where() (string, []any) {
	if len(q.predicates) == 0 {
		return "", nil
	}
	combined := Combine(q.predicates, q.logic)
	whereSQL, whereArgs := combined.WhereClauseFor(q.dialect)
	if whereSQL == "" {
		return "", nil
	}
	return " WHERE " + whereSQL, whereArgs
}

// PredicateFields returns all field names referenced across all predicates.
func (q *Query) PredicateFields() []string {
	seen := make(map[string]bool)
	var result []string
	for _, p := range q.predicates {
		for _, f := range p.Fields() {
			if !seen[f] {
				seen[f] = true
				result = append(result, f)
			}
		}
	}
	return result
}

// isValidField checks a field name against the known columns.
func isValidField(name string) bool {
	for _, f := range model.SampleFields {
		if f == name {
			return true
		}
	}
	return false
}
