package repository

import (
	"fmt"
	"strings"
	"time"
)

// argList accumulates positional arguments shared across the branches of a
// composed query, so every branch numbers its placeholders consistently.
type argList struct {
	args []interface{}
}

// bind registers a value and returns its placeholder.
func (a *argList) bind(v interface{}) string {
	a.args = append(a.args, v)
	return fmt.Sprintf("$%d", len(a.args))
}

func (a *argList) values() []interface{} {
	return a.args
}

// selectBuilder assembles one SELECT branch from column, join and predicate
// fragments. Branches are combined with UNION by unionQuery when a caller's
// scope requires multiple independently-filtered views of the same rows.
type selectBuilder struct {
	distinct bool
	cols     []string
	from     string
	joins    []string
	wheres   []string
	groupBy  []string
	orderBy  []string
}

func newSelect() *selectBuilder {
	return &selectBuilder{}
}

func (b *selectBuilder) Distinct() *selectBuilder {
	b.distinct = true
	return b
}

func (b *selectBuilder) Columns(cols ...string) *selectBuilder {
	b.cols = append(b.cols, cols...)
	return b
}

func (b *selectBuilder) From(table string) *selectBuilder {
	b.from = table
	return b
}

func (b *selectBuilder) Join(table, on string) *selectBuilder {
	b.joins = append(b.joins, fmt.Sprintf("JOIN %s ON (%s)", table, on))
	return b
}

func (b *selectBuilder) LeftJoin(table, on string) *selectBuilder {
	b.joins = append(b.joins, fmt.Sprintf("LEFT JOIN %s ON (%s)", table, on))
	return b
}

func (b *selectBuilder) Where(conds ...string) *selectBuilder {
	b.wheres = append(b.wheres, conds...)
	return b
}

func (b *selectBuilder) GroupBy(cols ...string) *selectBuilder {
	b.groupBy = append(b.groupBy, cols...)
	return b
}

func (b *selectBuilder) OrderBy(cols ...string) *selectBuilder {
	b.orderBy = append(b.orderBy, cols...)
	return b
}

func (b *selectBuilder) SQL() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if b.distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(strings.Join(b.cols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.from)
	for _, join := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(join)
	}
	if len(b.wheres) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.wheres, " AND "))
	}
	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}
	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	return sb.String()
}

// unionQuery combines scope branches by set union, deduplicated by the
// branches' own DISTINCT selection, with a shared final ordering.
type unionQuery struct {
	branches []*selectBuilder
	orderBy  []string
}

func union(branches ...*selectBuilder) *unionQuery {
	return &unionQuery{branches: branches}
}

func (u *unionQuery) OrderBy(cols ...string) *unionQuery {
	u.orderBy = append(u.orderBy, cols...)
	return u
}

func (u *unionQuery) SQL() string {
	parts := make([]string, len(u.branches))
	for i, branch := range u.branches {
		parts[i] = "(" + branch.SQL() + ")"
	}
	out := strings.Join(parts, " UNION ")
	if len(u.orderBy) > 0 {
		out += " ORDER BY " + strings.Join(u.orderBy, ", ")
	}
	return out
}

// activePersonWindow restricts a person alias to Full-status people inside
// their active date window.
func activePersonWindow(alias string, a *argList) []string {
	today := a.bind(time.Now().Format("2006-01-02"))
	return []string{
		fmt.Sprintf("%s.status = 'Full'", alias),
		fmt.Sprintf("(%s.date_start IS NULL OR %s.date_start <= %s)", alias, alias, today),
		fmt.Sprintf("(%s.date_end IS NULL OR %s.date_end >= %s)", alias, alias, today),
	}
}

// statusSortExpr ranks enrolment statuses pending-first for review queues.
const statusSortExpr = `CASE us.status
 WHEN 'Complete - Pending' THEN 0
 WHEN 'Evidence Not Yet Approved' THEN 1
 WHEN 'Current' THEN 2
 WHEN 'Complete - Approved' THEN 3
 WHEN 'Exempt' THEN 4
 ELSE 5 END`

// departmentListJoin matches a department row against a unit's CSV
// department list.
const departmentListJoin = `d.id = ANY(string_to_array(NULLIF(u.department_id_list, ''), ','))`

// titleCase normalises free-text filter values for comparison against stored
// title-cased names.
func titleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
