package storage

import (
	"fmt"
	"strconv"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching v anywhere in the text.
func containsPattern(v string) string {
	return "%" + likeEscaper.Replace(v) + "%"
}

// whereBuilder collects AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *whereBuilder) add(cond string) {
	b.conds = append(b.conds, cond)
}

func (b *whereBuilder) contains(column, v string) {
	if v == "" {
		return
	}
	b.add(fmt.Sprintf("%s ILIKE %s", column, b.arg(containsPattern(v))))
}

// containsAny matches v in at least one of columns.
func (b *whereBuilder) containsAny(v string, columns ...string) {
	if v == "" || len(columns) == 0 {
		return
	}
	p := b.arg(containsPattern(v))
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE %s", c, p)
	}
	b.add("(" + strings.Join(parts, " OR ") + ")")
}

func (b *whereBuilder) atMost(expr string, v *float64) {
	if v == nil {
		return
	}
	b.add(fmt.Sprintf("%s <= %s", expr, b.arg(*v)))
}

func (b *whereBuilder) atLeast(expr string, v *float64) {
	if v == nil {
		return
	}
	b.add(fmt.Sprintf("%s >= %s", expr, b.arg(*v)))
}

func (b *whereBuilder) where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conds, " AND ")
}

// limit appends the LIMIT argument and returns its placeholder.
func (b *whereBuilder) limit(n int) string {
	return b.arg(n)
}
