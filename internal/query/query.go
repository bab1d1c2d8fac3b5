// Package query builds SQL WHERE clauses from a small tree of typed
// conditions. Column names come from code; every value is bound as a
// placeholder argument.
package query

import (
	"fmt"
	"strings"
)

// Cond is a node of a predicate tree.
type Cond interface {
	render(sb *strings.Builder, args *[]any)
}

// Render returns the SQL for c with ? placeholders and the bound arguments.
// A nil condition renders as an always-true predicate.
func Render(c Cond) (string, []any) {
	if c == nil {
		return "1=1", nil
	}
	var sb strings.Builder
	var args []any
	c.render(&sb, &args)
	return sb.String(), args
}

// Eq matches col = val.
type Eq struct {
	Col string
	Val any
}

func (c Eq) render(sb *strings.Builder, args *[]any) {
	sb.WriteString(c.Col)
	sb.WriteString(" = ?")
	*args = append(*args, c.Val)
}

// Between matches lo <= col <= hi. Numeric compares the column as a real
// number, for decimals stored as text.
type Between struct {
	Col     string
	Lo, Hi  any
	Numeric bool
}

func (c Between) render(sb *strings.Builder, args *[]any) {
	if c.Numeric {
		fmt.Fprintf(sb, "CAST(%s AS REAL) BETWEEN ? AND ?", c.Col)
	} else {
		fmt.Fprintf(sb, "%s BETWEEN ? AND ?", c.Col)
	}
	*args = append(*args, c.Lo, c.Hi)
}

// LowerFunc is the SQL function Contains folds the column with. It must
// lowercase with the same Unicode rules as strings.ToLower; SQLite's
// built-in LOWER only folds ASCII. internal/db registers it.
const LowerFunc = "unicode_lower"

// Contains matches a case-insensitive substring of col.
type Contains struct {
	Col  string
	Text string
}

func (c Contains) render(sb *strings.Builder, args *[]any) {
	fmt.Fprintf(sb, `%s(%s) LIKE ? ESCAPE '\'`, LowerFunc, c.Col)
	*args = append(*args, "%"+escapeLike(strings.ToLower(c.Text))+"%")
}

// escapeLike escapes LIKE wildcards so the text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// And matches when every non-nil child matches.
func And(conds ...Cond) Cond {
	return group{op: " AND ", empty: "1=1", conds: compact(conds)}
}

// Or matches when any non-nil child matches. Children that render to the
// same SQL and arguments as an earlier child are dropped.
func Or(conds ...Cond) Cond {
	return group{op: " OR ", empty: "1=0", conds: dedupe(compact(conds))}
}

type group struct {
	op    string
	empty string
	conds []Cond
}

func (g group) render(sb *strings.Builder, args *[]any) {
	switch len(g.conds) {
	case 0:
		sb.WriteString(g.empty)
		return
	case 1:
		g.conds[0].render(sb, args)
		return
	}

	sb.WriteString("(")
	for i, c := range g.conds {
		if i > 0 {
			sb.WriteString(g.op)
		}
		c.render(sb, args)
	}
	sb.WriteString(")")
}

func compact(conds []Cond) []Cond {
	out := conds[:0:0]
	for _, c := range conds {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func dedupe(conds []Cond) []Cond {
	seen := make(map[string]bool, len(conds))
	out := conds[:0:0]
	for _, c := range conds {
		sql, args := Render(c)
		key := fmt.Sprintf("%s|%#v", sql, args)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// OrderBy is one ORDER BY term.
type OrderBy struct {
	Col  string
	Desc bool
}

// RenderOrder returns the terms joined for an ORDER BY clause.
func RenderOrder(terms ...OrderBy) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		dir := "ASC"
		if t.Desc {
			dir = "DESC"
		}
		parts[i] = t.Col + " " + dir
	}
	return strings.Join(parts, ", ")
}
