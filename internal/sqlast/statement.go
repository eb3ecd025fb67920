package sqlast

import "strings"

// SelectStatement is the only statement kind this AST represents: a
// target list, a from-clause tree, and an optional where-clause.
type SelectStatement struct {
	TargetList  []Expression
	FromClause  FromClause
	WhereClause WhereClause // nil means no WHERE clause
}

// String renders the statement as a single-line SQL string. This is the
// pure serialization function spec §4.6 requires: it depends only on
// the statement's own fields, not on any surrounding plan state (alias
// resolution has already happened by the time a sqlast.SelectStatement
// exists — see internal/sqlgen/ast for the layer that resolves aliases).
func (s SelectStatement) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(joinExpressions(s.TargetList))
	b.WriteString(" FROM ")
	b.WriteString(s.FromClause.sqlString())
	if s.WhereClause != nil {
		b.WriteString(" WHERE ")
		b.WriteString(s.WhereClause.sqlString())
	}
	b.WriteString(";")
	return b.String()
}
