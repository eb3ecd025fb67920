package ast

import "defio/internal/sqlast"

// GenSelectStatement is the generator-side plan: a target list, a
// from-clause tree, and an optional where-clause, all still carrying
// UniqueTable references. ToSQL computes the plan's alias assignment
// once (via GenerateTableAliases) and resolves every reference through
// it, producing a plain sqlast.SelectStatement ready to serialize.
type GenSelectStatement struct {
	TargetList  []GenExpression
	FromClause  GenFromClause
	WhereClause GenWhereClause // nil means no WHERE clause
}

// ToSQL resolves this plan's table aliases and returns the fully
// resolved, serializable statement.
func (s GenSelectStatement) ToSQL() sqlast.SelectStatement {
	aliases := GenerateTableAliases(s.FromClause.UniqueTables())

	targets := make([]sqlast.Expression, len(s.TargetList))
	for i, t := range s.TargetList {
		targets[i] = t.ToSQL(aliases)
	}

	var where sqlast.WhereClause
	if s.WhereClause != nil {
		where = s.WhereClause.ToSQL(aliases)
	}

	return sqlast.SelectStatement{
		TargetList:  targets,
		FromClause:  s.FromClause.ToSQL(aliases),
		WhereClause: where,
	}
}

// String renders the resolved SQL text, the generator's ultimate output.
func (s GenSelectStatement) String() string {
	return s.ToSQL().String()
}
