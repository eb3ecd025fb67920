package ast

import "defio/internal/sqlast"

// GenWhereClause mirrors sqlast.WhereClause at the generator layer.
type GenWhereClause interface {
	ToSQL(aliases map[*UniqueTable]string) sqlast.WhereClause
}

// GenSimplePredicate wraps a single boolean expression.
type GenSimplePredicate struct {
	Expr GenExpression
}

func (p GenSimplePredicate) ToSQL(aliases map[*UniqueTable]string) sqlast.WhereClause {
	return sqlast.SimplePredicate{Expr: p.Expr.ToSQL(aliases)}
}

// GenCompoundPredicate mirrors sqlast.CompoundPredicate.
type GenCompoundPredicate struct {
	Op       sqlast.CompoundOp
	Children []GenWhereClause
}

func (p GenCompoundPredicate) ToSQL(aliases map[*UniqueTable]string) sqlast.WhereClause {
	children := make([]sqlast.WhereClause, len(p.Children))
	for i, c := range p.Children {
		children[i] = c.ToSQL(aliases)
	}
	resolved, err := sqlast.NewCompoundPredicate(p.Op, children)
	if err != nil {
		// The sampler is the only caller that builds GenCompoundPredicate,
		// and it never violates the arity invariant — see
		// internal/sqlgen/sampler/predicate.go.
		panic(err)
	}
	return resolved
}
