package ast

import (
	"defio/internal/core"
	"defio/internal/sqlast"
)

// GenExpression mirrors sqlast.Expression but carries UniqueTable
// references for column lookups instead of resolved alias strings.
type GenExpression interface {
	ToSQL(aliases map[*UniqueTable]string) sqlast.Expression
}

// GenColumnReference resolves to a ColumnReference using the table's
// assigned alias if present, else the table's own name.
type GenColumnReference struct {
	Table  *UniqueTable
	Column core.Column
}

func (e GenColumnReference) ToSQL(aliases map[*UniqueTable]string) sqlast.Expression {
	alias, ok := aliases[e.Table]
	if !ok {
		alias = e.Table.Name()
	}
	return sqlast.ColumnReference{TableAlias: alias, ColumnName: e.Column.Name}
}

// GenConstant wraps a literal value.
type GenConstant struct {
	Value any
}

func (e GenConstant) ToSQL(map[*UniqueTable]string) sqlast.Expression {
	return sqlast.Constant{Value: e.Value}
}

// GenUnaryExpression wraps UnaryExpression.
type GenUnaryExpression struct {
	Operator sqlast.UnaryOperator
	Operand  GenExpression
}

func (e GenUnaryExpression) ToSQL(aliases map[*UniqueTable]string) sqlast.Expression {
	return sqlast.UnaryExpression{Operator: e.Operator, Operand: e.Operand.ToSQL(aliases)}
}

// GenBinaryExpression wraps BinaryExpression. Right is used for a single
// operand; RightSeq for IN/BETWEEN/NOT BETWEEN.
type GenBinaryExpression struct {
	Left     GenExpression
	Operator sqlast.BinaryOperator
	Right    GenExpression
	RightSeq []GenExpression
}

func (e GenBinaryExpression) ToSQL(aliases map[*UniqueTable]string) sqlast.Expression {
	if e.RightSeq != nil {
		seq := make([]sqlast.Expression, len(e.RightSeq))
		for i, r := range e.RightSeq {
			seq[i] = r.ToSQL(aliases)
		}
		return sqlast.BinaryExpression{Left: e.Left.ToSQL(aliases), Operator: e.Operator, RightSeq: seq}
	}
	return sqlast.BinaryExpression{Left: e.Left.ToSQL(aliases), Operator: e.Operator, Right: e.Right.ToSQL(aliases)}
}

// GenFunctionCall wraps FunctionCall.
type GenFunctionCall struct {
	FuncName    sqlast.FunctionName
	AggStar     bool
	AggDistinct bool
	Args        []GenExpression
}

func (e GenFunctionCall) ToSQL(aliases map[*UniqueTable]string) sqlast.Expression {
	if e.AggStar {
		return sqlast.FunctionCall{FuncName: e.FuncName, AggStar: true}
	}
	args := make([]sqlast.Expression, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.ToSQL(aliases)
	}
	return sqlast.FunctionCall{FuncName: e.FuncName, AggDistinct: e.AggDistinct, Args: args}
}
