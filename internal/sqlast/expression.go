package sqlast

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is the closed set of scalar expression nodes: unary,
// binary, column references, literal constants, and function calls.
type Expression interface {
	sqlString() string
}

// UnaryExpression applies a prefix operator to a single operand.
type UnaryExpression struct {
	Operator UnaryOperator
	Operand  Expression
}

func (e UnaryExpression) sqlString() string {
	return fmt.Sprintf("%s (%s)", e.Operator, e.Operand.sqlString())
}

// BinaryExpression applies an infix operator. Right is a single
// Expression except for IN (sequence) and BETWEEN/NOT BETWEEN (sequence
// of length 2); RightSeq is used instead of Right in those cases.
type BinaryExpression struct {
	Left     Expression
	Operator BinaryOperator
	Right    Expression   // nil when RightSeq is used
	RightSeq []Expression // non-nil only for IN/BETWEEN/NOT BETWEEN
}

func (e BinaryExpression) sqlString() string {
	left := e.Left.sqlString()
	switch e.Operator {
	case OpIn:
		return fmt.Sprintf("%s IN (%s)", left, joinExpressions(e.RightSeq))
	case OpBetween, OpNotBetween:
		return fmt.Sprintf("%s %s %s AND %s", left, e.Operator, e.RightSeq[0].sqlString(), e.RightSeq[1].sqlString())
	default:
		return fmt.Sprintf("%s %s %s", left, e.Operator, e.Right.sqlString())
	}
}

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.sqlString()
	}
	return strings.Join(parts, ", ")
}

// ColumnReference names a column, optionally through a table alias.
type ColumnReference struct {
	TableAlias string
	ColumnName string
}

func (e ColumnReference) sqlString() string {
	return fmt.Sprintf("%s.%s", quoteIdentifier(e.TableAlias), quoteIdentifier(e.ColumnName))
}

// Constant is an integer, float, string, or boolean literal.
type Constant struct {
	Value any // int, float64, string, or bool
}

func (e Constant) sqlString() string {
	switch v := e.Value.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return quoteStringLiteral(v)
	default:
		panic(fmt.Sprintf("sqlast: unsupported constant type %T", v))
	}
}

// FunctionCall is an aggregate function invocation: either COUNT(*)
// (AggStar) or a function over one or more argument expressions.
type FunctionCall struct {
	FuncName    FunctionName
	AggStar     bool
	AggDistinct bool
	Args        []Expression
}

func (e FunctionCall) sqlString() string {
	if e.AggStar {
		return fmt.Sprintf("%s(*)", e.FuncName)
	}
	distinct := ""
	if e.AggDistinct {
		distinct = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", e.FuncName, distinct, joinExpressions(e.Args))
}

// quoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded quote by doubling it. Grounded on the teacher's
// dialect/mysql format helpers (formatColumns/QuoteIdentifier), adapted
// from MySQL backtick quoting to the ANSI double-quote form the
// original generator's string serialization used.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteStringLiteral wraps a SQL string literal in single quotes,
// escaping any embedded quote by doubling it.
func quoteStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
