package sqlast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectStatementStringSimple(t *testing.T) {
	stmt := SelectStatement{
		TargetList: []Expression{FunctionCall{FuncName: FuncCount, AggStar: true}},
		FromClause: AliasedTable{TableName: "book"},
	}
	assert.Equal(t, `SELECT COUNT(*) FROM "book";`, stmt.String())
}

func TestSelectStatementStringWithJoinAndWhere(t *testing.T) {
	left := AliasedTable{TableName: "book", Alias: "book_1"}
	join := Join{
		Left:     left,
		JoinType: InnerJoin,
		Right:    AliasedTable{TableName: "author"},
		Predicate: BinaryExpression{
			Left:     ColumnReference{TableAlias: "book_1", ColumnName: "author_id"},
			Operator: OpEq,
			Right:    ColumnReference{TableAlias: "author", ColumnName: "id"},
		},
	}
	where := SimplePredicate{Expr: BinaryExpression{
		Left:     ColumnReference{TableAlias: "author", ColumnName: "id"},
		Operator: OpIn,
		RightSeq: []Expression{Constant{Value: 1}, Constant{Value: 2}},
	}}

	stmt := SelectStatement{
		TargetList:  []Expression{ColumnReference{TableAlias: "book_1", ColumnName: "title"}},
		FromClause:  join,
		WhereClause: where,
	}

	want := `SELECT "book_1"."title" FROM "book" AS "book_1" INNER JOIN "author" ON "book_1"."author_id" = "author"."id" WHERE "author"."id" IN (1, 2);`
	assert.Equal(t, want, stmt.String())
}

func TestCompoundPredicateArityInvariant(t *testing.T) {
	single := SimplePredicate{Expr: Constant{Value: true}}

	_, err := NewCompoundPredicate(CompoundNot, []WhereClause{single, single})
	assert.Error(t, err)

	_, err = NewCompoundPredicate(CompoundAnd, []WhereClause{single})
	assert.Error(t, err)

	not, err := NewCompoundPredicate(CompoundNot, []WhereClause{single})
	require.NoError(t, err)
	assert.Equal(t, "NOT (TRUE)", not.sqlString())

	and, err := NewCompoundPredicate(CompoundAnd, []WhereClause{single, single})
	require.NoError(t, err)
	assert.Equal(t, "(TRUE) AND (TRUE)", and.sqlString())
}

func TestStringLiteralEscaping(t *testing.T) {
	c := Constant{Value: "o'brien"}
	assert.Equal(t, `'o''brien'`, c.sqlString())
}
