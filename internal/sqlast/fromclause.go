package sqlast

import "fmt"

// FromClause is AliasedTable | Join. The generator only ever produces
// left-deep joins whose right child is an AliasedTable (spec §3).
type FromClause interface {
	sqlString() string
}

// AliasedTable names one occurrence of a table, with an optional alias
// used to disambiguate self-joins.
type AliasedTable struct {
	TableName string
	Alias     string // empty means "no alias, use TableName directly"
}

func (t AliasedTable) sqlString() string {
	if t.Alias == "" || t.Alias == t.TableName {
		return quoteIdentifier(t.TableName)
	}
	return fmt.Sprintf("%s AS %s", quoteIdentifier(t.TableName), quoteIdentifier(t.Alias))
}

// Join is a binary from-clause node. Predicate is nil for CrossJoin;
// every other join type carries a binary-equality predicate per §4.3.
type Join struct {
	Left      FromClause
	JoinType  JoinType
	Right     AliasedTable
	Predicate Expression // nil for CrossJoin
}

func (j Join) sqlString() string {
	if j.Predicate == nil {
		return fmt.Sprintf("%s %s %s", j.Left.sqlString(), j.JoinType, j.Right.sqlString())
	}
	return fmt.Sprintf("%s %s %s ON %s", j.Left.sqlString(), j.JoinType, j.Right.sqlString(), j.Predicate.sqlString())
}
