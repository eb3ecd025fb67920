package ast

import (
	"sort"

	"defio/internal/core"
	"defio/internal/sqlast"
)

// GenFromClause is the generator-side mirror of sqlast.FromClause: it
// carries UniqueTable references instead of resolved alias strings, and
// exposes the set of tables participating in the plan so the sampler
// can keep extending it.
type GenFromClause interface {
	// UniqueTables returns every UniqueTable reachable from this node.
	UniqueTables() []*UniqueTable
	// ToSQL resolves aliases (as computed by GenerateTableAliases over
	// the full plan) and returns the plain sqlast.FromClause.
	ToSQL(aliases map[*UniqueTable]string) sqlast.FromClause
}

// GenAliasedTable names one occurrence of a table within a plan.
type GenAliasedTable struct {
	Table *UniqueTable
}

func (g GenAliasedTable) UniqueTables() []*UniqueTable { return []*UniqueTable{g.Table} }

func (g GenAliasedTable) ToSQL(aliases map[*UniqueTable]string) sqlast.FromClause {
	return sqlast.AliasedTable{TableName: g.Table.Name(), Alias: aliases[g.Table]}
}

// GenJoin is a binary from-clause node: Left is always the prior plan,
// Right is always a fresh GenAliasedTable (left-deep only, per spec §3).
type GenJoin struct {
	Left      GenFromClause
	JoinType  sqlast.JoinType
	Right     GenAliasedTable
	Predicate GenExpression // nil for cross join
}

func (g GenJoin) UniqueTables() []*UniqueTable {
	return append(g.Left.UniqueTables(), g.Right.Table)
}

func (g GenJoin) ToSQL(aliases map[*UniqueTable]string) sqlast.FromClause {
	var predicate sqlast.Expression
	if g.Predicate != nil {
		predicate = g.Predicate.ToSQL(aliases)
	}
	right, ok := g.Right.ToSQL(aliases).(sqlast.AliasedTable)
	if !ok {
		panic("ast: GenJoin.Right must resolve to an AliasedTable")
	}
	return sqlast.Join{
		Left:      g.Left.ToSQL(aliases),
		JoinType:  g.JoinType,
		Right:     right,
		Predicate: predicate,
	}
}

// JoinEdge is a candidate join edge from a table already in the plan
// (FromTable) to a target table by reference (ToTableRef). The sampler
// decides, by checking whether ToTableRef's name is already present
// among joined table names, whether following this edge extends the
// plan with a new table or produces a self-join.
type JoinEdge struct {
	FromTable  *UniqueTable
	FromColumn core.Column
	ToTableRef *core.Table
	ToColumn   core.Column
}

// sortKeyString is the "t.c" lexicographic key spec §4.3 mandates for
// both endpoints of an edge and across edges.
func (e JoinEdge) sortKeyString() (string, string) {
	from := e.FromTable.Name() + "." + e.FromColumn.Name
	to := e.ToTableRef.Name + "." + e.ToColumn.Name
	if from < to {
		return from, to
	}
	return to, from
}

// SortJoinEdges returns a new slice of edges deterministically ordered:
// each edge is first normalized to its lexicographically-smaller-first
// endpoint pair, then edges are sorted by that pair.
func SortJoinEdges(edges []JoinEdge) []JoinEdge {
	out := append([]JoinEdge(nil), edges...)
	sort.Slice(out, func(i, j int) bool {
		ai, bi := out[i].sortKeyString()
		aj, bj := out[j].sortKeyString()
		if ai != aj {
			return ai < aj
		}
		return bi < bj
	})
	return out
}
