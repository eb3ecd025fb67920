// Package sampler holds the three seedable sampling components that
// build a query plan: join (grows an equijoin plan by random walk over
// the relationship graph), predicate (chooses filter predicates), and
// aggregate (chooses target-list aggregates).
package sampler

import (
	"fmt"

	"defio/internal/core"
	"defio/internal/rng"
	"defio/internal/sqlast"
	"defio/internal/sqlgen/ast"
)

// JoinSamplerConfig configures a JoinSampler.
type JoinSamplerConfig struct {
	MaxNumJoins    int
	JoinTypes      []sqlast.JoinType
	JoinTypeWeight []float64 // nil means uniform; else must sum to 1 and match len(JoinTypes)
	WithSelfJoin   bool
}

// Validate checks the configuration-error taxonomy spec §7 assigns to
// constructors: invalid probabilities, mismatched weight lengths, empty
// join-types, non-positive ranges.
func (c JoinSamplerConfig) Validate() error {
	if c.MaxNumJoins < 0 {
		return fmt.Errorf("sampler: MaxNumJoins must be >= 0, got %d", c.MaxNumJoins)
	}
	if len(c.JoinTypes) == 0 {
		return fmt.Errorf("sampler: JoinTypes must be non-empty")
	}
	for _, jt := range c.JoinTypes {
		if jt == sqlast.CrossJoin {
			return fmt.Errorf("sampler: JoinTypes must exclude CrossJoin")
		}
	}
	if c.JoinTypeWeight != nil {
		if len(c.JoinTypeWeight) != len(c.JoinTypes) {
			return fmt.Errorf("sampler: JoinTypeWeight length %d does not match JoinTypes length %d", len(c.JoinTypeWeight), len(c.JoinTypes))
		}
		sum := 0.0
		for _, w := range c.JoinTypeWeight {
			sum += w
		}
		if sum < 0.999 || sum > 1.001 {
			return fmt.Errorf("sampler: JoinTypeWeight must sum to 1, got %f", sum)
		}
	}
	return nil
}

// JoinSampler grows an equijoin plan by random walk over a schema's
// relationship graph. Seedable: two JoinSamplers built from the same
// seed produce the same sequence of plans.
type JoinSampler struct {
	schema *core.Schema
	config JoinSamplerConfig
	rnd    *rng.Randomizer
}

// NewJoinSampler validates config and returns a seeded JoinSampler.
func NewJoinSampler(schema *core.Schema, config JoinSamplerConfig, seed int64) (*JoinSampler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &JoinSampler{schema: schema, config: config, rnd: rng.New(seed)}, nil
}

// SampleJoins runs the random-walk algorithm of spec §4.3 and returns
// the resulting GenFromClause plan.
func (s *JoinSampler) SampleJoins() ast.GenFromClause {
	startTable := rng.ChooseOne(s.rnd, s.schema.Tables)
	startUnique := ast.NewUniqueTable(&startTable)
	plan := ast.GenFromClause(ast.GenAliasedTable{Table: startUnique})

	// joinedNames tracks which table names already have at least one
	// occurrence in the plan. Since edgesFrom is only ever called on a
	// table already in the plan, FromTable is always "already joined";
	// the only open question per candidate edge is whether ToTableRef's
	// name is a genuinely new table (extend) or a name already present
	// in the plan (self-join candidate, per spec §4.3c).
	joinedNames := map[string]bool{startUnique.Name(): true}
	candidates := s.edgesFrom(startUnique)

	numJoins := s.rnd.RandInt(0, s.config.MaxNumJoins, true)
	for i := 0; i < numJoins; i++ {
		if len(candidates) == 0 {
			break
		}

		sorted := ast.SortJoinEdges(candidates)
		idx := s.rnd.RandInt(0, len(sorted), false)
		chosen := sorted[idx]
		candidates = removeEdge(candidates, chosen)

		isSelfJoin := joinedNames[chosen.ToTableRef.Name]
		if isSelfJoin && !s.config.WithSelfJoin {
			// Consume the decision without extending the plan, so the
			// random walk still converges (spec §4.3c).
			continue
		}

		newTable := ast.NewUniqueTable(chosen.ToTableRef)
		plan = s.extendPlan(plan, chosen, newTable)
		joinedNames[chosen.ToTableRef.Name] = true
		candidates = append(candidates, s.edgesFrom(newTable)...)
	}

	return plan
}

func (s *JoinSampler) extendPlan(plan ast.GenFromClause, edge ast.JoinEdge, newTable *ast.UniqueTable) ast.GenFromClause {
	joinType := s.sampleJoinType()
	column, err := newTable.Table().GetColumn(edge.ToColumn.Name)
	if err != nil {
		column = edge.ToColumn
	}
	predicate := ast.GenExpression(ast.GenBinaryExpression{
		Left:     ast.GenColumnReference{Table: edge.FromTable, Column: edge.FromColumn},
		Operator: sqlast.OpEq,
		Right:    ast.GenColumnReference{Table: newTable, Column: column},
	})
	return ast.GenJoin{
		Left:      plan,
		JoinType:  joinType,
		Right:     ast.GenAliasedTable{Table: newTable},
		Predicate: predicate,
	}
}

func (s *JoinSampler) sampleJoinType() sqlast.JoinType {
	if s.config.JoinTypeWeight == nil {
		return rng.ChooseOne(s.rnd, s.config.JoinTypes)
	}
	return rng.ChooseWeighted(s.rnd, s.config.JoinTypes, s.config.JoinTypeWeight, 1)[0]
}

// edgesFrom returns every candidate join edge reachable from the given
// already-joined table, per the schema's relationship graph.
func (s *JoinSampler) edgesFrom(table *ast.UniqueTable) []ast.JoinEdge {
	var out []ast.JoinEdge
	for _, col := range table.Columns() {
		for _, node := range s.schema.Graph.PossibleJoins(table.Name(), col.Name) {
			toTable, err := s.schema.GetTable(node.Table)
			if err != nil {
				continue
			}
			toColumn, err := toTable.GetColumn(node.Column)
			if err != nil {
				continue
			}
			out = append(out, ast.JoinEdge{
				FromTable:  table,
				FromColumn: col,
				ToTableRef: toTable,
				ToColumn:   toColumn,
			})
		}
	}
	return out
}

func removeEdge(edges []ast.JoinEdge, target ast.JoinEdge) []ast.JoinEdge {
	out := make([]ast.JoinEdge, 0, len(edges))
	removed := false
	for _, e := range edges {
		if !removed && sameEdge(e, target) {
			removed = true
			continue
		}
		out = append(out, e)
	}
	return out
}

func sameEdge(a, b ast.JoinEdge) bool {
	return a.FromTable == b.FromTable && a.FromColumn == b.FromColumn &&
		a.ToTableRef == b.ToTableRef && a.ToColumn == b.ToColumn
}
