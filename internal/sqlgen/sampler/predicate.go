package sampler

import (
	"fmt"
	"math"

	"defio/internal/core"
	"defio/internal/rng"
	"defio/internal/sqlast"
	"defio/internal/sqlgen/ast"
	"defio/internal/stats"
)

// PredicateSamplerConfig configures a PredicateSampler.
type PredicateSamplerConfig struct {
	MaxNumPredicates int
	// PDropPointQuery drops a Key-column equality predicate with this
	// probability, so generated point queries aren't overrepresented.
	PDropPointQuery float64
	// PNot inverts a sampled predicate with this probability.
	PNot float64
}

// Validate checks the configuration-error taxonomy spec §7 assigns to
// constructors.
func (c PredicateSamplerConfig) Validate() error {
	if c.MaxNumPredicates < 0 {
		return fmt.Errorf("sampler: MaxNumPredicates must be >= 0, got %d", c.MaxNumPredicates)
	}
	if c.PDropPointQuery < 0 || c.PDropPointQuery > 1 {
		return fmt.Errorf("sampler: PDropPointQuery must be in [0, 1], got %f", c.PDropPointQuery)
	}
	if c.PNot < 0 || c.PNot > 1 {
		return fmt.Errorf("sampler: PNot must be in [0, 1], got %f", c.PNot)
	}
	return nil
}

// DefaultPredicateSamplerConfig mirrors the reference defaults.
func DefaultPredicateSamplerConfig(maxNumPredicates int) PredicateSamplerConfig {
	return PredicateSamplerConfig{
		MaxNumPredicates: maxNumPredicates,
		PDropPointQuery:  0.9,
		PNot:             0.05,
	}
}

// PredicateSampler samples filter predicates based on column statistics,
// weighting column choice so wide tables don't dominate the WHERE clause.
type PredicateSampler struct {
	schema *core.Schema
	stats  *stats.DataStats
	config PredicateSamplerConfig
	rnd    *rng.Randomizer
}

// NewPredicateSampler validates config and returns a seeded PredicateSampler.
func NewPredicateSampler(schema *core.Schema, dataStats *stats.DataStats, config PredicateSamplerConfig, seed int64) (*PredicateSampler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PredicateSampler{schema: schema, stats: dataStats, config: config, rnd: rng.New(seed)}, nil
}

// SamplePredicates samples zero or more filter predicates over the tables
// participating in joins, and returns the resulting GenWhereClause (nil
// means no WHERE clause), per spec §4.4.
func (s *PredicateSampler) SamplePredicates(joins ast.GenFromClause) ast.GenWhereClause {
	uniqueTables := ast.SortUniqueTables(joins.UniqueTables())

	var columnRefs []ast.GenColumnReference
	var weights []float64
	for _, ut := range uniqueTables {
		n := len(ut.Columns())
		if n == 0 {
			continue
		}
		w := 1.0 / float64(n)
		for _, col := range ut.Columns() {
			columnRefs = append(columnRefs, ast.GenColumnReference{Table: ut, Column: col})
			weights = append(weights, w)
		}
	}

	if len(columnRefs) == 0 {
		return nil
	}

	numPredicates := s.rnd.RandInt(0, min(len(columnRefs), s.config.MaxNumPredicates), true)
	if numPredicates == 0 {
		return nil
	}

	sampledRefs := rng.ChooseWeighted(s.rnd, columnRefs, weights, numPredicates)

	var predicates []ast.GenWhereClause
	for _, ref := range sampledRefs {
		predicate := s.samplePredicate(ref)
		if predicate == nil {
			continue
		}
		if s.rnd.Flip(s.config.PNot) {
			predicate = negate(predicate)
		}
		predicates = append(predicates, predicate)
	}

	if len(predicates) == 0 {
		return nil
	}
	if len(predicates) == 1 {
		return predicates[0]
	}

	return andAll(predicates)
}

func andAll(predicates []ast.GenWhereClause) ast.GenWhereClause {
	return ast.GenCompoundPredicate{Op: sqlast.CompoundAnd, Children: predicates}
}

func negate(predicate ast.GenWhereClause) ast.GenWhereClause {
	return ast.GenCompoundPredicate{Op: sqlast.CompoundNot, Children: []ast.GenWhereClause{predicate}}
}

// samplePredicate dispatches on data type, then on the column's inferred
// statistical classification, returning nil when the stats carry nothing
// to build a predicate from.
func (s *PredicateSampler) samplePredicate(ref ast.GenColumnReference) ast.GenWhereClause {
	columnStats, err := s.lookupStats(ref)
	if err != nil {
		return nil
	}
	if columnStats.IsEmpty() {
		return nil
	}

	switch ref.Column.DataType {
	case core.Integer, core.Float:
		return s.sampleNumericLike(ref, columnStats)
	case core.String:
		return s.sampleStringLike(ref, columnStats)
	case core.Boolean:
		return s.sampleCategorical(ref, columnStats)
	default:
		return nil
	}
}

func (s *PredicateSampler) lookupStats(ref ast.GenColumnReference) (stats.ColumnStats, error) {
	tableStats, err := s.stats.Get(ref.Table.Name())
	if err != nil {
		return stats.ColumnStats{}, err
	}
	return tableStats.GetColumn(ref.Column)
}

func (s *PredicateSampler) sampleNumericLike(ref ast.GenColumnReference, cs stats.ColumnStats) ast.GenWhereClause {
	switch cs.Type {
	case stats.Key:
		return s.sampleKey(ref, cs)
	case stats.Categorical:
		return s.sampleCategorical(ref, cs)
	case stats.Numerical:
		return s.sampleNumerical(ref, cs)
	default:
		return nil
	}
}

func (s *PredicateSampler) sampleStringLike(ref ast.GenColumnReference, cs stats.ColumnStats) ast.GenWhereClause {
	switch cs.Type {
	case stats.Key:
		return s.sampleKey(ref, cs)
	case stats.Categorical:
		return s.sampleCategorical(ref, cs)
	case stats.RawString:
		return s.sampleRawString(ref, cs)
	default:
		return nil
	}
}

// sampleCategorical builds =, <>, or IN over the most-frequent values.
func (s *PredicateSampler) sampleCategorical(ref ast.GenColumnReference, cs stats.ColumnStats) ast.GenWhereClause {
	values := sortedKeys(cs.CategoricalFreq)
	if len(values) == 0 {
		return nil
	}

	operator := rng.ChooseOne(s.rnd, []sqlast.BinaryOperator{sqlast.OpEq, sqlast.OpNotEq, sqlast.OpIn})

	if operator == sqlast.OpIn {
		size := s.rnd.RandInt(1, len(values), true)
		chosen := rng.Choose(s.rnd, values, size)
		seq := make([]ast.GenExpression, len(chosen))
		for i, v := range chosen {
			seq[i] = ast.GenConstant{Value: v}
		}
		return ast.GenSimplePredicate{Expr: ast.GenBinaryExpression{Left: ref, Operator: sqlast.OpIn, RightSeq: seq}}
	}

	value := rng.ChooseOne(s.rnd, values)
	return ast.GenSimplePredicate{Expr: ast.GenBinaryExpression{Left: ref, Operator: operator, Right: ast.GenConstant{Value: value}}}
}

// sampleKey builds an equality point-query predicate, dropped with
// probability PDropPointQuery so point queries aren't overrepresented.
func (s *PredicateSampler) sampleKey(ref ast.GenColumnReference, cs stats.ColumnStats) ast.GenWhereClause {
	if len(cs.KeySample) == 0 {
		return nil
	}
	if s.rnd.Flip(s.config.PDropPointQuery) {
		return nil
	}
	value := rng.ChooseOne(s.rnd, cs.KeySample)
	return ast.GenSimplePredicate{Expr: ast.GenBinaryExpression{Left: ref, Operator: sqlast.OpEq, Right: ast.GenConstant{Value: value}}}
}

// sampleNumerical builds <, <=, BETWEEN, or NOT BETWEEN over the
// column's percentile distribution. Matches the reference sampler's
// operator multiset exactly: < and <= are each weighted twice, and
// neither > nor >= is ever drawn.
func (s *PredicateSampler) sampleNumerical(ref ast.GenColumnReference, cs stats.ColumnStats) ast.GenWhereClause {
	if math.IsNaN(cs.Mean) {
		return nil
	}

	operator := rng.ChooseOne(s.rnd, []sqlast.BinaryOperator{
		sqlast.OpLess, sqlast.OpLessEq, sqlast.OpLess, sqlast.OpLessEq,
		sqlast.OpBetween, sqlast.OpNotBetween,
	})

	if operator == sqlast.OpBetween || operator == sqlast.OpNotBetween {
		bounds := rng.Choose(s.rnd, cs.Percentiles, 2)
		seq := make([]ast.GenExpression, len(bounds))
		for i, b := range bounds {
			seq[i] = ast.GenConstant{Value: b}
		}
		return ast.GenSimplePredicate{Expr: ast.GenBinaryExpression{Left: ref, Operator: operator, RightSeq: seq}}
	}

	value := rng.ChooseOne(s.rnd, cs.Percentiles)
	return ast.GenSimplePredicate{Expr: ast.GenBinaryExpression{Left: ref, Operator: operator, Right: ast.GenConstant{Value: value}}}
}

// sampleRawString builds a LIKE predicate over a frequent word.
func (s *PredicateSampler) sampleRawString(ref ast.GenColumnReference, cs stats.ColumnStats) ast.GenWhereClause {
	words := sortedKeys(cs.WordFreq)
	if len(words) == 0 {
		return nil
	}
	word := rng.ChooseOne(s.rnd, words)
	return ast.GenSimplePredicate{Expr: ast.GenBinaryExpression{Left: ref, Operator: sqlast.OpLike, Right: ast.GenConstant{Value: "%" + word + "%"}}}
}

func sortedKeys(freq map[string]int) []string {
	if len(freq) == 0 {
		return nil
	}
	out := make([]string, 0, len(freq))
	for k := range freq {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
