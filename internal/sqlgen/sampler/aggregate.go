package sampler

import (
	"fmt"

	"defio/internal/core"
	"defio/internal/rng"
	"defio/internal/sqlast"
	"defio/internal/sqlgen/ast"
)

// AggregateSamplerConfig configures an AggregateSampler.
type AggregateSamplerConfig struct {
	MaxNumAggregates int
	// PCountStar returns a bare COUNT(*) target list with this probability.
	PCountStar float64
	// PCountDistinct marks a sampled COUNT aggregate DISTINCT with this probability.
	PCountDistinct float64
}

// Validate checks the configuration-error taxonomy spec §7 assigns to constructors.
func (c AggregateSamplerConfig) Validate() error {
	if c.MaxNumAggregates < 1 {
		return fmt.Errorf("sampler: MaxNumAggregates must be >= 1, got %d", c.MaxNumAggregates)
	}
	if c.PCountStar < 0 || c.PCountStar > 1 {
		return fmt.Errorf("sampler: PCountStar must be in [0, 1], got %f", c.PCountStar)
	}
	if c.PCountDistinct < 0 || c.PCountDistinct > 1 {
		return fmt.Errorf("sampler: PCountDistinct must be in [0, 1], got %f", c.PCountDistinct)
	}
	return nil
}

// DefaultAggregateSamplerConfig mirrors the reference defaults.
func DefaultAggregateSamplerConfig(maxNumAggregates int) AggregateSamplerConfig {
	return AggregateSamplerConfig{
		MaxNumAggregates: maxNumAggregates,
		PCountStar:       0.1,
		PCountDistinct:   0.5,
	}
}

// AggregateSampler samples SQL target-list aggregates, restricting STRING,
// BOOLEAN, and key columns to COUNT (spec §4.5).
type AggregateSampler struct {
	schema *core.Schema
	config AggregateSamplerConfig
	rnd    *rng.Randomizer
}

// NewAggregateSampler validates config and returns a seeded AggregateSampler.
func NewAggregateSampler(schema *core.Schema, config AggregateSamplerConfig, seed int64) (*AggregateSampler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &AggregateSampler{schema: schema, config: config, rnd: rng.New(seed)}, nil
}

// SampleAggregates samples a non-empty target list of aggregates over the
// tables participating in joins, per spec §4.5.
func (s *AggregateSampler) SampleAggregates(joins ast.GenFromClause) []ast.GenExpression {
	if s.rnd.Flip(s.config.PCountStar) {
		return []ast.GenExpression{ast.GenFunctionCall{FuncName: sqlast.FuncCount, AggStar: true}}
	}

	uniqueTables := ast.SortUniqueTables(joins.UniqueTables())

	var columnRefs []ast.GenColumnReference
	for _, ut := range uniqueTables {
		for _, col := range ut.Columns() {
			columnRefs = append(columnRefs, ast.GenColumnReference{Table: ut, Column: col})
		}
	}

	numAggregates := s.rnd.RandInt(1, min(len(columnRefs), s.config.MaxNumAggregates), true)
	sampledRefs := rng.Choose(s.rnd, columnRefs, numAggregates)

	targets := make([]ast.GenExpression, len(sampledRefs))
	for i, ref := range sampledRefs {
		targets[i] = s.sampleAggregate(ref)
	}
	return targets
}

func (s *AggregateSampler) sampleAggregate(ref ast.GenColumnReference) ast.GenFunctionCall {
	restricted := ref.Column.DataType == core.String || ref.Column.DataType == core.Boolean ||
		ref.Column.Constraint.IsPrimaryKey || ref.Column.Constraint.IsForeignKey

	var allowed []sqlast.FunctionName
	if restricted {
		allowed = []sqlast.FunctionName{sqlast.FuncCount}
	} else {
		allowed = sqlast.AllFunctionNames
	}

	funcName := rng.ChooseOne(s.rnd, allowed)

	if funcName == sqlast.FuncCount {
		return ast.GenFunctionCall{
			FuncName:    sqlast.FuncCount,
			AggDistinct: s.rnd.Flip(s.config.PCountDistinct),
			Args:        []ast.GenExpression{ref},
		}
	}

	return ast.GenFunctionCall{FuncName: funcName, Args: []ast.GenExpression{ref}}
}
