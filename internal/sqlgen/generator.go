// Package sqlgen composes the join, predicate, and aggregate samplers
// into a lazy, restartable generator of random SQL query strings.
package sqlgen

import (
	"defio/internal/core"
	"defio/internal/lazyseq"
	"defio/internal/rng"
	"defio/internal/sqlgen/ast"
	"defio/internal/sqlgen/sampler"
	"defio/internal/stats"
)

// RandomSqlGenerator is a lazy, restartable source of SELECT statements
// over a schema, sampled via random walks over the join graph combined
// with predicate and aggregate sampling (spec §4.6). Two iterations of
// the same generator always yield the same sequence of statements,
// since each All() call reconstructs the three samplers from the same
// Seed.
type RandomSqlGenerator struct {
	Schema          *core.Schema
	Stats           *stats.DataStats
	JoinConfig      sampler.JoinSamplerConfig
	PredicateConfig sampler.PredicateSamplerConfig
	AggregateConfig sampler.AggregateSamplerConfig
	NumQueries      int
	Seed            int64
}

// NewRandomSqlGenerator returns a generator with an entropy-sourced seed,
// for callers that don't need reproducibility across process restarts.
func NewRandomSqlGenerator(schema *core.Schema, dataStats *stats.DataStats, joinConfig sampler.JoinSamplerConfig, predicateConfig sampler.PredicateSamplerConfig, aggregateConfig sampler.AggregateSamplerConfig, numQueries int) *RandomSqlGenerator {
	return &RandomSqlGenerator{
		Schema:          schema,
		Stats:           dataStats,
		JoinConfig:      joinConfig,
		PredicateConfig: predicateConfig,
		AggregateConfig: aggregateConfig,
		NumQueries:      numQueries,
		Seed:            rng.CreateEntropy(),
	}
}

// All implements lazyseq.Seq[string]. Each call constructs fresh samplers
// seeded from g.Seed, so repeated iteration is deterministic and does not
// mutate the generator.
func (g *RandomSqlGenerator) All() func(yield func(string) bool) {
	return func(yield func(string) bool) {
		joinSampler, err := sampler.NewJoinSampler(g.Schema, g.JoinConfig, g.Seed)
		if err != nil {
			return
		}
		predicateSampler, err := sampler.NewPredicateSampler(g.Schema, g.Stats, g.PredicateConfig, g.Seed)
		if err != nil {
			return
		}
		aggregateSampler, err := sampler.NewAggregateSampler(g.Schema, g.AggregateConfig, g.Seed)
		if err != nil {
			return
		}

		for i := 0; i < g.NumQueries; i++ {
			joins := joinSampler.SampleJoins()
			predicates := predicateSampler.SamplePredicates(joins)
			aggregates := aggregateSampler.SampleAggregates(joins)

			statement := ast.GenSelectStatement{
				TargetList:  aggregates,
				FromClause:  joins,
				WhereClause: predicates,
			}

			if !yield(statement.String()) {
				return
			}
		}
	}
}

var _ lazyseq.Seq[string] = (*RandomSqlGenerator)(nil)
