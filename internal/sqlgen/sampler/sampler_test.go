package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defio/internal/core"
	"defio/internal/sqlast"
	"defio/internal/sqlgen/ast"
	"defio/internal/stats"
)

func authorBookSchema(t *testing.T) *core.Schema {
	t.Helper()

	authorID, err := core.NewColumn("id", core.Integer, core.ColumnConstraint{IsPrimaryKey: true})
	require.NoError(t, err)
	authorName, err := core.NewColumn("name", core.String, core.ColumnConstraint{})
	require.NoError(t, err)

	bookID, err := core.NewColumn("id", core.Integer, core.ColumnConstraint{IsPrimaryKey: true})
	require.NoError(t, err)
	bookAuthorID, err := core.NewColumn("author_id", core.Integer, core.ColumnConstraint{IsForeignKey: true})
	require.NoError(t, err)
	bookTitle, err := core.NewColumn("title", core.String, core.ColumnConstraint{})
	require.NoError(t, err)
	bookPrice, err := core.NewColumn("price", core.Float, core.ColumnConstraint{})
	require.NoError(t, err)

	author := core.Table{Name: "author", Columns: []core.Column{authorID, authorName}}
	book := core.Table{Name: "book", Columns: []core.Column{bookID, bookAuthorID, bookTitle, bookPrice}}

	edges := []core.Edge{
		{From: core.Node{Table: "book", Column: "author_id"}, To: core.Node{Table: "author", Column: "id"}},
	}

	schema, err := core.NewSchema([]core.Table{author, book}, edges)
	require.NoError(t, err)
	return schema
}

func authorBookStats(t *testing.T, schema *core.Schema) *stats.DataStats {
	t.Helper()

	author, err := schema.GetTable("author")
	require.NoError(t, err)
	book, err := schema.GetTable("book")
	require.NoError(t, err)

	percentiles := make([]float64, 101)
	for i := range percentiles {
		percentiles[i] = float64(i)
	}
	numerical, err := stats.NewNumerical(0, 50, 0, 100, 50, percentiles)
	require.NoError(t, err)

	authorStats, err := stats.NewTableStats(author.Columns, []stats.ColumnStats{
		stats.NewKey(0, 2, []string{"1", "2"}),
		stats.NewRawString(0, 2, map[string]int{"tolkien": 1, "asimov": 1}),
	})
	require.NoError(t, err)

	bookStats, err := stats.NewTableStats(book.Columns, []stats.ColumnStats{
		stats.NewKey(0, 3, []string{"1", "2", "3"}),
		stats.NewKey(0, 2, []string{"1", "2"}),
		stats.NewCategorical(0, 2, map[string]int{"Dune": 2, "Foundation": 1}),
		numerical,
	})
	require.NoError(t, err)

	dataStats, err := stats.NewDataStats([]core.Table{*author, *book}, []*stats.TableStats{authorStats, bookStats})
	require.NoError(t, err)
	return dataStats
}

func TestJoinSamplerConfigValidateRejectsCrossJoin(t *testing.T) {
	cfg := JoinSamplerConfig{MaxNumJoins: 1, JoinTypes: []sqlast.JoinType{sqlast.CrossJoin}}
	assert.Error(t, cfg.Validate())
}

func TestJoinSamplerConfigValidateRejectsBadWeights(t *testing.T) {
	cfg := JoinSamplerConfig{
		MaxNumJoins:    1,
		JoinTypes:      []sqlast.JoinType{sqlast.InnerJoin},
		JoinTypeWeight: []float64{0.5},
	}
	assert.Error(t, cfg.Validate())
}

func TestSampleJoinsNeverExceedsMaxNumJoins(t *testing.T) {
	schema := authorBookSchema(t)
	cfg := JoinSamplerConfig{MaxNumJoins: 2, JoinTypes: []sqlast.JoinType{sqlast.InnerJoin, sqlast.LeftJoin}}

	for seed := int64(0); seed < 20; seed++ {
		s, err := NewJoinSampler(schema, cfg, seed)
		require.NoError(t, err)
		plan := s.SampleJoins()
		assert.LessOrEqual(t, len(plan.UniqueTables()), cfg.MaxNumJoins+1)
	}
}

func TestSampleJoinsIsDeterministicForSameSeed(t *testing.T) {
	schema := authorBookSchema(t)
	cfg := JoinSamplerConfig{MaxNumJoins: 2, JoinTypes: []sqlast.JoinType{sqlast.InnerJoin}}

	s1, err := NewJoinSampler(schema, cfg, 42)
	require.NoError(t, err)
	s2, err := NewJoinSampler(schema, cfg, 42)
	require.NoError(t, err)

	plan1 := s1.SampleJoins()
	plan2 := s2.SampleJoins()
	assert.Equal(t, plan1.ToSQL(nil), plan2.ToSQL(nil))
}

func TestSampleJoinsProducesSelfJoinWhenEnabled(t *testing.T) {
	bookID, _ := core.NewColumn("id", core.Integer, core.ColumnConstraint{IsPrimaryKey: true})
	sequelID, _ := core.NewColumn("sequel_id", core.Integer, core.ColumnConstraint{IsForeignKey: true})
	book := core.Table{Name: "book", Columns: []core.Column{bookID, sequelID}}
	edges := []core.Edge{
		{From: core.Node{Table: "book", Column: "sequel_id"}, To: core.Node{Table: "book", Column: "id"}},
	}
	schema, err := core.NewSchema([]core.Table{book}, edges)
	require.NoError(t, err)

	cfg := JoinSamplerConfig{MaxNumJoins: 1, JoinTypes: []sqlast.JoinType{sqlast.InnerJoin}, WithSelfJoin: true}

	found := false
	for seed := int64(0); seed < 50; seed++ {
		s, nerr := NewJoinSampler(schema, cfg, seed)
		require.NoError(t, nerr)
		plan := s.SampleJoins()
		if len(plan.UniqueTables()) == 2 {
			found = true
			break
		}
	}
	assert.True(t, found, "expected at least one seed to produce a self-join over 50 trials")
}

func TestPredicateSamplerConfigValidateRejectsNegativeMax(t *testing.T) {
	cfg := PredicateSamplerConfig{MaxNumPredicates: -1}
	assert.Error(t, cfg.Validate())
}

func TestSamplePredicatesStaysWithinConfiguredBound(t *testing.T) {
	schema := authorBookSchema(t)
	dataStats := authorBookStats(t, schema)

	joinSampler, err := NewJoinSampler(schema, JoinSamplerConfig{MaxNumJoins: 1, JoinTypes: []sqlast.JoinType{sqlast.InnerJoin}}, 7)
	require.NoError(t, err)
	joins := joinSampler.SampleJoins()

	cfg := PredicateSamplerConfig{MaxNumPredicates: 3, PDropPointQuery: 0, PNot: 0}
	sawPredicate := false
	for seed := int64(0); seed < 20; seed++ {
		predSampler, perr := NewPredicateSampler(schema, dataStats, cfg, seed)
		require.NoError(t, perr)
		where := predSampler.SamplePredicates(joins)
		if where == nil {
			continue
		}
		sawPredicate = true
		// PNot is 0, so the clause is one simple predicate or an AND of them.
		numSimple := 1
		if compound, ok := where.(ast.GenCompoundPredicate); ok {
			numSimple = len(compound.Children)
		}
		assert.LessOrEqual(t, numSimple, cfg.MaxNumPredicates)
	}
	assert.True(t, sawPredicate, "expected at least one seed to produce a predicate over 20 trials")
}

func TestSamplePredicatesReturnsNilWhenZeroSampled(t *testing.T) {
	schema := authorBookSchema(t)
	dataStats := authorBookStats(t, schema)

	joinSampler, err := NewJoinSampler(schema, JoinSamplerConfig{MaxNumJoins: 0, JoinTypes: []sqlast.JoinType{sqlast.InnerJoin}}, 1)
	require.NoError(t, err)
	joins := joinSampler.SampleJoins()

	cfg := PredicateSamplerConfig{MaxNumPredicates: 0}
	predSampler, err := NewPredicateSampler(schema, dataStats, cfg, 1)
	require.NoError(t, err)
	assert.Nil(t, predSampler.SamplePredicates(joins))
}

func TestAggregateSamplerConfigValidateRejectsZeroMax(t *testing.T) {
	cfg := AggregateSamplerConfig{MaxNumAggregates: 0}
	assert.Error(t, cfg.Validate())
}

func TestSampleAggregatesRestrictsKeyAndStringColumnsToCount(t *testing.T) {
	schema := authorBookSchema(t)
	joinSampler, err := NewJoinSampler(schema, JoinSamplerConfig{MaxNumJoins: 1, JoinTypes: []sqlast.JoinType{sqlast.InnerJoin}}, 3)
	require.NoError(t, err)
	joins := joinSampler.SampleJoins()

	cfg := AggregateSamplerConfig{MaxNumAggregates: 4, PCountStar: 0, PCountDistinct: 0}
	for seed := int64(0); seed < 30; seed++ {
		aggSampler, aerr := NewAggregateSampler(schema, cfg, seed)
		require.NoError(t, aerr)
		targets := aggSampler.SampleAggregates(joins)
		assert.NotEmpty(t, targets)
		assert.LessOrEqual(t, len(targets), cfg.MaxNumAggregates)
		for _, target := range targets {
			call, ok := target.(ast.GenFunctionCall)
			require.True(t, ok)
			ref, ok := call.Args[0].(ast.GenColumnReference)
			require.True(t, ok)
			col := ref.Column
			if col.DataType == core.String || col.Constraint.IsPrimaryKey || col.Constraint.IsForeignKey {
				assert.Equal(t, sqlast.FuncCount, call.FuncName)
			}
		}
	}
}

func TestSampleAggregatesReturnsCountStarWithProbabilityOne(t *testing.T) {
	schema := authorBookSchema(t)
	joinSampler, err := NewJoinSampler(schema, JoinSamplerConfig{MaxNumJoins: 0, JoinTypes: []sqlast.JoinType{sqlast.InnerJoin}}, 1)
	require.NoError(t, err)
	joins := joinSampler.SampleJoins()

	cfg := AggregateSamplerConfig{MaxNumAggregates: 1, PCountStar: 1}
	aggSampler, err := NewAggregateSampler(schema, cfg, 1)
	require.NoError(t, err)

	targets := aggSampler.SampleAggregates(joins)
	require.Len(t, targets, 1)
	call, ok := targets[0].(ast.GenFunctionCall)
	require.True(t, ok)
	assert.True(t, call.AggStar)
	assert.Equal(t, sqlast.FuncCount, call.FuncName)
}
