package sqlgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defio/internal/core"
	"defio/internal/sqlast"
	"defio/internal/sqlgen/sampler"
	"defio/internal/stats"
)

func authorBookFixture(t *testing.T) (*core.Schema, *stats.DataStats) {
	t.Helper()

	authorID, err := core.NewColumn("id", core.Integer, core.ColumnConstraint{IsPrimaryKey: true})
	require.NoError(t, err)
	authorName, err := core.NewColumn("name", core.String, core.ColumnConstraint{})
	require.NoError(t, err)
	bookID, err := core.NewColumn("id", core.Integer, core.ColumnConstraint{IsPrimaryKey: true})
	require.NoError(t, err)
	bookAuthorID, err := core.NewColumn("author_id", core.Integer, core.ColumnConstraint{IsForeignKey: true})
	require.NoError(t, err)

	author := core.Table{Name: "author", Columns: []core.Column{authorID, authorName}}
	book := core.Table{Name: "book", Columns: []core.Column{bookID, bookAuthorID}}

	edges := []core.Edge{
		{From: core.Node{Table: "book", Column: "author_id"}, To: core.Node{Table: "author", Column: "id"}},
	}
	schema, err := core.NewSchema([]core.Table{author, book}, edges)
	require.NoError(t, err)

	authorStats, err := stats.NewTableStats(author.Columns, []stats.ColumnStats{
		stats.NewKey(0, 2, []string{"1", "2"}),
		stats.NewCategorical(0, 2, map[string]int{"Asimov": 1, "Tolkien": 1}),
	})
	require.NoError(t, err)
	bookStats, err := stats.NewTableStats(book.Columns, []stats.ColumnStats{
		stats.NewKey(0, 2, []string{"1", "2"}),
		stats.NewKey(0, 2, []string{"1", "2"}),
	})
	require.NoError(t, err)

	dataStats, err := stats.NewDataStats([]core.Table{author, book}, []*stats.TableStats{authorStats, bookStats})
	require.NoError(t, err)

	return schema, dataStats
}

func TestRandomSqlGeneratorProducesNumQueriesSelectStatements(t *testing.T) {
	schema, dataStats := authorBookFixture(t)

	g := &RandomSqlGenerator{
		Schema:          schema,
		Stats:           dataStats,
		JoinConfig:      sampler.JoinSamplerConfig{MaxNumJoins: 1, JoinTypes: []sqlast.JoinType{sqlast.InnerJoin}},
		PredicateConfig: sampler.DefaultPredicateSamplerConfig(2),
		AggregateConfig: sampler.DefaultAggregateSamplerConfig(2),
		NumQueries:      5,
		Seed:            7,
	}

	var queries []string
	g.All()(func(q string) bool {
		queries = append(queries, q)
		return true
	})

	require.Len(t, queries, 5)
	for _, q := range queries {
		assert.True(t, strings.HasPrefix(q, "SELECT "))
		assert.True(t, strings.HasSuffix(q, ";"))
	}
}

func TestRandomSqlGeneratorIsRestartableAndDeterministic(t *testing.T) {
	schema, dataStats := authorBookFixture(t)

	g := &RandomSqlGenerator{
		Schema:          schema,
		Stats:           dataStats,
		JoinConfig:      sampler.JoinSamplerConfig{MaxNumJoins: 1, JoinTypes: []sqlast.JoinType{sqlast.InnerJoin}},
		PredicateConfig: sampler.DefaultPredicateSamplerConfig(2),
		AggregateConfig: sampler.DefaultAggregateSamplerConfig(2),
		NumQueries:      3,
		Seed:            99,
	}

	var first, second []string
	g.All()(func(q string) bool { first = append(first, q); return true })
	g.All()(func(q string) bool { second = append(second, q); return true })

	assert.Equal(t, first, second)
}

func TestRandomSqlGeneratorStopsEarlyWhenYieldReturnsFalse(t *testing.T) {
	schema, dataStats := authorBookFixture(t)

	g := &RandomSqlGenerator{
		Schema:          schema,
		Stats:           dataStats,
		JoinConfig:      sampler.JoinSamplerConfig{MaxNumJoins: 0, JoinTypes: []sqlast.JoinType{sqlast.InnerJoin}},
		PredicateConfig: sampler.DefaultPredicateSamplerConfig(1),
		AggregateConfig: sampler.DefaultAggregateSamplerConfig(1),
		NumQueries:      10,
		Seed:            3,
	}

	count := 0
	g.All()(func(string) bool {
		count++
		return count < 2
	})

	assert.Equal(t, 2, count)
}
