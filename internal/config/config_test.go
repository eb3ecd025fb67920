package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defio/internal/workload"
)

const sampleSamplerTOML = `
num_queries = 100
seed = 42

[join]
max_num_joins = 3
join_types = ["INNER JOIN", "LEFT JOIN"]
with_self_join = true

[predicate]
max_num_predicates = 5
p_drop_point_query = 0.9
p_not = 0.05

[aggregate]
max_num_aggregates = 2
p_count_star = 0.1
p_count_distinct = 0.5
`

func TestLoadSamplerConfigDecodesAllTables(t *testing.T) {
	c, err := LoadSamplerConfig(strings.NewReader(sampleSamplerTOML))
	require.NoError(t, err)

	assert.Equal(t, 100, c.NumQueries)
	require.NotNil(t, c.Seed)
	assert.Equal(t, int64(42), *c.Seed)
	assert.Equal(t, 3, c.Join.MaxNumJoins)
	assert.Equal(t, []string{"INNER JOIN", "LEFT JOIN"}, c.Join.JoinTypes)
	assert.True(t, c.Join.WithSelfJoin)
	assert.Equal(t, 0.9, c.Predicate.PDropPointQuery)
	assert.Equal(t, 0.1, c.Aggregate.PCountStar)
}

func TestJoinConfigResolveRejectsCrossJoin(t *testing.T) {
	c := JoinConfig{MaxNumJoins: 1, JoinTypes: []string{"CROSS JOIN"}}
	_, err := c.Resolve()
	assert.Error(t, err)
}

func TestJoinConfigResolveProducesValidSamplerConfig(t *testing.T) {
	c := JoinConfig{MaxNumJoins: 2, JoinTypes: []string{"INNER JOIN"}}
	resolved, err := c.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 2, resolved.MaxNumJoins)
}

func TestPredicateConfigResolveRejectsOutOfRangeProbability(t *testing.T) {
	c := PredicateConfig{MaxNumPredicates: 1, PNot: 1.5}
	_, err := c.Resolve()
	assert.Error(t, err)
}

func TestAggregateConfigResolveRejectsZeroMax(t *testing.T) {
	c := AggregateConfig{MaxNumAggregates: 0}
	_, err := c.Resolve()
	assert.Error(t, err)
}

func TestScheduleConfigResolveDefaultsToOnceNow(t *testing.T) {
	sched, err := ScheduleConfig{}.Resolve()
	require.NoError(t, err)
	once, ok := sched.(workload.Once)
	require.True(t, ok)
	assert.LessOrEqual(t, once.TimeUntilNext(), time.Duration(0))
}

func TestScheduleConfigResolveRepeatWithCount(t *testing.T) {
	sched, err := ScheduleConfig{Kind: "repeat", Interval: "10ms", Count: 5}.Resolve()
	require.NoError(t, err)
	repeat, ok := sched.(workload.Repeat)
	require.True(t, ok)
	assert.Equal(t, 10*time.Millisecond, repeat.Interval)
}

func TestScheduleConfigResolveRepeatWithoutBoundFails(t *testing.T) {
	_, err := ScheduleConfig{Kind: "repeat", Interval: "10ms"}.Resolve()
	assert.Error(t, err)
}

func TestScheduleConfigResolveRejectsUnknownKind(t *testing.T) {
	_, err := ScheduleConfig{Kind: "sometimes"}.Resolve()
	assert.Error(t, err)
}

const sampleRunTOML = `
[client]
driver = "postgres"
dsn = "postgres://localhost:5432/defio"

[workload]
num_users = 4
num_queries = 50

[workload.schedule]
kind = "repeat"
interval = "5ms"
count = 20

[report]
dir = "/tmp/defio-reports"
`

func TestLoadRunConfigDecodesNestedTables(t *testing.T) {
	c, err := LoadRunConfig(strings.NewReader(sampleRunTOML))
	require.NoError(t, err)

	assert.Equal(t, "postgres", c.Client.Driver)
	assert.Equal(t, 4, c.Workload.NumUsers)
	assert.Equal(t, "repeat", c.Workload.Schedule.Kind)
	assert.Equal(t, 20, c.Workload.Schedule.Count)
	assert.Equal(t, "/tmp/defio-reports", c.Report.Dir)
}
