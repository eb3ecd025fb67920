package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defio/internal/lazyseq"
)

func collect(t *testing.T, q QuerySource) []Query {
	t.Helper()
	var out []Query
	q.All()(func(query Query) bool { out = append(out, query); return true })
	return out
}

func TestSerialRelabelsAnonymousUser(t *testing.T) {
	queries := lazyseq.SliceSeq[Query]{Items: []Query{{SQL: "SELECT 1"}}}
	w := Serial(queries, nil)

	units := w.All()
	require.Len(t, units, 1)
	assert.True(t, units[0].User.IsLabeled())
	assert.Equal(t, 0, units[0].User.Label)
}

func TestConcurrentAssignsDistinctLabels(t *testing.T) {
	a := lazyseq.SliceSeq[Query]{Items: []Query{{SQL: "SELECT 1"}}}
	b := lazyseq.SliceSeq[Query]{Items: []Query{{SQL: "SELECT 2"}}}

	w := Concurrent(map[User]QuerySource{
		NewAnonymousUser(): a,
		NewAnonymousUser(): b,
	})

	units := w.All()
	require.Len(t, units, 2)
	assert.NotEqual(t, units[0].User.Label, units[1].User.Label)
}

func TestConcurrentSliceCreatesOneAnonymousUserPerSource(t *testing.T) {
	a := lazyseq.SliceSeq[Query]{Items: []Query{{SQL: "SELECT 1"}}}
	b := lazyseq.SliceSeq[Query]{Items: []Query{{SQL: "SELECT 2"}}}
	c := lazyseq.SliceSeq[Query]{Items: []Query{{SQL: "SELECT 3"}}}

	w := ConcurrentSlice([]QuerySource{a, b, c})

	units := w.All()
	require.Len(t, units, 3)

	labels := map[int]bool{}
	for _, u := range units {
		assert.True(t, u.User.IsLabeled())
		labels[u.User.Label] = true
	}
	assert.Len(t, labels, 3)
}

func TestCombineChainsSameUserQueries(t *testing.T) {
	user := NewUser(0)
	first := Serial(lazyseq.SliceSeq[Query]{Items: []Query{{SQL: "SELECT 1"}}}, &user)
	second := Serial(lazyseq.SliceSeq[Query]{Items: []Query{{SQL: "SELECT 2"}}}, &user)

	combined := Combine([]Workload{first, second})
	units := combined.All()
	require.Len(t, units, 1)

	queries := collect(t, units[0].Queries)
	require.Len(t, queries, 2)
	assert.Equal(t, "SELECT 1", queries[0].SQL)
	assert.Equal(t, "SELECT 2", queries[1].SQL)
}

func TestCombinePreservesLabeledUsersAndRelabelsUnlabeled(t *testing.T) {
	labeled := NewUser(5)
	w1 := Serial(lazyseq.SliceSeq[Query]{Items: []Query{{SQL: "SELECT 1"}}}, &labeled)
	w2 := Serial(lazyseq.SliceSeq[Query]{Items: []Query{{SQL: "SELECT 2"}}}, nil)

	combined := Combine([]Workload{w1, w2})
	units := combined.All()
	require.Len(t, units, 2)

	labels := map[int]bool{}
	for _, u := range units {
		labels[u.User.Label] = true
	}
	assert.True(t, labels[5])
	assert.True(t, labels[0])
}
