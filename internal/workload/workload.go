package workload

import (
	"sort"

	"defio/internal/lazyseq"
)

// Workload is an immutable set of serial execution units, each keyed by
// a unique User and holding a (possibly unbounded) QuerySource that must
// be consumed serially. Workloads are safe to reuse and to compose via
// Combine, since every constructor returns a fresh value rather than
// mutating the receiver.
type Workload struct {
	queriesByUser map[User]QuerySource
	// order preserves user-insertion order so All() iterates
	// deterministically rather than over Go's randomized map order.
	order []User
}

// Serial creates a Workload with a single serial unit. A nil user gets a
// fresh anonymous identity.
func Serial(queries QuerySource, user *User) Workload {
	u := NewAnonymousUser()
	if user != nil {
		u = *user
	}
	return Workload{
		queriesByUser: map[User]QuerySource{u: queries},
		order:         []User{u},
	}
}

// Concurrent creates a Workload with one serial unit per entry.
func Concurrent(queriesByUser map[User]QuerySource) Workload {
	workloads := make([]Workload, 0, len(queriesByUser))
	for user, queries := range queriesByUser {
		u := user
		workloads = append(workloads, Serial(queries, &u))
	}
	// Sort by user ID for determinism: map iteration order above is
	// randomized, but the combined Workload's internal order must not be.
	sort.Slice(workloads, func(i, j int) bool {
		return workloads[i].order[0].ID.String() < workloads[j].order[0].ID.String()
	})
	return Combine(workloads)
}

// ConcurrentSlice creates a Workload with one serial unit per source,
// each run by a freshly-created anonymous user. Unlike Concurrent, which
// maps pre-identified users to their sources, this is the "sequence
// form" of concurrent-workload construction: callers who don't care
// about user identity just supply the sources.
func ConcurrentSlice(sources []QuerySource) Workload {
	workloads := make([]Workload, len(sources))
	for i, queries := range sources {
		workloads[i] = Serial(queries, nil)
	}
	return Combine(workloads)
}

// Combine merges multiple workloads into one. If more than one workload
// defines the same User (by equality), their query sources are chained
// in the order the workloads were passed.
func Combine(workloads []Workload) Workload {
	combined := Workload{queriesByUser: make(map[User]QuerySource)}
	for _, w := range workloads {
		for _, user := range w.order {
			queries := w.queriesByUser[user]
			if existing, ok := combined.queriesByUser[user]; ok {
				combined.queriesByUser[user] = lazyseq.Chain(existing, queries)
			} else {
				combined.queriesByUser[user] = queries
				combined.order = append(combined.order, user)
			}
		}
	}
	return combined
}

// NumUsers returns the number of serial units in the workload.
func (w Workload) NumUsers() int {
	return len(w.order)
}

// Unit is one (User, QuerySource) pair of a Workload.
type Unit struct {
	User    User
	Queries QuerySource
}

// All returns the workload's units in insertion order, relabeling any
// unlabeled user with the smallest non-negative integer not already used
// as a label by another user in the workload.
func (w Workload) All() []Unit {
	usedLabels := make(map[int]bool)
	for _, u := range w.order {
		if u.IsLabeled() {
			usedLabels[u.Label] = true
		}
	}

	nextLabel := 0
	nextUnusedLabel := func() int {
		for usedLabels[nextLabel] {
			nextLabel++
		}
		label := nextLabel
		usedLabels[label] = true
		return label
	}

	out := make([]Unit, 0, len(w.order))
	for _, u := range w.order {
		labeled := u
		if !u.IsLabeled() {
			labeled = u.Relabel(nextUnusedLabel())
		}
		out = append(out, Unit{User: labeled, Queries: w.queriesByUser[u]})
	}

	return out
}
