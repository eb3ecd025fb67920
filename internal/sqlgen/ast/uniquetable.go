// Package ast is the generator-side AST layer: identity-based table
// wrappers and alias assignment sit between the samplers (which build
// plans out of UniqueTable references) and internal/sqlast (the plain,
// alias-resolved AST that serializes to SQL text).
package ast

import (
	"sort"
	"sync/atomic"

	"defio/internal/core"
)

// UniqueTable is a by-identity wrapper around a core.Table: two
// UniqueTable values wrapping the same underlying table are NOT equal,
// which is what lets a join plan self-join (spec §3, §9). Go map/struct
// equality on a pointer would already give identity semantics for two
// wrappers of the *same* table value, but a plan can legitimately wrap
// the same *core.Table twice independently (e.g. two separate lookups
// from the schema) and those must still compare unequal to each other
// as well as to themselves when used twice — so identity is carried by
// an explicit, monotonically increasing instance counter rather than by
// relying on pointer value alone.
type UniqueTable struct {
	table *core.Table
	seq   int
}

var nextSeq atomic.Int64

// NewUniqueTable wraps table in a fresh, globally unique identity. Safe
// to call concurrently, since multiple workload users may each run their
// own RandomSqlGenerator at the same time.
func NewUniqueTable(table *core.Table) *UniqueTable {
	seq := nextSeq.Add(1)
	return &UniqueTable{table: table, seq: int(seq)}
}

// Table returns the wrapped table.
func (u *UniqueTable) Table() *core.Table { return u.table }

// Name returns the wrapped table's name (used as the default alias).
func (u *UniqueTable) Name() string { return u.table.Name }

// Columns returns the wrapped table's columns.
func (u *UniqueTable) Columns() []core.Column { return u.table.Columns }

// sortKey orders UniqueTables deterministically by (table name, instance
// sequence) — the "sort by (name, secondary identity)" discipline spec
// §9 mandates for every place a sampler chooses over a set.
func (u *UniqueTable) sortKey() (string, int) { return u.table.Name, u.seq }

// SortUniqueTables returns a new slice sorted by (table.Name, stable
// identity), ensuring reproducible iteration order over a set of
// UniqueTables.
func SortUniqueTables(tables []*UniqueTable) []*UniqueTable {
	out := append([]*UniqueTable(nil), tables...)
	sort.Slice(out, func(i, j int) bool {
		ni, si := out[i].sortKey()
		nj, sj := out[j].sortKey()
		if ni != nj {
			return ni < nj
		}
		return si < sj
	})
	return out
}

// GenerateTableAliases groups tables by underlying table name and, for
// any group with more than one occurrence, assigns deterministic aliases
// "<name>_1", "<name>_2", ... in sorted order. Tables that occur exactly
// once get no alias (nil entry omitted from the returned map).
func GenerateTableAliases(tables []*UniqueTable) map[*UniqueTable]string {
	sorted := SortUniqueTables(tables)

	byName := make(map[string][]*UniqueTable)
	for _, t := range sorted {
		byName[t.Name()] = append(byName[t.Name()], t)
	}

	aliases := make(map[*UniqueTable]string)
	for name, group := range byName {
		if len(group) <= 1 {
			continue
		}
		for i, t := range group {
			aliases[t] = name + "_" + itoa(i+1)
		}
	}
	return aliases
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
