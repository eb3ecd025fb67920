package stats

import (
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"defio/internal/core"
)

// TableStats maps each column of one table to its ColumnStats.
type TableStats struct {
	entries []tableStatsEntry
}

type tableStatsEntry struct {
	Column core.Column `json:"column"`
	Stats  ColumnStats `json:"column_stats"`
}

// NewTableStats builds a TableStats from parallel column/stats slices.
func NewTableStats(columns []core.Column, columnStats []ColumnStats) (*TableStats, error) {
	if len(columns) != len(columnStats) {
		return nil, fmt.Errorf("stats: %d columns but %d column stats", len(columns), len(columnStats))
	}
	ts := &TableStats{entries: make([]tableStatsEntry, len(columns))}
	for i := range columns {
		ts.entries[i] = tableStatsEntry{Column: columns[i], Stats: columnStats[i]}
	}
	return ts, nil
}

// Get returns the stats for the named column, or a not-found error.
func (ts *TableStats) Get(columnName string) (ColumnStats, error) {
	for _, e := range ts.entries {
		if e.Column.Name == columnName {
			return e.Stats, nil
		}
	}
	return ColumnStats{}, fmt.Errorf("stats: column %q does not exist", columnName)
}

// GetColumn is the Column-keyed overload of Get, for callers that already
// hold the core.Column value (structural equality, per core.Column).
func (ts *TableStats) GetColumn(column core.Column) (ColumnStats, error) {
	for _, e := range ts.entries {
		if e.Column == column {
			return e.Stats, nil
		}
	}
	return ColumnStats{}, fmt.Errorf("stats: column %q does not exist", column.Name)
}

// ToList converts the table stats into the JSON array shape mandated by
// the stats file format.
func (ts *TableStats) ToList() []json.RawMessage {
	out := make([]json.RawMessage, len(ts.entries))
	for i, e := range ts.entries {
		raw, err := json.Marshal(e)
		if err != nil {
			panic(err) // tableStatsEntry is always marshalable
		}
		out[i] = raw
	}
	return out
}

// TableStatsFromList parses the JSON array shape of one table's stats
// entries back into a TableStats.
func TableStatsFromList(data []json.RawMessage) (*TableStats, error) {
	entries := make([]tableStatsEntry, len(data))
	for i, raw := range data {
		if err := json.Unmarshal(raw, &entries[i]); err != nil {
			return nil, fmt.Errorf("stats: unmarshal table stats entry %d: %w", i, err)
		}
	}
	return &TableStats{entries: entries}, nil
}

// DataStats maps each table of a dataset to its TableStats.
type DataStats struct {
	entries []dataStatsEntry
}

type dataStatsEntry struct {
	Table      core.Table `json:"table"`
	TableStats *TableStats `json:"table_stats"`
}

// NewDataStats builds a DataStats from parallel table/stats slices.
func NewDataStats(tables []core.Table, tableStats []*TableStats) (*DataStats, error) {
	if len(tables) != len(tableStats) {
		return nil, fmt.Errorf("stats: %d tables but %d table stats", len(tables), len(tableStats))
	}
	ds := &DataStats{entries: make([]dataStatsEntry, len(tables))}
	for i := range tables {
		ds.entries[i] = dataStatsEntry{Table: tables[i], TableStats: tableStats[i]}
	}
	return ds, nil
}

// Get returns the stats for the named table, or a not-found error.
func (ds *DataStats) Get(tableName string) (*TableStats, error) {
	for _, e := range ds.entries {
		if e.Table.Name == tableName {
			return e.TableStats, nil
		}
	}
	return nil, fmt.Errorf("stats: table %q does not exist", tableName)
}

// TableColumnStatsFunc computes the ColumnStats for every column of one
// table. It is the caller-supplied hook DataStatsFromTables uses; in
// production this reads from a Dataset's underlying data, which is out
// of scope for this repository (spec §1: "Dataset file ingestion... is
// out of scope").
type TableColumnStatsFunc func(table core.Table) (*TableStats, error)

// DataStatsFromTables computes DataStats for every table in tables,
// optionally in parallel. Grounded on sqldef's ConcurrentMapFuncWithError:
// an errgroup runs one goroutine per table (with no concurrency limit)
// and returns the first error, and an index-tagged slice preserves input
// order so the contract is independent of how many goroutines ran it.
func DataStatsFromTables(tables []core.Table, compute TableColumnStatsFunc, concurrent bool) (*DataStats, error) {
	results := make([]*TableStats, len(tables))

	if !concurrent {
		for i, table := range tables {
			ts, err := compute(table)
			if err != nil {
				return nil, fmt.Errorf("stats: computing stats for table %q: %w", table.Name, err)
			}
			results[i] = ts
		}
		return NewDataStats(tables, results)
	}

	var eg errgroup.Group
	for i, table := range tables {
		i, table := i, table
		eg.Go(func() error {
			ts, err := compute(table)
			if err != nil {
				return fmt.Errorf("stats: computing stats for table %q: %w", table.Name, err)
			}
			results[i] = ts
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return NewDataStats(tables, results)
}

// ToList converts the data stats into the top-level JSON array format
// mandated by spec §6's stats file format.
func (ds *DataStats) ToList() []json.RawMessage {
	out := make([]json.RawMessage, len(ds.entries))
	for i, e := range ds.entries {
		raw, err := json.Marshal(e)
		if err != nil {
			panic(err)
		}
		out[i] = raw
	}
	return out
}

// Load reads the stats file format (a top-level JSON array) into a
// DataStats.
func Load(data []byte) (*DataStats, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("stats: unmarshal data stats: %w", err)
	}
	entries := make([]dataStatsEntry, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &entries[i]); err != nil {
			return nil, fmt.Errorf("stats: unmarshal data stats entry %d: %w", i, err)
		}
	}
	return &DataStats{entries: entries}, nil
}

// Dump serializes the data stats into the stats file format.
func (ds *DataStats) Dump() ([]byte, error) {
	return json.Marshal(ds.entries)
}
