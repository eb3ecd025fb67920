// Package core holds the catalog model shared by every other package:
// tables, columns, data types, constraints, and the foreign-key
// relationship graph used by the join sampler.
package core

import (
	"encoding/json"
	"fmt"
)

// DataType is the closed set of column types the sampler and predicate
// dispatch tables understand.
type DataType string

const (
	Integer DataType = "INTEGER"
	Float   DataType = "FLOAT"
	String  DataType = "STRING"
	Boolean DataType = "BOOLEAN"
)

func (t DataType) valid() bool {
	switch t {
	case Integer, Float, String, Boolean:
		return true
	default:
		return false
	}
}

// ColumnConstraint describes the constraint flags a column carries.
// MaxCharLength is only meaningful for String columns; zero means unset.
type ColumnConstraint struct {
	IsPrimaryKey  bool `json:"is_primary_key"`
	IsForeignKey  bool `json:"is_foreign_key"`
	IsUnique      bool `json:"is_unique"`
	IsNotNull     bool `json:"is_not_null"`
	MaxCharLength int  `json:"max_char_length,omitempty"`
}

// Column is one field of a Table. Equality is structural: two columns
// with identical fields are equal, regardless of identity.
type Column struct {
	Name       string           `json:"name"`
	DataType   DataType         `json:"data_type"`
	Constraint ColumnConstraint `json:"constraint"`
}

// NewColumn validates dtype against the closed DataType set before
// constructing the column; every schema loader routes through this
// rather than building a Column literal directly.
func NewColumn(name string, dtype DataType, constraint ColumnConstraint) (Column, error) {
	if !dtype.valid() {
		return Column{}, fmt.Errorf("core: invalid data type %q for column %q", dtype, name)
	}
	return Column{Name: name, DataType: dtype, Constraint: constraint}, nil
}

// Table is an ordered sequence of columns under a name. Equality is
// structural (name plus the full ordered column list).
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// GetColumn returns the column with the given name, or a not-found error.
func (t *Table) GetColumn(name string) (Column, error) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("core: column %q not found in table %q", name, t.Name)
}

// PrimaryKey returns the table's primary-key columns, in column order.
func (t *Table) PrimaryKey() []Column {
	var pk []Column
	for _, c := range t.Columns {
		if c.Constraint.IsPrimaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// Node identifies a single (table, column) pair in the relationship graph.
type Node struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Edge is a directed foreign-key reference from (Table, Column) to
// (RefTable, RefColumn).
type Edge struct {
	From Node `json:"from"`
	To   Node `json:"to"`
}

// RelationshipGraph is the directed foreign-key graph over a Schema's
// tables and columns. It stores both forward and reverse adjacency so
// that PossibleJoins can return the symmetric union — joins are
// undirected even though FK edges are directed.
type RelationshipGraph struct {
	forward map[Node][]Node
	reverse map[Node][]Node
	edges   []Edge
}

// NewRelationshipGraph builds a graph from an edge list. Every edge's
// endpoints are recorded as adjacency entries; Schema.validateGraph
// checks separately that those endpoints exist in the owning schema, so
// the graph itself stays a dumb adjacency structure.
func NewRelationshipGraph(edges []Edge) *RelationshipGraph {
	g := &RelationshipGraph{
		forward: make(map[Node][]Node, len(edges)),
		reverse: make(map[Node][]Node, len(edges)),
		edges:   append([]Edge(nil), edges...),
	}
	for _, e := range edges {
		g.forward[e.From] = append(g.forward[e.From], e.To)
		g.reverse[e.To] = append(g.reverse[e.To], e.From)
	}
	return g
}

// Edges returns the graph's edge list in construction order.
func (g *RelationshipGraph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// PossibleJoins returns every node reachable from (table, column) by a
// single FK edge in either direction.
func (g *RelationshipGraph) PossibleJoins(table, column string) []Node {
	n := Node{Table: table, Column: column}
	seen := make(map[Node]bool)
	var out []Node
	for _, to := range g.forward[n] {
		if !seen[to] {
			seen[to] = true
			out = append(out, to)
		}
	}
	for _, from := range g.reverse[n] {
		if !seen[from] {
			seen[from] = true
			out = append(out, from)
		}
	}
	return out
}

// Schema is an ordered sequence of tables plus the relationship graph
// over their foreign keys.
type Schema struct {
	Tables []Table            `json:"tables"`
	Graph  *RelationshipGraph `json:"-"`
}

// NewSchema builds a Schema and validates that every relationship edge's
// endpoints name an existing table and column.
func NewSchema(tables []Table, edges []Edge) (*Schema, error) {
	s := &Schema{Tables: tables, Graph: NewRelationshipGraph(edges)}
	if err := s.validateGraph(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) validateGraph() error {
	for _, e := range s.Graph.edges {
		for _, n := range [2]Node{e.From, e.To} {
			t, err := s.GetTable(n.Table)
			if err != nil {
				return fmt.Errorf("core: relationship edge references unknown table %q: %w", n.Table, err)
			}
			if _, err := t.GetColumn(n.Column); err != nil {
				return fmt.Errorf("core: relationship edge references unknown column %q.%q: %w", n.Table, n.Column, err)
			}
		}
	}
	return nil
}

// GetTable returns the table with the given name, or a not-found error.
func (s *Schema) GetTable(name string) (*Table, error) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], nil
		}
	}
	return nil, fmt.Errorf("core: table %q not found", name)
}

// schemaJSON is the on-disk shape of a Schema: tables plus a flat edge
// list, so the relationship graph round-trips without re-deriving it.
type schemaJSON struct {
	Tables []Table `json:"tables"`
	Edges  []Edge  `json:"edges"`
}

// MarshalJSON serializes the schema as an ordered table list plus the
// flat FK edge list the relationship graph was built from.
func (s *Schema) MarshalJSON() ([]byte, error) {
	var edges []Edge
	if s.Graph != nil {
		edges = s.Graph.Edges()
	}
	return json.Marshal(schemaJSON{Tables: s.Tables, Edges: edges})
}

// UnmarshalJSON rebuilds the schema, including the relationship graph,
// from the record produced by MarshalJSON.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw schemaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("core: unmarshal schema: %w", err)
	}
	built, err := NewSchema(raw.Tables, raw.Edges)
	if err != nil {
		return err
	}
	*s = *built
	return nil
}

// Equal reports structural equality: same tables in the same order, same
// relationship edges (order-insensitive).
func (s *Schema) Equal(other *Schema) bool {
	if other == nil {
		return false
	}
	if len(s.Tables) != len(other.Tables) {
		return false
	}
	for i := range s.Tables {
		if !tablesEqual(s.Tables[i], other.Tables[i]) {
			return false
		}
	}
	return edgeSetsEqual(s.Graph.Edges(), other.Graph.Edges())
}

func tablesEqual(a, b Table) bool {
	if a.Name != b.Name || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	return true
}

func edgeSetsEqual(a, b []Edge) bool {
	if len(a) != len(b) {
		return false
	}
	count := make(map[Edge]int, len(a))
	for _, e := range a {
		count[e]++
	}
	for _, e := range b {
		count[e]--
		if count[e] < 0 {
			return false
		}
	}
	return true
}

// NormalizeDataType maps a raw DDL type name to the closed DataType set.
// Used by internal/schemaddl when loading a Schema from DDL text, where
// raw column types are dialect-specific strings such as "varchar(255)" or
// "tinyint(1)".
func NormalizeDataType(raw string) (DataType, error) {
	low := toLower(raw)
	switch {
	case containsAny(low, "bool"):
		return Boolean, nil
	case containsAny(low, "int", "serial"):
		return Integer, nil
	case containsAny(low, "float", "double", "decimal", "numeric", "real"):
		return Float, nil
	case containsAny(low, "char", "text", "string", "enum", "set", "uuid", "json", "date", "time"):
		return String, nil
	default:
		return "", fmt.Errorf("core: cannot normalize data type %q", raw)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if indexOf(s, sub) >= 0 {
			return true
		}
	}
	return false
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}
