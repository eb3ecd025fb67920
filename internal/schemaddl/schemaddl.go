// Package schemaddl loads a core.Schema from DDL text: a sequence of
// CREATE TABLE statements (and optional DROP TABLE statements, for
// idempotent dumps), per the spec's "Schema file format" (§6). It walks
// the same github.com/pingcap/tidb/pkg/parser AST the teacher's
// internal/parser/mysql package walks, generalized from the teacher's
// migration-oriented core.Database/core.Table down to the narrower
// core.Schema/core.Table/core.Column/core.DataType model this domain
// needs: columns, keys, and FK edges, nothing else.
package schemaddl

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"defio/internal/core"
)

// Loader parses DDL text into a core.Schema. The zero value is not
// usable; construct with NewLoader.
type Loader struct {
	p *parser.Parser
}

// NewLoader builds a Loader around a fresh TiDB SQL parser.
func NewLoader() *Loader {
	return &Loader{p: parser.New()}
}

// Load parses ddl and returns the resulting schema. DROP TABLE
// statements remove a previously declared table from the accumulating
// set, so a dump that drops and recreates a table ends up with only the
// final definition.
func (l *Loader) Load(ddl string) (*core.Schema, error) {
	stmtNodes, _, err := l.p.Parse(ddl, "", "")
	if err != nil {
		return nil, fmt.Errorf("schemaddl: parse: %w", err)
	}

	var tables []core.Table
	var edges []core.Edge
	for _, stmt := range stmtNodes {
		switch s := stmt.(type) {
		case *ast.CreateTableStmt:
			table, tableEdges, err := convertCreateTable(s)
			if err != nil {
				return nil, err
			}
			tables = append(tables, table)
			edges = append(edges, tableEdges...)
		case *ast.DropTableStmt:
			for _, ref := range s.Tables {
				tables, edges = dropTable(tables, edges, ref.Name.O)
			}
		}
	}

	schema, err := core.NewSchema(tables, edges)
	if err != nil {
		return nil, fmt.Errorf("schemaddl: build schema: %w", err)
	}
	return schema, nil
}

// Load is a convenience wrapper for loading a single DDL document
// without holding onto a Loader.
func Load(ddl string) (*core.Schema, error) {
	return NewLoader().Load(ddl)
}

func dropTable(tables []core.Table, edges []core.Edge, name string) ([]core.Table, []core.Edge) {
	keptTables := tables[:0]
	for _, t := range tables {
		if t.Name != name {
			keptTables = append(keptTables, t)
		}
	}
	keptEdges := edges[:0]
	for _, e := range edges {
		if e.From.Table != name && e.To.Table != name {
			keptEdges = append(keptEdges, e)
		}
	}
	return keptTables, keptEdges
}

// convertCreateTable builds the core.Table and its outgoing FK edges
// from one CREATE TABLE statement. Column-level REFERENCES clauses and
// table-level FOREIGN KEY constraints are both translated into edges;
// primary keys and uniqueness are recorded the same way regardless of
// whether they were declared inline on the column or as a separate
// table-level constraint.
func convertCreateTable(stmt *ast.CreateTableStmt) (core.Table, []core.Edge, error) {
	tableName := stmt.Table.Name.O

	primaryKeys := make(map[string]bool)
	uniqueKeys := make(map[string]bool)
	foreignKeys := make(map[string]bool)
	for _, c := range stmt.Constraints {
		switch c.Tp {
		case ast.ConstraintPrimaryKey:
			for _, key := range c.Keys {
				primaryKeys[key.Column.Name.O] = true
			}
		case ast.ConstraintUniq, ast.ConstraintUniqKey, ast.ConstraintUniqIndex:
			for _, key := range c.Keys {
				uniqueKeys[key.Column.Name.O] = true
			}
		case ast.ConstraintForeignKey:
			for _, key := range c.Keys {
				foreignKeys[key.Column.Name.O] = true
			}
		}
	}

	var columns []core.Column
	var edges []core.Edge
	for _, colDef := range stmt.Cols {
		name := colDef.Name.Name.O
		dtype, err := core.NormalizeDataType(colDef.Tp.String())
		if err != nil {
			return core.Table{}, nil, fmt.Errorf("schemaddl: table %q column %q: %w", tableName, name, err)
		}

		constraint := core.ColumnConstraint{
			IsPrimaryKey: primaryKeys[name],
			IsUnique:     uniqueKeys[name],
			IsForeignKey: foreignKeys[name],
		}
		if dtype == core.String {
			if flen := colDef.Tp.GetFlen(); flen > 0 {
				constraint.MaxCharLength = flen
			}
		}

		for _, opt := range colDef.Options {
			switch opt.Tp {
			case ast.ColumnOptionPrimaryKey:
				constraint.IsPrimaryKey = true
			case ast.ColumnOptionNotNull:
				constraint.IsNotNull = true
			case ast.ColumnOptionUniqKey:
				constraint.IsUnique = true
			case ast.ColumnOptionReference:
				constraint.IsForeignKey = true
				edges = append(edges, foreignKeyEdge(tableName, name, opt.Refer))
			}
		}

		col, err := core.NewColumn(name, dtype, constraint)
		if err != nil {
			return core.Table{}, nil, fmt.Errorf("schemaddl: table %q: %w", tableName, err)
		}
		columns = append(columns, col)
	}

	for _, c := range stmt.Constraints {
		if c.Tp != ast.ConstraintForeignKey {
			continue
		}
		for _, key := range c.Keys {
			edges = append(edges, foreignKeyEdge(tableName, key.Column.Name.O, c.Refer))
		}
	}

	return core.Table{Name: tableName, Columns: columns}, edges, nil
}

func foreignKeyEdge(fromTable, fromColumn string, refer *ast.ReferenceDef) core.Edge {
	refTable := refer.Table.Name.O
	refColumn := fromColumn
	if len(refer.IndexPartSpecifications) > 0 && refer.IndexPartSpecifications[0].Column != nil {
		refColumn = refer.IndexPartSpecifications[0].Column.Name.O
	}
	return core.Edge{
		From: core.Node{Table: fromTable, Column: fromColumn},
		To:   core.Node{Table: refTable, Column: refColumn},
	}
}
