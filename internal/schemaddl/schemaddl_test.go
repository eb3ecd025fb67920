package schemaddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defio/internal/core"
)

const authorBookDDL = `
CREATE TABLE author (
	id INT PRIMARY KEY,
	name VARCHAR(255) NOT NULL
);

CREATE TABLE book (
	id INT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	author_id INT,
	FOREIGN KEY (author_id) REFERENCES author(id)
);
`

func TestLoadParsesColumnsAndPrimaryKeys(t *testing.T) {
	schema, err := Load(authorBookDDL)
	require.NoError(t, err)
	require.Len(t, schema.Tables, 2)

	author, err := schema.GetTable("author")
	require.NoError(t, err)
	id, err := author.GetColumn("id")
	require.NoError(t, err)
	assert.Equal(t, core.Integer, id.DataType)
	assert.True(t, id.Constraint.IsPrimaryKey)

	name, err := author.GetColumn("name")
	require.NoError(t, err)
	assert.Equal(t, core.String, name.DataType)
	assert.True(t, name.Constraint.IsNotNull)
	assert.Equal(t, 255, name.Constraint.MaxCharLength)
}

func TestLoadBuildsForeignKeyEdge(t *testing.T) {
	schema, err := Load(authorBookDDL)
	require.NoError(t, err)

	edges := schema.Graph.PossibleJoins("book", "author_id")
	require.Len(t, edges, 1)
	assert.Equal(t, core.Node{Table: "author", Column: "id"}, edges[0])

	book, err := schema.GetTable("book")
	require.NoError(t, err)
	authorID, err := book.GetColumn("author_id")
	require.NoError(t, err)
	assert.True(t, authorID.Constraint.IsForeignKey)
}

func TestLoadHandlesColumnLevelReferences(t *testing.T) {
	ddl := `
	CREATE TABLE author (id INT PRIMARY KEY, name VARCHAR(100));
	CREATE TABLE book (
		id INT PRIMARY KEY,
		author_id INT REFERENCES author(id)
	);
	`
	schema, err := Load(ddl)
	require.NoError(t, err)

	edges := schema.Graph.PossibleJoins("book", "author_id")
	require.Len(t, edges, 1)
	assert.Equal(t, core.Node{Table: "author", Column: "id"}, edges[0])
}

func TestLoadAppliesDropTable(t *testing.T) {
	ddl := `
	CREATE TABLE stale (id INT PRIMARY KEY);
	DROP TABLE stale;
	CREATE TABLE current (id INT PRIMARY KEY);
	`
	schema, err := Load(ddl)
	require.NoError(t, err)
	require.Len(t, schema.Tables, 1)
	assert.Equal(t, "current", schema.Tables[0].Name)
}

func TestLoadRejectsUnrecognizedDataType(t *testing.T) {
	ddl := `CREATE TABLE weird (id BLOB);`
	_, err := Load(ddl)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedSQL(t *testing.T) {
	_, err := Load("CREATE TABLE (((")
	assert.Error(t, err)
}
