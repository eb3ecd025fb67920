// Package client defines the capability interfaces the Runner executes
// queries through, independent of the underlying database driver.
package client

import "context"

// Row is one returned tuple from a query, column name to value.
type Row map[string]any

// Connection is a single live database connection, capable of executing
// read-only SELECT statements and returning their result rows.
type Connection interface {
	// Execute runs sql and returns its result rows.
	Execute(ctx context.Context, sql string) ([]Row, error)
	// Close releases the connection back to its owning Client.
	Close() error
}

// Client is a handle to a database that can hand out Connections. A
// Client implementation owns whatever pooling or single-connection
// policy its underlying driver favors.
type Client interface {
	// Connect returns a Connection ready to execute queries.
	Connect(ctx context.Context) (Connection, error)
	// Close releases the Client's resources (e.g. a connection pool).
	Close() error
}
