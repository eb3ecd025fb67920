// Package sqlclient adapts database/sql (via the MySQL driver) to the
// client.Client/client.Connection interfaces.
package sqlclient

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"defio/internal/client"
)

// Client wraps a *sql.DB opened against a MySQL DSN.
type Client struct {
	db *sql.DB
}

// Open opens a connection pool against dsn and pings it to verify
// reachability before returning, the same Connect-then-ping idiom the
// migration applier uses before trusting a DSN.
func Open(ctx context.Context, dsn string) (*Client, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlclient: open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("sqlclient: ping database: %w; additionally failed to close: %w", err, closeErr)
		}
		return nil, fmt.Errorf("sqlclient: ping database: %w", err)
	}

	return &Client{db: db}, nil
}

// Connect checks a dedicated *sql.Conn out of the pool and wraps it; the
// connection goes back to the pool when the Connection is closed.
func (c *Client) Connect(ctx context.Context) (client.Connection, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlclient: acquire connection: %w", err)
	}
	return &Connection{conn: conn}, nil
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Connection is one *sql.Conn checked out of a Client's pool.
type Connection struct {
	conn *sql.Conn
}

// Execute runs sql and collects its result rows into client.Row maps.
func (c *Connection) Execute(ctx context.Context, query string) ([]client.Row, error) {
	rows, err := c.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlclient: execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlclient: read columns: %w", err)
	}

	var out []client.Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("sqlclient: scan row: %w", err)
		}

		row := make(client.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlclient: iterate rows: %w", err)
	}

	return out, nil
}

// Close releases the connection back to the pool.
func (c *Connection) Close() error {
	return c.conn.Close()
}

var (
	_ client.Client     = (*Client)(nil)
	_ client.Connection = (*Connection)(nil)
)
