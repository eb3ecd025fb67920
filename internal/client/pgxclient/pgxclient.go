// Package pgxclient adapts a pgx connection pool to the
// client.Client/client.Connection interfaces, for workloads targeting
// PostgreSQL.
package pgxclient

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"defio/internal/client"
)

// Client wraps a pgxpool.Pool opened against a connection string.
type Client struct {
	pool *pgxpool.Pool
}

// Open parses connString, builds a pool, and pings it before returning.
func Open(ctx context.Context, connString string) (*Client, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("pgxclient: parse config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("pgxclient: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgxclient: ping database: %w", err)
	}

	return &Client{pool: pool}, nil
}

// Connect returns a Connection backed by the pool. pgx pools connections
// internally, so Connect here returns a thin wrapper over the shared pool
// rather than acquiring a dedicated connection up front.
func (c *Client) Connect(ctx context.Context) (client.Connection, error) {
	return &Connection{pool: c.pool}, nil
}

// Close closes the underlying pool.
func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

// Connection executes queries against a Client's pool.
type Connection struct {
	pool *pgxpool.Pool
}

// Execute runs sql and collects its result rows into client.Row maps.
func (c *Connection) Execute(ctx context.Context, sql string) ([]client.Row, error) {
	rows, err := c.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("pgxclient: execute query: %w", err)
	}
	defer rows.Close()

	fieldDescriptions := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescriptions))
	for i, fd := range fieldDescriptions {
		columns[i] = fd.Name
	}

	var out []client.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("pgxclient: read row values: %w", err)
		}
		row := make(client.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgxclient: iterate rows: %w", err)
	}

	return out, nil
}

// Close is a no-op: pgxpool connections are returned to the pool
// automatically when their Rows are closed, not held per-Connection.
func (c *Connection) Close() error {
	return nil
}

var (
	_ client.Client     = (*Client)(nil)
	_ client.Connection = (*Connection)(nil)
)
