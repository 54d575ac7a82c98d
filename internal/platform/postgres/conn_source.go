package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phrazzld/todo-app/internal/store"
)

// ConnSource checks exclusive connections out of a *sql.DB pool.
type ConnSource struct {
	db *sql.DB
}

// Ensure ConnSource implements store.ConnSource.
var _ store.ConnSource = (*ConnSource)(nil)

// NewConnSource wraps db.
func NewConnSource(db *sql.DB) *ConnSource {
	return &ConnSource{db: db}
}

// Checkout reserves one connection from the pool. The connection stays out of
// the pool until the returned TaskConn is closed.
func (s *ConnSource) Checkout(ctx context.Context) (store.TaskConn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check out database connection: %w", err)
	}
	return &taskConn{
		PostgresTaskStore: NewPostgresTaskStore(conn),
		conn:              conn,
	}, nil
}

// taskConn is a PostgresTaskStore pinned to one *sql.Conn.
type taskConn struct {
	*PostgresTaskStore
	conn *sql.Conn
}

// Close returns the connection to the pool.
func (c *taskConn) Close() error {
	return c.conn.Close()
}
