// Package sqlclient talks to a novarel server over the framed JSON
// protocol.
package sqlclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/sql/executor"
	"github.com/tuannm99/novarel/server/novarelwire"
)

var (
	ErrNilClient  = errors.New("sqlclient: nil client")
	ErrIDMismatch = errors.New("sqlclient: response id mismatch")
)

// ServerError is a statement failure reported by the server. It matches
// the qerr sentinel of its category under errors.Is.
type ServerError struct {
	Category string
	Message  string
}

func (e *ServerError) Error() string { return e.Message }

func (e *ServerError) Is(target error) bool {
	switch target {
	case qerr.ErrResolution:
		return e.Category == qerr.CategoryResolution.String()
	case qerr.ErrShape:
		return e.Category == qerr.CategoryShape.String()
	case qerr.ErrEmpty:
		return e.Category == qerr.CategoryEmpty.String()
	case qerr.ErrSyntax:
		return e.Category == qerr.CategorySyntax.String()
	}
	return false
}

// Client sends one statement at a time; concurrent callers serialize on
// the connection.
type Client struct {
	conn net.Conn
	mu   sync.Mutex
	seq  atomic.Uint64

	rwTimeout time.Duration
}

func Dial(addr string, timeout time.Duration) (*Client, error) {
	return DialContext(context.Background(), addr, timeout)
}

func DialContext(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("sqlclient: dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// SetRWTimeout bounds each statement round trip when the context has no
// deadline. Zero disables it.
func (c *Client) SetRWTimeout(d time.Duration) {
	if c != nil {
		c.rwTimeout = d
	}
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) Exec(stmt string) (*executor.Result, error) {
	return c.ExecContext(context.Background(), stmt)
}

// ExecContext runs one statement in the server session bound to this
// connection.
func (c *Client) ExecContext(ctx context.Context, stmt string) (*executor.Result, error) {
	if c == nil || c.conn == nil {
		return nil, ErrNilClient
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.setDeadline(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = c.conn.SetDeadline(time.Time{}) }()

	id := c.seq.Add(1)
	if err := novarelwire.WriteFrame(c.conn, novarelwire.ExecuteRequest{ID: id, SQL: stmt}); err != nil {
		return nil, err
	}

	var resp novarelwire.ExecuteResponse
	if err := novarelwire.ReadFrame(c.conn, &resp); err != nil {
		return nil, err
	}
	switch {
	case resp.ID != id:
		return nil, fmt.Errorf("%w: got=%d want=%d", ErrIDMismatch, resp.ID, id)
	case resp.Error != "":
		return nil, &ServerError{Category: resp.Category, Message: resp.Error}
	}
	return resp.Result, nil
}

func (c *Client) setDeadline(ctx context.Context) error {
	if dl, ok := ctx.Deadline(); ok {
		return c.conn.SetDeadline(dl)
	}
	if c.rwTimeout > 0 {
		return c.conn.SetDeadline(time.Now().Add(c.rwTimeout))
	}
	return nil
}
