package server

import (
	"context"
	"net"
	"sync"

	"github.com/codefionn/tcpresponder/internal/console"
	"github.com/codefionn/tcpresponder/internal/logger"
	"github.com/codefionn/tcpresponder/internal/session"
)

// Client represents one accepted TCP connection and its session
type Client struct {
	// Connection identifier, shared with the session
	ID string

	conn    net.Conn
	console *console.Console
	driver  *session.Driver

	mu       sync.Mutex
	stopped  bool
	stopOnce sync.Once
	done     chan struct{}
}

// NewClient creates a new client instance
func NewClient(id string, conn net.Conn, con *console.Console, input session.LineSource, opts session.Options) *Client {
	return &Client{
		ID:      id,
		conn:    conn,
		console: con,
		driver:  session.NewDriver(conn, con, input, opts),
		done:    make(chan struct{}),
	}
}

// Start runs the session in its own goroutine. onExit is called with the
// client ID once the session has ended and the connection is closed.
func (c *Client) Start(ctx context.Context, onExit func(string)) {
	go func() {
		defer close(c.done)
		defer func() {
			if onExit != nil {
				onExit(c.ID)
			}
		}()

		err := c.driver.Run(ctx)
		c.closeConn()

		switch {
		case err == nil:
			c.console.ShowClosed(c.ID)
		case c.isStopped():
			logger.Debug("Client %s stopped: %v", c.ID, err)
		default:
			c.console.ShowError(c.ID, err)
		}
	}()
}

// Stop closes the connection, which ends a session waiting on the network
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		c.mu.Unlock()
		c.closeConn()
	})
}

func (c *Client) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

func (c *Client) closeConn() {
	if err := c.conn.Close(); err != nil {
		logger.Debug("Client %s close: %v", c.ID, err)
	}
}

// Done is closed when the session has ended
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// State returns the session state
func (c *Client) State() session.State {
	return c.driver.State()
}

// RemoteAddr returns the peer address
func (c *Client) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
