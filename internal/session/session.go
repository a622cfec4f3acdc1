// Package session drives one accepted connection: read a payload, show it to
// the operator, let the operator compose a reply and write the reply back.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/codefionn/tcpresponder/internal/consts"
	"github.com/codefionn/tcpresponder/internal/render"
)

// State is the position of a session in its read/compose/write cycle.
type State int

const (
	// StateAwaitingPayload waits for the next read from the peer
	StateAwaitingPayload State = iota
	// StateComposingReply waits for the operator to finish a reply
	StateComposingReply
	// StateClosed is terminal
	StateClosed
)

// String returns string representation of the state
func (s State) String() string {
	switch s {
	case StateAwaitingPayload:
		return "awaiting_payload"
	case StateComposingReply:
		return "composing_reply"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// GenerateID creates a random session ID.
func GenerateID() string {
	return uuid.NewString()
}

// Options configures a Driver.
type Options struct {
	ID         string
	HexMode    bool
	BufferSize int
	Logger     *slog.Logger
}

// Driver owns one connection and runs its state machine.
type Driver struct {
	id       string
	conn     io.ReadWriter
	operator Operator
	input    LineSource
	hexMode  bool
	buf      []byte
	log      *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewDriver creates a driver for conn. Operator output goes to op and reply
// lines are read from input.
func NewDriver(conn io.ReadWriter, op Operator, input LineSource, opts Options) *Driver {
	if opts.ID == "" {
		opts.ID = GenerateID()
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = consts.DefaultReadBufferSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Driver{
		id:       opts.ID,
		conn:     conn,
		operator: op,
		input:    input,
		hexMode:  opts.HexMode,
		buf:      make([]byte, opts.BufferSize),
		log:      opts.Logger.With("session", opts.ID),
		state:    StateAwaitingPayload,
	}
}

// ID returns the session ID
func (d *Driver) ID() string {
	return d.id
}

// State returns the current state
func (d *Driver) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

func (d *Driver) setState(s State) {
	d.mu.Lock()
	prev := d.state
	d.state = s
	d.mu.Unlock()

	if prev != s {
		d.log.Debug("session state changed", "from", prev.String(), "to", s.String())
	}
}

// Run loops until the peer closes the connection or an error occurs. A clean
// close returns nil. Errors end only this session.
func (d *Driver) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			d.setState(StateClosed)
			return err
		}

		d.setState(StateAwaitingPayload)
		n, readErr := d.conn.Read(d.buf)
		if n > 0 {
			if err := d.handlePayload(n); err != nil {
				return d.fail(err)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return d.close()
			}
			return d.fail(fmt.Errorf("failed to read payload: %w", readErr))
		}
		if n == 0 {
			return d.close()
		}
	}
}

// handlePayload renders buf[:n], runs the compose loop and sends the reply.
func (d *Driver) handlePayload(n int) error {
	d.setState(StateComposingReply)
	payload := d.buf[:n]
	d.log.Info("payload received", "bytes", n, "digest", fmt.Sprintf("%016x", xxhash.Sum64(payload)))

	plain, err := render.Plain(d.buf, n)
	if err != nil {
		return fmt.Errorf("failed to render payload: %w", err)
	}

	var hexDump string
	if d.hexMode {
		hexDump, err = render.HexDump(d.buf, n)
		if err != nil {
			return fmt.Errorf("failed to render hex dump: %w", err)
		}
	}

	d.operator.ShowPayload(d.id, plain, hexDump, d.hexMode)
	d.operator.ShowComposeHelp()

	draft, err := Compose(d.input, d.operator)
	if err != nil {
		return err
	}

	reply := draft.Bytes()
	if _, err := d.conn.Write(reply); err != nil {
		return fmt.Errorf("failed to write reply: %w", err)
	}
	d.log.Info("reply sent", "lines", draft.Len(), "bytes", len(reply))
	d.operator.ShowSent()

	return nil
}

func (d *Driver) close() error {
	d.setState(StateClosed)
	d.log.Info("session closed by peer")
	return nil
}

func (d *Driver) fail(err error) error {
	d.setState(StateClosed)
	d.log.Error("session failed", "error", err)
	return err
}
