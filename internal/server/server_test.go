package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/tcpresponder/internal/config"
	"github.com/codefionn/tcpresponder/internal/console"
	"github.com/codefionn/tcpresponder/internal/session"
)

// syncBuffer is safe to read while sessions write to it
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestServer(t *testing.T, hexMode bool, operatorInput string) (*Server, *syncBuffer) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.HexMode = hexMode

	out := &syncBuffer{}
	srv, err := NewServer(cfg, console.New(out, false), console.NewLineReader(strings.NewReader(operatorInput)))
	require.NoError(t, err)

	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { srv.Stop() })
	return srv, out
}

func dial(t *testing.T, srv *Server) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", srv.Addr().String(), 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ReadBufferSize = 0

	_, err := NewServer(cfg, console.New(io.Discard, false), console.NewLineReader(strings.NewReader("")))
	assert.ErrorIs(t, err, config.ErrInvalidBufferSize)

	_, err = NewServer(nil, nil, nil)
	assert.Error(t, err)
}

func TestServerRoundTrip(t *testing.T) {
	srv, out := newTestServer(t, true, "HTTP/1.1 200 OK\nContent-Length: 2\n\nhi\n?END?\n")
	assert.True(t, srv.IsRunning())

	conn := dial(t, srv)
	_, err := conn.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)

	expected := "HTTP/1.1 200 OK\nContent-Length: 2\n\nhi\n\n"
	reply := make([]byte, len(expected))
	_, err = io.ReadFull(conn, reply)
	require.NoError(t, err)
	assert.Equal(t, expected, string(reply))

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return srv.GetClientCount() == 0 }, 3*time.Second, 10*time.Millisecond)

	text := out.String()
	assert.Contains(t, text, "Listening at 127.0.0.1:")
	assert.Contains(t, text, "[DEBUG] Socket address: 127.0.0.1:")
	assert.Contains(t, text, "Socket Input:")
	assert.Contains(t, text, "47  | G.......")
	assert.Contains(t, text, "GET / HTTP/1.1....")
	assert.Contains(t, text, "Response sent!")
	assert.Contains(t, text, "closed by peer")
}

func TestServerEndOfOperatorInputSendsDraft(t *testing.T) {
	srv, _ := newTestServer(t, false, "partial")

	conn := dial(t, srv)
	_, err := conn.Write([]byte("ping"))
	require.NoError(t, err)

	reply := make([]byte, len("partial\n\n"))
	_, err = io.ReadFull(conn, reply)
	require.NoError(t, err)
	assert.Equal(t, "partial\n\n", string(reply))
}

func TestServerTracksClients(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	dial(t, srv)
	require.Eventually(t, func() bool { return srv.GetClientCount() == 1 }, 3*time.Second, 10*time.Millisecond)

	srv.connMu.RLock()
	var id string
	for clientID := range srv.clients {
		id = clientID
	}
	srv.connMu.RUnlock()

	client, ok := srv.GetClient(id)
	require.True(t, ok)
	assert.Equal(t, session.StateAwaitingPayload, client.State())
	assert.NotNil(t, client.RemoteAddr())

	_, ok = srv.GetClient("missing")
	assert.False(t, ok)
}

func TestServerStartTwice(t *testing.T) {
	srv, _ := newTestServer(t, false, "")
	assert.ErrorIs(t, srv.Start(context.Background()), ErrAlreadyRunning)
}

func TestServerStopClosesSessions(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return srv.GetClientCount() == 1 }, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Stop())
	assert.False(t, srv.IsRunning())

	// The server side closed the connection, so the peer sees EOF or a reset
	_, err := conn.Read(make([]byte, 1))
	assert.Error(t, err)

	require.Eventually(t, func() bool { return srv.GetClientCount() == 0 }, 3*time.Second, 10*time.Millisecond)

	// Stop is idempotent
	require.NoError(t, srv.Stop())
}

func TestServerSequentialSessions(t *testing.T) {
	srv, _ := newTestServer(t, false, "first\n?END?\nsecond\n?END?\n")

	for _, want := range []string{"first\n\n", "second\n\n"} {
		conn := dial(t, srv)
		_, err := conn.Write([]byte("hello"))
		require.NoError(t, err)

		reply := make([]byte, len(want))
		_, err = io.ReadFull(conn, reply)
		require.NoError(t, err)
		assert.Equal(t, want, string(reply))
		require.NoError(t, conn.Close())
	}
}
