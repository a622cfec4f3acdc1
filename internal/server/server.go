package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/codefionn/tcpresponder/internal/config"
	"github.com/codefionn/tcpresponder/internal/console"
	"github.com/codefionn/tcpresponder/internal/consts"
	"github.com/codefionn/tcpresponder/internal/logger"
	"github.com/codefionn/tcpresponder/internal/session"
)

// ErrAlreadyRunning is returned by Start on a running server
var ErrAlreadyRunning = errors.New("server is already running")

// Server represents the TCP listener
type Server struct {
	cfg      *config.Config
	console  *console.Console
	input    session.LineSource
	listener net.Listener
	log      *logger.Logger

	// Connection tracking
	connMu  sync.RWMutex
	clients map[string]*Client

	// Control
	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	stopOnce sync.Once
	loopDone chan struct{}
}

// NewServer creates a new TCP server. Payloads are shown on con and replies
// are read from input; both are shared by every session.
func NewServer(cfg *config.Config, con *console.Console, input session.LineSource) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Server{
		cfg:      cfg,
		console:  con,
		input:    input,
		log:      logger.Global().WithPrefix("server"),
		clients:  make(map[string]*Client),
		stopChan: make(chan struct{}),
		loopDone: make(chan struct{}),
	}, nil
}

// Start binds the listener and starts accepting connections in the background
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	addr := s.cfg.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	go s.acceptLoop(ctx)

	s.console.Listening(listener.Addr().String())
	s.log.Info("TCP server started on %s (hex mode: %v, read buffer: %d)", listener.Addr(), s.cfg.HexMode, s.cfg.ReadBufferSize)

	return nil
}

// Stop closes the listener and every active connection. Sessions blocked on
// operator input end once that input returns.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		s.log.Info("Stopping TCP server...")

		close(s.stopChan)

		if s.listener != nil {
			if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.log.Error("Error closing listener: %v", err)
			}
			<-s.loopDone
		}

		s.connMu.RLock()
		clients := make([]*Client, 0, len(s.clients))
		for _, client := range s.clients {
			clients = append(clients, client)
		}
		s.connMu.RUnlock()

		for _, client := range clients {
			client.Stop()
		}

		// Wait a bit for sessions to unwind
		time.Sleep(consts.ShutdownGrace)

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()

		s.log.Info("TCP server stopped")
	})

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop(ctx context.Context) {
	defer close(s.loopDone)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Accept loop stopped via context cancellation")
			return

		case <-s.stopChan:
			s.log.Info("Accept loop stopped via stop signal")
			return

		default:
			// Set accept timeout to allow checking stopChan periodically
			if tl, ok := s.listener.(*net.TCPListener); ok {
				tl.SetDeadline(time.Now().Add(consts.AcceptPollInterval))
			}

			conn, err := s.listener.Accept()
			if err != nil {
				var netErr net.Error
				if errors.As(err, &netErr) && netErr.Timeout() {
					continue
				}

				if errors.Is(err, net.ErrClosed) {
					s.log.Info("Listener closed, exiting accept loop")
					return
				}

				s.log.Error("Error accepting connection: %v", err)
				continue
			}

			clientID := session.GenerateID()
			client := NewClient(clientID, conn, s.console, s.input, session.Options{
				ID:         clientID,
				HexMode:    s.cfg.HexMode,
				BufferSize: s.cfg.ReadBufferSize,
				Logger:     logger.Slog(logger.Global().WithPrefix("session")),
			})

			s.trackClient(clientID, client)
			s.console.Connected(clientID, conn.RemoteAddr().String())
			client.Start(ctx, s.untrackClient)

			s.log.Info("New connection accepted: %s from %s (total: %d)", clientID, conn.RemoteAddr(), s.GetClientCount())
		}
	}
}

// trackClient adds a client to tracking
func (s *Server) trackClient(clientID string, client *Client) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.clients[clientID] = client
}

// untrackClient removes a client from tracking
func (s *Server) untrackClient(clientID string) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	delete(s.clients, clientID)
}

// Addr returns the bound listener address, or nil before Start
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// GetClientCount returns the number of connected clients
func (s *Server) GetClientCount() int {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return len(s.clients)
}

// GetClient retrieves a client by ID
func (s *Server) GetClient(clientID string) (*Client, bool) {
	s.connMu.RLock()
	defer s.connMu.RUnlock()

	client, ok := s.clients[clientID]
	return client, ok
}

// IsRunning returns whether the server is running
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
