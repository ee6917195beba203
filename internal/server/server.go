// Package server provides the TCP accept loop and per-connection dispatch
// that sit outside the core engine. Its entire contract with the engine is
// that operations may be invoked concurrently from many goroutines, which
// engine.Engine's single lock already guarantees.
package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberkv/ignite/internal/protocol"
)

// Config carries the parameters required to run a Server.
type Config struct {
	// Address is the host:port to listen on (e.g. "127.0.0.1:11211").
	Address string
	// Store is dispatched onto for every parsed request.
	Store protocol.Store
	// Logger provides structured, per-connection logging.
	Logger *zap.SugaredLogger
}

// Server accepts TCP connections and serves the line protocol on each.
type Server struct {
	listener net.Listener
	store    protocol.Store
	logger   *zap.SugaredLogger

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// Listen binds the configured address and returns a Server ready to Serve.
func Listen(config *Config) (*Server, error) {
	listener, err := net.Listen("tcp", config.Address)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener:   listener,
		store:      config.Store,
		logger:     config.Logger,
		shutdownCh: make(chan struct{}),
	}, nil
}

// Addr returns the address the server is actually listening on, useful when
// Config.Address used port 0 to get an ephemeral port.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve accepts connections until ctx is cancelled, a client sends
// SHUTDOWN (which shuts the whole listener down, not just its own
// connection), or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		select {
		case <-ctx.Done():
		case <-s.shutdownCh:
		}
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handle(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.listener.Close()
}

// handle serves the line protocol on a single connection until the client
// disconnects, sends SHUTDOWN, or a read or write on the connection fails.
// A malformed request is answered with an ERROR line and the connection
// stays open; any other per-request error is also reported as an ERROR
// line. The server itself keeps running for other connections.
func (s *Server) handle(conn net.Conn) {
	id := uuid.NewString()
	log := s.logger.With("connection", id, "remote", conn.RemoteAddr().String())
	log.Infow("connection opened")
	defer func() {
		conn.Close()
		log.Infow("connection closed")
	}()

	reader := bufio.NewReader(conn)
	for {
		req, err := protocol.Read(reader)
		if err != nil {
			var badReq *protocol.ErrBadRequest
			if errors.As(err, &badReq) {
				if _, writeErr := conn.Write([]byte("ERROR " + badReq.Error() + "\n")); writeErr != nil {
					log.Warnw("failed to write response", "error", writeErr)
					return
				}
				continue
			}
			log.Debugw("connection ended", "error", err)
			return
		}

		resp, shutdown := protocol.Dispatch(req, s.store)
		if _, err := conn.Write([]byte(resp + "\n")); err != nil {
			log.Warnw("failed to write response", "error", err)
			return
		}
		if shutdown {
			log.Infow("shutdown command received, stopping listener")
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}
