package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetool/internal/config"
)

// SessionHandler runs the command loop for one connected client.
type SessionHandler interface {
	// HandleSession returns when the client quits, the connection fails, or
	// ctx is cancelled.
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor listens for Telnet connections and runs each one through a
// SessionHandler on its own goroutine.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	running  bool
	sessions map[*Conn]struct{}
}

// NewAcceptor creates a Telnet acceptor with the given configuration.
//
// Precondition: handler and logger must be non-nil.
// Postcondition: Returns an Acceptor ready to be started with ListenAndServe.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Acceptor{
		cfg:      cfg,
		handler:  handler,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[*Conn]struct{}),
	}
}

// ListenAndServe binds the listener and accepts connections until Stop is
// called.
//
// Precondition: The acceptor must not already be running.
// Postcondition: Returns nil after Stop, or the listen error.
func (a *Acceptor) ListenAndServe() error {
	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	if a.ctx.Err() != nil {
		a.mu.Unlock()
		_ = listener.Close()
		return nil
	}
	a.listener = listener
	a.running = true
	a.mu.Unlock()

	a.logger.Info("telnet console listening", zap.String("addr", listener.Addr().String()))

	for {
		raw, err := listener.Accept()
		if err != nil {
			if a.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			a.logger.Error("accepting connection", zap.Error(err))
			continue
		}
		a.wg.Add(1)
		go a.serve(raw)
	}
}

// Start implements server.Service.
func (a *Acceptor) Start() error {
	return a.ListenAndServe()
}

func (a *Acceptor) serve(raw net.Conn) {
	defer a.wg.Done()
	start := time.Now()

	conn := NewConn(raw, uuid.NewString(), a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	log := a.logger.With(
		zap.String("session_id", conn.SessionID()),
		zap.String("remote_addr", raw.RemoteAddr().String()),
	)
	if !a.track(conn) {
		_ = conn.Close()
		return
	}
	defer a.untrack(conn)
	// Shutdown unblocks the session's pending read.
	stop := context.AfterFunc(a.ctx, func() {
		_ = conn.WriteLine("\r\nServer shutting down.")
		_ = conn.Close()
	})
	defer stop()

	log.Info("client connected")
	if err := conn.Negotiate(); err != nil {
		log.Warn("telnet negotiation failed", zap.Error(err))
		return
	}

	err := a.handler.HandleSession(a.ctx, conn)
	fields := []zap.Field{zap.Duration("duration", time.Since(start))}
	if err != nil {
		log.Info("client disconnected", append(fields, zap.Error(err))...)
		return
	}
	log.Info("client disconnected", fields...)
}

// track registers conn unless the acceptor is shutting down.
func (a *Acceptor) track(conn *Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx.Err() != nil {
		return false
	}
	a.sessions[conn] = struct{}{}
	return true
}

func (a *Acceptor) untrack(conn *Conn) {
	a.mu.Lock()
	delete(a.sessions, conn)
	a.mu.Unlock()
	_ = conn.Close()
}

// Stop closes the listener, cancels every session, and waits for them to
// return. Sessions still running when ctx expires have their connections
// closed; Stop then waits for them and returns ctx.Err().
//
// Postcondition: No session goroutines remain when Stop returns.
func (a *Acceptor) Stop(ctx context.Context) error {
	a.mu.Lock()
	a.running = false
	a.cancel()
	if a.listener != nil {
		_ = a.listener.Close()
	}
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("telnet console stopped")
		return nil
	case <-ctx.Done():
	}

	a.mu.Lock()
	a.logger.Warn("forcing telnet sessions closed", zap.Int("sessions", len(a.sessions)))
	for conn := range a.sessions {
		_ = conn.Close()
	}
	a.mu.Unlock()
	<-done
	return ctx.Err()
}

// Addr returns the actual listening address, or empty string if not yet listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning returns whether the acceptor is currently accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Sessions returns the number of connected clients.
func (a *Acceptor) Sessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}
