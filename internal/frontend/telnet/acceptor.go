package telnet

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/apprentice/internal/config"
	"github.com/cory-johannsen/apprentice/internal/observability"
)

// fullMessage is sent to a client turned away by the session limit.
const fullMessage = "The tower is full. Try again later.\r\n"

// SessionHandler processes a connected Telnet session.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor listens for Telnet connections and dispatches each one to a
// SessionHandler, enforcing the configured session limit.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	listener net.Listener
	wg       sync.WaitGroup
	quit     chan struct{}
	mu       sync.Mutex
	running  bool
	active   map[*Conn]struct{}
}

// NewAcceptor creates a Telnet acceptor with the given configuration.
//
// Precondition: handler and logger must be non-nil.
// Postcondition: Returns an Acceptor ready to be started with ListenAndServe.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		quit:    make(chan struct{}),
		active:  make(map[*Conn]struct{}),
	}
}

// ListenAndServe accepts connections until Stop is called.
//
// Precondition: The acceptor must not already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	a.listener = listener
	a.running = true
	a.mu.Unlock()

	a.logger.Info("telnet acceptor listening",
		zap.String("addr", listener.Addr().String()),
		zap.Int("max_sessions", a.cfg.MaxSessions),
		zap.Duration("startup", time.Since(start)),
	)

	for {
		raw, err := listener.Accept()
		if err != nil {
			select {
			case <-a.quit:
				return nil
			default:
				a.logger.Error("accepting connection", zap.Error(err))
				continue
			}
		}

		conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
		if !a.admit(conn) {
			a.logger.Warn("session limit reached; rejecting client",
				zap.String("remote_addr", raw.RemoteAddr().String()),
			)
			_ = conn.Write([]byte(fullMessage))
			_ = conn.Close()
			continue
		}

		a.wg.Add(1)
		go a.handleConn(conn)
	}
}

// admit registers conn unless the session limit is reached.
func (a *Acceptor) admit(conn *Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cfg.MaxSessions > 0 && len(a.active) >= a.cfg.MaxSessions {
		return false
	}
	a.active[conn] = struct{}{}
	return true
}

func (a *Acceptor) release(conn *Conn) {
	a.mu.Lock()
	delete(a.active, conn)
	a.mu.Unlock()
}

// handleConn runs one session to completion.
func (a *Acceptor) handleConn(conn *Conn) {
	defer a.wg.Done()
	defer a.release(conn)
	defer conn.Close()

	start := time.Now()
	log := observability.RemoteLogger(a.logger, conn.RemoteAddr().String())
	log.Info("client connected")

	if err := conn.Negotiate(); err != nil {
		log.Error("telnet negotiation failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-a.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := a.handler.HandleSession(ctx, conn); err != nil {
		log.Debug("session ended", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}
	log.Info("session ended cleanly", zap.Duration("duration", time.Since(start)))
}

// Stop closes the listener and every live connection, then waits for the
// session goroutines to exit.
//
// Postcondition: All connections are closed and goroutines have exited.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.quit)
	if a.listener != nil {
		_ = a.listener.Close()
	}
	for conn := range a.active {
		_ = conn.Close()
	}
	a.mu.Unlock()

	a.wg.Wait()
	a.logger.Info("telnet acceptor stopped")
}

// Addr returns the listening address, or "" if not yet listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning reports whether the acceptor is accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Active returns the number of connected sessions.
func (a *Acceptor) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.active)
}
