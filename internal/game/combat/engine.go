package combat

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EngineConfig holds the collaborators shared by every session an Engine starts.
type EngineConfig struct {
	// Catalog is the attack catalog; nil selects DefaultCatalog.
	Catalog *Catalog
	// Policy computes enemy damage; required.
	Policy EnemyPolicy
	// LethalMode selects mid-turn defeat handling.
	LethalMode LethalMode
	// Logger is the parent logger; nil selects a no-op logger.
	Logger *zap.Logger
}

// Engine manages all live combat sessions, keyed by session ID.
// All methods are safe for concurrent use.
type Engine struct {
	cfg EngineConfig

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewEngine creates an empty Engine.
//
// Precondition: cfg.Policy must be non-nil.
// Postcondition: Returns a non-nil Engine or an error wrapping ErrInvalidArgument.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Policy == nil {
		return nil, fmt.Errorf("engine requires an enemy policy: %w", ErrInvalidArgument)
	}
	if cfg.Catalog == nil {
		cfg.Catalog = DefaultCatalog()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, sessions: make(map[string]*Session)}, nil
}

// Catalog returns the catalog shared by the engine's sessions.
func (e *Engine) Catalog() *Catalog { return e.cfg.Catalog }

// StartSession begins a new encounter from cfg under a fresh random ID.
//
// Postcondition: Returns the new Session registered under its ID, or an error
// wrapping ErrInvalidArgument if cfg is invalid.
func (e *Engine) StartSession(cfg SessionConfig) (*Session, error) {
	id := uuid.NewString()
	s, err := NewSession(cfg, Options{
		ID:         id,
		Catalog:    e.cfg.Catalog,
		Policy:     e.cfg.Policy,
		LethalMode: e.cfg.LethalMode,
		Logger:     e.cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}

	e.mu.Lock()
	e.sessions[id] = s
	n := len(e.sessions)
	e.mu.Unlock()

	e.cfg.Logger.Info("combat session started",
		zap.String("session", id),
		zap.Int("enemies", len(cfg.Enemies)),
		zap.Int("player_max_health", cfg.PlayerMaxHealth),
		zap.Int("live_sessions", n),
	)
	return s, nil
}

// GetSession returns the live session with the given ID.
//
// Postcondition: Returns (session, true) if found, or (nil, false) otherwise.
func (e *Engine) GetSession(id string) (*Session, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[id]
	return s, ok
}

// EndSession discards the session with the given ID. Unknown IDs are ignored.
func (e *Engine) EndSession(id string) {
	e.mu.Lock()
	s, ok := e.sessions[id]
	delete(e.sessions, id)
	e.mu.Unlock()
	if ok {
		e.cfg.Logger.Debug("combat session discarded",
			zap.String("session", id),
			zap.Stringer("phase", s.Phase()),
		)
	}
}

// Count returns the number of live sessions.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.sessions)
}
