package combat

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// PlayerID is the fixed entity ID of the player in every session.
const PlayerID = "player"

// Phase is the current state of the turn-order state machine.
type Phase int

const (
	PhasePlayerSelecting Phase = iota
	PhaseAwaitingTarget
	PhaseResolvingPlayerAction
	PhaseEnemyTurn
	PhaseResolvingEnemyAction
	PhaseVictory
	PhaseDefeat
)

// String returns a human-readable phase label.
func (p Phase) String() string {
	switch p {
	case PhasePlayerSelecting:
		return "player_selecting"
	case PhaseAwaitingTarget:
		return "awaiting_target"
	case PhaseResolvingPlayerAction:
		return "resolving_player_action"
	case PhaseEnemyTurn:
		return "enemy_turn"
	case PhaseResolvingEnemyAction:
		return "resolving_enemy_action"
	case PhaseVictory:
		return "victory"
	case PhaseDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the phase is Victory or Defeat.
func (p Phase) IsTerminal() bool { return p == PhaseVictory || p == PhaseDefeat }

// LethalMode selects what happens to the rest of an enemy turn once the
// player has been brought to zero health.
type LethalMode int

const (
	// HaltOnLethal cancels every queued enemy action after the lethal one.
	HaltOnLethal LethalMode = iota
	// ResolveAll applies every queued enemy action and declares Defeat
	// once the turn ends.
	ResolveAll
)

// String returns the configuration name of the mode.
func (m LethalMode) String() string {
	switch m {
	case HaltOnLethal:
		return "halt"
	case ResolveAll:
		return "resolve_all"
	default:
		return "unknown"
	}
}

// ParseLethalMode converts a configuration string into a LethalMode.
//
// Postcondition: Returns an error wrapping ErrInvalidArgument for anything
// other than "halt" or "resolve_all".
func ParseLethalMode(s string) (LethalMode, error) {
	switch s {
	case "halt", "":
		return HaltOnLethal, nil
	case "resolve_all":
		return ResolveAll, nil
	default:
		return HaltOnLethal, fmt.Errorf("lethal mode %q: %w", s, ErrInvalidArgument)
	}
}

// Options carries the collaborators of a Session.
type Options struct {
	// ID identifies the session in logs; optional.
	ID string
	// Catalog is the attack catalog; nil selects DefaultCatalog.
	Catalog *Catalog
	// Policy computes enemy damage; required.
	Policy EnemyPolicy
	// LethalMode selects mid-turn defeat handling.
	LethalMode LethalMode
	// Logger receives debug traces; nil selects a no-op logger.
	Logger *zap.Logger
}

// Session is one combat encounter. All state changes go through its command
// methods; presentation code observes them through Subscribe.
//
// Session is safe for concurrent use, but commands are meant to be issued
// one at a time. A command that overlaps an in-flight action fails with
// ErrConcurrentCommand.
type Session struct {
	mu sync.Mutex

	id      string
	catalog *Catalog
	policy  EnemyPolicy
	lethal  LethalMode
	logger  *zap.Logger

	player  *Entity
	enemies []*Entity
	pending *Attack
	phase   Phase

	// Exactly one of these is non-nil while an action is between its begin
	// and commit points.
	playerAction *PlayerAction
	enemyTurn    *EnemyTurn

	listeners    map[int]Listener
	nextListener int
}

// NewSession starts an encounter from cfg in PhasePlayerSelecting.
//
// Precondition: opts.Policy must be non-nil.
// Postcondition: Returns a Session with full-health entities and no pending
// attack, or an error wrapping ErrInvalidArgument.
func NewSession(cfg SessionConfig, opts Options) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Policy == nil {
		return nil, fmt.Errorf("session requires an enemy policy: %w", ErrInvalidArgument)
	}
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	playerName := cfg.PlayerName
	if playerName == "" {
		playerName = "Apprentice"
	}
	enemies := make([]*Entity, len(cfg.Enemies))
	for i, ec := range cfg.Enemies {
		enemies[i] = newEntity(enemyID(i, ec), KindEnemy, enemyName(ec), ec.MaxHealth)
	}

	return &Session{
		id:        opts.ID,
		catalog:   opts.Catalog,
		policy:    opts.Policy,
		lethal:    opts.LethalMode,
		logger:    opts.Logger.With(zap.String("session", opts.ID)),
		player:    newEntity(PlayerID, KindPlayer, playerName, cfg.PlayerMaxHealth),
		enemies:   enemies,
		phase:     PhasePlayerSelecting,
		listeners: make(map[int]Listener),
	}, nil
}

// ID returns the session identifier given at construction.
func (s *Session) ID() string { return s.id }

// Catalog returns the session's attack catalog.
func (s *Session) Catalog() *Catalog { return s.catalog }

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Outcome returns the current outcome of the encounter.
func (s *Session) Outcome() Outcome {
	return Evaluate(s)
}

// Player returns a copy of the player entity.
func (s *Session) Player() Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.player
}

// Enemies returns copies of every enemy, defeated ones included, in
// collection order.
func (s *Session) Enemies() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entity, len(s.enemies))
	for i, e := range s.enemies {
		out[i] = *e
	}
	return out
}

// Targets returns copies of the enemies that may still be targeted.
func (s *Session) Targets() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entity
	for _, e := range s.enemies {
		if e.IsAlive() {
			out = append(out, *e)
		}
	}
	return out
}

// PendingAttack returns the pending selection, if any.
//
// Postcondition: ok is true iff Phase() is PhaseAwaitingTarget.
func (s *Session) PendingAttack() (Attack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Attack{}, false
	}
	return *s.pending, true
}

// Subscribe registers l to receive events. The returned function removes it.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// SelectAttack stores attackID as the pending selection and moves to
// PhaseAwaitingTarget. Selecting again before a target is chosen replaces the
// pending selection.
//
// Precondition: Phase is PhasePlayerSelecting or PhaseAwaitingTarget.
// Postcondition: On error the session is unchanged.
func (s *Session) SelectAttack(attackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardLocked("select attack", PhasePlayerSelecting, PhaseAwaitingTarget); err != nil {
		return err
	}
	a, err := s.catalog.Get(attackID)
	if err != nil {
		return fmt.Errorf("select attack: %w", err)
	}
	s.pending = &a
	s.phase = PhaseAwaitingTarget
	s.logger.Debug("attack selected", zap.String("attack", a.ID), zap.Int("damage", a.Damage))
	return nil
}

// TargetEnemy resolves the pending attack against enemyID in one step.
// It is BeginTarget immediately followed by CommitPlayerAction.
func (s *Session) TargetEnemy(enemyID string) (*PlayerAction, error) {
	a, err := s.BeginTarget(enemyID)
	if err != nil {
		return nil, err
	}
	if err := s.CommitPlayerAction(a); err != nil {
		return nil, err
	}
	return a, nil
}

// BeginTarget validates an attack of the pending selection against enemyID
// and computes its result. The selection moves into the returned action, and
// the session moves to PhaseResolvingPlayerAction and accepts no other command
// until CommitPlayerAction is called.
//
// Precondition: Phase is PhaseAwaitingTarget.
// Postcondition: Returns ErrNotFound for an unknown enemy, ErrInvalidTarget
// for a defeated one; on error the session is unchanged.
func (s *Session) BeginTarget(enemyID string) (*PlayerAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardLocked("target enemy", PhaseAwaitingTarget); err != nil {
		return nil, err
	}
	target := s.findEnemyLocked(enemyID)
	if target == nil {
		return nil, fmt.Errorf("target enemy %q: %w", enemyID, ErrNotFound)
	}
	if !target.IsAlive() {
		return nil, fmt.Errorf("target enemy %q is already defeated: %w", enemyID, ErrInvalidTarget)
	}

	projected := target.clone()
	projected.Health = healthAfter(target.Health, s.pending.Damage)
	roster := make([]*Entity, len(s.enemies))
	for i, e := range s.enemies {
		if e == target {
			roster[i] = projected
		} else {
			roster[i] = e
		}
	}

	a := &PlayerAction{
		Attack:      *s.pending,
		TargetID:    target.ID,
		PriorHealth: target.Health,
		Health:      projected.Health,
		Defeated:    !projected.IsAlive(),
		Outcome:     EvaluateEntities(s.player, roster),
		session:     s,
	}
	s.playerAction = a
	s.pending = nil
	s.phase = PhaseResolvingPlayerAction
	return a, nil
}

// CommitPlayerAction applies a begun player action: damage is dealt and
// events are emitted. The session then moves to
// PhaseVictory if every enemy is defeated, otherwise to PhaseEnemyTurn.
//
// Precondition: a was returned by BeginTarget on this session and not yet committed.
// Postcondition: Returns ErrInvalidState for a foreign or stale action.
func (s *Session) CommitPlayerAction(a *PlayerAction) error {
	s.mu.Lock()

	if s.phase.IsTerminal() {
		s.mu.Unlock()
		return fmt.Errorf("commit player action: %w", ErrSessionClosed)
	}
	if a == nil || a.session != s || s.playerAction != a {
		s.mu.Unlock()
		return fmt.Errorf("commit player action: no such action in flight: %w", ErrInvalidState)
	}

	target := s.findEnemyLocked(a.TargetID)
	if _, err := ApplyDamage(target, a.Attack.Damage); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("commit player action: %w", err)
	}
	a.committed = true
	s.playerAction = nil

	events := []Event{{
		Type:     EventHealthChanged,
		EntityID: target.ID,
		Health:   target.Health,
		Amount:   a.Attack.Damage,
		SourceID: s.player.ID,
	}}
	if !target.IsAlive() {
		events = append(events, Event{Type: EventEntityDefeated, EntityID: target.ID})
	}

	s.logger.Debug("player action resolved",
		zap.String("attack", a.Attack.ID),
		zap.String("target", target.ID),
		zap.Int("health", target.Health),
	)

	if EvaluateEntities(s.player, s.enemies) == Victory {
		events = append(events, s.endLocked(Victory))
	} else {
		s.phase = PhaseEnemyTurn
	}
	listeners := s.listenersLocked()
	s.mu.Unlock()

	dispatch(listeners, events)
	return nil
}

// guardLocked enforces the command preconditions shared by every command:
// terminal sessions are closed, in-flight actions block, and the phase must
// be one of allowed.
func (s *Session) guardLocked(op string, allowed ...Phase) error {
	if s.phase.IsTerminal() {
		return fmt.Errorf("%s: %w", op, ErrSessionClosed)
	}
	if s.playerAction != nil || s.enemyTurn != nil {
		return fmt.Errorf("%s: action in flight: %w", op, ErrConcurrentCommand)
	}
	for _, p := range allowed {
		if s.phase == p {
			return nil
		}
	}
	return fmt.Errorf("%s during %s: %w", op, s.phase, ErrInvalidState)
}

func (s *Session) findEnemyLocked(id string) *Entity {
	for _, e := range s.enemies {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// endLocked moves the session into the terminal phase for o and returns the
// battle-ended event.
func (s *Session) endLocked(o Outcome) Event {
	if o == Victory {
		s.phase = PhaseVictory
	} else {
		s.phase = PhaseDefeat
	}
	s.pending = nil
	s.playerAction = nil
	s.enemyTurn = nil
	s.logger.Info("battle ended",
		zap.Stringer("outcome", o),
		zap.Int("player_health", s.player.Health),
	)
	return Event{Type: EventBattleEnded, Outcome: o}
}

func (s *Session) listenersLocked() []Listener {
	if len(s.listeners) == 0 {
		return nil
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = s.listeners[id]
	}
	return out
}

func dispatch(listeners []Listener, events []Event) {
	for _, ev := range events {
		for _, l := range listeners {
			l(ev)
		}
	}
}
