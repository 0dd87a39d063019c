package combat

import (
	"fmt"

	"go.uber.org/zap"
)

// RunEnemyTurn resolves a whole enemy turn synchronously. It is BeginEnemyTurn
// followed by CommitEnemyAction until the turn is done.
//
// Precondition: Phase is PhaseEnemyTurn.
// Postcondition: Phase is PhasePlayerSelecting or PhaseDefeat.
func (s *Session) RunEnemyTurn() (*EnemyTurn, error) {
	t, err := s.BeginEnemyTurn()
	if err != nil {
		return nil, err
	}
	for !t.Done() {
		if _, _, err := s.CommitEnemyAction(t); err != nil {
			return t, err
		}
	}
	return t, nil
}

// BeginEnemyTurn plans the enemy turn: every enemy alive at this moment, in
// collection order, rolls its damage through the session's EnemyPolicy. The
// projected player health after each action is recorded. Under HaltOnLethal
// the actions after the first lethal one are marked Cancelled.
//
// Precondition: Phase is PhaseEnemyTurn.
// Postcondition: Phase is PhaseResolvingEnemyAction and the turn is in flight.
// A policy error is returned wrapped; on error the session is unchanged.
func (s *Session) BeginEnemyTurn() (*EnemyTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardLocked("enemy turn", PhaseEnemyTurn); err != nil {
		return nil, err
	}

	t := &EnemyTurn{session: s}
	health := s.player.Health
	halted := false
	for _, enemy := range s.enemies {
		if !enemy.IsAlive() {
			continue
		}
		dmg, err := s.policy.ComputeDamage(enemy.clone())
		if err != nil {
			return nil, fmt.Errorf("enemy %q damage: %w", enemy.ID, err)
		}
		if dmg < 0 {
			return nil, fmt.Errorf("enemy %q rolled %d damage: %w", enemy.ID, dmg, ErrInvalidArgument)
		}
		act := EnemyAction{EnemyID: enemy.ID, Damage: dmg}
		if halted {
			act.Cancelled = true
			act.PlayerHealth = health
			t.Actions = append(t.Actions, act)
			continue
		}
		wasAlive := health > 0
		health = healthAfter(health, dmg)
		act.PlayerHealth = health
		act.Lethal = wasAlive && health == 0
		if act.Lethal && s.lethal == HaltOnLethal {
			halted = true
		}
		t.Actions = append(t.Actions, act)
	}
	if health == 0 {
		t.Outcome = Defeat
	}

	s.enemyTurn = t
	s.phase = PhaseResolvingEnemyAction
	s.logger.Debug("enemy turn planned",
		zap.Int("actions", len(t.Actions)),
		zap.Int("projected_health", health),
	)
	return t, nil
}

// CommitEnemyAction applies the next planned action of t to the player and
// emits a health-changed event, followed by an entity-defeated event on the
// action that brings the player to zero. The outcome is checked after every action:
// once the turn ends (or the player falls under HaltOnLethal) the session
// moves to PhaseDefeat or back to PhasePlayerSelecting.
//
// Precondition: t was returned by BeginEnemyTurn on this session and is not done.
// Postcondition: Returns the applied action and whether the turn is done.
// Returns ErrInvalidState for a foreign or finished turn.
func (s *Session) CommitEnemyAction(t *EnemyTurn) (EnemyAction, bool, error) {
	s.mu.Lock()

	if s.phase.IsTerminal() {
		s.mu.Unlock()
		return EnemyAction{}, true, fmt.Errorf("commit enemy action: %w", ErrSessionClosed)
	}
	if t == nil || t.session != s || s.enemyTurn != t || t.done {
		s.mu.Unlock()
		return EnemyAction{}, false, fmt.Errorf("commit enemy action: no such turn in flight: %w", ErrInvalidState)
	}

	var (
		applied EnemyAction
		events  []Event
	)
	if t.next < len(t.Actions) && !t.Actions[t.next].Cancelled {
		applied = t.Actions[t.next]
		t.next++
		wasAlive := s.player.IsAlive()
		if _, err := ApplyDamage(s.player, applied.Damage); err != nil {
			t.next--
			s.mu.Unlock()
			return EnemyAction{}, false, fmt.Errorf("commit enemy action: %w", err)
		}
		events = append(events, Event{
			Type:     EventHealthChanged,
			EntityID: s.player.ID,
			Health:   s.player.Health,
			Amount:   applied.Damage,
			SourceID: applied.EnemyID,
		})
		if wasAlive && !s.player.IsAlive() {
			events = append(events, Event{Type: EventEntityDefeated, EntityID: s.player.ID, SourceID: applied.EnemyID})
		}
		s.logger.Debug("enemy action resolved",
			zap.String("enemy", applied.EnemyID),
			zap.Int("damage", applied.Damage),
			zap.Int("player_health", s.player.Health),
		)
	}

	outcome := EvaluateEntities(s.player, s.enemies)
	halt := outcome == Defeat && s.lethal == HaltOnLethal
	if halt || t.Remaining() == 0 {
		t.done = true
		t.next = len(t.Actions)
		s.enemyTurn = nil
		if outcome == Defeat {
			events = append(events, s.endLocked(Defeat))
		} else {
			s.phase = PhasePlayerSelecting
		}
	}
	done := t.done
	listeners := s.listenersLocked()
	s.mu.Unlock()

	dispatch(listeners, events)
	return applied, done, nil
}
