package combat

// Outcome is the state of an encounter as a whole.
type Outcome int

const (
	InProgress Outcome = iota
	Victory
	Defeat
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case InProgress:
		return "in progress"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the outcome ends the encounter.
func (o Outcome) IsTerminal() bool { return o == Victory || o == Defeat }

// EvaluateEntities decides the outcome from the player and the enemy roster.
// Defeat takes precedence over Victory when both hold.
//
// Precondition: player must be non-nil.
// Postcondition: Returns Defeat iff the player is not alive; otherwise Victory
// iff no enemy is alive; otherwise InProgress.
func EvaluateEntities(player *Entity, enemies []*Entity) Outcome {
	if !player.IsAlive() {
		return Defeat
	}
	for _, e := range enemies {
		if e.IsAlive() {
			return InProgress
		}
	}
	return Victory
}

// Evaluate returns the outcome for the session's current health state.
// It has no side effects and may be called at any time.
func Evaluate(s *Session) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EvaluateEntities(s.player, s.enemies)
}
