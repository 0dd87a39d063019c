package combat

// PlayerAction is a validated player attack awaiting its commit point.
// The result fields are computed by BeginTarget and become session state
// when CommitPlayerAction is called.
type PlayerAction struct {
	// Attack is the attack that was pending when the action began.
	Attack Attack
	// TargetID is the enemy being attacked.
	TargetID string
	// PriorHealth is the target's health before the attack.
	PriorHealth int
	// Health is the target's health after the attack: max(0, PriorHealth-Attack.Damage).
	Health int
	// Defeated is true when the attack brings the target to zero.
	Defeated bool
	// Outcome is the encounter outcome once the action is committed.
	Outcome Outcome

	session   *Session
	committed bool
}

// Committed reports whether the action has been applied to the session.
func (a *PlayerAction) Committed() bool { return a.committed }

// EnemyAction is one enemy's contribution to an enemy turn.
type EnemyAction struct {
	// EnemyID is the acting enemy.
	EnemyID string
	// Damage is the rolled damage against the player.
	Damage int
	// PlayerHealth is the player's health after this action is applied.
	PlayerHealth int
	// Lethal is true when this action brings the player to zero.
	Lethal bool
	// Cancelled is true when the action will not be applied because the
	// encounter ended earlier in the same turn.
	Cancelled bool
}

// EnemyTurn is the plan for one enemy turn. Actions are listed in the
// enemies' fixed collection order and cover exactly the enemies that were
// alive when the turn began.
type EnemyTurn struct {
	// Actions are the planned enemy actions in application order.
	Actions []EnemyAction
	// Outcome is the encounter outcome once every non-cancelled action is applied.
	Outcome Outcome

	session *Session
	next    int
	done    bool
}

// Remaining returns the number of actions not yet applied or cancelled.
func (t *EnemyTurn) Remaining() int {
	if t.done {
		return 0
	}
	n := 0
	for _, a := range t.Actions[t.next:] {
		if !a.Cancelled {
			n++
		}
	}
	return n
}

// Done reports whether the turn has been fully resolved.
func (t *EnemyTurn) Done() bool { return t.done }
