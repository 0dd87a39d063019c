package combat

import "fmt"

// ApplyDamage reduces the entity's health by amount, flooring at zero.
//
// Precondition: e must be non-nil.
// Postcondition: On success e.Health == max(0, priorHealth-amount) and e is returned.
// Returns ErrInvalidArgument and leaves e unchanged if amount < 0.
func ApplyDamage(e *Entity, amount int) (*Entity, error) {
	if amount < 0 {
		return e, fmt.Errorf("damage %d against %q: %w", amount, e.ID, ErrInvalidArgument)
	}
	e.Health = healthAfter(e.Health, amount)
	return e, nil
}

// healthAfter computes the clamped health without mutating anything.
func healthAfter(health, amount int) int {
	health -= amount
	if health < 0 {
		return 0
	}
	return health
}
