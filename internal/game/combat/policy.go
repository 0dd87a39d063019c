package combat

import (
	"fmt"

	"github.com/cory-johannsen/apprentice/internal/game/dice"
)

// Source is the subset of dice.Source used by enemy policies.
type Source interface {
	Intn(n int) int
}

// EnemyPolicy decides how much damage a living enemy deals to the player
// during the enemy turn.
type EnemyPolicy interface {
	// ComputeDamage returns a non-negative damage value for enemy, or an
	// error when no value could be produced.
	ComputeDamage(enemy *Entity) (int, error)
}

// Reference enemy damage bounds, inclusive.
const (
	DefaultEnemyMinDamage = 5
	DefaultEnemyMaxDamage = 10
)

// UniformPolicy draws damage uniformly from [Min, Max] using an injected Source.
type UniformPolicy struct {
	src Source
	min int
	max int
}

// NewUniformPolicy creates a UniformPolicy over the inclusive range [min, max].
//
// Precondition: src must be non-nil.
// Postcondition: Returns an error wrapping ErrInvalidArgument unless 0 <= min <= max.
func NewUniformPolicy(src Source, min, max int) (*UniformPolicy, error) {
	if src == nil {
		return nil, fmt.Errorf("uniform policy: nil source: %w", ErrInvalidArgument)
	}
	if min < 0 || max < min {
		return nil, fmt.Errorf("uniform policy: range [%d, %d]: %w", min, max, ErrInvalidArgument)
	}
	return &UniformPolicy{src: src, min: min, max: max}, nil
}

// DefaultEnemyPolicy returns the reference [5, 10] uniform policy over src.
//
// Precondition: src must be non-nil.
func DefaultEnemyPolicy(src Source) *UniformPolicy {
	return &UniformPolicy{src: src, min: DefaultEnemyMinDamage, max: DefaultEnemyMaxDamage}
}

// ComputeDamage implements EnemyPolicy.
//
// Postcondition: Returns a value in [min, max].
func (p *UniformPolicy) ComputeDamage(_ *Entity) (int, error) {
	return p.min + p.src.Intn(p.max-p.min+1), nil
}

// Bounds returns the inclusive damage range.
func (p *UniformPolicy) Bounds() (int, int) { return p.min, p.max }

// ExpressionRoller rolls a parsed dice expression. *dice.Roller satisfies it.
type ExpressionRoller interface {
	Roll(expr dice.Expression) (dice.RollResult, error)
}

// DicePolicy rolls a dice expression for every enemy action, e.g. "1d6+4",
// which is uniform over [5, 10].
type DicePolicy struct {
	roller ExpressionRoller
	expr   dice.Expression
}

// NewDicePolicy parses expr and binds it to roller.
//
// Precondition: roller must be non-nil.
// Postcondition: Returns an error wrapping ErrInvalidArgument if expr does not
// parse or can produce a negative total.
func NewDicePolicy(roller ExpressionRoller, expr string) (*DicePolicy, error) {
	if roller == nil {
		return nil, fmt.Errorf("dice policy: nil roller: %w", ErrInvalidArgument)
	}
	e, err := dice.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("dice policy: %w: %w", ErrInvalidArgument, err)
	}
	if lo, _ := e.Bounds(); lo < 0 {
		return nil, fmt.Errorf("dice policy: %q can roll below zero: %w", expr, ErrInvalidArgument)
	}
	return &DicePolicy{roller: roller, expr: e}, nil
}

// ComputeDamage implements EnemyPolicy.
//
// Postcondition: Returns the roll's total, floored at zero, or the roller's
// error wrapped with the expression.
func (p *DicePolicy) ComputeDamage(enemy *Entity) (int, error) {
	r, err := p.roller.Roll(p.expr)
	if err != nil {
		if enemy != nil {
			return 0, fmt.Errorf("rolling %s for %q: %w", p.expr.Raw, enemy.ID, err)
		}
		return 0, fmt.Errorf("rolling %s: %w", p.expr.Raw, err)
	}
	return max(r.Total(), 0), nil
}

// Bounds returns the inclusive range of totals the expression can produce.
func (p *DicePolicy) Bounds() (int, int) { return p.expr.Bounds() }
