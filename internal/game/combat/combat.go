// Package combat implements the turn-based battle engine for Apprentice.
package combat

// Kind distinguishes the player entity from enemy entities.
type Kind int

// The zero Kind is neither player nor enemy.
const (
	KindPlayer Kind = iota + 1
	KindEnemy
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// Entity represents one combatant in an encounter: the player or an enemy.
//
// Invariant: 0 <= Health <= MaxHealth.
type Entity struct {
	ID        string
	Kind      Kind
	Name      string
	MaxHealth int
	Health    int
}

// newEntity returns an Entity at full health.
func newEntity(id string, kind Kind, name string, maxHealth int) *Entity {
	return &Entity{
		ID:        id,
		Kind:      kind,
		Name:      name,
		MaxHealth: maxHealth,
		Health:    maxHealth,
	}
}

// IsPlayer reports whether this entity is the player.
func (e *Entity) IsPlayer() bool { return e.Kind == KindPlayer }

// IsAlive reports whether the entity still has health remaining.
//
// Postcondition: Returns true iff Health > 0.
func (e *Entity) IsAlive() bool { return e.Health > 0 }

// clone returns a detached copy of e.
func (e *Entity) clone() *Entity {
	cp := *e
	return &cp
}
