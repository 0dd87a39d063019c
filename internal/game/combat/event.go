package combat

// EventType identifies a state change the presentation layer can observe.
type EventType int

const (
	EventHealthChanged EventType = iota + 1
	EventEntityDefeated
	EventBattleEnded
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventHealthChanged:
		return "health_changed"
	case EventEntityDefeated:
		return "entity_defeated"
	case EventBattleEnded:
		return "battle_ended"
	default:
		return "unknown"
	}
}

// Event is emitted by a Session after a committed state change.
type Event struct {
	Type EventType
	// EntityID is the affected entity; empty for EventBattleEnded.
	EntityID string
	// Health is the entity's new health (EventHealthChanged).
	Health int
	// Amount is the damage that produced the change (EventHealthChanged).
	Amount int
	// SourceID is the entity that dealt the damage (EventHealthChanged).
	SourceID string
	// Outcome is the terminal result (EventBattleEnded).
	Outcome Outcome
}

// Listener receives session events in emission order.
type Listener func(Event)
