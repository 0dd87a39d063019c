// Package progress defines the apprentice's saved game: player stats, story
// progress, the save-slot record that holds them, and the scene transitions
// that follow a battle.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/apprentice/internal/game/combat"
)

// Slot numbers accepted by every SaveSlotStore.
const (
	MinSlot = 1
	MaxSlot = 3
)

// Scene identifiers.
const (
	SceneMainMenu = "main_menu"
	SceneWorldMap = "world_map"
	SceneBattle   = "battle"
)

// ErrInvalidSlot is returned for a slot number outside [MinSlot, MaxSlot].
var ErrInvalidSlot = errors.New("invalid save slot")

// ErrSlotNotFound is returned when a save slot has never been written.
var ErrSlotNotFound = errors.New("save slot not found")

// PlayerStats is the persistent portion of the player entity.
type PlayerStats struct {
	MaxHealth int `json:"maxHealth"`
	Health    int `json:"health"`
	Level     int `json:"level"`
}

// Progress tracks where the apprentice is and how the battles went.
type Progress struct {
	Scene       string `json:"scene"`
	BattlesWon  int    `json:"battlesWon"`
	BattlesLost int    `json:"battlesLost"`
}

// Slot is one save-slot record.
//
// UserID and SlotNumber form the key; UpdatedAt is set by the store.
type Slot struct {
	UserID      int64
	SlotNumber  int
	PlayerStats PlayerStats
	Progress    Progress
	UpdatedAt   time.Time
}

// SaveSlotStore persists save slots.
type SaveSlotStore interface {
	// Save inserts or replaces the slot and returns it with UpdatedAt set.
	Save(ctx context.Context, slot Slot) (Slot, error)
	// Load returns the slot or ErrSlotNotFound.
	Load(ctx context.Context, userID int64, slotNumber int) (Slot, error)
	// List returns the user's slots ordered by slot number.
	List(ctx context.Context, userID int64) ([]Slot, error)
}

// ValidateSlot checks that n is a usable slot number.
//
// Postcondition: Returns nil iff MinSlot <= n <= MaxSlot; otherwise an error wrapping ErrInvalidSlot.
func ValidateSlot(n int) error {
	if n < MinSlot || n > MaxSlot {
		return fmt.Errorf("slot %d not in [%d, %d]: %w", n, MinSlot, MaxSlot, ErrInvalidSlot)
	}
	return nil
}

// Game is the in-memory state of one player's run between saves.
type Game struct {
	Stats    PlayerStats
	Progress Progress
}

// NewGame returns a fresh run at full health on the world map.
//
// Precondition: maxHealth > 0.
func NewGame(maxHealth int) *Game {
	return &Game{
		Stats:    PlayerStats{MaxHealth: maxHealth, Health: maxHealth, Level: 1},
		Progress: Progress{Scene: SceneWorldMap},
	}
}

// FromSlot restores a run from a saved slot.
func FromSlot(s Slot) *Game {
	return &Game{Stats: s.PlayerStats, Progress: s.Progress}
}

// ToSlot captures the run as a slot record for userID and slotNumber.
func (g *Game) ToSlot(userID int64, slotNumber int) Slot {
	return Slot{
		UserID:      userID,
		SlotNumber:  slotNumber,
		PlayerStats: g.Stats,
		Progress:    g.Progress,
	}
}

// NextScene returns the scene that follows a finished battle.
//
// Postcondition: Victory leads to the world map, Defeat to the main menu.
// A battle still in progress stays in SceneBattle.
func NextScene(o combat.Outcome) string {
	switch o {
	case combat.Victory:
		return SceneWorldMap
	case combat.Defeat:
		return SceneMainMenu
	default:
		return SceneBattle
	}
}

// RecordBattle folds a finished battle into the run: the counters, the
// scene and the player's remaining health. A defeated apprentice wakes at
// the main menu with full health.
//
// Precondition: o is terminal.
func (g *Game) RecordBattle(o combat.Outcome, player combat.Entity) {
	g.Progress.Scene = NextScene(o)
	switch o {
	case combat.Victory:
		g.Progress.BattlesWon++
		g.Stats.Health = player.Health
	case combat.Defeat:
		g.Progress.BattlesLost++
		g.Stats.Health = g.Stats.MaxHealth
	}
}

// SessionConfig builds the combat configuration for enc with the run's
// maximum health. Every battle starts at full health.
func (g *Game) SessionConfig(enc combat.SessionConfig) combat.SessionConfig {
	cfg := enc
	cfg.Enemies = append([]combat.EnemyConfig(nil), enc.Enemies...)
	if g.Stats.MaxHealth > 0 {
		cfg.PlayerMaxHealth = g.Stats.MaxHealth
	}
	return cfg
}
