package command_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/apprentice/internal/game/combat"
	"github.com/cory-johannsen/apprentice/internal/game/command"
	"github.com/cory-johannsen/apprentice/internal/game/progress"
)

func TestParseSlot(t *testing.T) {
	n, err := command.ParseSlot(" 2 ")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, in := range []string{"", "x", "0", "4", "-1"} {
		_, err := command.ParseSlot(in)
		assert.ErrorIs(t, err, progress.ErrInvalidSlot, "input %q", in)
	}
}

func TestHandleSlots(t *testing.T) {
	out := command.HandleSlots([]progress.Slot{{
		UserID:      1,
		SlotNumber:  2,
		PlayerStats: progress.PlayerStats{MaxHealth: 50, Health: 31, Level: 1},
		Progress:    progress.Progress{Scene: progress.SceneWorldMap, BattlesWon: 4, BattlesLost: 1},
		UpdatedAt:   time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "1. (empty)")
	assert.Contains(t, lines[2], "2. world_map  HP 31/50  won 4 lost 1  [2026-03-01 12:30]")
	assert.Contains(t, lines[3], "3. (empty)")
}

func TestHandleStats(t *testing.T) {
	g := progress.NewGame(50)
	g.Progress.BattlesWon = 2
	out := command.HandleStats(g)
	assert.Contains(t, out, "Level 1")
	assert.Contains(t, out, "HP: 50/50")
	assert.Contains(t, out, "won: 2")
}

func TestHandleEncounters(t *testing.T) {
	assert.Contains(t, command.HandleEncounters(nil), "default skirmish")

	out := command.HandleEncounters(map[string]*combat.Encounter{
		"zeta":  {ID: "zeta", Title: "Last", SessionConfig: combat.SessionConfig{Enemies: make([]combat.EnemyConfig, 1)}},
		"alpha": {ID: "alpha", Title: "First", SessionConfig: combat.SessionConfig{Enemies: make([]combat.EnemyConfig, 3)}},
	})
	assert.Less(t, strings.Index(out, "alpha"), strings.Index(out, "zeta"))
	assert.Contains(t, out, "First (3 enemies)")
}
