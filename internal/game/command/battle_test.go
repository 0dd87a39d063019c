package command_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/apprentice/internal/game/combat"
	"github.com/cory-johannsen/apprentice/internal/game/command"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

func newTestSession(t *testing.T) *combat.Session {
	t.Helper()
	s, err := combat.NewSession(combat.DefaultSessionConfig(), combat.Options{
		Policy: combat.DefaultEnemyPolicy(fixedSrc{0}),
	})
	require.NoError(t, err)
	return s
}

func TestResolveAttack(t *testing.T) {
	c := combat.DefaultCatalog()
	cases := map[string]string{
		"fireball":    "fireball",
		"FIREBALL":    "fireball",
		"Wind Cutter": "wind_cutter",
		"water blast": "water_blast",
		"4":           "rock_throw",
		" 1 ":         "fireball",
	}
	for in, want := range cases {
		a, err := command.ResolveAttack(c, in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, a.ID, "input %q", in)
	}

	for _, in := range []string{"", "0", "5", "lightning"} {
		_, err := command.ResolveAttack(c, in)
		assert.ErrorIs(t, err, combat.ErrNotFound, "input %q", in)
	}
}

func TestResolveTarget(t *testing.T) {
	enemies := []combat.Entity{{ID: "enemy0"}, {ID: "enemy1", Health: 0}, {ID: "lich"}}

	id, err := command.ResolveTarget(enemies, "2")
	require.NoError(t, err)
	assert.Equal(t, "enemy1", id, "defeated enemies keep their number")

	id, err = command.ResolveTarget(enemies, "LICH")
	require.NoError(t, err)
	assert.Equal(t, "lich", id)

	for _, in := range []string{"", "0", "4", "dragon"} {
		_, err := command.ResolveTarget(enemies, in)
		assert.ErrorIs(t, err, combat.ErrNotFound, "input %q", in)
	}
}

func TestHandleAttacks(t *testing.T) {
	out := command.HandleAttacks(combat.DefaultCatalog())
	for _, want := range []string{"1. Fireball", "2. Wind Cutter", "3. Water Blast", "4. Rock Throw"} {
		assert.Contains(t, out, want)
	}
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestHandleCast_SelectsAttack(t *testing.T) {
	s := newTestSession(t)
	out := command.HandleCast(s, "rock throw")
	assert.Contains(t, out, "Rock Throw")
	assert.Equal(t, combat.PhaseAwaitingTarget, s.Phase())
	a, ok := s.PendingAttack()
	require.True(t, ok)
	assert.Equal(t, "rock_throw", a.ID)
}

func TestHandleCast_Errors(t *testing.T) {
	s := newTestSession(t)
	assert.Contains(t, command.HandleCast(s, ""), "Usage")
	assert.Contains(t, command.HandleCast(s, "lightning"), "don't know")
	assert.Equal(t, combat.PhasePlayerSelecting, s.Phase())

	require.NoError(t, s.SelectAttack("fireball"))
	_, err := s.TargetEnemy("enemy0")
	require.NoError(t, err)
	assert.Equal(t, "You can't do that right now.", command.HandleCast(s, "fireball"))
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "The battle is already over.", command.DescribeError(combat.ErrSessionClosed))
	assert.Equal(t, "That enemy has already fallen.", command.DescribeError(combat.ErrInvalidTarget))
	assert.Equal(t, "Wait for the current action to finish.", command.DescribeError(combat.ErrConcurrentCommand))
	assert.Equal(t, "There is nothing by that name here.", command.DescribeError(combat.ErrNotFound))
	assert.Contains(t, command.DescribeError(combat.ErrInvalidArgument), "went wrong")
}
