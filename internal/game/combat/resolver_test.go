package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/apprentice/internal/game/combat"
)

func TestApplyDamage_Reduces(t *testing.T) {
	e := &combat.Entity{ID: "enemy0", Health: 15, MaxHealth: 15}
	got, err := combat.ApplyDamage(e, 8)
	require.NoError(t, err)
	assert.Same(t, e, got)
	assert.Equal(t, 7, e.Health)
}

func TestApplyDamage_ClampsAtZero(t *testing.T) {
	e := &combat.Entity{ID: "enemy0", Health: 5, MaxHealth: 15}
	_, err := combat.ApplyDamage(e, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Health)
	assert.False(t, e.IsAlive())
}

func TestApplyDamage_ZeroIsNoop(t *testing.T) {
	e := &combat.Entity{ID: "enemy0", Health: 5, MaxHealth: 15}
	_, err := combat.ApplyDamage(e, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, e.Health)
}

func TestApplyDamage_NegativeRejected(t *testing.T) {
	e := &combat.Entity{ID: "enemy0", Health: 5, MaxHealth: 15}
	_, err := combat.ApplyDamage(e, -1)
	assert.ErrorIs(t, err, combat.ErrInvalidArgument)
	assert.Equal(t, 5, e.Health)
}

// TestApplyDamage_Property verifies health' == max(0, health-amount) and
// that health never leaves [0, MaxHealth].
func TestApplyDamage_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.IntRange(1, 500).Draw(rt, "max")
		hp := rapid.IntRange(0, maxHP).Draw(rt, "hp")
		amount := rapid.IntRange(0, 1000).Draw(rt, "amount")

		e := &combat.Entity{ID: "x", Health: hp, MaxHealth: maxHP}
		_, err := combat.ApplyDamage(e, amount)
		require.NoError(rt, err)

		want := hp - amount
		if want < 0 {
			want = 0
		}
		assert.Equal(rt, want, e.Health)
		assert.GreaterOrEqual(rt, e.Health, 0)
		assert.LessOrEqual(rt, e.Health, maxHP)
	})
}

func TestEvaluateEntities(t *testing.T) {
	alive := func(id string) *combat.Entity { return &combat.Entity{ID: id, Health: 1, MaxHealth: 1} }
	dead := func(id string) *combat.Entity { return &combat.Entity{ID: id, Health: 0, MaxHealth: 1} }

	assert.Equal(t, combat.InProgress, combat.EvaluateEntities(alive("p"), []*combat.Entity{alive("a"), dead("b")}))
	assert.Equal(t, combat.Victory, combat.EvaluateEntities(alive("p"), []*combat.Entity{dead("a"), dead("b")}))
	assert.Equal(t, combat.Defeat, combat.EvaluateEntities(dead("p"), []*combat.Entity{alive("a")}))
	// Defeat wins when both sides are down.
	assert.Equal(t, combat.Defeat, combat.EvaluateEntities(dead("p"), []*combat.Entity{dead("a")}))
}

func TestOutcome_StringAndTerminal(t *testing.T) {
	assert.Equal(t, "in progress", combat.InProgress.String())
	assert.Equal(t, "victory", combat.Victory.String())
	assert.Equal(t, "defeat", combat.Defeat.String())
	assert.False(t, combat.InProgress.IsTerminal())
	assert.True(t, combat.Victory.IsTerminal())
	assert.True(t, combat.Defeat.IsTerminal())
}

func TestEvaluate_IsIdempotent(t *testing.T) {
	s, rec := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15, 15)
	before := s.Player()
	for i := 0; i < 3; i++ {
		assert.Equal(t, combat.InProgress, combat.Evaluate(s))
	}
	assert.Equal(t, before, s.Player())
	assert.Empty(t, rec.types())
}
