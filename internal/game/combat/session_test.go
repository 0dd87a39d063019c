package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/apprentice/internal/game/combat"
	"github.com/cory-johannsen/apprentice/internal/game/dice"
)

// Fireball against a fresh skeleton leaves it at 7 and hands the turn to the enemies.
func TestScenario_FireballFirstStrike(t *testing.T) {
	s, rec := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15, 15, 15)

	require.NoError(t, s.SelectAttack("fireball"))
	assert.Equal(t, combat.PhaseAwaitingTarget, s.Phase())
	pending, ok := s.PendingAttack()
	require.True(t, ok)
	assert.Equal(t, 8, pending.Damage)

	a, err := s.TargetEnemy("enemy0")
	require.NoError(t, err)
	assert.True(t, a.Committed())
	assert.Equal(t, 15, a.PriorHealth)
	assert.Equal(t, 7, a.Health)
	assert.False(t, a.Defeated)
	assert.Equal(t, combat.InProgress, a.Outcome)

	assert.Equal(t, 7, s.Enemies()[0].Health)
	assert.Equal(t, combat.PhaseEnemyTurn, s.Phase())
	_, ok = s.PendingAttack()
	assert.False(t, ok)

	hc := rec.ofType(combat.EventHealthChanged)
	require.Len(t, hc, 1)
	assert.Equal(t, combat.Event{
		Type:     combat.EventHealthChanged,
		EntityID: "enemy0",
		Health:   7,
		Amount:   8,
		SourceID: combat.PlayerID,
	}, hc[0])
}

// The three skeletons each strike for [5, 10]; the apprentice survives with 50 minus the sum.
func TestScenario_EnemyTurnAfterFirstStrike(t *testing.T) {
	s, rec := newTestSession(t, dice.NewSeededSource(2024), combat.HaltOnLethal, 50, 15, 15, 15)
	require.NoError(t, s.SelectAttack("fireball"))
	_, err := s.TargetEnemy("enemy0")
	require.NoError(t, err)

	turn, err := s.RunEnemyTurn()
	require.NoError(t, err)
	require.Len(t, turn.Actions, 3)

	sum := 0
	for i, act := range turn.Actions {
		assert.Equal(t, []string{"enemy0", "enemy1", "enemy2"}[i], act.EnemyID)
		assert.GreaterOrEqual(t, act.Damage, 5)
		assert.LessOrEqual(t, act.Damage, 10)
		assert.False(t, act.Cancelled)
		assert.False(t, act.Lethal)
		sum += act.Damage
	}
	assert.Equal(t, 50-sum, s.Player().Health)
	assert.GreaterOrEqual(t, s.Player().Health, 20)
	assert.Equal(t, combat.PhasePlayerSelecting, s.Phase())
	assert.True(t, turn.Done())
	assert.Equal(t, combat.InProgress, turn.Outcome)

	playerHits := 0
	for _, ev := range rec.ofType(combat.EventHealthChanged) {
		if ev.EntityID == combat.PlayerID {
			playerHits++
		}
	}
	assert.Equal(t, 3, playerHits)
}

// Rock Throw on a lone 5 HP enemy wins the battle before any enemy acts.
func TestScenario_VictoryEndsSession(t *testing.T) {
	s, rec := newTestSession(t, fixedSrc{5}, combat.HaltOnLethal, 50, 5)

	require.NoError(t, s.SelectAttack("rock_throw"))
	a, err := s.TargetEnemy("enemy0")
	require.NoError(t, err)
	assert.True(t, a.Defeated)
	assert.Equal(t, combat.Victory, a.Outcome)

	assert.Equal(t, 0, s.Enemies()[0].Health)
	assert.Equal(t, combat.PhaseVictory, s.Phase())
	assert.True(t, s.Phase().IsTerminal())
	assert.Equal(t, combat.Victory, s.Outcome())
	assert.Equal(t, 50, s.Player().Health, "enemies must not act after victory")

	assert.Equal(t, []combat.EventType{
		combat.EventHealthChanged,
		combat.EventEntityDefeated,
		combat.EventBattleEnded,
	}, rec.types())
	ended := rec.ofType(combat.EventBattleEnded)
	require.Len(t, ended, 1)
	assert.Equal(t, combat.Victory, ended[0].Outcome)

	err = s.SelectAttack("fireball")
	assert.ErrorIs(t, err, combat.ErrSessionClosed)
	_, err = s.TargetEnemy("enemy0")
	assert.ErrorIs(t, err, combat.ErrSessionClosed)
	_, err = s.BeginEnemyTurn()
	assert.ErrorIs(t, err, combat.ErrSessionClosed)
	assert.Len(t, rec.types(), 3, "no events after the battle ends")
}

func TestScenario_TargetWithoutSelection(t *testing.T) {
	s, rec := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15, 15, 15)

	_, err := s.TargetEnemy("enemy0")
	assert.ErrorIs(t, err, combat.ErrInvalidState)
	assert.Equal(t, combat.PhasePlayerSelecting, s.Phase())
	assert.Equal(t, 15, s.Enemies()[0].Health)
	assert.Empty(t, rec.types())
}

func TestScenario_TargetDefeatedEnemy(t *testing.T) {
	s, _ := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 5, 15)

	require.NoError(t, s.SelectAttack("rock_throw"))
	_, err := s.TargetEnemy("enemy0")
	require.NoError(t, err)
	_, err = s.RunEnemyTurn()
	require.NoError(t, err)

	require.NoError(t, s.SelectAttack("fireball"))
	_, err = s.TargetEnemy("enemy0")
	assert.ErrorIs(t, err, combat.ErrInvalidTarget)
	assert.Equal(t, combat.PhaseAwaitingTarget, s.Phase(), "selection survives a rejected target")
	pending, ok := s.PendingAttack()
	require.True(t, ok)
	assert.Equal(t, "fireball", pending.ID)
}

func TestTargetEnemy_Unknown(t *testing.T) {
	s, _ := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15)
	require.NoError(t, s.SelectAttack("fireball"))
	_, err := s.TargetEnemy("dragon")
	assert.ErrorIs(t, err, combat.ErrNotFound)
	assert.Equal(t, combat.PhaseAwaitingTarget, s.Phase())
}

func TestSelectAttack_Unknown(t *testing.T) {
	s, _ := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15)
	err := s.SelectAttack("lightning")
	assert.ErrorIs(t, err, combat.ErrNotFound)
	assert.Equal(t, combat.PhasePlayerSelecting, s.Phase())
}

func TestSelectAttack_Reselect(t *testing.T) {
	s, _ := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15)
	require.NoError(t, s.SelectAttack("fireball"))
	require.NoError(t, s.SelectAttack("wind_cutter"))

	a, err := s.TargetEnemy("enemy0")
	require.NoError(t, err)
	assert.Equal(t, "wind_cutter", a.Attack.ID)
	assert.Equal(t, 9, s.Enemies()[0].Health)
}

func TestSelectAttack_DuringEnemyTurn(t *testing.T) {
	s, _ := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15)
	require.NoError(t, s.SelectAttack("fireball"))
	_, err := s.TargetEnemy("enemy0")
	require.NoError(t, err)

	err = s.SelectAttack("fireball")
	assert.ErrorIs(t, err, combat.ErrInvalidState)
	assert.Equal(t, combat.PhaseEnemyTurn, s.Phase())
}

func TestBeginEnemyTurn_WrongPhase(t *testing.T) {
	s, _ := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15)
	_, err := s.BeginEnemyTurn()
	assert.ErrorIs(t, err, combat.ErrInvalidState)
}

func TestBeginTarget_BlocksOtherCommands(t *testing.T) {
	s, rec := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15, 15)
	require.NoError(t, s.SelectAttack("fireball"))

	a, err := s.BeginTarget("enemy1")
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseResolvingPlayerAction, s.Phase())
	assert.Equal(t, 7, a.Health)
	assert.False(t, a.Committed())
	assert.Equal(t, 15, s.Enemies()[1].Health, "begin does not mutate")
	assert.Empty(t, rec.types(), "begin does not emit")
	assert.Equal(t, "fireball", a.Attack.ID)
	_, pending := s.PendingAttack()
	assert.False(t, pending, "the selection belongs to the action once it is begun")

	err = s.SelectAttack("rock_throw")
	assert.ErrorIs(t, err, combat.ErrConcurrentCommand)
	_, err = s.BeginTarget("enemy0")
	assert.ErrorIs(t, err, combat.ErrConcurrentCommand)
	_, err = s.BeginEnemyTurn()
	assert.ErrorIs(t, err, combat.ErrConcurrentCommand)

	require.NoError(t, s.CommitPlayerAction(a))
	assert.Equal(t, 7, s.Enemies()[1].Health)
	assert.Equal(t, combat.PhaseEnemyTurn, s.Phase())

	err = s.CommitPlayerAction(a)
	assert.ErrorIs(t, err, combat.ErrInvalidState, "double commit")
}

func TestCommitPlayerAction_ForeignAction(t *testing.T) {
	s1, _ := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15)
	s2, _ := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15)
	require.NoError(t, s1.SelectAttack("fireball"))
	a, err := s1.BeginTarget("enemy0")
	require.NoError(t, err)

	assert.ErrorIs(t, s2.CommitPlayerAction(a), combat.ErrInvalidState)
	assert.ErrorIs(t, s2.CommitPlayerAction(nil), combat.ErrInvalidState)
}

func TestTargets_ExcludeDefeated(t *testing.T) {
	s, _ := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 5, 15)
	require.NoError(t, s.SelectAttack("rock_throw"))
	_, err := s.TargetEnemy("enemy0")
	require.NoError(t, err)

	targets := s.Targets()
	require.Len(t, targets, 1)
	assert.Equal(t, "enemy1", targets[0].ID)
	assert.Len(t, s.Enemies(), 2)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	s, _ := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15, 15)
	extra := &recorder{}
	unsubscribe := s.Subscribe(extra.listen)
	unsubscribe()

	require.NoError(t, s.SelectAttack("fireball"))
	_, err := s.TargetEnemy("enemy0")
	require.NoError(t, err)
	assert.Empty(t, extra.types())
}

func TestListener_MayQuerySession(t *testing.T) {
	s, _ := newTestSession(t, fixedSrc{0}, combat.HaltOnLethal, 50, 15)
	var phases []combat.Phase
	s.Subscribe(func(combat.Event) { phases = append(phases, s.Phase()) })

	require.NoError(t, s.SelectAttack("fireball"))
	_, err := s.TargetEnemy("enemy0")
	require.NoError(t, err)
	assert.Equal(t, []combat.Phase{combat.PhaseEnemyTurn}, phases)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "player_selecting", combat.PhasePlayerSelecting.String())
	assert.Equal(t, "resolving_enemy_action", combat.PhaseResolvingEnemyAction.String())
	assert.Equal(t, "unknown", combat.Phase(42).String())
	assert.False(t, combat.PhaseEnemyTurn.IsTerminal())
	assert.True(t, combat.PhaseDefeat.IsTerminal())
}

func TestParseLethalMode(t *testing.T) {
	m, err := combat.ParseLethalMode("halt")
	require.NoError(t, err)
	assert.Equal(t, combat.HaltOnLethal, m)

	m, err = combat.ParseLethalMode("")
	require.NoError(t, err)
	assert.Equal(t, combat.HaltOnLethal, m)

	m, err = combat.ParseLethalMode("resolve_all")
	require.NoError(t, err)
	assert.Equal(t, combat.ResolveAll, m)
	assert.Equal(t, "resolve_all", m.String())

	_, err = combat.ParseLethalMode("whenever")
	assert.ErrorIs(t, err, combat.ErrInvalidArgument)
}
