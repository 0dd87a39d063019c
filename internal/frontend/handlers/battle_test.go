package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/apprentice/internal/game/combat"
	"github.com/cory-johannsen/apprentice/internal/game/progress"
)

func TestPace(t *testing.T) {
	assert.NoError(t, pace(context.Background(), 0))
	assert.NoError(t, pace(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pace(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, pace(ctx, 0), context.Canceled)
}

func TestBattle_Victory(t *testing.T) {
	f := newFixture(t, 50, 5, func(o *Options) { o.Pacing = time.Millisecond })
	c := f.serve(t)
	login(t, c, 50)

	c.Send("fight")
	c.ReadUntil("-- Skeletons on the Stair --", readTimeout)
	c.ReadUntil("Cast an attack to begin your turn.", readTimeout)
	require.Equal(t, 1, f.engine.Count())

	c.Send("cast rock throw")
	c.ReadUntil("You ready Rock Throw (10 damage).", readTimeout)
	c.Send("target 1")
	c.ReadUntil("You cast Rock Throw at Skeleton #1!", readTimeout)
	c.ReadUntil("Skeleton #1 crumbles to dust!", readTimeout)
	c.ReadUntil("*** VICTORY ***", readTimeout)
	c.ReadUntil("You return to the world map.", readTimeout)
	c.ReadUntil(lobbyPromptText(progress.SceneWorldMap, 50, 50), readTimeout)

	assert.Equal(t, 0, f.engine.Count())
	c.Send("stats")
	c.ReadUntil("Battles won: 1  lost: 0", readTimeout)
}

func TestBattle_DefeatHaltsEnemyTurn(t *testing.T) {
	f := newFixture(t, 10, 10, func(o *Options) {
		o.Encounter.Enemies = []combat.EnemyConfig{{MaxHealth: 30}, {MaxHealth: 30}}
	})
	c := f.serve(t)
	login(t, c, 10)

	c.Send("fight")
	c.ReadUntil("Cast an attack", readTimeout)
	c.Send("c 1")
	c.ReadUntil("You ready Fireball", readTimeout)
	c.Send("t 2")
	c.ReadUntil("You cast Fireball at Skeleton #2!", readTimeout)
	c.ReadUntil("Skeleton #1 swings at you...", readTimeout)
	out := c.ReadUntil("*** DEFEAT ***", readTimeout)
	assert.Contains(t, out, "You collapse")
	assert.NotContains(t, out, "Skeleton #2 swings at you")
	c.ReadUntil("fully healed", readTimeout)
	c.ReadUntil(lobbyPromptText(progress.SceneMainMenu, 10, 10), readTimeout)

	c.Send("stats")
	c.ReadUntil("Battles won: 0  lost: 1", readTimeout)
	assert.Equal(t, 0, f.engine.Count())
}

func TestBattle_EnemyTurnThenNextPlayerTurn(t *testing.T) {
	f := newFixture(t, 50, 5, func(o *Options) {
		o.Encounter.Enemies = []combat.EnemyConfig{{MaxHealth: 20}, {MaxHealth: 20}}
	})
	c := f.serve(t)
	login(t, c, 50)

	c.Send("fight")
	c.ReadUntil("Cast an attack", readTimeout)
	c.Send("cast fireball")
	c.ReadUntil("Choose a target.", readTimeout)
	c.Send("target enemy0")
	c.ReadUntil("Skeleton #1 swings at you...", readTimeout)
	c.ReadUntil("Skeleton #2 swings at you...", readTimeout)
	c.ReadUntil("[HP 40/50 | -]> ", readTimeout)

	c.Send("status")
	out := c.ReadUntil("Cast an attack to begin your turn.", readTimeout)
	assert.Contains(t, out, "] 12/20")
	assert.Contains(t, out, "] 40/50")
}

func TestBattle_InputErrors(t *testing.T) {
	f := newFixture(t, 50, 5)
	c := f.serve(t)
	login(t, c, 50)

	c.Send("fight")
	c.ReadUntil("Cast an attack", readTimeout)

	c.Send("target 1")
	c.ReadUntil("Ready an attack first", readTimeout)
	c.Send("cast")
	c.ReadUntil("Cast what?", readTimeout)
	c.Send("cast meteor")
	c.ReadUntil(`You don't know an attack called "meteor"`, readTimeout)
	c.Send("cast 2")
	c.ReadUntil("You ready Wind Cutter", readTimeout)
	c.Send("target 9")
	c.ReadUntil("Target whom?", readTimeout)
	c.Send("save 1")
	c.ReadUntil("Not while skeletons are swinging at you.", readTimeout)
	c.Send("attacks")
	c.ReadUntil("4. Rock Throw", readTimeout)
	c.Send("help")
	c.ReadUntil("Show available commands", readTimeout)
}

func TestBattle_QuitAbandonsSession(t *testing.T) {
	f := newFixture(t, 50, 5)
	c := f.serve(t)
	login(t, c, 50)

	c.Send("fight")
	c.ReadUntil("Cast an attack", readTimeout)
	require.Equal(t, 1, f.engine.Count())

	c.Send("quit")
	c.ReadUntil("You flee down the stair. Goodbye!", readTimeout)
	require.Eventually(t, func() bool { return f.engine.Count() == 0 }, readTimeout, 5*time.Millisecond)
}

func TestBattle_DisconnectAbandonsSession(t *testing.T) {
	f := newFixture(t, 50, 5)
	c := f.serve(t)
	login(t, c, 50)

	c.Send("fight")
	c.ReadUntil("Cast an attack", readTimeout)
	c.Close()
	require.Eventually(t, func() bool { return f.engine.Count() == 0 }, readTimeout, 5*time.Millisecond)
}
