package combat_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/apprentice/internal/game/combat"
)

const graveyardYAML = `
id: graveyard
title: The Old Graveyard
player_max_health: 40
enemies:
  - name: Skeleton
    max_health: 15
  - id: lich
    name: Lich
    max_health: 25
`

func TestDefaultSessionConfig(t *testing.T) {
	cfg := combat.DefaultSessionConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.PlayerMaxHealth)
	require.Len(t, cfg.Enemies, 3)
	for _, e := range cfg.Enemies {
		assert.Equal(t, 15, e.MaxHealth)
	}
}

func TestLoadEncounterFromBytes(t *testing.T) {
	enc, err := combat.LoadEncounterFromBytes([]byte(graveyardYAML))
	require.NoError(t, err)
	assert.Equal(t, "graveyard", enc.ID)
	assert.Equal(t, "The Old Graveyard", enc.Title)
	assert.Equal(t, 40, enc.PlayerMaxHealth)
	require.Len(t, enc.Enemies, 2)
	assert.Equal(t, "lich", enc.Enemies[1].ID)
	assert.Equal(t, 25, enc.Enemies[1].MaxHealth)
}

func TestLoadEncounterFromBytes_Invalid(t *testing.T) {
	_, err := combat.LoadEncounterFromBytes([]byte("title: nameless\nplayer_max_health: 10\nenemies:\n  - max_health: 1\n"))
	assert.Error(t, err, "missing id")

	_, err = combat.LoadEncounterFromBytes([]byte("id: x\nplayer_max_health: 10\n"))
	assert.ErrorIs(t, err, combat.ErrInvalidArgument)
}

func TestLoadEncounters(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "graveyard.yaml"), []byte(graveyardYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	encs, err := combat.LoadEncounters(dir)
	require.NoError(t, err)
	require.Len(t, encs, 1)
	assert.Contains(t, encs, "graveyard")
}

func TestLoadEncounters_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(graveyardYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(graveyardYAML), 0o644))

	_, err := combat.LoadEncounters(dir)
	assert.Error(t, err)
}

func TestLoadEncounters_MissingDir(t *testing.T) {
	_, err := combat.LoadEncounters(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
