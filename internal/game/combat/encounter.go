package combat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnemyConfig describes one enemy at session start. ID and Name are optional;
// an empty ID becomes "enemy<index>" and an empty Name becomes "Skeleton".
type EnemyConfig struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	MaxHealth int    `yaml:"max_health"`
}

// SessionConfig holds the starting values of an encounter.
type SessionConfig struct {
	PlayerName      string        `yaml:"player_name"`
	PlayerMaxHealth int           `yaml:"player_max_health"`
	Enemies         []EnemyConfig `yaml:"enemies"`
}

// DefaultSessionConfig returns the reference encounter: a 50 HP apprentice
// against three 15 HP skeletons.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		PlayerName:      "Apprentice",
		PlayerMaxHealth: 50,
		Enemies: []EnemyConfig{
			{MaxHealth: 15},
			{MaxHealth: 15},
			{MaxHealth: 15},
		},
	}
}

// Validate checks the configuration and reports the first violation.
//
// Postcondition: Returns nil iff PlayerMaxHealth > 0, at least one enemy is
// configured, every MaxHealth > 0, and resolved enemy IDs are unique;
// otherwise returns an error wrapping ErrInvalidArgument.
func (c SessionConfig) Validate() error {
	if c.PlayerMaxHealth <= 0 {
		return fmt.Errorf("player_max_health must be > 0, got %d: %w", c.PlayerMaxHealth, ErrInvalidArgument)
	}
	if len(c.Enemies) == 0 {
		return fmt.Errorf("at least one enemy is required: %w", ErrInvalidArgument)
	}
	seen := make(map[string]bool, len(c.Enemies))
	for i, ec := range c.Enemies {
		if ec.MaxHealth <= 0 {
			return fmt.Errorf("enemy %d: max_health must be > 0, got %d: %w", i, ec.MaxHealth, ErrInvalidArgument)
		}
		id := enemyID(i, ec)
		if id == PlayerID || seen[id] {
			return fmt.Errorf("enemy %d: duplicate id %q: %w", i, id, ErrInvalidArgument)
		}
		seen[id] = true
	}
	return nil
}

func enemyID(i int, ec EnemyConfig) string {
	if ec.ID != "" {
		return ec.ID
	}
	return fmt.Sprintf("enemy%d", i)
}

func enemyName(ec EnemyConfig) string {
	if ec.Name != "" {
		return ec.Name
	}
	return "Skeleton"
}

// Encounter is a named SessionConfig loaded from content.
type Encounter struct {
	ID            string `yaml:"id"`
	Title         string `yaml:"title"`
	SessionConfig `yaml:",inline"`
}

// LoadEncounterFromBytes parses and validates a single encounter.
func LoadEncounterFromBytes(data []byte) (*Encounter, error) {
	var enc Encounter
	if err := yaml.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("parsing encounter YAML: %w", err)
	}
	if enc.ID == "" {
		return nil, fmt.Errorf("encounter: id must not be empty")
	}
	if err := enc.Validate(); err != nil {
		return nil, fmt.Errorf("encounter %q: %w", enc.ID, err)
	}
	return &enc, nil
}

// LoadEncounters reads all *.yaml files in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns encounters keyed by ID, or an error on the first
// parse/validate failure or duplicate ID.
func LoadEncounters(dir string) (map[string]*Encounter, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading encounters dir %q: %w", dir, err)
	}

	out := make(map[string]*Encounter)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		enc, err := LoadEncounterFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, dup := out[enc.ID]; dup {
			return nil, fmt.Errorf("loading %q: duplicate encounter id %q", path, enc.ID)
		}
		out[enc.ID] = enc
	}
	return out, nil
}
