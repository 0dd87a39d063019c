package combat

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Attack is one selectable player attack.
type Attack struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Damage int    `yaml:"damage"`
}

// Validate checks that the attack satisfies basic invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty and Damage > 0.
func (a Attack) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("attack: id must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("attack %q: name must not be empty", a.ID)
	}
	if a.Damage <= 0 {
		return fmt.Errorf("attack %q: damage must be > 0, got %d", a.ID, a.Damage)
	}
	return nil
}

// Catalog is the fixed, ordered set of attacks available in an encounter.
// A Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	attacks []Attack
	byID    map[string]int
}

// NewCatalog builds a Catalog from attacks, preserving their order.
//
// Precondition: attacks must be non-empty with unique IDs.
// Postcondition: Returns a Catalog or an error wrapping ErrInvalidArgument.
func NewCatalog(attacks ...Attack) (*Catalog, error) {
	if len(attacks) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one attack: %w", ErrInvalidArgument)
	}
	c := &Catalog{
		attacks: make([]Attack, 0, len(attacks)),
		byID:    make(map[string]int, len(attacks)),
	}
	for _, a := range attacks {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate attack id %q: %w", a.ID, ErrInvalidArgument)
		}
		c.byID[a.ID] = len(c.attacks)
		c.attacks = append(c.attacks, a)
	}
	return c, nil
}

// DefaultCatalog returns the four attacks of the apprentice's spellbook.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Attack{ID: "fireball", Name: "Fireball", Damage: 8},
		Attack{ID: "wind_cutter", Name: "Wind Cutter", Damage: 6},
		Attack{ID: "water_blast", Name: "Water Blast", Damage: 8},
		Attack{ID: "rock_throw", Name: "Rock Throw", Damage: 10},
	)
	if err != nil {
		panic(fmt.Sprintf("building default catalog: %v", err))
	}
	return c
}

// List returns a copy of the attacks in catalog order.
func (c *Catalog) List() []Attack {
	cp := make([]Attack, len(c.attacks))
	copy(cp, c.attacks)
	return cp
}

// Len returns the number of attacks in the catalog.
func (c *Catalog) Len() int { return len(c.attacks) }

// Get looks up an attack by id.
//
// Postcondition: Returns the Attack, or an error wrapping ErrNotFound.
func (c *Catalog) Get(id string) (Attack, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Attack{}, fmt.Errorf("attack %q: %w", id, ErrNotFound)
	}
	return c.attacks[idx], nil
}

type catalogFile struct {
	Attacks []Attack `yaml:"attacks"`
}

// LoadCatalogFromBytes parses a catalog from YAML of the form:
//
//	attacks:
//	  - id: fireball
//	    name: Fireball
//	    damage: 8
//
// Postcondition: Returns a validated Catalog or an error.
func LoadCatalogFromBytes(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing attack catalog YAML: %w", err)
	}
	return NewCatalog(f.Attacks...)
}

// LoadCatalogFile reads and parses the catalog at path.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading attack catalog %s: %w", path, err)
	}
	c, err := LoadCatalogFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
