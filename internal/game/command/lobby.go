package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cory-johannsen/apprentice/internal/game/combat"
	"github.com/cory-johannsen/apprentice/internal/game/progress"
)

// ParseSlot converts a save/load argument to a validated slot number.
//
// Postcondition: Returns a slot in [progress.MinSlot, progress.MaxSlot] or an
// error wrapping progress.ErrInvalidSlot.
func ParseSlot(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("slot %q: %w", arg, progress.ErrInvalidSlot)
	}
	if err := progress.ValidateSlot(n); err != nil {
		return 0, err
	}
	return n, nil
}

// HandleSlots renders every slot number, marking the empty ones.
//
// Postcondition: Returns one line per slot in [progress.MinSlot, progress.MaxSlot].
func HandleSlots(slots []progress.Slot) string {
	byNumber := make(map[int]progress.Slot, len(slots))
	for _, s := range slots {
		byNumber[s.SlotNumber] = s
	}
	var sb strings.Builder
	sb.WriteString("Save slots:\n")
	for n := progress.MinSlot; n <= progress.MaxSlot; n++ {
		s, ok := byNumber[n]
		if !ok {
			fmt.Fprintf(&sb, "  %d. (empty)\n", n)
			continue
		}
		fmt.Fprintf(&sb, "  %d. %s  HP %d/%d  won %d lost %d  [%s]\n",
			n, s.Progress.Scene, s.PlayerStats.Health, s.PlayerStats.MaxHealth,
			s.Progress.BattlesWon, s.Progress.BattlesLost,
			s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// HandleStats renders the current run.
//
// Precondition: g must not be nil.
func HandleStats(g *progress.Game) string {
	return fmt.Sprintf("Level %d apprentice\n  HP: %d/%d\n  Scene: %s\n  Battles won: %d  lost: %d",
		g.Stats.Level, g.Stats.Health, g.Stats.MaxHealth,
		g.Progress.Scene, g.Progress.BattlesWon, g.Progress.BattlesLost)
}

// HandleEncounters lists the loaded encounters sorted by ID.
func HandleEncounters(encounters map[string]*combat.Encounter) string {
	if len(encounters) == 0 {
		return "Only the default skirmish is available. Type 'fight' to begin."
	}
	ids := make([]string, 0, len(encounters))
	for id := range encounters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	sb.WriteString("Encounters:\n")
	for _, id := range ids {
		enc := encounters[id]
		fmt.Fprintf(&sb, "  %-14s %s (%d enemies)\n", id, enc.Title, len(enc.Enemies))
	}
	return strings.TrimRight(sb.String(), "\n")
}
