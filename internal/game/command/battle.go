package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/apprentice/internal/game/combat"
)

// ResolveAttack finds the attack named by arg in catalog. arg may be an
// attack ID, a case-insensitive attack name, or a 1-based catalog position.
//
// Postcondition: Returns the attack or an error wrapping combat.ErrNotFound.
func ResolveAttack(catalog *combat.Catalog, arg string) (combat.Attack, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return combat.Attack{}, fmt.Errorf("no attack given: %w", combat.ErrNotFound)
	}
	attacks := catalog.List()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(attacks) {
			return combat.Attack{}, fmt.Errorf("attack #%d: %w", n, combat.ErrNotFound)
		}
		return attacks[n-1], nil
	}
	if a, err := catalog.Get(strings.ToLower(arg)); err == nil {
		return a, nil
	}
	for _, a := range attacks {
		if strings.EqualFold(a.Name, arg) || strings.EqualFold(strings.ReplaceAll(a.ID, "_", " "), arg) {
			return a, nil
		}
	}
	return combat.Attack{}, fmt.Errorf("attack %q: %w", arg, combat.ErrNotFound)
}

// ResolveTarget maps arg to an enemy ID. arg may be an enemy ID or a 1-based
// position in the encounter's enemy list (defeated enemies keep their number).
// Whether the enemy may be targeted is left to the session.
//
// Postcondition: Returns the enemy ID or an error wrapping combat.ErrNotFound.
func ResolveTarget(enemies []combat.Entity, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("no target given: %w", combat.ErrNotFound)
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(enemies) {
			return "", fmt.Errorf("enemy #%d: %w", n, combat.ErrNotFound)
		}
		return enemies[n-1].ID, nil
	}
	for _, e := range enemies {
		if strings.EqualFold(e.ID, arg) {
			return e.ID, nil
		}
	}
	return "", fmt.Errorf("enemy %q: %w", arg, combat.ErrNotFound)
}

// HandleAttacks renders the catalog as a numbered list.
//
// Precondition: catalog must not be nil.
func HandleAttacks(catalog *combat.Catalog) string {
	var sb strings.Builder
	sb.WriteString("Your attacks:\n")
	for i, a := range catalog.List() {
		fmt.Fprintf(&sb, "  %d. %-12s %2d damage  (%s)\n", i+1, a.Name, a.Damage, a.ID)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// HandleCast handles the "cast" command: it resolves arg and stores it as the
// session's pending selection.
//
// Precondition: sess must not be nil.
// Postcondition: Returns a message describing the result of the command.
func HandleCast(sess *combat.Session, arg string) string {
	if strings.TrimSpace(arg) == "" {
		return "Cast what? Usage: cast <attack|number>"
	}
	a, err := ResolveAttack(sess.Catalog(), arg)
	if err != nil {
		return fmt.Sprintf("You don't know an attack called %q. Type 'attacks' to list them.", strings.TrimSpace(arg))
	}
	if err := sess.SelectAttack(a.ID); err != nil {
		return DescribeError(err)
	}
	return fmt.Sprintf("You ready %s (%d damage). Choose a target.", a.Name, a.Damage)
}

// DescribeError turns a combat error into a player-facing sentence.
func DescribeError(err error) string {
	switch {
	case errors.Is(err, combat.ErrSessionClosed):
		return "The battle is already over."
	case errors.Is(err, combat.ErrConcurrentCommand):
		return "Wait for the current action to finish."
	case errors.Is(err, combat.ErrInvalidTarget):
		return "That enemy has already fallen."
	case errors.Is(err, combat.ErrInvalidState):
		return "You can't do that right now."
	case errors.Is(err, combat.ErrNotFound):
		return "There is nothing by that name here."
	default:
		return "Something went wrong: " + err.Error()
	}
}
