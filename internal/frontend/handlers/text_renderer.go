package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/apprentice/internal/frontend/telnet"
	"github.com/cory-johannsen/apprentice/internal/game/combat"
	"github.com/cory-johannsen/apprentice/internal/game/command"
	"github.com/cory-johannsen/apprentice/internal/game/progress"
)

// barWidth is the cell count of every health bar.
const barWidth = 20

// enemyLabel names an enemy by its position so identical names stay distinct.
func enemyLabel(enemies []combat.Entity, id string) string {
	for i, e := range enemies {
		if e.ID == id {
			return fmt.Sprintf("%s #%d", e.Name, i+1)
		}
	}
	return id
}

// RenderBattlefield formats the status screen: the apprentice, every enemy
// with its number, and the readied attack.
func RenderBattlefield(sess *combat.Session) string {
	var b strings.Builder
	player := sess.Player()

	b.WriteString(telnet.Colorize(telnet.BrightMagenta, "=== Battle ==="))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %-14s %s\n", player.Name, telnet.HealthBar(player.Health, player.MaxHealth, barWidth))
	for i, e := range sess.Enemies() {
		label := fmt.Sprintf("%d. %s", i+1, e.Name)
		if !e.IsAlive() {
			fmt.Fprintf(&b, "  %-14s %s\n", label, telnet.Colorize(telnet.Dim, "(defeated)"))
			continue
		}
		fmt.Fprintf(&b, "  %-14s %s\n", label, telnet.HealthBar(e.Health, e.MaxHealth, barWidth))
	}
	if a, ok := sess.PendingAttack(); ok {
		fmt.Fprintf(&b, "Readied: %s (%d damage). Choose a target.", telnet.Colorize(telnet.BrightCyan, a.Name), a.Damage)
	} else {
		b.WriteString(telnet.Colorize(telnet.Dim, "Cast an attack to begin your turn."))
	}
	return b.String()
}

// RenderPlayerAction announces a begun player action.
func RenderPlayerAction(sess *combat.Session, a *combat.PlayerAction) string {
	return telnet.Colorf(telnet.BrightCyan, "You cast %s at %s!",
		a.Attack.Name, enemyLabel(sess.Enemies(), a.TargetID))
}

// RenderEnemyWindup announces the enemy action about to land.
func RenderEnemyWindup(sess *combat.Session, a combat.EnemyAction) string {
	return telnet.Colorf(telnet.Yellow, "%s swings at you...", enemyLabel(sess.Enemies(), a.EnemyID))
}

// RenderEvent formats one combat event. The session is queried for names
// and maximum health.
func RenderEvent(sess *combat.Session, e combat.Event) string {
	player := sess.Player()
	switch e.Type {
	case combat.EventHealthChanged:
		if e.EntityID == player.ID {
			return fmt.Sprintf("%s hits you for %s damage. %s",
				enemyLabel(sess.Enemies(), e.SourceID),
				telnet.Colorf(telnet.BrightRed, "%d", e.Amount),
				telnet.HealthBar(e.Health, player.MaxHealth, barWidth))
		}
		maxHealth := 0
		for _, en := range sess.Enemies() {
			if en.ID == e.EntityID {
				maxHealth = en.MaxHealth
			}
		}
		return fmt.Sprintf("%s takes %s damage. %s",
			enemyLabel(sess.Enemies(), e.EntityID),
			telnet.Colorf(telnet.BrightYellow, "%d", e.Amount),
			telnet.HealthBar(e.Health, maxHealth, barWidth))
	case combat.EventEntityDefeated:
		if e.EntityID == player.ID {
			return telnet.Colorize(telnet.Red, "You collapse, your staff clattering to the floor.")
		}
		return telnet.Colorf(telnet.BrightGreen, "%s crumbles to dust!", enemyLabel(sess.Enemies(), e.EntityID))
	case combat.EventBattleEnded:
		if e.Outcome == combat.Victory {
			return telnet.Colorize(telnet.Bold+telnet.BrightGreen, "*** VICTORY ***")
		}
		return telnet.Colorize(telnet.Bold+telnet.BrightRed, "*** DEFEAT ***")
	default:
		return ""
	}
}

// RenderSceneChange describes where the apprentice goes after a battle.
func RenderSceneChange(scene string) string {
	switch scene {
	case progress.SceneWorldMap:
		return telnet.Colorize(telnet.Cyan, "You return to the world map.")
	case progress.SceneMainMenu:
		return telnet.Colorize(telnet.Cyan, "You wake at the main menu, fully healed.")
	default:
		return ""
	}
}

// RenderHelp lists the registry's commands for the given categories.
func RenderHelp(registry *command.Registry, categories ...string) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "Available commands:"))
	for _, cat := range categories {
		cmds := registry.CommandsInCategory(cat)
		if len(cmds) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(telnet.Colorf(telnet.BrightYellow, "  %s:", strings.ToUpper(cat[:1])+cat[1:]))
		for _, cmd := range cmds {
			aliases := ""
			if len(cmd.Aliases) > 0 {
				aliases = " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			b.WriteString("\n")
			b.WriteString(telnet.Colorf(telnet.Green, "    %-12s", cmd.Name) + aliases + " - " + cmd.Help)
		}
	}
	return b.String()
}
