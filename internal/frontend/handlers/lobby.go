package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/apprentice/internal/frontend/telnet"
	"github.com/cory-johannsen/apprentice/internal/game/combat"
	"github.com/cory-johannsen/apprentice/internal/game/command"
	"github.com/cory-johannsen/apprentice/internal/game/progress"
	"github.com/cory-johannsen/apprentice/internal/storage"
)

func lobbyPrompt(g *progress.Game) string {
	return telnet.Colorf(telnet.BrightCyan, "[%s | HP %d/%d]> ", g.Progress.Scene, g.Stats.Health, g.Stats.MaxHealth)
}

// lobby runs the between-battle menu for a logged-in player. The run starts
// fresh; "load" replaces it with a saved slot.
//
// Postcondition: Returns nil when the player quits, ctx.Err() on cancellation,
// or a wrapped error when the connection fails.
func (h *AuthHandler) lobby(ctx context.Context, conn *telnet.Conn, acct storage.Account, log *zap.Logger) error {
	g := progress.NewGame(h.playerMaxHealth)
	_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "Type 'fight' to face the skeletons, or 'help' for more."))

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "The tower doors close. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(lobbyPrompt(g)); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		parsed := command.Parse(line)
		if parsed.Command == "" {
			continue
		}

		cmd, ok := h.registry.Resolve(parsed.Command)
		if !ok {
			_ = conn.WriteLine(telnet.Colorf(telnet.Dim, "You don't know how to '%s'.", parsed.Command))
			continue
		}
		if command.IsBattleCommand(cmd) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "There is nothing to fight here. Type 'fight' first."))
			continue
		}

		switch cmd.Handler {
		case command.HandlerFight:
			enc, title, ok := h.resolveEncounter(parsed.RawArgs)
			if !ok {
				_ = conn.WriteLine(telnet.Colorf(telnet.Red, "No encounter called %q. Type 'encounters' to list them.", parsed.RawArgs))
				continue
			}
			quit, err := h.battle(ctx, conn, g, enc, title, log)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}

		case command.HandlerEncounters:
			_ = conn.WriteBlock(command.HandleEncounters(h.encounters))

		case command.HandlerStats:
			_ = conn.WriteBlock(command.HandleStats(g))

		case command.HandlerSlots:
			slots, err := h.slots.List(ctx, acct.ID)
			if err != nil {
				log.Error("listing save slots", zap.Error(err))
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Your save book will not open. Try again later."))
				continue
			}
			_ = conn.WriteBlock(command.HandleSlots(slots))

		case command.HandlerSave:
			h.handleSave(ctx, conn, acct, g, parsed.RawArgs, log)

		case command.HandlerLoad:
			if loaded := h.handleLoad(ctx, conn, acct, parsed.RawArgs, log); loaded != nil {
				g = loaded
			}

		case command.HandlerHelp:
			_ = conn.WriteBlock(RenderHelp(h.registry, command.CategoryGame, command.CategorySystem))

		case command.HandlerQuit:
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "You close your spellbook. Goodbye!"))
			log.Info("player quit", zap.Int("battles_won", g.Progress.BattlesWon), zap.Int("battles_lost", g.Progress.BattlesLost))
			return nil
		}
	}
}

// resolveEncounter maps the fight argument to a session configuration. An
// empty argument selects the default encounter.
func (h *AuthHandler) resolveEncounter(arg string) (combat.SessionConfig, string, bool) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" {
		return h.encounter, "Skeletons on the Stair", true
	}
	enc, ok := h.encounters[arg]
	if !ok {
		return combat.SessionConfig{}, "", false
	}
	return enc.SessionConfig, enc.Title, true
}

func (h *AuthHandler) handleSave(ctx context.Context, conn *telnet.Conn, acct storage.Account, g *progress.Game, arg string, log *zap.Logger) {
	n, err := command.ParseSlot(arg)
	if err != nil {
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Choose a slot from %d to %d: save <slot>", progress.MinSlot, progress.MaxSlot))
		return
	}
	if _, err := h.slots.Save(ctx, g.ToSlot(acct.ID, n)); err != nil {
		log.Error("saving slot", zap.Int("slot", n), zap.Error(err))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "The ink will not dry. Your progress was not saved."))
		return
	}
	log.Info("game saved", zap.Int("slot", n))
	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Progress saved to slot %d.", n))
}

// handleLoad returns the loaded run, or nil when nothing was loaded.
func (h *AuthHandler) handleLoad(ctx context.Context, conn *telnet.Conn, acct storage.Account, arg string, log *zap.Logger) *progress.Game {
	n, err := command.ParseSlot(arg)
	if err != nil {
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Choose a slot from %d to %d: load <slot>", progress.MinSlot, progress.MaxSlot))
		return nil
	}
	slot, err := h.slots.Load(ctx, acct.ID, n)
	if err != nil {
		if errors.Is(err, progress.ErrSlotNotFound) {
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Slot %d is empty.", n))
			return nil
		}
		log.Error("loading slot", zap.Int("slot", n), zap.Error(err))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "The pages are smudged. Try again later."))
		return nil
	}
	log.Info("game loaded", zap.Int("slot", n))
	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Loaded slot %d.", n))
	return progress.FromSlot(slot)
}
