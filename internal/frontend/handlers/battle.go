package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/apprentice/internal/frontend/telnet"
	"github.com/cory-johannsen/apprentice/internal/game/combat"
	"github.com/cory-johannsen/apprentice/internal/game/command"
	"github.com/cory-johannsen/apprentice/internal/game/progress"
	"github.com/cory-johannsen/apprentice/internal/observability"
)

func battlePrompt(sess *combat.Session) string {
	p := sess.Player()
	readied := "-"
	if a, ok := sess.PendingAttack(); ok {
		readied = a.Name
	}
	return telnet.Colorf(telnet.BrightCyan, "[HP %d/%d | %s]> ", p.Health, p.MaxHealth, readied)
}

// pace waits d between the begin and commit of an action.
//
// Postcondition: Returns ctx.Err() if ctx is cancelled first.
func pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// battle runs one encounter to completion. Session events are rendered as
// they are emitted. When the battle ends the result is folded into g.
//
// Postcondition: Returns quit=true when the player quit mid-battle. The
// session is always removed from the engine.
func (h *AuthHandler) battle(ctx context.Context, conn *telnet.Conn, g *progress.Game, enc combat.SessionConfig, title string, log *zap.Logger) (quit bool, err error) {
	sess, err := h.engine.StartSession(g.SessionConfig(enc))
	if err != nil {
		log.Error("starting battle", zap.Error(err))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "The battle could not begin."))
		return false, nil
	}
	defer h.engine.EndSession(sess.ID())

	log = observability.BattleLogger(log, sess.ID(), title)
	g.Progress.Scene = progress.SceneBattle
	unsubscribe := sess.Subscribe(func(e combat.Event) {
		if text := RenderEvent(sess, e); text != "" {
			_ = conn.WriteLine(text)
		}
	})
	defer unsubscribe()

	start := time.Now()
	log.Info("battle started", zap.Int("enemies", len(enc.Enemies)))
	_ = conn.WriteLine(telnet.Colorf(telnet.Bold+telnet.BrightYellow, "-- %s --", title))
	_ = conn.WriteBlock(RenderBattlefield(sess))

	for !sess.Phase().IsTerminal() {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		if err := conn.WritePrompt(battlePrompt(sess)); err != nil {
			return false, fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			return false, fmt.Errorf("reading input: %w", err)
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

		switch cmd.Handler {
		case command.HandlerAttacks:
			_ = conn.WriteBlock(command.HandleAttacks(sess.Catalog()))
		case command.HandlerCast:
			_ = conn.WriteLine(command.HandleCast(sess, parsed.RawArgs))
		case command.HandlerTarget:
			if err := h.playerTurn(ctx, conn, sess, parsed.RawArgs); err != nil {
				return false, err
			}
		case command.HandlerStatus:
			_ = conn.WriteBlock(RenderBattlefield(sess))
		case command.HandlerHelp:
			_ = conn.WriteBlock(RenderHelp(h.registry, command.CategoryBattle, command.CategorySystem))
		case command.HandlerQuit:
			log.Info("battle abandoned", zap.Duration("duration", time.Since(start)))
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "You flee down the stair. Goodbye!"))
			return true, nil
		default:
			_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "Not while skeletons are swinging at you."))
		}
	}

	outcome := sess.Outcome()
	g.RecordBattle(outcome, sess.Player())
	log.Info("battle ended",
		zap.Stringer("outcome", outcome),
		zap.Int("player_health", sess.Player().Health),
		zap.Duration("duration", time.Since(start)),
	)
	_ = conn.WriteLine(RenderSceneChange(g.Progress.Scene))
	return false, nil
}

// playerTurn resolves the readied attack against the enemy named by arg and,
// if the battle continues, runs the enemy turn.
//
// Postcondition: Returns a non-nil error when ctx is cancelled mid-action or
// the engine refuses a begun action, for example on a failed enemy roll.
func (h *AuthHandler) playerTurn(ctx context.Context, conn *telnet.Conn, sess *combat.Session, arg string) error {
	if _, ok := sess.PendingAttack(); !ok {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Ready an attack first: cast <attack>"))
		return nil
	}
	targetID, err := command.ResolveTarget(sess.Enemies(), arg)
	if err != nil {
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Target whom? Usage: target <enemy|number>"))
		return nil
	}
	action, err := sess.BeginTarget(targetID)
	if err != nil {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, command.DescribeError(err)))
		return nil
	}

	_ = conn.WriteLine(RenderPlayerAction(sess, action))
	if err := pace(ctx, h.pacing); err != nil {
		return err
	}
	if err := sess.CommitPlayerAction(action); err != nil {
		return fmt.Errorf("committing player action: %w", err)
	}

	if sess.Phase() == combat.PhaseEnemyTurn {
		return h.enemyTurn(ctx, conn, sess)
	}
	return nil
}

// enemyTurn plays the enemy turn one action at a time with pacing between
// the announcement and the hit.
func (h *AuthHandler) enemyTurn(ctx context.Context, conn *telnet.Conn, sess *combat.Session) error {
	turn, err := sess.BeginEnemyTurn()
	if err != nil {
		return fmt.Errorf("beginning enemy turn: %w", err)
	}
	for i := 0; !turn.Done(); {
		for i < len(turn.Actions) && turn.Actions[i].Cancelled {
			i++
		}
		if i < len(turn.Actions) {
			_ = conn.WriteLine(RenderEnemyWindup(sess, turn.Actions[i]))
			i++
		}
		if err := pace(ctx, h.pacing); err != nil {
			return err
		}
		if _, _, err := sess.CommitEnemyAction(turn); err != nil {
			if errors.Is(err, combat.ErrSessionClosed) {
				return nil
			}
			return fmt.Errorf("committing enemy action: %w", err)
		}
	}
	return nil
}
