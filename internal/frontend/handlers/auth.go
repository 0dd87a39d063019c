// Package handlers provides the Telnet session flow: login, the lobby menu,
// and the battle loop.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/apprentice/internal/frontend/telnet"
	"github.com/cory-johannsen/apprentice/internal/game/combat"
	"github.com/cory-johannsen/apprentice/internal/game/command"
	"github.com/cory-johannsen/apprentice/internal/game/progress"
	"github.com/cory-johannsen/apprentice/internal/observability"
	"github.com/cory-johannsen/apprentice/internal/storage"
)

// AccountStore defines the account persistence operations required by AuthHandler.
type AccountStore interface {
	Create(ctx context.Context, username, password string) (storage.Account, error)
	Authenticate(ctx context.Context, username, password string) (storage.Account, error)
}

const welcomeBanner = `
` + telnet.Bold + telnet.BrightMagenta + `
   __      __ _                     _ _
   \ \    / /(_) ___ __ _  _ _  __| ( )___
    \ \/\/ / | ||_ // _' || '_|/ _' |/(_-<
     \_/\_/  |_|/__|\__,_||_|  \__,_| /__/
         A P P R E N T I C E` + telnet.Reset + `

` + telnet.BrightYellow + `  Three skeletons block the tower stair. Your spellbook is open.` + telnet.Reset + `

  Type ` + telnet.Green + `login <username> [password]` + telnet.Reset + ` to connect.
  Type ` + telnet.Green + `register <username> <password>` + telnet.Reset + ` to create an account.
  Type ` + telnet.Green + `quit` + telnet.Reset + ` to disconnect.
`

// Options holds the collaborators of an AuthHandler.
type Options struct {
	Accounts AccountStore
	Slots    progress.SaveSlotStore
	Engine   *combat.Engine
	// Encounter is fought by a bare "fight".
	Encounter combat.SessionConfig
	// Encounters are fought by "fight <id>".
	Encounters      map[string]*combat.Encounter
	PlayerMaxHealth int
	// Pacing is the delay between the begin and commit of every action.
	Pacing time.Duration
	Logger *zap.Logger
}

// AuthHandler implements telnet.SessionHandler. It runs the authentication
// loop and hands logged-in players to the lobby.
type AuthHandler struct {
	accounts        AccountStore
	slots           progress.SaveSlotStore
	engine          *combat.Engine
	encounter       combat.SessionConfig
	encounters      map[string]*combat.Encounter
	playerMaxHealth int
	pacing          time.Duration
	registry        *command.Registry
	logger          *zap.Logger
}

// NewAuthHandler creates an AuthHandler from opts.
//
// Precondition: Accounts, Slots, Engine, and Logger must be non-nil.
// Postcondition: Returns an AuthHandler ready to handle sessions.
func NewAuthHandler(opts Options) *AuthHandler {
	maxHealth := opts.PlayerMaxHealth
	if maxHealth <= 0 {
		maxHealth = opts.Encounter.PlayerMaxHealth
	}
	return &AuthHandler{
		accounts:        opts.Accounts,
		slots:           opts.Slots,
		engine:          opts.Engine,
		encounter:       opts.Encounter,
		encounters:      opts.Encounters,
		playerMaxHealth: maxHealth,
		pacing:          opts.Pacing,
		registry:        command.DefaultRegistry(),
		logger:          opts.Logger,
	}
}

// HandleSession implements telnet.SessionHandler. It shows the welcome banner
// and processes authentication commands until the player logs in or quits.
//
// Postcondition: Returns nil on clean quit, or an error if the session ended abnormally.
func (h *AuthHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	log := observability.RemoteLogger(h.logger, conn.RemoteAddr().String())

	if err := conn.Write([]byte(strings.ReplaceAll(welcomeBanner, "\n", "\r\n"))); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "The tower doors close. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "quit", "exit":
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			log.Info("client quit", zap.Duration("session_duration", time.Since(start)))
			return nil

		case "login":
			acct, err := h.handleLogin(ctx, conn, args, log)
			if err != nil {
				return err
			}
			if acct.ID == 0 {
				continue
			}
			log.Info("player logged in",
				zap.String("username", acct.Username),
				zap.Duration("login_time", time.Since(start)),
			)
			return h.lobby(ctx, conn, acct, log.With(zap.String("username", acct.Username)))

		case "register":
			h.handleRegister(ctx, conn, args, log)

		case "help":
			h.showHelp(conn)

		default:
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", cmd))
		}
	}
}

// handleLogin authenticates a player. A missing password is read with echo
// suppressed.
//
// Postcondition: Returns (acct, nil) on success, (storage.Account{}, nil) if the
// error was shown to the user, or a non-nil error when the connection failed.
func (h *AuthHandler) handleLogin(ctx context.Context, conn *telnet.Conn, args []string, log *zap.Logger) (storage.Account, error) {
	if len(args) < 1 {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: login <username> [password]"))
		return storage.Account{}, nil
	}
	username := args[0]
	password := ""
	if len(args) > 1 {
		password = args[1]
	} else {
		if err := conn.WritePrompt("Password: "); err != nil {
			return storage.Account{}, fmt.Errorf("writing prompt: %w", err)
		}
		pw, err := conn.ReadPassword()
		if err != nil {
			return storage.Account{}, fmt.Errorf("reading password: %w", err)
		}
		password = pw
	}

	start := time.Now()
	acct, err := h.accounts.Authenticate(ctx, username, password)
	elapsed := time.Since(start)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAccountNotFound):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Account not found. Use 'register' to create one."))
		case errors.Is(err, storage.ErrInvalidCredentials):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Invalid password."))
		default:
			log.Error("authentication error", zap.Error(err), zap.Duration("elapsed", elapsed))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
		}
		return storage.Account{}, nil
	}

	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Welcome back, %s!", acct.Username))
	return acct, nil
}

func (h *AuthHandler) handleRegister(ctx context.Context, conn *telnet.Conn, args []string, log *zap.Logger) {
	if len(args) < 2 {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: register <username> <password>"))
		return
	}
	username, password := args[0], args[1]

	if err := storage.ValidateCredentials(username, password); err != nil {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, describeCredentialError(err)))
		return
	}

	start := time.Now()
	acct, err := h.accounts.Create(ctx, username, password)
	if err != nil {
		if errors.Is(err, storage.ErrAccountExists) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That username is already taken."))
			return
		}
		log.Error("registration error", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
		return
	}

	log.Info("account registered", zap.String("username", acct.Username), zap.Int64("account_id", acct.ID))
	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen,
		"Account created: %s. You may now 'login'.", acct.Username))
}

func (h *AuthHandler) showHelp(conn *telnet.Conn) {
	_ = conn.WriteBlock(telnet.Colorize(telnet.BrightWhite, "Available commands:") + "\n" +
		telnet.Colorize(telnet.Green, "  login <username> [password]") + "    - Log in to your account\n" +
		telnet.Colorize(telnet.Green, "  register <username> <password>") + " - Create a new account\n" +
		telnet.Colorize(telnet.Green, "  help") + "                           - Show this help\n" +
		telnet.Colorize(telnet.Green, "  quit") + "                           - Disconnect")
}

// describeCredentialError turns a storage.ValidateCredentials error into a
// message for the player.
func describeCredentialError(err error) string {
	switch {
	case errors.Is(err, storage.ErrInvalidUsername):
		return fmt.Sprintf("Username must be %d-%d characters: letters, digits, '_' or '-'.",
			storage.MinUsernameLen, storage.MaxUsernameLen)
	case errors.Is(err, storage.ErrPasswordTooShort):
		return fmt.Sprintf("Password must be at least %d characters.", storage.MinPasswordLen)
	case errors.Is(err, storage.ErrPasswordTooLong):
		return fmt.Sprintf("Password must be at most %d characters.", storage.MaxPasswordLen)
	default:
		return "Those credentials are not allowed."
	}
}
