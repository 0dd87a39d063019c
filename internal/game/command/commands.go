// Package command provides the command registry, parser, and built-in command definitions.
package command

// Categories for organizing commands.
const (
	CategoryBattle = "battle"
	CategoryGame   = "game"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to session handlers.
const (
	HandlerAttacks    = "attacks"
	HandlerCast       = "cast"
	HandlerTarget     = "target"
	HandlerStatus     = "status"
	HandlerFight      = "fight"
	HandlerEncounters = "encounters"
	HandlerSave       = "save"
	HandlerLoad       = "load"
	HandlerSlots      = "slots"
	HandlerStats      = "stats"
	HandlerQuit       = "quit"
	HandlerHelp       = "help"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (battle, game, system).
	Category string
	// Handler identifies the session handler that executes the command.
	Handler string
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		// Battle commands
		{Name: "attacks", Aliases: []string{"spells", "a"}, Help: "List your attacks", Category: CategoryBattle, Handler: HandlerAttacks},
		{Name: "cast", Aliases: []string{"select", "c"}, Help: "Ready an attack (cast <attack|number>)", Category: CategoryBattle, Handler: HandlerCast},
		{Name: "target", Aliases: []string{"t", "attack"}, Help: "Unleash the readied attack (target <enemy|number>)", Category: CategoryBattle, Handler: HandlerTarget},
		{Name: "status", Aliases: []string{"st", "look", "l"}, Help: "Show the battlefield", Category: CategoryBattle, Handler: HandlerStatus},

		// Game commands
		{Name: "fight", Aliases: []string{"battle", "f"}, Help: "Start a battle (fight [encounter])", Category: CategoryGame, Handler: HandlerFight},
		{Name: "encounters", Aliases: []string{"enc"}, Help: "List the available encounters", Category: CategoryGame, Handler: HandlerEncounters},
		{Name: "save", Aliases: nil, Help: "Save your progress (save <1-3>)", Category: CategoryGame, Handler: HandlerSave},
		{Name: "load", Aliases: nil, Help: "Load saved progress (load <1-3>)", Category: CategoryGame, Handler: HandlerLoad},
		{Name: "slots", Aliases: nil, Help: "List your save slots", Category: CategoryGame, Handler: HandlerSlots},
		{Name: "stats", Aliases: []string{"score"}, Help: "Show your apprentice's stats", Category: CategoryGame, Handler: HandlerStats},

		// System commands
		{Name: "quit", Aliases: []string{"exit"}, Help: "Disconnect from the game", Category: CategorySystem, Handler: HandlerQuit},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
	}
}

// IsBattleCommand reports whether the command may only be used during a battle.
func IsBattleCommand(cmd *Command) bool {
	return cmd != nil && cmd.Category == CategoryBattle
}
