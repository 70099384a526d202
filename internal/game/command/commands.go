// Package command provides the dice console's command registry, line parser,
// and built-in command definitions.
package command

// Categories for organizing commands in help output.
const (
	CategoryRoll   = "roll"
	CategoryLog    = "log"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to console actions.
const (
	HandlerRoll2D6    = "roll2d6"
	HandlerModifier   = "modifier"
	HandlerModPage    = "modpage"
	HandlerSingle     = "single"
	HandlerStructured = "structured"
	HandlerExpression = "expression"
	HandlerLog        = "log"
	HandlerDelete     = "delete"
	HandlerClear      = "clear"
	HandlerHelp       = "help"
	HandlerQuit       = "quit"
)

// Command defines a console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, e.g. "d <sides>".
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command (roll, log, system).
	Category string
	// Handler names the console action that runs the command.
	Handler string
}

// BuiltinCommands returns all built-in console commands.
func BuiltinCommands() []Command {
	return []Command{
		// Rolling
		{Name: "roll", Aliases: []string{"2d6"}, Usage: "roll [+/-modifier]", Help: "Roll 2d6 with an optional modifier", Category: CategoryRoll, Handler: HandlerRoll2D6},
		{Name: "mod", Aliases: []string{"m"}, Usage: "mod <modifier>", Help: "Roll 2d6 with a preset modifier button", Category: CategoryRoll, Handler: HandlerModifier},
		{Name: "mods", Aliases: []string{"page"}, Usage: "mods [page]", Help: "Show a page of preset modifiers", Category: CategoryRoll, Handler: HandlerModPage},
		{Name: "d", Aliases: []string{"die"}, Usage: "d <sides>", Help: "Roll a single die, 1d1 to 1d100", Category: CategoryRoll, Handler: HandlerSingle},
		{Name: "custom", Aliases: []string{"c"}, Usage: "custom <count> <sides> [modifier]", Help: "Roll NdM+K", Category: CategoryRoll, Handler: HandlerStructured},
		{Name: "r", Aliases: []string{"expr"}, Usage: "r <expression>[, ...]", Help: "Roll free-form expressions like 2d6+3, d20, -1d6+2", Category: CategoryRoll, Handler: HandlerExpression},

		// Log
		{Name: "log", Aliases: []string{"history", "h"}, Usage: "log", Help: "Show the roll log, newest first", Category: CategoryLog, Handler: HandlerLog},
		{Name: "del", Aliases: []string{"delete", "rm"}, Usage: "del <index>", Help: "Delete one log entry by its index", Category: CategoryLog, Handler: HandlerDelete},
		{Name: "clear", Aliases: nil, Usage: "clear", Help: "Delete the whole roll log", Category: CategoryLog, Handler: HandlerClear},

		// System
		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Disconnect", Category: CategorySystem, Handler: HandlerQuit},
	}
}
