package command

import (
	"fmt"
	"sort"
	"strings"
)

// minPrefix is the shortest abbreviation Resolve expands.
const minPrefix = 3

// Registry maps command names, aliases and unambiguous prefixes to Command
// definitions.
type Registry struct {
	commands map[string]*Command // canonical name → command
	aliases  map[string]string   // alias → canonical name
	names    []string            // sorted canonical names
}

// NewRegistry creates a Registry populated with the given commands.
//
// Precondition: No two commands may share a canonical name or alias.
// Postcondition: Returns a Registry, or an error on an empty name, an unknown
// category, or a name/alias collision.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command, len(cmds)),
		aliases:  make(map[string]string),
	}

	for i := range cmds {
		cmd := &cmds[i]
		if cmd.Name == "" {
			return nil, fmt.Errorf("command %d has no name", i)
		}
		switch cmd.Category {
		case CategoryBattle, CategoryGame, CategorySystem:
		default:
			return nil, fmt.Errorf("command %q: unknown category %q", cmd.Name, cmd.Category)
		}
		if _, exists := r.commands[cmd.Name]; exists {
			return nil, fmt.Errorf("duplicate command name: %q", cmd.Name)
		}
		if _, exists := r.aliases[cmd.Name]; exists {
			return nil, fmt.Errorf("command name %q conflicts with an existing alias", cmd.Name)
		}
		r.commands[cmd.Name] = cmd
		r.names = append(r.names, cmd.Name)

		for _, alias := range cmd.Aliases {
			if _, exists := r.commands[alias]; exists {
				return nil, fmt.Errorf("alias %q of %q shadows a command name", alias, cmd.Name)
			}
			if existing, exists := r.aliases[alias]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, cmd.Name)
			}
			r.aliases[alias] = cmd.Name
		}
	}
	sort.Strings(r.names)
	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by canonical name, then alias, then by a
// prefix of at least three letters that matches exactly one canonical name.
//
// Postcondition: Returns (command, true) if found, or (nil, false). An
// ambiguous prefix such as "sta" (stats, status) is not found.
func (r *Registry) Resolve(input string) (*Command, bool) {
	if cmd, ok := r.commands[input]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[input]; ok {
		return r.commands[canonical], true
	}
	if len(input) < minPrefix {
		return nil, false
	}
	var match *Command
	for _, name := range r.names {
		if !strings.HasPrefix(name, input) {
			continue
		}
		if match != nil {
			return nil, false
		}
		match = r.commands[name]
	}
	return match, match != nil
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	result := make([]*Command, 0, len(r.names))
	for _, name := range r.names {
		result = append(result, r.commands[name])
	}
	return result
}

// CommandsInCategory returns the commands of one category sorted by name.
func (r *Registry) CommandsInCategory(category string) []*Command {
	var result []*Command
	for _, name := range r.names {
		if cmd := r.commands[name]; cmd.Category == category {
			result = append(result, cmd)
		}
	}
	return result
}
