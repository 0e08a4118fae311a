package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// CommandHandler executes a command's business logic after the dispatch gate
// has admitted the invocation.
type CommandHandler func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error

// Command pairs a slash command definition with its handler. Protected commands
// cannot be disabled, so a guild can never lock itself out of re-enabling.
type Command struct {
	Definition *discordgo.ApplicationCommand
	Protected  bool
	Handler    CommandHandler
}

// Registry holds every command the bot serves, keyed by name.
type Registry struct {
	commands map[string]*Command
	order    []string
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register adds a command. Later registrations with the same name replace
// earlier ones.
func (r *Registry) Register(cmd *Command) {
	name := cmd.Definition.Name
	if _, exists := r.commands[name]; !exists {
		r.order = append(r.order, name)
	}
	r.commands[name] = cmd
}

// Lookup returns the command with the given name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Exists reports whether a command with the given name is registered.
func (r *Registry) Exists(name string) bool {
	_, ok := r.commands[name]
	return ok
}

// IsProtected reports whether the named command is un-disable-able.
func (r *Registry) IsProtected(name string) bool {
	cmd, ok := r.commands[name]
	return ok && cmd.Protected
}

// Definitions returns the slash command definitions in registration order.
func (r *Registry) Definitions() []*discordgo.ApplicationCommand {
	defs := make([]*discordgo.ApplicationCommand, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.commands[name].Definition)
	}
	return defs
}
