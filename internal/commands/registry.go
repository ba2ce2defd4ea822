// Package commands implements the slash commands. Commands are plain values
// looked up by name; they never touch the gateway session directly.
package commands

import (
	"context"
	"fmt"
	"sort"

	"infinite-experiment/bouncer/internal/constants"
	"infinite-experiment/bouncer/internal/logging"
	"infinite-experiment/bouncer/internal/metrics"
	"infinite-experiment/bouncer/internal/resolver"

	"github.com/bwmarrin/discordgo"
)

// UserOption is a resolved user argument of an invocation.
type UserOption struct {
	ID     string
	Bot    bool
	Member bool
	Roles  []string
}

// Invocation carries everything a command needs to decide and reply.
type Invocation struct {
	EventID        string
	GuildID        string
	RequesterID    string
	RequesterRoles []string

	Strings map[string]string
	Users   map[string]UserOption

	OpCtx *resolver.OperatingContext
}

type Reply struct {
	Content   string
	Ephemeral bool
}

func ephemeral(format string, args ...interface{}) Reply {
	return Reply{Content: fmt.Sprintf(format, args...), Ephemeral: true}
}

type Command interface {
	Definition() *discordgo.ApplicationCommand
	Execute(ctx context.Context, inv *Invocation) (Reply, error)
}

type Registry struct {
	commands map[string]Command
	metrics  *metrics.MetricsRegistry
}

func NewRegistry(m *metrics.MetricsRegistry, cmds ...Command) *Registry {
	r := &Registry{
		commands: make(map[string]Command),
		metrics:  m,
	}
	for _, c := range cmds {
		r.Register(c)
	}
	return r
}

// Register adds c, replacing any command with the same name.
func (r *Registry) Register(c Command) {
	r.commands[c.Definition().Name] = c
}

func (r *Registry) Get(name string) (Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// Definitions returns the application commands sorted by name, ready for a
// bulk overwrite.
func (r *Registry) Definitions() []*discordgo.ApplicationCommand {
	defs := make([]*discordgo.ApplicationCommand, 0, len(r.commands))
	for _, c := range r.commands {
		defs = append(defs, c.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Dispatch runs the named command. Errors are logged and turned into a
// generic reply; the invoker never sees internals.
func (r *Registry) Dispatch(ctx context.Context, name string, inv *Invocation) Reply {
	c, ok := r.commands[name]
	if !ok {
		r.metrics.ObserveCommand(name, "unknown")
		return ephemeral(constants.MsgUnknownCommand)
	}

	reply, err := c.Execute(ctx, inv)
	if err != nil {
		r.metrics.ObserveCommand(name, "error")
		logging.WithEvent(inv.EventID, "command:"+name, inv.GuildID, inv.RequesterID).
			Errorw("Command failed", "error", err.Error())
		return ephemeral(constants.MsgUnexpected)
	}

	r.metrics.ObserveCommand(name, "ok")
	return reply
}

// authorized reports whether the invoker may run interviewer commands.
func authorized(inv *Invocation) bool {
	if inv.OpCtx == nil {
		return false
	}
	return inv.OpCtx.IsOwner(inv.RequesterID) || inv.OpCtx.Roles.IsInterviewer(inv.RequesterRoles)
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

var manageGuild int64 = discordgo.PermissionManageServer

func userArg(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    true,
	}
}
