package commands

import (
	"context"

	"infinite-experiment/bouncer/internal/constants"

	"github.com/bwmarrin/discordgo"
)

type Ping struct{}

func (Ping) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Replies with Pong!",
	}
}

func (Ping) Execute(ctx context.Context, inv *Invocation) (Reply, error) {
	return Reply{Content: constants.MsgPong}, nil
}

type Meow struct{}

func (Meow) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "meow",
		Description: "Meow.",
	}
}

func (Meow) Execute(ctx context.Context, inv *Invocation) (Reply, error) {
	return Reply{Content: constants.MsgMeow, Ephemeral: true}, nil
}
