package discord

import (
	"infinite-experiment/bouncer/internal/commands"
	"infinite-experiment/bouncer/internal/directory"
	"infinite-experiment/bouncer/internal/services"

	"github.com/bwmarrin/discordgo"
)

// messageEvent converts a gateway message. ch is the channel the message was
// posted in; the zero Channel is never eligible.
func messageEvent(eventID string, m *discordgo.Message, ch directory.Channel) services.MessageEvent {
	ev := services.MessageEvent{
		EventID:   eventID,
		MessageID: m.ID,
		GuildID:   m.GuildID,
		Regular:   m.Type == discordgo.MessageTypeDefault || m.Type == discordgo.MessageTypeReply,
		Channel:   ch,
	}
	if m.Author != nil {
		ev.AuthorID = m.Author.ID
		ev.AuthorBot = m.Author.Bot
	}
	if m.Member != nil {
		ev.AuthorRoles = m.Member.Roles
	}
	return ev
}

func memberJoinEvent(eventID string, m *discordgo.Member) services.MemberJoinEvent {
	ev := services.MemberJoinEvent{
		EventID: eventID,
		GuildID: m.GuildID,
		Roles:   m.Roles,
	}
	if m.User != nil {
		ev.UserID = m.User.ID
	}
	return ev
}

// invocation flattens a slash command interaction. Only string and user
// options are used by the registered commands.
func invocation(eventID string, i *discordgo.InteractionCreate) *commands.Invocation {
	data := i.ApplicationCommandData()

	inv := &commands.Invocation{
		EventID:     eventID,
		GuildID:     i.GuildID,
		RequesterID: requester(i),
		Strings:     make(map[string]string),
		Users:       make(map[string]commands.UserOption),
	}
	if i.Member != nil {
		inv.RequesterRoles = i.Member.Roles
	}

	for _, opt := range data.Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			inv.Strings[opt.Name] = opt.StringValue()
		case discordgo.ApplicationCommandOptionUser:
			userID, _ := opt.Value.(string)
			u := commands.UserOption{ID: userID}
			if data.Resolved != nil {
				if user, ok := data.Resolved.Users[userID]; ok {
					u.Bot = user.Bot
				}
				if member, ok := data.Resolved.Members[userID]; ok {
					u.Member = true
					u.Roles = member.Roles
				}
			}
			inv.Users[opt.Name] = u
		}
	}
	return inv
}

func requester(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
