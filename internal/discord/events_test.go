package discord

import (
	"testing"

	"infinite-experiment/bouncer/internal/directory"

	"github.com/bwmarrin/discordgo"
)

func TestMessageEvent(t *testing.T) {
	ch := directory.Channel{ID: "400", Kind: directory.KindText, NSFW: true}
	m := &discordgo.Message{
		ID:      "M1",
		GuildID: "100",
		Type:    discordgo.MessageTypeReply,
		Author:  &discordgo.User{ID: "U1", Bot: true},
		Member:  &discordgo.Member{Roles: []string{"300"}},
	}

	ev := messageEvent("evt", m, ch)
	if !ev.Regular {
		t.Error("Expected replies to count as regular messages")
	}
	if ev.AuthorID != "U1" || !ev.AuthorBot || len(ev.AuthorRoles) != 1 {
		t.Errorf("Unexpected author fields: %+v", ev)
	}
	if !ev.Channel.Eligible() {
		t.Error("Expected channel to be carried over")
	}

	m.Type = discordgo.MessageTypeGuildMemberJoin
	if messageEvent("evt", m, ch).Regular {
		t.Error("Expected join system message to be irregular")
	}
}

func TestMemberJoinEvent(t *testing.T) {
	ev := memberJoinEvent("evt", &discordgo.Member{
		GuildID: "100",
		User:    &discordgo.User{ID: "U2"},
		Roles:   []string{"305"},
	})
	if ev.GuildID != "100" || ev.UserID != "U2" || len(ev.Roles) != 1 {
		t.Errorf("Unexpected join event: %+v", ev)
	}
}

func TestInvocation(t *testing.T) {
	i := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:      "I",
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: "100",
			Member: &discordgo.Member{
				User:  &discordgo.User{ID: "INTERVIEWER"},
				Roles: []string{"300"},
			},
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "interview",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "U1"},
					{Name: "interview_type", Type: discordgo.ApplicationCommandOptionString, Value: "id"},
				},
				Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
					Users:   map[string]*discordgo.User{"U1": {ID: "U1"}},
					Members: map[string]*discordgo.Member{"U1": {Roles: []string{"302"}}},
				},
			},
		},
	}

	inv := invocation("evt", i)
	if inv.RequesterID != "INTERVIEWER" || len(inv.RequesterRoles) != 1 {
		t.Errorf("Unexpected requester: %s %v", inv.RequesterID, inv.RequesterRoles)
	}
	if inv.Strings["interview_type"] != "id" {
		t.Errorf("Expected interview_type id, got %q", inv.Strings["interview_type"])
	}
	u, ok := inv.Users["user"]
	if !ok || u.ID != "U1" || !u.Member || u.Bot || len(u.Roles) != 1 {
		t.Errorf("Unexpected user option: %+v", u)
	}
}

func TestInvocation_UserNotMember(t *testing.T) {
	i := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			User: &discordgo.User{ID: "DM"},
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "status",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "U9"},
				},
				Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
					Users: map[string]*discordgo.User{"U9": {ID: "U9", Bot: true}},
				},
			},
		},
	}

	inv := invocation("evt", i)
	if inv.RequesterID != "DM" {
		t.Errorf("Expected DM requester, got %s", inv.RequesterID)
	}
	if u := inv.Users["user"]; u.Member || !u.Bot {
		t.Errorf("Expected non-member bot option, got %+v", u)
	}
}
