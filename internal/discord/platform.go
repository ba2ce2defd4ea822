package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Platform performs role and message side effects through the REST API.
type Platform struct {
	session *discordgo.Session
}

func NewPlatform(session *discordgo.Session) *Platform {
	return &Platform{session: session}
}

// MemberRoles prefers the gateway cache and falls back to the API.
func (p *Platform) MemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	if p.session.State != nil {
		if m, err := p.session.State.Member(guildID, userID); err == nil {
			return append([]string(nil), m.Roles...), nil
		}
	}

	m, err := p.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return m.Roles, nil
}

func (p *Platform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (p *Platform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (p *Platform) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := p.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		// mark notices mention users without pinging them
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	return err
}
