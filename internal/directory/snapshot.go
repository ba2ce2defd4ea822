// Package directory holds an immutable point-in-time view of a guild's roles,
// channels and members as seen by the gateway session cache.
package directory

import (
	"github.com/bwmarrin/discordgo"
)

type ChannelKind int

const (
	KindOther ChannelKind = iota
	KindText
	KindCategory
	KindVoice
)

func (k ChannelKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCategory:
		return "category"
	case KindVoice:
		return "voice"
	default:
		return "other"
	}
}

type Guild struct {
	ID      string
	Name    string
	OwnerID string
}

type Role struct {
	ID   string
	Name string
}

type Channel struct {
	ID       string
	Name     string
	Kind     ChannelKind
	NSFW     bool
	ParentID string
}

// Eligible reports whether messages in the channel may trigger enrollment:
// only NSFW-flagged guild text channels count.
func (c Channel) Eligible() bool {
	return c.Kind == KindText && c.NSFW
}

type Member struct {
	UserID string
	Bot    bool
	Roles  []string
}

// Snapshot is never mutated after construction.
type Snapshot struct {
	Guild    Guild
	roles    map[string]Role
	channels map[string]Channel
	members  map[string]Member
}

// NewSnapshot builds a snapshot from plain values. Later entries win on duplicate ids.
func NewSnapshot(guild Guild, roles []Role, channels []Channel, members []Member) *Snapshot {
	s := &Snapshot{
		Guild:    guild,
		roles:    make(map[string]Role, len(roles)),
		channels: make(map[string]Channel, len(channels)),
		members:  make(map[string]Member, len(members)),
	}
	for _, r := range roles {
		s.roles[r.ID] = r
	}
	for _, c := range channels {
		s.channels[c.ID] = c
	}
	for _, m := range members {
		roles := make([]string, len(m.Roles))
		copy(roles, m.Roles)
		m.Roles = roles
		s.members[m.UserID] = m
	}
	return s
}

func (s *Snapshot) Role(id string) (Role, bool) {
	r, ok := s.roles[id]
	return r, ok
}

func (s *Snapshot) Channel(id string) (Channel, bool) {
	c, ok := s.channels[id]
	return c, ok
}

func (s *Snapshot) Member(userID string) (Member, bool) {
	m, ok := s.members[userID]
	return m, ok
}

func (s *Snapshot) RoleCount() int    { return len(s.roles) }
func (s *Snapshot) ChannelCount() int { return len(s.channels) }

// FromState reads the guild out of the session cache. It returns nil when the
// guild is not cached (not yet delivered, or the bot is not a member).
func FromState(st *discordgo.State, guildID string) *Snapshot {
	if st == nil {
		return nil
	}

	st.RLock()
	defer st.RUnlock()

	for _, g := range st.Guilds {
		if g.ID == guildID {
			return FromGuild(g)
		}
	}
	return nil
}

// FromGuild copies a discordgo guild. The caller must hold the state lock if
// g belongs to a live session cache.
func FromGuild(g *discordgo.Guild) *Snapshot {
	if g == nil || g.Unavailable {
		return nil
	}

	roles := make([]Role, 0, len(g.Roles))
	for _, r := range g.Roles {
		roles = append(roles, Role{ID: r.ID, Name: r.Name})
	}

	channels := make([]Channel, 0, len(g.Channels))
	for _, c := range g.Channels {
		channels = append(channels, ChannelFrom(c))
	}

	members := make([]Member, 0, len(g.Members))
	for _, m := range g.Members {
		if m.User == nil {
			continue
		}
		members = append(members, Member{UserID: m.User.ID, Bot: m.User.Bot, Roles: m.Roles})
	}

	return NewSnapshot(Guild{ID: g.ID, Name: g.Name, OwnerID: g.OwnerID}, roles, channels, members)
}

func ChannelFrom(c *discordgo.Channel) Channel {
	if c == nil {
		return Channel{}
	}
	return Channel{
		ID:       c.ID,
		Name:     c.Name,
		Kind:     kindOf(c.Type),
		NSFW:     c.NSFW,
		ParentID: c.ParentID,
	}
}

func kindOf(t discordgo.ChannelType) ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
		return KindText
	case discordgo.ChannelTypeGuildCategory:
		return KindCategory
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return KindVoice
	default:
		return KindOther
	}
}
