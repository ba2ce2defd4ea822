// Package discord connects the gateway session to the enrollment engine and
// the command registry.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"infinite-experiment/bouncer/internal/commands"
	"infinite-experiment/bouncer/internal/common"
	"infinite-experiment/bouncer/internal/config"
	"infinite-experiment/bouncer/internal/constants"
	"infinite-experiment/bouncer/internal/directory"
	"infinite-experiment/bouncer/internal/logging"
	"infinite-experiment/bouncer/internal/metrics"
	"infinite-experiment/bouncer/internal/resolver"
	"infinite-experiment/bouncer/internal/services"
	"infinite-experiment/bouncer/internal/state"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	handlerTimeout = 15 * time.Second

	Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers
)

// NewSession creates an unopened gateway session with the intents the bot
// needs. Events are dispatched concurrently.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = Intents
	session.StateEnabled = true
	session.SyncEvents = false
	return session, nil
}

type Bot struct {
	session    *discordgo.Session
	cfg        config.Discord
	state      *state.Container
	enrollment *services.EnrollmentService
	registry   *commands.Registry
	limiter    *common.KeyedLimiter
	metrics    *metrics.MetricsRegistry

	ctx          context.Context
	fatal        chan error
	registerOnce sync.Once
}

func New(session *discordgo.Session, cfg config.Discord, st *state.Container, enrollment *services.EnrollmentService, registry *commands.Registry, m *metrics.MetricsRegistry) *Bot {
	b := &Bot{
		session:    session,
		cfg:        cfg,
		state:      st,
		enrollment: enrollment,
		registry:   registry,
		limiter:    common.NewKeyedLimiter(rate.Limit(1), 3),
		metrics:    m,
		ctx:        context.Background(),
		fatal:      make(chan error, 1),
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onGuildCreate)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onGuildMemberAdd)
	session.AddHandler(b.onInteractionCreate)
	return b
}

// Run opens the gateway and blocks until ctx is done. It fails when the
// operating context cannot be resolved, either because the configured ids do
// not match the guild or because the guild never arrived.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway session: %w", err)
	}
	defer b.session.Close()

	if _, err := b.state.Wait(ctx); err != nil {
		if !errors.Is(err, state.ErrNotReady) {
			return nil
		}
		// GuildCreate may have been missed; try the cache once more.
		if err := b.resolve(directory.FromState(b.session.State, b.cfg.GuildID.String())); err != nil {
			return err
		}
	}

	select {
	case <-ctx.Done():
		logging.Info("Shutting down gateway session")
		return nil
	case err := <-b.fatal:
		return err
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logging.Info("Bot is ready",
		"user", r.User.Username,
		"user_id", r.User.ID,
		"guilds", len(r.Guilds),
		"session_id", r.SessionID,
	)
}

// onGuildCreate fires once per guild after Ready and again after a resumed
// outage. The state cache is already updated when handlers run.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.ID != b.cfg.GuildID.String() || g.Unavailable {
		return
	}

	snap := directory.FromState(s.State, g.ID)
	if snap == nil {
		snap = directory.FromGuild(g.Guild)
	}

	if err := b.resolve(snap); err != nil {
		select {
		case b.fatal <- err:
		default:
		}
		return
	}

	b.registerOnce.Do(func() {
		b.registerCommands(s, g.ID)
	})
}

func (b *Bot) resolve(snap *directory.Snapshot) error {
	opCtx, err := resolver.Resolve(b.cfg, snap)
	if err != nil {
		logging.Error("Failed to resolve operating context", "guild_id", b.cfg.GuildID, "error", err.Error())
		return fmt.Errorf("resolve operating context: %w", err)
	}

	b.state.Set(opCtx)
	b.metrics.SetContextReady(true)
	logging.Info("Operating context resolved",
		"guild", opCtx.Guild.Name,
		"guild_id", opCtx.Guild.ID,
		"roles", snap.RoleCount(),
		"channels", snap.ChannelCount(),
		"interviewer_roles", len(opCtx.Roles.Interviewers),
	)
	return nil
}

func (b *Bot) registerCommands(s *discordgo.Session, guildID string) {
	if s.State == nil || s.State.User == nil {
		logging.Warn("Cannot register commands before the session user is known")
		return
	}

	defs := b.registry.Definitions()
	if _, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, defs); err != nil {
		logging.Error("Failed to register commands", "guild_id", guildID, "error", err.Error())
		return
	}
	logging.Info("Commands registered successfully", "guild_id", guildID, "count", len(defs))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.GuildID == "" {
		return
	}
	if b.state.MustWait(b.ctx) == nil {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, handlerTimeout)
	defer cancel()

	ev := messageEvent(uuid.NewString(), m.Message, b.channel(ctx, m.ChannelID))
	if _, err := b.enrollment.HandleMessage(ctx, ev); err != nil {
		logging.Debug("Message event dropped", "event_id", ev.EventID, "error", err.Error())
	}
}

// channel looks the channel up in the cache, then over the API.
func (b *Bot) channel(ctx context.Context, channelID string) directory.Channel {
	if ch, err := b.session.State.Channel(channelID); err == nil {
		return directory.ChannelFrom(ch)
	}
	ch, err := b.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		logging.Warn("Failed to fetch channel", "channel_id", channelID, "error", err.Error())
		return directory.Channel{ID: channelID}
	}
	return directory.ChannelFrom(ch)
}

func (b *Bot) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil {
		return
	}
	if b.state.MustWait(b.ctx) == nil {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, handlerTimeout)
	defer cancel()

	ev := memberJoinEvent(uuid.NewString(), m.Member)
	if _, err := b.enrollment.HandleMemberJoin(ctx, ev); err != nil {
		logging.Debug("Member join event dropped", "event_id", ev.EventID, "error", err.Error())
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	opCtx := b.state.MustWait(b.ctx)
	if opCtx == nil {
		b.respond(s, i, commands.Reply{Content: constants.MsgContextNotReady, Ephemeral: true})
		return
	}

	if !b.limiter.Allow(requester(i)) {
		b.respond(s, i, commands.Reply{Content: constants.MsgRateLimited, Ephemeral: true})
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, handlerTimeout)
	defer cancel()

	inv := invocation(uuid.NewString(), i)
	inv.OpCtx = opCtx

	reply := b.registry.Dispatch(ctx, i.ApplicationCommandData().Name, inv)
	b.respond(s, i, reply)
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, reply commands.Reply) {
	data := &discordgo.InteractionResponseData{
		Content:         reply.Content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		logging.Warn("Failed to respond to interaction", "interaction_id", i.ID, "error", err.Error())
	}
}
