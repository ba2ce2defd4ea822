package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"infinite-experiment/bouncer/internal/common"
	"infinite-experiment/bouncer/internal/constants"
	"infinite-experiment/bouncer/internal/db/repositories"
	"infinite-experiment/bouncer/internal/directory"
	"infinite-experiment/bouncer/internal/logging"
	"infinite-experiment/bouncer/internal/metrics"
	"infinite-experiment/bouncer/internal/resolver"

	"go.uber.org/zap"
)

const enrolledCacheTTL = 24 * time.Hour

// Outcome describes what an event handler did with an event.
type Outcome string

const (
	OutcomeDeferred        Outcome = "deferred"
	OutcomeIgnored         Outcome = "ignored"
	OutcomeEnrolled        Outcome = "enrolled"
	OutcomeAlreadyEnrolled Outcome = "already_enrolled"
	OutcomeNotInterviewed  Outcome = "not_interviewed"
	OutcomeNotApproved     Outcome = "not_approved"
	OutcomeRestored        Outcome = "restored"
	OutcomeAlreadyHeld     Outcome = "already_held"
	OutcomeFailed          Outcome = "failed"
)

// MessageEvent is the part of a gateway message the engine looks at.
type MessageEvent struct {
	EventID   string
	MessageID string
	GuildID   string
	// Regular is false for system messages (joins, pins, boosts...)
	Regular     bool
	Channel     directory.Channel
	AuthorID    string
	AuthorBot   bool
	AuthorRoles []string
}

type MemberJoinEvent struct {
	EventID string
	GuildID string
	UserID  string
	Roles   []string
}

// EnrollmentService enrolls active unverified members and restores verified
// roles when interviewed members rejoin.
type EnrollmentService struct {
	state    ContextSource
	store    RecordStore
	platform Platform
	cache    common.CacheInterface
	metrics  *metrics.MetricsRegistry
}

func NewEnrollmentService(state ContextSource, store RecordStore, platform Platform, cache common.CacheInterface, m *metrics.MetricsRegistry) *EnrollmentService {
	return &EnrollmentService{
		state:    state,
		store:    store,
		platform: platform,
		cache:    cache,
		metrics:  m,
	}
}

// HandleMessage enrolls the author of a qualifying message as Pending. A user
// is enrolled at most once no matter how many messages race in.
func (s *EnrollmentService) HandleMessage(ctx context.Context, ev MessageEvent) (Outcome, error) {
	outcome, err := s.handleMessage(ctx, ev)
	s.metrics.ObserveEvent("message_create", string(outcome))
	return outcome, err
}

func (s *EnrollmentService) handleMessage(ctx context.Context, ev MessageEvent) (Outcome, error) {
	opCtx, ok := s.state.Current()
	if !ok {
		return OutcomeDeferred, nil
	}

	if !ev.Regular {
		return OutcomeIgnored, nil
	}
	if ev.GuildID == "" || ev.GuildID != opCtx.Guild.ID || !ev.Channel.Eligible() {
		return OutcomeIgnored, nil
	}
	if opCtx.IsOwner(ev.AuthorID) {
		return OutcomeIgnored, nil
	}
	if ev.AuthorBot {
		return OutcomeIgnored, nil
	}
	if opCtx.Roles.IsInterviewer(ev.AuthorRoles) {
		return OutcomeIgnored, nil
	}
	// verified outside the bot, e.g. by hand before it ran
	if opCtx.Roles.IsVerified(ev.AuthorRoles) {
		return OutcomeIgnored, nil
	}

	log := logging.WithEvent(ev.EventID, "message_create", ev.GuildID, ev.AuthorID)

	cacheKey := string(constants.CachePrefixEnrolled) + ev.AuthorID
	if s.cache != nil {
		if _, hit := s.cache.Get(cacheKey); hit {
			return OutcomeAlreadyEnrolled, nil
		}
	}

	existing, err := s.store.Find(ctx, ev.AuthorID)
	if err != nil {
		log.Errorw("Failed to look up verification record, dropping message", "error", err.Error())
		return OutcomeFailed, err
	}
	if existing != nil {
		s.remember(cacheKey, existing.Status)
		return OutcomeAlreadyEnrolled, nil
	}

	rec, err := s.store.InsertPending(ctx, ev.AuthorID)
	if errors.Is(err, repositories.ErrAlreadyExists) {
		// a concurrent message from the same user won the insert
		return OutcomeAlreadyEnrolled, nil
	}
	if err != nil {
		log.Errorw("Failed to insert verification record, dropping message", "error", err.Error())
		return OutcomeFailed, err
	}

	s.remember(cacheKey, rec.Status)
	s.metrics.ObserveEnrollment()
	log.Infow("User marked as pending interview", "channel_id", ev.Channel.ID)

	s.markPending(ctx, opCtx, ev.AuthorID, log)
	return OutcomeEnrolled, nil
}

// markPending applies the platform side of enrollment. Failures are logged
// and not retried; the record stays Pending.
func (s *EnrollmentService) markPending(ctx context.Context, opCtx *resolver.OperatingContext, userID string, log *zap.SugaredLogger) {
	if s.platform == nil {
		return
	}

	err := s.platform.AddRole(ctx, opCtx.Guild.ID, userID, opCtx.Roles.PendingInterview.ID)
	s.metrics.ObserveRoleMutation("add", err)
	if err != nil {
		log.Warnw("Failed to add pending interview role", "role_id", opCtx.Roles.PendingInterview.ID, "error", err.Error())
	}

	notice := fmt.Sprintf(constants.MsgMarkedPending, mention(userID))
	if err := s.platform.SendMessage(ctx, opCtx.Channels.InterviewMarks.ID, notice); err != nil {
		log.Warnw("Failed to post pending mark", "channel_id", opCtx.Channels.InterviewMarks.ID, "error", err.Error())
	}
}

func (s *EnrollmentService) remember(key string, status constants.VerificationStatus) {
	if s.cache != nil {
		s.cache.Set(key, status.String(), enrolledCacheTTL)
	}
}

// HandleMemberJoin restores the verified role of a rejoining member. Only the
// most recent interview counts, and only if it approved them. Granting a role the member already holds is a
// no-op, so duplicate join deliveries are harmless.
func (s *EnrollmentService) HandleMemberJoin(ctx context.Context, ev MemberJoinEvent) (Outcome, error) {
	outcome, err := s.handleMemberJoin(ctx, ev)
	s.metrics.ObserveEvent("guild_member_add", string(outcome))
	return outcome, err
}

func (s *EnrollmentService) handleMemberJoin(ctx context.Context, ev MemberJoinEvent) (Outcome, error) {
	opCtx, ok := s.state.Current()
	if !ok {
		return OutcomeDeferred, nil
	}
	if ev.GuildID != opCtx.Guild.ID {
		return OutcomeIgnored, nil
	}

	log := logging.WithEvent(ev.EventID, "guild_member_add", ev.GuildID, ev.UserID)

	iv, err := s.store.FindInterview(ctx, ev.UserID)
	if err != nil {
		log.Errorw("Failed to look up interview record", "error", err.Error())
		return OutcomeFailed, err
	}
	if iv == nil {
		return OutcomeNotInterviewed, nil
	}

	if iv.Outcome != constants.StatusApproved {
		log.Infow("Latest interview did not approve the member, nothing to restore", "interview_id", iv.ID, "outcome", iv.Outcome.String())
		return OutcomeNotApproved, nil
	}

	role := opCtx.Roles.VerifiedRole(iv.Type)

	held := ev.Roles
	if s.platform != nil {
		if current, err := s.platform.MemberRoles(ctx, ev.GuildID, ev.UserID); err == nil {
			held = current
		} else {
			log.Warnw("Failed to fetch member roles, using join payload", "error", err.Error())
		}
	}
	if slices.Contains(held, role.ID) {
		return OutcomeAlreadyHeld, nil
	}

	if s.platform == nil {
		return OutcomeFailed, errors.New("no platform configured")
	}
	err = s.platform.AddRole(ctx, ev.GuildID, ev.UserID, role.ID)
	s.metrics.ObserveRoleMutation("add", err)
	if err != nil {
		log.Errorw("Failed to restore verified role", "role_id", role.ID, "interview_type", iv.Type.String(), "error", err.Error())
		return OutcomeFailed, err
	}

	s.metrics.ObserveRestoration(iv.Type.String())
	log.Infow("Restored verified role", "role_id", role.ID, "interview_type", iv.Type.String())
	return OutcomeRestored, nil
}

func mention(userID string) string {
	return "<@" + userID + ">"
}
