package services

import (
	"context"
	"fmt"

	"infinite-experiment/bouncer/internal/constants"
	"infinite-experiment/bouncer/internal/logging"
	"infinite-experiment/bouncer/internal/metrics"
	models "infinite-experiment/bouncer/internal/models/gorm"
	"infinite-experiment/bouncer/internal/resolver"
)

// InterviewService drives a record from Pending through Ongoing to a final
// status and keeps the member's roles in line with it.
type InterviewService struct {
	store    InterviewStore
	platform Platform
	metrics  *metrics.MetricsRegistry
}

func NewInterviewService(store InterviewStore, platform Platform, m *metrics.MetricsRegistry) *InterviewService {
	return &InterviewService{
		store:    store,
		platform: platform,
		metrics:  m,
	}
}

// Start begins an interview of target by interviewerID. The record must be
// Pending (or Rejected, for a re-interview).
func (s *InterviewService) Start(ctx context.Context, opCtx *resolver.OperatingContext, interviewerID string, target Target, t constants.InterviewType) (*models.VerificationRecord, error) {
	if e := CheckEligible(interviewerID, target, opCtx); !e.Eligible {
		return nil, &IneligibleError{Reason: e.Reason}
	}

	rec, err := s.store.StartInterview(ctx, target.UserID, interviewerID, t)
	if err != nil {
		return nil, err
	}

	logging.Info("Interview started",
		"user_id", target.UserID,
		"interviewer_id", interviewerID,
		"interview_type", t.String(),
	)

	s.swapRoles(ctx, opCtx.Guild.ID, target.UserID, opCtx.Roles.PendingInterview.ID, opCtx.Roles.OngoingInterview.ID)
	return rec, nil
}

// Complete concludes the ongoing interview of userID with outcome, which must
// be StatusApproved or StatusRejected.
func (s *InterviewService) Complete(ctx context.Context, opCtx *resolver.OperatingContext, completedBy, userID string, outcome constants.VerificationStatus) (*models.InterviewRecord, error) {
	iv, err := s.store.CompleteInterview(ctx, userID, completedBy, outcome)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveInterview(outcome.String())
	logging.Info("Interview completed",
		"user_id", userID,
		"interviewer_id", iv.InterviewerID,
		"completed_by", completedBy,
		"outcome", outcome.String(),
		"interview_type", iv.Type.String(),
	)

	grant := ""
	if outcome == constants.StatusApproved {
		grant = opCtx.Roles.VerifiedRole(iv.Type).ID
	}
	s.swapRoles(ctx, opCtx.Guild.ID, userID, opCtx.Roles.OngoingInterview.ID, grant)

	if s.platform != nil {
		notice := fmt.Sprintf(constants.MsgMarkedResult, mention(userID), mention(completedBy), outcome.String(), iv.Type.Label())
		if err := s.platform.SendMessage(ctx, opCtx.Channels.InterviewMarks.ID, notice); err != nil {
			logging.Warn("Failed to post interview result", "user_id", userID, "error", err.Error())
		}
	}

	return iv, nil
}

// swapRoles removes one role and adds another. Either may be empty. Failures
// are logged; the stored status is authoritative.
func (s *InterviewService) swapRoles(ctx context.Context, guildID, userID, remove, add string) {
	if s.platform == nil {
		return
	}

	if remove != "" {
		err := s.platform.RemoveRole(ctx, guildID, userID, remove)
		s.metrics.ObserveRoleMutation("remove", err)
		if err != nil {
			logging.Warn("Failed to remove role", "user_id", userID, "role_id", remove, "error", err.Error())
		}
	}
	if add != "" {
		err := s.platform.AddRole(ctx, guildID, userID, add)
		s.metrics.ObserveRoleMutation("add", err)
		if err != nil {
			logging.Warn("Failed to add role", "user_id", userID, "role_id", add, "error", err.Error())
		}
	}
}
