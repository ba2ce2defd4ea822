package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"infinite-experiment/bouncer/internal/constants"
	"infinite-experiment/bouncer/internal/db/repositories"
	models "infinite-experiment/bouncer/internal/models/gorm"
	"infinite-experiment/bouncer/internal/resolver"
	"infinite-experiment/bouncer/internal/services"

	"github.com/bwmarrin/discordgo"
)

// Interviews is the part of services.InterviewService the commands drive.
type Interviews interface {
	Start(ctx context.Context, opCtx *resolver.OperatingContext, interviewerID string, target services.Target, t constants.InterviewType) (*models.VerificationRecord, error)
	Complete(ctx context.Context, opCtx *resolver.OperatingContext, completedBy, userID string, outcome constants.VerificationStatus) (*models.InterviewRecord, error)
}

type Records interface {
	Find(ctx context.Context, userID string) (*models.VerificationRecord, error)
}

type Interview struct {
	Service Interviews
}

func (Interview) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     "interview",
		Description:              "Interview an user.",
		DefaultMemberPermissions: &manageGuild,
		Options: []*discordgo.ApplicationCommandOption{
			userArg("user", "The user to interview."),
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "interview_type",
				Description: "Type of the interview.",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: constants.InterviewTypeText.Label(), Value: constants.InterviewTypeText.String()},
					{Name: constants.InterviewTypeID.Label(), Value: constants.InterviewTypeID.String()},
				},
			},
		},
	}
}

func (c Interview) Execute(ctx context.Context, inv *Invocation) (Reply, error) {
	if !authorized(inv) {
		return ephemeral(constants.MsgNoPermission), nil
	}
	user, ok := inv.Users["user"]
	if !ok || !user.Member {
		return ephemeral(constants.MsgNotMember), nil
	}

	interviewType := constants.InterviewTypeText
	if raw, ok := inv.Strings["interview_type"]; ok && raw != "" {
		t, err := constants.ParseInterviewType(raw)
		if err != nil {
			return Reply{}, err
		}
		interviewType = t
	}

	target := services.Target{UserID: user.ID, Bot: user.Bot, Roles: user.Roles}
	_, err := c.Service.Start(ctx, inv.OpCtx, inv.RequesterID, target, interviewType)

	var (
		inelig *services.IneligibleError
		trErr  *repositories.TransitionError
	)
	switch {
	case err == nil:
		return ephemeral(constants.MsgInterviewStarted, mention(user.ID), interviewType.Label()), nil
	case errors.As(err, &inelig):
		return Reply{Content: ineligibleMessage(inelig.Reason), Ephemeral: true}, nil
	case errors.Is(err, repositories.ErrNotFound):
		return ephemeral(constants.MsgNotPending, mention(user.ID)), nil
	case errors.As(err, &trErr):
		switch trErr.Current {
		case constants.StatusOngoing:
			return ephemeral(constants.MsgAlreadyOngoing, mention(user.ID)), nil
		case constants.StatusApproved:
			return ephemeral(constants.MsgAlreadyApproved, mention(user.ID)), nil
		default:
			return ephemeral(constants.MsgNotPending, mention(user.ID)), nil
		}
	default:
		return Reply{}, err
	}
}

func ineligibleMessage(r services.Reason) string {
	switch r {
	case services.ReasonBot:
		return constants.MsgInterviewBot
	case services.ReasonSelf:
		return constants.MsgInterviewSelf
	default:
		return constants.MsgInterviewInterviewer
	}
}

// Verdict concludes an ongoing interview. Approve and Reject are the two
// instances registered.
type Verdict struct {
	Service Interviews
	Outcome constants.VerificationStatus
}

func Approve(svc Interviews) Verdict {
	return Verdict{Service: svc, Outcome: constants.StatusApproved}
}

func Reject(svc Interviews) Verdict {
	return Verdict{Service: svc, Outcome: constants.StatusRejected}
}

func (c Verdict) Definition() *discordgo.ApplicationCommand {
	name, description, arg := "approve", "Approve an user interview.", "The user to approve."
	if c.Outcome == constants.StatusRejected {
		name, description, arg = "reject", "Reject an user interview.", "The user to reject."
	}
	return &discordgo.ApplicationCommand{
		Name:                     name,
		Description:              description,
		DefaultMemberPermissions: &manageGuild,
		Options: []*discordgo.ApplicationCommandOption{
			userArg("user", arg),
		},
	}
}

func (c Verdict) Execute(ctx context.Context, inv *Invocation) (Reply, error) {
	if !authorized(inv) {
		return ephemeral(constants.MsgNoPermission), nil
	}
	user, ok := inv.Users["user"]
	if !ok || !user.Member {
		return ephemeral(constants.MsgNotMember), nil
	}

	_, err := c.Service.Complete(ctx, inv.OpCtx, inv.RequesterID, user.ID, c.Outcome)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, repositories.ErrInvalidTransition):
		return ephemeral(constants.MsgNotBeingInterviewed, mention(user.ID)), nil
	default:
		return Reply{}, err
	}

	if c.Outcome == constants.StatusApproved {
		return ephemeral(constants.MsgApproved, mention(user.ID)), nil
	}
	return ephemeral(constants.MsgRejected, mention(user.ID)), nil
}

// Status reports the stored verification record of a user. It works for users
// who already left the guild.
type Status struct {
	Records Records
}

func (Status) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     "status",
		Description:              "Show the verification status of an user.",
		DefaultMemberPermissions: &manageGuild,
		Options: []*discordgo.ApplicationCommandOption{
			userArg("user", "The user to look up."),
		},
	}
}

func (c Status) Execute(ctx context.Context, inv *Invocation) (Reply, error) {
	if !authorized(inv) {
		return ephemeral(constants.MsgNoPermission), nil
	}
	user, ok := inv.Users["user"]
	if !ok {
		return ephemeral(constants.MsgNotMember), nil
	}

	rec, err := c.Records.Find(ctx, user.ID)
	if err != nil {
		return Reply{}, err
	}
	if rec == nil {
		return ephemeral(constants.MsgNoRecord, mention(user.ID)), nil
	}

	content := fmt.Sprintf(constants.MsgStatus, mention(user.ID), rec.Status, relative(rec.MarkedAt))
	if iv := rec.Interview; iv != nil {
		content += "\n" + fmt.Sprintf(constants.MsgStatusInterview, iv.Outcome, iv.Type.Label(), mention(iv.InterviewerID), relative(iv.ConductedAt))
	}
	return Reply{Content: content, Ephemeral: true}, nil
}

func relative(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}
