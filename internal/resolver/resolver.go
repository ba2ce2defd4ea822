// Package resolver binds configured guild, channel and role ids to a
// directory snapshot. Resolution either yields a complete OperatingContext or
// an error naming the identifier that failed.
package resolver

import (
	"errors"
	"fmt"

	"infinite-experiment/bouncer/internal/config"
	"infinite-experiment/bouncer/internal/directory"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrWrongKind    = errors.New("wrong kind")
	ErrEmptyRoleSet = errors.New("no role in the set could be found")
)

// ResolutionError names the configuration field that could not be resolved.
type ResolutionError struct {
	Field  string
	IDs    []string
	Reason error
	// Want and Got are only set for ErrWrongKind.
	Want directory.ChannelKind
	Got  directory.ChannelKind
}

func (e *ResolutionError) Error() string {
	id := fmt.Sprintf("%v", e.IDs)
	if len(e.IDs) == 1 {
		id = e.IDs[0]
	}
	if errors.Is(e.Reason, ErrWrongKind) {
		return fmt.Sprintf("`%s` with the id `%s` is a %s channel, expected %s", e.Field, id, e.Got, e.Want)
	}
	return fmt.Sprintf("`%s` with the id `%s`: %v", e.Field, id, e.Reason)
}

func (e *ResolutionError) Unwrap() error { return e.Reason }

// Resolve validates cfg against snap. The guild is checked first since every
// other lookup depends on it; the first unresolved entity is reported.
func Resolve(cfg config.Discord, snap *directory.Snapshot) (*OperatingContext, error) {
	if snap == nil || snap.Guild.ID != cfg.GuildID.String() {
		return nil, notFound("guild_id", cfg.GuildID)
	}

	category, err := channelOfKind(snap, "interviews_category_id", cfg.Channels.InterviewsCategoryID, directory.KindCategory)
	if err != nil {
		return nil, err
	}
	marks, err := channelOfKind(snap, "interview_marks_id", cfg.Channels.InterviewMarksID, directory.KindText)
	if err != nil {
		return nil, err
	}

	interviewers := make([]directory.Role, 0, len(cfg.Roles.InterviewerIDs))
	for _, id := range cfg.Roles.InterviewerIDs {
		if role, ok := snap.Role(id.String()); ok {
			interviewers = append(interviewers, role)
		}
	}
	if len(interviewers) == 0 {
		ids := make([]string, len(cfg.Roles.InterviewerIDs))
		for i, id := range cfg.Roles.InterviewerIDs {
			ids[i] = id.String()
		}
		return nil, &ResolutionError{Field: "interviewer_ids", IDs: ids, Reason: ErrEmptyRoleSet}
	}

	pending, err := role(snap, "pending_interview_id", cfg.Roles.PendingInterviewID)
	if err != nil {
		return nil, err
	}
	ongoing, err := role(snap, "ongoing_interview_id", cfg.Roles.OngoingInterviewID)
	if err != nil {
		return nil, err
	}
	textVerified, err := role(snap, "text_verified_id", cfg.Roles.TextVerifiedID)
	if err != nil {
		return nil, err
	}
	idVerified, err := role(snap, "id_verified_id", cfg.Roles.IDVerifiedID)
	if err != nil {
		return nil, err
	}

	return &OperatingContext{
		Guild: snap.Guild,
		Channels: Channels{
			InterviewsCategory: category,
			InterviewMarks:     marks,
		},
		Roles: Roles{
			Interviewers:     interviewers,
			PendingInterview: pending,
			OngoingInterview: ongoing,
			TextVerified:     textVerified,
			IDVerified:       idVerified,
		},
	}, nil
}

func channelOfKind(snap *directory.Snapshot, field string, id config.Snowflake, kind directory.ChannelKind) (directory.Channel, error) {
	ch, ok := snap.Channel(id.String())
	if !ok {
		return directory.Channel{}, notFound(field, id)
	}
	if ch.Kind != kind {
		return directory.Channel{}, &ResolutionError{
			Field:  field,
			IDs:    []string{id.String()},
			Reason: ErrWrongKind,
			Want:   kind,
			Got:    ch.Kind,
		}
	}
	return ch, nil
}

func role(snap *directory.Snapshot, field string, id config.Snowflake) (directory.Role, error) {
	r, ok := snap.Role(id.String())
	if !ok {
		return directory.Role{}, notFound(field, id)
	}
	return r, nil
}

func notFound(field string, id config.Snowflake) *ResolutionError {
	return &ResolutionError{Field: field, IDs: []string{id.String()}, Reason: ErrNotFound}
}
