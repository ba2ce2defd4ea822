package resolver

import (
	"slices"

	"infinite-experiment/bouncer/internal/constants"
	"infinite-experiment/bouncer/internal/directory"
)

// OperatingContext is the configuration bound to live guild entities. It is
// only produced by Resolve and is never partially populated.
type OperatingContext struct {
	Guild    directory.Guild
	Channels Channels
	Roles    Roles
}

type Channels struct {
	InterviewsCategory directory.Channel
	InterviewMarks     directory.Channel
}

type Roles struct {
	Interviewers []directory.Role

	PendingInterview directory.Role
	OngoingInterview directory.Role

	TextVerified directory.Role
	IDVerified   directory.Role
}

// IsInterviewer reports whether any of roleIDs is an interviewer role.
func (r Roles) IsInterviewer(roleIDs []string) bool {
	for _, role := range r.Interviewers {
		if slices.Contains(roleIDs, role.ID) {
			return true
		}
	}
	return false
}

// IsVerified reports whether roleIDs include either verified role.
func (r Roles) IsVerified(roleIDs []string) bool {
	return slices.Contains(roleIDs, r.TextVerified.ID) || slices.Contains(roleIDs, r.IDVerified.ID)
}

// VerifiedRole maps an interview type to the terminal role it grants.
func (r Roles) VerifiedRole(t constants.InterviewType) directory.Role {
	if t == constants.InterviewTypeID {
		return r.IDVerified
	}
	return r.TextVerified
}

func (c *OperatingContext) IsOwner(userID string) bool {
	return c.Guild.OwnerID != "" && c.Guild.OwnerID == userID
}
