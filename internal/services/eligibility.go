package services

import "infinite-experiment/bouncer/internal/resolver"

// Reason explains why a member cannot be interviewed.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonBot         Reason = "target is a bot"
	ReasonSelf        Reason = "target is the requester"
	ReasonInterviewer Reason = "target holds an interviewer role"
)

// Target is the member an interview is requested for.
type Target struct {
	UserID string
	Bot    bool
	Roles  []string
}

type Eligibility struct {
	Eligible bool
	Reason   Reason
}

// CheckEligible decides whether requesterID may interview target. Reasons are
// user visible, so the most specific one is reported first.
func CheckEligible(requesterID string, target Target, opCtx *resolver.OperatingContext) Eligibility {
	switch {
	case target.Bot:
		return Eligibility{Reason: ReasonBot}
	case target.UserID == requesterID:
		return Eligibility{Reason: ReasonSelf}
	case opCtx != nil && opCtx.Roles.IsInterviewer(target.Roles):
		return Eligibility{Reason: ReasonInterviewer}
	}
	return Eligibility{Eligible: true}
}

// IneligibleError is returned by InterviewService.Start when the eligibility
// check fails.
type IneligibleError struct {
	Reason Reason
}

func (e *IneligibleError) Error() string {
	return "cannot interview: " + string(e.Reason)
}
