package constants

// Replies shown to command invokers
const (
	MsgNotMember            = "This user does not seem to be a member of the server."
	MsgInterviewBot         = "You cannot interview a bot."
	MsgInterviewSelf        = "You cannot interview yourself."
	MsgInterviewInterviewer = "You cannot interview an interviewer."
	MsgNotPending           = "%s is not pending for interview."
	MsgAlreadyOngoing       = "%s is already on an ongoing interview."
	MsgAlreadyApproved      = "%s has already been interviewed and approved."
	MsgInterviewStarted     = "%s is now on a `%s` interview."
	MsgNotBeingInterviewed  = "%s is not being interviewed."
	MsgApproved             = "%s has been approved."
	MsgRejected             = "%s has been rejected."
	MsgNoRecord             = "%s has no verification record."
	MsgUnexpected           = "An unexpected error occurred. Check logs for possible errors."
	MsgContextNotReady      = "The bot is still starting up, try again in a moment."
	MsgRateLimited          = "You are doing that too fast."
	MsgNoPermission         = "You do not have permission to do this!"
	MsgUnknownCommand       = "Unknown command."
	MsgStatus               = "%s is %s since %s."
	MsgStatusInterview      = "Last interview: %s (%s) by %s on %s."

	MsgPong = "Pong!"
	MsgMeow = "meow :3"

	MsgDOBFormat = "The date should be in `YYYY-MM-DD` format."
	MsgDOBMonth  = "Invalid month specified. It should be between 1 and 12."
	MsgDOBDay    = "Invalid day specified for month %d. It should be between 1 and %d."
	MsgDOBFuture = "The date of birth cannot be in the future."
	MsgDOBResult = "The date of birth is %s and the age is %d."

	MsgMarkedPending = "%s marked as pending interview. To interview them, use /interview command."
	MsgMarkedResult  = "%s interview finished by %s: %s (%s)."
)
