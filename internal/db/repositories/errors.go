package repositories

import (
	"errors"
	"fmt"

	"infinite-experiment/bouncer/internal/constants"
)

var (
	// ErrAlreadyExists is the expected outcome of a losing concurrent insert.
	ErrAlreadyExists = errors.New("verification record already exists")
	// ErrNotFound is returned by state transitions for users without a record.
	ErrNotFound          = errors.New("verification record not found")
	ErrInvalidTransition = errors.New("invalid verification status transition")
)

// TransitionError reports the status that blocked a transition.
type TransitionError struct {
	UserID  string
	Current constants.VerificationStatus
	Target  constants.VerificationStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("user %s cannot move from %s to %s", e.UserID, e.Current, e.Target)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
