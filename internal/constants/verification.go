package constants

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// VerificationStatus mirrors the users.status column
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusOngoing  VerificationStatus = "ongoing"
	StatusApproved VerificationStatus = "approved"
	StatusRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) String() string { return string(s) }

// Terminal reports whether the interview for this status has concluded.
func (s VerificationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (s *VerificationStatus) Scan(src interface{}) error {
	if src == nil {
		*s = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*s = VerificationStatus(v)
	case []byte:
		*s = VerificationStatus(v)
	default:
		return fmt.Errorf("VerificationStatus: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (s VerificationStatus) Value() (driver.Value, error) { return string(s), nil }

// InterviewType decides which verified role an interview grants
type InterviewType string

const (
	InterviewTypeText InterviewType = "text"
	InterviewTypeID   InterviewType = "id"
)

func (t InterviewType) String() string { return string(t) }

// Label is the human readable name used in replies.
func (t InterviewType) Label() string {
	if t == InterviewTypeID {
		return "ID"
	}
	return "Text"
}

func ParseInterviewType(s string) (InterviewType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return InterviewTypeText, nil
	case "id":
		return InterviewTypeID, nil
	default:
		return "", fmt.Errorf("unknown interview type %q", s)
	}
}

// Scan implements the sql.Scanner interface
func (t *InterviewType) Scan(src interface{}) error {
	if src == nil {
		*t = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*t = InterviewType(v)
	case []byte:
		*t = InterviewType(v)
	default:
		return fmt.Errorf("InterviewType: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (t InterviewType) Value() (driver.Value, error) { return string(t), nil }
