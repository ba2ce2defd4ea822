package gorm

import (
	"infinite-experiment/bouncer/internal/constants"
	"time"
)

// InterviewRecord is written once an interview concludes. A user may have
// several; the most recent one decides role restoration.
type InterviewRecord struct {
	ID            uint                    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        string                  `gorm:"column:user_id;index;not null"`
	InterviewerID string                  `gorm:"column:interviewer_id;not null"`
	Type          constants.InterviewType `gorm:"column:type;type:varchar(8);not null"`
	// Outcome is the status the interview concluded with
	Outcome     constants.VerificationStatus `gorm:"column:outcome;type:varchar(16);not null"`
	ConductedAt time.Time                    `gorm:"column:interview_date;index"`
}

// TableName specifies the table name for GORM
func (InterviewRecord) TableName() string {
	return "interviews"
}
