package gorm

import (
	"infinite-experiment/bouncer/internal/constants"
	"time"
)

// VerificationRecord is the per-user verification state. Exactly one row per
// Discord user; rows are never deleted so a rejoining member can be restored.
type VerificationRecord struct {
	ID       uint                         `gorm:"column:id;primaryKey;autoIncrement"`
	UserID   string                       `gorm:"column:user_id;uniqueIndex;not null"`
	Status   constants.VerificationStatus `gorm:"column:status;type:varchar(16);not null;default:pending"`
	MarkedAt time.Time                    `gorm:"column:mark_date;autoCreateTime"`

	// Set while an interview is ongoing
	InterviewType *constants.InterviewType `gorm:"column:interview_type;type:varchar(8)"`
	InterviewerID *string                  `gorm:"column:interviewer_id"`

	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Latest interview, filled by the repository on Find
	Interview *InterviewRecord `gorm:"-"`
}

// TableName specifies the table name for GORM
func (VerificationRecord) TableName() string {
	return "users"
}
