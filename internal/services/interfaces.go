package services

import (
	"context"

	"infinite-experiment/bouncer/internal/constants"
	models "infinite-experiment/bouncer/internal/models/gorm"
	"infinite-experiment/bouncer/internal/resolver"
)

// RecordStore is the slice of the record repository the enrollment engine needs.
// InsertPending must be atomic: concurrent calls for one user yield a single
// record and repositories.ErrAlreadyExists for the rest.
type RecordStore interface {
	Find(ctx context.Context, userID string) (*models.VerificationRecord, error)
	InsertPending(ctx context.Context, userID string) (*models.VerificationRecord, error)
	FindInterview(ctx context.Context, userID string) (*models.InterviewRecord, error)
}

type InterviewStore interface {
	RecordStore
	StartInterview(ctx context.Context, userID, interviewerID string, t constants.InterviewType) (*models.VerificationRecord, error)
	CompleteInterview(ctx context.Context, userID, completedBy string, outcome constants.VerificationStatus) (*models.InterviewRecord, error)
}

// Platform is the Discord API surface used for side effects.
type Platform interface {
	MemberRoles(ctx context.Context, guildID, userID string) ([]string, error)
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	SendMessage(ctx context.Context, channelID, content string) error
}

type ContextSource interface {
	Current() (*resolver.OperatingContext, bool)
}
