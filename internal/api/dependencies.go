package api

import (
	"context"
	"time"

	"infinite-experiment/bouncer/internal/constants"
	"infinite-experiment/bouncer/internal/db/repositories"
	models "infinite-experiment/bouncer/internal/models/gorm"
	"infinite-experiment/bouncer/internal/resolver"
)

type RecordFinder interface {
	Find(ctx context.Context, userID string) (*models.VerificationRecord, error)
}

type StatsSource interface {
	CountByStatus(ctx context.Context) (map[constants.VerificationStatus]int64, error)
	RecentInterviews(ctx context.Context, limit int) ([]repositories.InterviewSummary, error)
	Ping(ctx context.Context) error
}

type ContextSource interface {
	Current() (*resolver.OperatingContext, bool)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators of the ops API. Cache is nil when the
// in-process cache is used.
type Dependencies struct {
	Records RecordFinder
	Stats   StatsSource
	State   ContextSource
	Cache   Pinger
	UpSince time.Time
}
