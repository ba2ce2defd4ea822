package repositories

import (
	"context"
	"fmt"
	"time"

	"infinite-experiment/bouncer/internal/constants"

	"github.com/jmoiron/sqlx"
)

// StatsRepository runs read-only reporting queries with sqlx
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db}
}

type statusCount struct {
	Status constants.VerificationStatus `db:"status"`
	Count  int64                        `db:"count"`
}

// InterviewSummary is one row of the recent interviews report
type InterviewSummary struct {
	ID            int64                        `db:"id" json:"id"`
	UserID        string                       `db:"user_id" json:"user_id"`
	InterviewerID string                       `db:"interviewer_id" json:"interviewer_id"`
	Type          constants.InterviewType      `db:"type" json:"type"`
	Outcome       constants.VerificationStatus `db:"outcome" json:"outcome"`
	ConductedAt   time.Time                    `db:"interview_date" json:"conducted_at"`
}

// CountByStatus returns the number of verification records per status.
// Statuses without records are reported as zero.
func (r *StatsRepository) CountByStatus(ctx context.Context) (map[constants.VerificationStatus]int64, error) {
	var rows []statusCount
	if err := r.db.SelectContext(ctx, &rows, constants.CountRecordsByStatus); err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	counts := map[constants.VerificationStatus]int64{
		constants.StatusPending:  0,
		constants.StatusOngoing:  0,
		constants.StatusApproved: 0,
		constants.StatusRejected: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *StatsRepository) RecentInterviews(ctx context.Context, limit int) ([]InterviewSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []InterviewSummary
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.RecentInterviews), limit); err != nil {
		return nil, fmt.Errorf("failed to fetch recent interviews: %w", err)
	}
	return rows, nil
}

// Ping checks the underlying connection
func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
