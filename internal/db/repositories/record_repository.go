package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"infinite-experiment/bouncer/internal/constants"
	models "infinite-experiment/bouncer/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordRepository persists verification and interview records with GORM
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a new GORM-based record repository
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Find retrieves a user's verification record with its latest interview.
// It returns nil, nil when the user has never been enrolled.
func (r *RecordRepository) Find(ctx context.Context, userID string) (*models.VerificationRecord, error) {
	var rec models.VerificationRecord

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch verification record: %w", err)
	}

	iv, err := r.FindInterview(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec.Interview = iv

	return &rec, nil
}

// InsertPending creates a Pending record for userID. The unique index on
// user_id arbitrates concurrent inserts: exactly one caller succeeds and the
// rest get ErrAlreadyExists.
func (r *RecordRepository) InsertPending(ctx context.Context, userID string) (*models.VerificationRecord, error) {
	rec := &models.VerificationRecord{
		UserID: userID,
		Status: constants.StatusPending,
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to insert verification record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyExists
	}

	return rec, nil
}

// FindInterview retrieves the most recent interview of a user, or nil.
func (r *RecordRepository) FindInterview(ctx context.Context, userID string) (*models.InterviewRecord, error) {
	var iv models.InterviewRecord

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("interview_date DESC").
		Order("id DESC").
		First(&iv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch interview record: %w", err)
	}

	return &iv, nil
}

// StartInterview moves a Pending (or previously Rejected) user to Ongoing and
// remembers who interviews them and how.
func (r *RecordRepository) StartInterview(ctx context.Context, userID, interviewerID string, t constants.InterviewType) (*models.VerificationRecord, error) {
	res := r.db.WithContext(ctx).
		Model(&models.VerificationRecord{}).
		Where("user_id = ? AND status IN ?", userID, []constants.VerificationStatus{constants.StatusPending, constants.StatusRejected}).
		Updates(map[string]interface{}{
			"status":         constants.StatusOngoing,
			"interview_type": t,
			"interviewer_id": interviewerID,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to start interview: %w", res.Error)
	}

	rec, err := r.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	if res.RowsAffected == 0 {
		return nil, &TransitionError{UserID: userID, Current: rec.Status, Target: constants.StatusOngoing}
	}

	return rec, nil
}

// CompleteInterview concludes an Ongoing interview with outcome (Approved or
// Rejected) and writes the InterviewRecord in the same transaction.
func (r *RecordRepository) CompleteInterview(ctx context.Context, userID, completedBy string, outcome constants.VerificationStatus) (*models.InterviewRecord, error) {
	if !outcome.Terminal() {
		return nil, fmt.Errorf("%w: %s is not a final status", ErrInvalidTransition, outcome)
	}

	var iv *models.InterviewRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.VerificationRecord
		if err := tx.Where("user_id = ?", userID).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to fetch verification record: %w", err)
		}
		if rec.Status != constants.StatusOngoing {
			return &TransitionError{UserID: userID, Current: rec.Status, Target: outcome}
		}

		res := tx.Model(&models.VerificationRecord{}).
			Where("user_id = ? AND status = ?", userID, constants.StatusOngoing).
			Updates(map[string]interface{}{
				"status":         outcome,
				"interview_type": nil,
				"interviewer_id": nil,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update verification record: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &TransitionError{UserID: userID, Current: constants.StatusOngoing, Target: outcome}
		}

		interviewer := completedBy
		if rec.InterviewerID != nil && *rec.InterviewerID != "" {
			interviewer = *rec.InterviewerID
		}
		interviewType := constants.InterviewTypeText
		if rec.InterviewType != nil {
			interviewType = *rec.InterviewType
		}

		iv = &models.InterviewRecord{
			UserID:        userID,
			InterviewerID: interviewer,
			Type:          interviewType,
			Outcome:       outcome,
			ConductedAt:   time.Now().UTC(),
		}
		if err := tx.Create(iv).Error; err != nil {
			return fmt.Errorf("failed to insert interview record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return iv, nil
}
