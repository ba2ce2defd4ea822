package responses

import (
	"time"

	"infinite-experiment/bouncer/internal/constants"
	"infinite-experiment/bouncer/internal/db/repositories"
	models "infinite-experiment/bouncer/internal/models/gorm"
)

type InterviewResponse struct {
	InterviewerID string                       `json:"interviewer_id"`
	Type          constants.InterviewType      `json:"type"`
	Outcome       constants.VerificationStatus `json:"outcome"`
	ConductedAt   time.Time                    `json:"conducted_at"`
}

type RecordResponse struct {
	UserID        string                       `json:"user_id"`
	Status        constants.VerificationStatus `json:"status"`
	MarkedAt      time.Time                    `json:"marked_at"`
	InterviewType *constants.InterviewType     `json:"interview_type,omitempty"`
	InterviewerID *string                      `json:"interviewer_id,omitempty"`
	LastInterview *InterviewResponse           `json:"last_interview,omitempty"`
}

func NewRecordResponse(rec *models.VerificationRecord) *RecordResponse {
	resp := &RecordResponse{
		UserID:        rec.UserID,
		Status:        rec.Status,
		MarkedAt:      rec.MarkedAt,
		InterviewType: rec.InterviewType,
		InterviewerID: rec.InterviewerID,
	}
	if iv := rec.Interview; iv != nil {
		resp.LastInterview = &InterviewResponse{
			InterviewerID: iv.InterviewerID,
			Type:          iv.Type,
			Outcome:       iv.Outcome,
			ConductedAt:   iv.ConductedAt,
		}
	}
	return resp
}

type StatsResponse struct {
	Records          map[constants.VerificationStatus]int64 `json:"records"`
	RecentInterviews []repositories.InterviewSummary        `json:"recent_interviews"`
}
