package constants

// Reporting queries run through sqlx. Placeholders are written with `?` and
// rebound for the active driver.
const (
	CountRecordsByStatus = `
	SELECT status, COUNT(*) AS count FROM users GROUP BY status
	`

	RecentInterviews = `
	SELECT id, user_id, interviewer_id, type, outcome, interview_date
	FROM interviews
	ORDER BY interview_date DESC, id DESC
	LIMIT ?
	`
)
