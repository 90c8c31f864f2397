package database

import (
	"database/sql"
	"fmt"
	"time"

	"garderobe/internal/models"
)

const reportSelect = `
	SELECT r.id, r.reporter_id, r.content_type, r.object_id, r.reported_user_id,
	       r.reason, r.description, r.status, r.moderator_id, r.action_taken,
	       r.moderator_comment, r.created_at, r.handled_at,
	       u.username, COALESCE(ru.username, '')
	FROM moderation_reports r
	JOIN users u ON r.reporter_id = u.id
	LEFT JOIN users ru ON r.reported_user_id = ru.id
`

func scanReport(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ModerationReport, error) {
	r := &models.ModerationReport{}
	var reportedUserID, moderatorID sql.NullInt64
	var handledAt sql.NullTime
	var reporterName, reportedName string

	err := scanner.Scan(
		&r.ID, &r.ReporterID, &r.ContentType, &r.ObjectID, &reportedUserID,
		&r.Reason, &r.Description, &r.Status, &moderatorID, &r.ActionTaken,
		&r.ModeratorComment, &r.CreatedAt, &handledAt,
		&reporterName, &reportedName,
	)
	if err != nil {
		return nil, err
	}

	if reportedUserID.Valid {
		id := int(reportedUserID.Int64)
		r.ReportedUserID = &id
		r.ReportedUser = &models.User{ID: id, Username: reportedName}
	}
	if moderatorID.Valid {
		id := int(moderatorID.Int64)
		r.ModeratorID = &id
	}
	if handledAt.Valid {
		r.HandledAt = &handledAt.Time
	}
	r.Reporter = &models.User{ID: r.ReporterID, Username: reporterName}

	return r, nil
}

// CreateReport files a report against a piece of content. The reported user
// is resolved from the content when possible.
func CreateReport(db *sql.DB, reporterID int, report models.ModerationReport) (*models.ModerationReport, error) {
	query := `
		INSERT INTO moderation_reports (reporter_id, content_type, object_id, reported_user_id, reason, description)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query,
		reporterID, report.ContentType, report.ObjectID, report.ReportedUserID,
		report.Reason, report.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get report ID: %w", err)
	}

	return GetReport(db, int(id))
}

func GetReport(db *sql.DB, reportID int) (*models.ModerationReport, error) {
	r, err := scanReport(db.QueryRow(reportSelect+` WHERE r.id = ?`, reportID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("report not found")
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return r, nil
}

// GetReports lists reports, optionally narrowed to one status. Pending
// reports come first, newest first within a status.
func GetReports(db *sql.DB, status string) ([]models.ModerationReport, error) {
	query := reportSelect
	var args []interface{}
	if status != "" {
		query += ` WHERE r.status = ?`
		args = append(args, status)
	}
	query += `
		ORDER BY CASE r.status WHEN 'en_attente' THEN 0 WHEN 'en_cours' THEN 1 ELSE 2 END,
		         r.created_at DESC
	`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.ModerationReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

func CountPendingReports(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM moderation_reports WHERE status = 'en_attente'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending reports: %w", err)
	}
	return count, nil
}

// TakeOverReport assigns a pending report to the moderator.
func TakeOverReport(db *sql.DB, moderatorID, reportID int) error {
	query := `
		UPDATE moderation_reports
		SET status = 'en_cours', moderator_id = ?
		WHERE id = ? AND status = 'en_attente'
	`

	result, err := db.Exec(query, moderatorID, reportID)
	if err != nil {
		return fmt.Errorf("failed to take over report: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("report not found")
	}

	return nil
}

// ResolveReport closes a report with the action the moderator took.
func ResolveReport(db *sql.DB, moderatorID, reportID int, actionTaken, comment string) error {
	return closeReport(db, moderatorID, reportID, models.ReportResolved, actionTaken, comment)
}

// RejectReport closes a report without action.
func RejectReport(db *sql.DB, moderatorID, reportID int, comment string) error {
	return closeReport(db, moderatorID, reportID, models.ReportRejected, "", comment)
}

func closeReport(db *sql.DB, moderatorID, reportID int, status, actionTaken, comment string) error {
	query := `
		UPDATE moderation_reports
		SET status = ?, moderator_id = ?, action_taken = ?, moderator_comment = ?, handled_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status IN ('en_attente', 'en_cours')
	`

	result, err := db.Exec(query, status, moderatorID, actionTaken, comment, reportID)
	if err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("report not found")
	}

	return nil
}

// CreateModerationAction records a sanction. Suspensions carry an end date;
// bans do not.
func CreateModerationAction(db *sql.DB, moderatorID int, action models.ModerationAction) (*models.ModerationAction, error) {
	if action.ActionType == models.ActionBan {
		action.EndsAt = nil
	}

	query := `
		INSERT INTO moderation_actions (user_id, moderator_id, action_type, reason, ends_at, report_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query,
		action.UserID, moderatorID, action.ActionType, action.Reason, action.EndsAt, action.ReportID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create moderation action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get action ID: %w", err)
	}

	action.ID = int(id)
	action.ModeratorID = moderatorID
	return &action, nil
}

// ActiveSanction returns the sanction currently blocking the user, if any.
// A ban blocks forever; a suspension blocks until its end date. A later
// lift cancels everything before it.
func ActiveSanction(db *sql.DB, userID int) (*models.ModerationAction, error) {
	query := `
		SELECT id, user_id, moderator_id, action_type, reason, created_at, ends_at, report_id
		FROM moderation_actions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query moderation actions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moderation action: %w", err)
		}

		switch a.ActionType {
		case models.ActionLift:
			return nil, nil
		case models.ActionBan:
			return a, nil
		case models.ActionSuspension:
			if a.EndsAt != nil && a.EndsAt.After(time.Now()) {
				return a, nil
			}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating moderation actions: %w", err)
	}

	return nil, nil
}

func scanAction(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ModerationAction, error) {
	a := &models.ModerationAction{}
	var endsAt sql.NullTime
	var reportID sql.NullInt64

	err := scanner.Scan(
		&a.ID, &a.UserID, &a.ModeratorID, &a.ActionType, &a.Reason, &a.CreatedAt, &endsAt, &reportID,
	)
	if err != nil {
		return nil, err
	}

	if endsAt.Valid {
		a.EndsAt = &endsAt.Time
	}
	if reportID.Valid {
		id := int(reportID.Int64)
		a.ReportID = &id
	}

	return a, nil
}

// LiftSanctions records a lift action, which cancels any active sanction.
func LiftSanctions(db *sql.DB, moderatorID, userID int, reason string) error {
	query := `
		INSERT INTO moderation_actions (user_id, moderator_id, action_type, reason)
		VALUES (?, ?, 'levee_sanction', ?)
	`
	if _, err := db.Exec(query, userID, moderatorID, reason); err != nil {
		return fmt.Errorf("failed to lift sanctions: %w", err)
	}
	return nil
}

// GetUserActions lists the sanction history of a user, newest first.
func GetUserActions(db *sql.DB, userID int) ([]models.ModerationAction, error) {
	query := `
		SELECT id, user_id, moderator_id, action_type, reason, created_at, ends_at, report_id
		FROM moderation_actions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query moderation actions: %w", err)
	}
	defer rows.Close()

	var actions []models.ModerationAction
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moderation action: %w", err)
		}
		actions = append(actions, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating moderation actions: %w", err)
	}

	return actions, nil
}
