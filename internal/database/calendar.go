package database

import (
	"database/sql"
	"fmt"
	"time"

	"garderobe/internal/models"
)

const eventSelect = `
	SELECT e.id, e.user_id, e.title, e.event_type, e.date, e.start_time, e.end_time,
	       e.all_day, e.outfit_id, e.location, e.reminder, e.reminder_minutes, e.created_at,
	       COALESCE(o.name, '')
	FROM calendar_events e
	LEFT JOIN outfits o ON e.outfit_id = o.id
`

func scanEvent(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.CalendarEvent, error) {
	e := &models.CalendarEvent{}
	var outfitID sql.NullInt64
	var outfitName string

	err := scanner.Scan(
		&e.ID, &e.UserID, &e.Title, &e.EventType, &e.Date, &e.StartTime, &e.EndTime,
		&e.AllDay, &outfitID, &e.Location, &e.Reminder, &e.ReminderMinutes, &e.CreatedAt,
		&outfitName,
	)
	if err != nil {
		return nil, err
	}

	if outfitID.Valid {
		id := int(outfitID.Int64)
		e.OutfitID = &id
		e.Outfit = &models.Outfit{ID: id, Name: outfitName}
	}

	return e, nil
}

// GetEventsForMonth returns the user's events within the given month, ordered
// for the calendar grid.
func GetEventsForMonth(db *sql.DB, userID, year int, month time.Month) ([]models.CalendarEvent, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := eventSelect + `
		WHERE e.user_id = ? AND e.date >= ? AND e.date < ?
		ORDER BY e.date ASC, e.start_time ASC
	`
	return queryEvents(db, query, userID, start, end)
}

// GetUpcomingEvents returns the next events from today onward.
func GetUpcomingEvents(db *sql.DB, userID, limit int) ([]models.CalendarEvent, error) {
	query := eventSelect + `
		WHERE e.user_id = ? AND e.date >= date('now')
		ORDER BY e.date ASC, e.start_time ASC
		LIMIT ?
	`
	return queryEvents(db, query, userID, limit)
}

func queryEvents(db *sql.DB, query string, args ...interface{}) ([]models.CalendarEvent, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar events: %w", err)
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		events = append(events, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calendar events: %w", err)
	}

	return events, nil
}

func GetEvent(db *sql.DB, userID, eventID int) (*models.CalendarEvent, error) {
	e, err := scanEvent(db.QueryRow(eventSelect+` WHERE e.id = ? AND e.user_id = ?`, eventID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("event not found")
		}
		return nil, fmt.Errorf("failed to query event: %w", err)
	}
	return e, nil
}

// CreateEvent stores a calendar event. A linked outfit must belong to the
// user; the link is dropped otherwise.
func CreateEvent(db *sql.DB, userID int, event models.CalendarEvent) (*models.CalendarEvent, error) {
	outfitID, err := ownedOutfitID(db, userID, event.OutfitID)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO calendar_events (user_id, title, event_type, date, start_time, end_time, all_day, outfit_id, location, reminder, reminder_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := db.Exec(query,
		userID, event.Title, event.EventType, event.Date, event.StartTime, event.EndTime,
		event.AllDay, outfitID, event.Location, event.Reminder, event.ReminderMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get event ID: %w", err)
	}

	return GetEvent(db, userID, int(id))
}

func UpdateEvent(db *sql.DB, userID, eventID int, event models.CalendarEvent) error {
	outfitID, err := ownedOutfitID(db, userID, event.OutfitID)
	if err != nil {
		return err
	}

	query := `
		UPDATE calendar_events
		SET title = ?, event_type = ?, date = ?, start_time = ?, end_time = ?, all_day = ?,
		    outfit_id = ?, location = ?, reminder = ?, reminder_minutes = ?
		WHERE id = ? AND user_id = ?
	`
	result, err := db.Exec(query,
		event.Title, event.EventType, event.Date, event.StartTime, event.EndTime, event.AllDay,
		outfitID, event.Location, event.Reminder, event.ReminderMinutes,
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("event not found")
	}

	return nil
}

func ownedOutfitID(db *sql.DB, userID int, outfitID *int) (*int, error) {
	if outfitID == nil {
		return nil, nil
	}

	var ownerID int
	err := db.QueryRow(`SELECT user_id FROM outfits WHERE id = ?`, *outfitID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to verify outfit ownership: %w", err)
	}
	if ownerID != userID {
		return nil, nil
	}

	return outfitID, nil
}

func DeleteEvent(db *sql.DB, userID, eventID int) error {
	result, err := db.Exec(`DELETE FROM calendar_events WHERE id = ? AND user_id = ?`, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("event not found")
	}

	return nil
}
