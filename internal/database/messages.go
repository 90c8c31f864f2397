package database

import (
	"database/sql"
	"fmt"

	"garderobe/internal/models"
)

const messageSelect = `
	SELECT m.id, m.sender_id, m.recipient_id, m.subject, m.body, m.is_read, m.read_at,
	       m.archived_by_sender, m.archived_by_recipient, m.reply_to_id, m.created_at,
	       s.username, r.username
	FROM messages m
	JOIN users s ON m.sender_id = s.id
	JOIN users r ON m.recipient_id = r.id
`

func scanMessage(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Message, error) {
	m := &models.Message{}
	var readAt sql.NullTime
	var replyToID sql.NullInt64
	var senderName, recipientName string

	err := scanner.Scan(
		&m.ID, &m.SenderID, &m.RecipientID, &m.Subject, &m.Body, &m.IsRead, &readAt,
		&m.ArchivedBySender, &m.ArchivedByRecipient, &replyToID, &m.CreatedAt,
		&senderName, &recipientName,
	)
	if err != nil {
		return nil, err
	}

	if readAt.Valid {
		m.ReadAt = &readAt.Time
	}
	if replyToID.Valid {
		id := int(replyToID.Int64)
		m.ReplyToID = &id
	}
	m.Sender = &models.User{ID: m.SenderID, Username: senderName}
	m.Recipient = &models.User{ID: m.RecipientID, Username: recipientName}

	return m, nil
}

func SendMessage(db *sql.DB, senderID, recipientID int, subject, body string, replyToID *int) (*models.Message, error) {
	if senderID == recipientID {
		return nil, fmt.Errorf("cannot send a message to yourself")
	}

	query := `
		INSERT INTO messages (sender_id, recipient_id, subject, body, reply_to_id)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query, senderID, recipientID, subject, body, replyToID)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get message ID: %w", err)
	}

	return getMessageByID(db, int(id))
}

func getMessageByID(db *sql.DB, messageID int) (*models.Message, error) {
	m, err := scanMessage(db.QueryRow(messageSelect+` WHERE m.id = ?`, messageID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("message not found")
		}
		return nil, fmt.Errorf("failed to query message: %w", err)
	}
	return m, nil
}

// GetInbox lists received messages the recipient has not archived.
func GetInbox(db *sql.DB, userID int) ([]models.Message, error) {
	query := messageSelect + `
		WHERE m.recipient_id = ? AND m.archived_by_recipient = FALSE
		ORDER BY m.created_at DESC
	`
	return queryMessages(db, query, userID)
}

// GetSentMessages lists sent messages the sender has not archived.
func GetSentMessages(db *sql.DB, userID int) ([]models.Message, error) {
	query := messageSelect + `
		WHERE m.sender_id = ? AND m.archived_by_sender = FALSE
		ORDER BY m.created_at DESC
	`
	return queryMessages(db, query, userID)
}

// GetArchivedMessages lists messages the user archived from either side.
func GetArchivedMessages(db *sql.DB, userID int) ([]models.Message, error) {
	query := messageSelect + `
		WHERE (m.recipient_id = ? AND m.archived_by_recipient = TRUE)
		   OR (m.sender_id = ? AND m.archived_by_sender = TRUE)
		ORDER BY m.created_at DESC
	`
	return queryMessages(db, query, userID, userID)
}

func queryMessages(db *sql.DB, query string, args ...interface{}) ([]models.Message, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// GetMessage loads a message visible to the user. Viewing as the recipient
// marks it read and stamps read_at on first view.
func GetMessage(db *sql.DB, userID, messageID int) (*models.Message, error) {
	m, err := getMessageByID(db, messageID)
	if err != nil {
		return nil, err
	}

	if m.SenderID != userID && m.RecipientID != userID {
		return nil, fmt.Errorf("message not found")
	}

	if m.RecipientID == userID && !m.IsRead {
		query := `UPDATE messages SET is_read = TRUE, read_at = CURRENT_TIMESTAMP WHERE id = ?`
		if _, err := db.Exec(query, messageID); err != nil {
			return nil, fmt.Errorf("failed to mark message read: %w", err)
		}
		m.IsRead = true
	}

	return m, nil
}

// ArchiveMessage hides the message for the acting party only.
func ArchiveMessage(db *sql.DB, userID, messageID int) error {
	m, err := getMessageByID(db, messageID)
	if err != nil {
		return err
	}

	var query string
	switch userID {
	case m.RecipientID:
		query = `UPDATE messages SET archived_by_recipient = TRUE WHERE id = ?`
	case m.SenderID:
		query = `UPDATE messages SET archived_by_sender = TRUE WHERE id = ?`
	default:
		return fmt.Errorf("message not found")
	}

	if _, err := db.Exec(query, messageID); err != nil {
		return fmt.Errorf("failed to archive message: %w", err)
	}

	return nil
}

func UnreadMessageCount(db *sql.DB, userID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE recipient_id = ? AND is_read = FALSE AND archived_by_recipient = FALSE`
	err := db.QueryRow(query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
