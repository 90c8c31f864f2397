package database

import (
	"database/sql"
	"errors"
	"fmt"

	"garderobe/internal/models"
)

var (
	ErrFriendRequestPending  = errors.New("a friend request is already pending between these users")
	ErrAlreadyFriends        = errors.New("these users are already friends")
	ErrFriendRequestDeclined = errors.New("a previous friend request was declined")
)

// SendFriendRequest creates a pending request. Any existing record between
// the two users, in either direction and whatever its status, blocks a new
// request.
func SendFriendRequest(db *sql.DB, requesterID, recipientID int) (*models.Friendship, error) {
	if requesterID == recipientID {
		return nil, fmt.Errorf("cannot befriend yourself")
	}

	var existingStatus string
	query := `
		SELECT status FROM friendships
		WHERE (requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)
	`
	err := db.QueryRow(query, requesterID, recipientID, recipientID, requesterID).Scan(&existingStatus)
	if err == nil {
		switch existingStatus {
		case models.FriendshipAccepted:
			return nil, ErrAlreadyFriends
		case models.FriendshipDeclined:
			return nil, ErrFriendRequestDeclined
		default:
			return nil, ErrFriendRequestPending
		}
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing friendship: %w", err)
	}

	insertQuery := `INSERT INTO friendships (requester_id, recipient_id, status) VALUES (?, ?, 'pending')`
	result, err := db.Exec(insertQuery, requesterID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get friendship ID: %w", err)
	}

	return GetFriendship(db, int(id))
}

const friendshipSelect = `
	SELECT f.id, f.requester_id, f.recipient_id, f.status, f.requested_at, f.responded_at,
	       rq.username, rc.username
	FROM friendships f
	JOIN users rq ON f.requester_id = rq.id
	JOIN users rc ON f.recipient_id = rc.id
`

func scanFriendship(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Friendship, error) {
	f := &models.Friendship{}
	var respondedAt sql.NullTime
	var requesterName, recipientName string

	err := scanner.Scan(
		&f.ID, &f.RequesterID, &f.RecipientID, &f.Status, &f.RequestedAt, &respondedAt,
		&requesterName, &recipientName,
	)
	if err != nil {
		return nil, err
	}

	if respondedAt.Valid {
		f.RespondedAt = &respondedAt.Time
	}
	f.Requester = &models.User{ID: f.RequesterID, Username: requesterName}
	f.Recipient = &models.User{ID: f.RecipientID, Username: recipientName}

	return f, nil
}

func GetFriendship(db *sql.DB, friendshipID int) (*models.Friendship, error) {
	f, err := scanFriendship(db.QueryRow(friendshipSelect+` WHERE f.id = ?`, friendshipID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("friendship not found")
		}
		return nil, fmt.Errorf("failed to query friendship: %w", err)
	}
	return f, nil
}

// GetFriends returns the users connected to userID by an accepted friendship.
func GetFriends(db *sql.DB, userID int) ([]models.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.created_at
		FROM users u
		JOIN friendships f ON (
			(f.requester_id = ? AND f.recipient_id = u.id) OR
			(f.recipient_id = ? AND f.requester_id = u.id)
		)
		WHERE f.status = 'accepted'
		ORDER BY u.username ASC
	`

	rows, err := db.Query(query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}
	defer rows.Close()

	var friends []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friends: %w", err)
	}

	return friends, nil
}

// GetIncomingRequests lists pending requests addressed to the user.
func GetIncomingRequests(db *sql.DB, userID int) ([]models.Friendship, error) {
	query := friendshipSelect + ` WHERE f.recipient_id = ? AND f.status = 'pending' ORDER BY f.requested_at DESC`
	return queryFriendships(db, query, userID)
}

// GetOutgoingRequests lists pending requests the user sent.
func GetOutgoingRequests(db *sql.DB, userID int) ([]models.Friendship, error) {
	query := friendshipSelect + ` WHERE f.requester_id = ? AND f.status = 'pending' ORDER BY f.requested_at DESC`
	return queryFriendships(db, query, userID)
}

func queryFriendships(db *sql.DB, query string, args ...interface{}) ([]models.Friendship, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query friendships: %w", err)
	}
	defer rows.Close()

	var friendships []models.Friendship
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		friendships = append(friendships, *f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friendships: %w", err)
	}

	return friendships, nil
}

// RespondToFriendRequest lets the recipient accept or decline a pending
// request. The response time is stamped either way.
func RespondToFriendRequest(db *sql.DB, userID, friendshipID int, accept bool) error {
	status := models.FriendshipDeclined
	if accept {
		status = models.FriendshipAccepted
	}

	query := `
		UPDATE friendships
		SET status = ?, responded_at = CURRENT_TIMESTAMP
		WHERE id = ? AND recipient_id = ? AND status = 'pending'
	`

	result, err := db.Exec(query, status, friendshipID, userID)
	if err != nil {
		return fmt.Errorf("failed to respond to friend request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("friend request not found")
	}

	return nil
}

// RemoveFriendship deletes a friendship record the user is part of.
func RemoveFriendship(db *sql.DB, userID, friendshipID int) error {
	query := `DELETE FROM friendships WHERE id = ? AND (requester_id = ? OR recipient_id = ?)`

	result, err := db.Exec(query, friendshipID, userID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove friendship: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("friendship not found")
	}

	return nil
}

func AreFriends(db *sql.DB, userA, userB int) (bool, error) {
	var exists int
	query := `
		SELECT 1 FROM friendships
		WHERE ((requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?))
		AND status = 'accepted'
	`
	err := db.QueryRow(query, userA, userB, userB, userA).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return true, nil
}
