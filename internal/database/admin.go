package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"garderobe/internal/models"
)

type AdminStats struct {
	TotalUsers     int `json:"total_users"`
	TotalGarments  int `json:"total_garments"`
	TotalOutfits   int `json:"total_outfits"`
	TotalSuitcases int `json:"total_suitcases"`
	TotalMessages  int `json:"total_messages"`
	ActiveListings int `json:"active_listings"`
	ActiveUsers    int `json:"active_users"`
	PendingReports int `json:"pending_reports"`
}

type UserWithStats struct {
	ID           int          `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	IsAdmin      bool         `json:"is_admin"`
	IsActivated  bool         `json:"is_activated"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastSeen     sql.NullTime `json:"last_seen"`
	GarmentCount int          `json:"garment_count"`
	OutfitCount  int          `json:"outfit_count"`
	ListingCount int          `json:"listing_count"`
}

func GetAdminStats(db *sql.DB) (*AdminStats, error) {
	stats := &AdminStats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM users", &stats.TotalUsers},
		{"SELECT COUNT(*) FROM garments", &stats.TotalGarments},
		{"SELECT COUNT(*) FROM outfits", &stats.TotalOutfits},
		{"SELECT COUNT(*) FROM suitcases", &stats.TotalSuitcases},
		{"SELECT COUNT(*) FROM messages", &stats.TotalMessages},
		{"SELECT COUNT(*) FROM listings WHERE status = 'en_vente'", &stats.ActiveListings},
		{"SELECT COUNT(*) FROM moderation_reports WHERE status = 'en_attente'", &stats.PendingReports},
	}
	for _, c := range counts {
		if err := db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to get admin counts: %w", err)
		}
	}

	// Active users: seen within 30 days
	err := db.QueryRow(`
		SELECT COUNT(DISTINCT id)
		FROM users
		WHERE last_seen IS NOT NULL
		AND last_seen > datetime('now', '-30 days')
	`).Scan(&stats.ActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to get active user count: %w", err)
	}

	return stats, nil
}

func GetAllUsers(db *sql.DB) ([]models.User, error) {
	query := `
		SELECT id, username, email, COALESCE(is_admin, false), COALESCE(is_activated, false), created_at, updated_at
		FROM users
		ORDER BY created_at ASC
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.IsAdmin,
			&user.IsActivated,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

func GetAllUsersWithStats(db *sql.DB) ([]UserWithStats, error) {
	query := `
		SELECT
			u.id,
			u.username,
			u.email,
			COALESCE(u.is_admin, false),
			COALESCE(u.is_activated, false),
			u.created_at,
			u.updated_at,
			u.last_seen,
			(SELECT COUNT(*) FROM garments g WHERE g.user_id = u.id) as garment_count,
			(SELECT COUNT(*) FROM outfits o WHERE o.user_id = u.id) as outfit_count,
			(SELECT COUNT(*) FROM listings l WHERE l.seller_id = u.id) as listing_count
		FROM users u
		ORDER BY u.created_at ASC
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users with stats: %w", err)
	}
	defer rows.Close()

	var users []UserWithStats
	for rows.Next() {
		var user UserWithStats
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.IsAdmin,
			&user.IsActivated,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.LastSeen,
			&user.GarmentCount,
			&user.OutfitCount,
			&user.ListingCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user with stats: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users with stats: %w", err)
	}

	return users, nil
}

func ToggleUserAdmin(db *sql.DB, userID int) error {
	query := `UPDATE users SET is_admin = NOT COALESCE(is_admin, false), updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := db.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("failed to toggle admin status: %w", err)
	}
	return nil
}

func ToggleUserActivation(db *sql.DB, userID int) error {
	query := `UPDATE users SET is_activated = NOT COALESCE(is_activated, false), updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := db.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("failed to toggle user activation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// DeleteUser removes a user and everything they own. Tables without an ON
// DELETE CASCADE path from users are purged explicitly so the delete cannot
// trip a foreign key.
func DeleteUser(db *sql.DB, userID int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	purges := []string{
		"DELETE FROM sessions WHERE user_id = ?",
		"DELETE FROM csrf_tokens WHERE user_id = ?",
		"DELETE FROM activation_tokens WHERE user_id = ?",
		"DELETE FROM packing_items WHERE suitcase_id IN (SELECT id FROM suitcases WHERE user_id = ?)",
		"DELETE FROM suitcases WHERE user_id = ?",
		"DELETE FROM outfit_garments WHERE outfit_id IN (SELECT id FROM outfits WHERE user_id = ?)",
		"DELETE FROM calendar_events WHERE user_id = ?",
		"DELETE FROM outfits WHERE user_id = ?",
		"DELETE FROM seller_reviews WHERE reviewer_id = ? OR seller_id = ?",
		"DELETE FROM transactions WHERE buyer_id = ? OR seller_id = ?",
		"DELETE FROM listing_favorites WHERE user_id = ?",
		"DELETE FROM listings WHERE seller_id = ? OR garment_id IN (SELECT id FROM garments WHERE user_id = ?)",
		"DELETE FROM garments WHERE user_id = ?",
		"DELETE FROM messages WHERE sender_id = ? OR recipient_id = ?",
		"DELETE FROM friendships WHERE requester_id = ? OR recipient_id = ?",
		"DELETE FROM moderation_reports WHERE reporter_id = ? OR reported_user_id = ?",
		"DELETE FROM moderation_actions WHERE user_id = ?",
		"DELETE FROM users WHERE id = ?",
	}

	for _, query := range purges {
		args := make([]interface{}, countPlaceholders(query))
		for i := range args {
			args[i] = userID
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to purge user data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func countPlaceholders(query string) int {
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
		}
	}
	return n
}

func GetAllAdmins(db *sql.DB) ([]models.User, error) {
	query := `
		SELECT id, username, email, COALESCE(is_admin, false), COALESCE(is_activated, false), created_at, updated_at
		FROM users
		WHERE COALESCE(is_admin, false) = true
		ORDER BY username ASC
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin users: %w", err)
	}
	defer rows.Close()

	var admins []models.User
	for rows.Next() {
		var admin models.User
		err := rows.Scan(
			&admin.ID,
			&admin.Username,
			&admin.Email,
			&admin.IsAdmin,
			&admin.IsActivated,
			&admin.CreatedAt,
			&admin.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin user: %w", err)
		}
		admins = append(admins, admin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admin users: %w", err)
	}

	return admins, nil
}

// inPlaceholders builds "?, ?, ?" for an IN clause plus the matching args.
func inPlaceholders(ids []int) (string, []interface{}) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}

// AdminMarkGarmentsWashed clears the wash flag on the selected garments
// regardless of owner. Returns how many rows changed.
func AdminMarkGarmentsWashed(db *sql.DB, garmentIDs []int) (int, error) {
	if len(garmentIDs) == 0 {
		return 0, nil
	}

	placeholders, args := inPlaceholders(garmentIDs)
	query := fmt.Sprintf(`UPDATE garments SET needs_wash = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id IN (%s)`, placeholders)

	result, err := db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark garments washed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rowsAffected), nil
}

// AdminRespondFriendRequests accepts or declines the selected requests on
// behalf of their recipients. Only pending rows change.
func AdminRespondFriendRequests(db *sql.DB, friendshipIDs []int, accept bool) (int, error) {
	if len(friendshipIDs) == 0 {
		return 0, nil
	}

	status := models.FriendshipDeclined
	if accept {
		status = models.FriendshipAccepted
	}

	placeholders, args := inPlaceholders(friendshipIDs)
	query := fmt.Sprintf(`
		UPDATE friendships
		SET status = ?, responded_at = CURRENT_TIMESTAMP
		WHERE id IN (%s) AND status = 'pending'
	`, placeholders)

	result, err := db.Exec(query, append([]interface{}{status}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("failed to respond to friend requests: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rowsAffected), nil
}

// AdminMarkListingsReserved reserves the selected listings. Only listings
// currently for sale change.
func AdminMarkListingsReserved(db *sql.DB, listingIDs []int) (int, error) {
	if len(listingIDs) == 0 {
		return 0, nil
	}

	placeholders, args := inPlaceholders(listingIDs)
	query := fmt.Sprintf(`UPDATE listings SET status = 'reservee' WHERE id IN (%s) AND status = 'en_vente'`, placeholders)

	result, err := db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve listings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rowsAffected), nil
}

// AdminMarkListingsSold closes the selected listings as sold with a sale
// timestamp. No buyer is recorded and no transaction row opens; the sale was
// settled outside the site. Only for-sale and reserved listings change.
func AdminMarkListingsSold(db *sql.DB, listingIDs []int) (int, error) {
	if len(listingIDs) == 0 {
		return 0, nil
	}

	placeholders, args := inPlaceholders(listingIDs)
	query := fmt.Sprintf(`
		UPDATE listings
		SET status = 'vendue', sold_at = CURRENT_TIMESTAMP
		WHERE id IN (%s) AND status IN ('en_vente', 'reservee')
	`, placeholders)

	result, err := db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark listings sold: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rowsAffected), nil
}
