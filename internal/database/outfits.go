package database

import (
	"database/sql"
	"fmt"
	"strings"

	"garderobe/internal/models"
)

func GetOutfits(db *sql.DB, userID int) ([]models.Outfit, error) {
	query := `
		SELECT id, user_id, name, description, occasion, season, is_favorite, wear_count, last_worn, created_at, updated_at
		FROM outfits
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outfits: %w", err)
	}
	defer rows.Close()

	var outfits []models.Outfit
	for rows.Next() {
		outfit, err := scanOutfit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outfit: %w", err)
		}
		outfits = append(outfits, *outfit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outfits: %w", err)
	}

	return outfits, nil
}

func scanOutfit(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Outfit, error) {
	outfit := &models.Outfit{}
	var lastWorn sql.NullTime

	err := scanner.Scan(
		&outfit.ID, &outfit.UserID, &outfit.Name, &outfit.Description,
		&outfit.Occasion, &outfit.Season, &outfit.IsFavorite,
		&outfit.WearCount, &lastWorn, &outfit.CreatedAt, &outfit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastWorn.Valid {
		outfit.LastWorn = &lastWorn.Time
	}

	return outfit, nil
}

func GetOutfit(db *sql.DB, userID, outfitID int) (*models.Outfit, error) {
	query := `
		SELECT id, user_id, name, description, occasion, season, is_favorite, wear_count, last_worn, created_at, updated_at
		FROM outfits
		WHERE id = ? AND user_id = ?
	`

	outfit, err := scanOutfit(db.QueryRow(query, outfitID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("outfit not found")
		}
		return nil, fmt.Errorf("failed to query outfit: %w", err)
	}

	garments, err := getOutfitGarments(db, outfitID)
	if err != nil {
		return nil, err
	}
	outfit.Garments = garments

	return outfit, nil
}

func getOutfitGarments(db *sql.DB, outfitID int) ([]models.Garment, error) {
	query := garmentSelect + `
		JOIN outfit_garments og ON og.garment_id = g.id
		WHERE og.outfit_id = ?
		ORDER BY c.name ASC, g.name ASC
	`

	rows, err := db.Query(query, outfitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outfit garments: %w", err)
	}
	defer rows.Close()

	var garments []models.Garment
	for rows.Next() {
		g, err := scanGarment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outfit garment: %w", err)
		}
		garments = append(garments, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outfit garments: %w", err)
	}

	return garments, nil
}

func CountOutfits(db *sql.DB, userID int) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM outfits WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count outfits: %w", err)
	}
	return count, nil
}

// CreateOutfit stores the outfit and attaches the requested garments.
// Garments not owned by the user are skipped without feedback; the
// quick-builder relies on this when candidates come from friends or
// marketplace listings.
func CreateOutfit(db *sql.DB, userID int, outfit models.Outfit, garmentIDs []int) (*models.Outfit, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO outfits (user_id, name, description, occasion, season, is_favorite)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := tx.Exec(query, userID, outfit.Name, outfit.Description, outfit.Occasion, outfit.Season, outfit.IsFavorite)
	if err != nil {
		return nil, fmt.Errorf("failed to create outfit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get outfit ID: %w", err)
	}

	if err := attachOwnedGarments(tx, userID, int(id), garmentIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit outfit: %w", err)
	}

	return GetOutfit(db, userID, int(id))
}

func UpdateOutfit(db *sql.DB, userID, outfitID int, outfit models.Outfit, garmentIDs []int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE outfits
		SET name = ?, description = ?, occasion = ?, season = ?, is_favorite = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`
	result, err := tx.Exec(query, outfit.Name, outfit.Description, outfit.Occasion, outfit.Season, outfit.IsFavorite, outfitID, userID)
	if err != nil {
		return fmt.Errorf("failed to update outfit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("outfit not found")
	}

	if _, err := tx.Exec(`DELETE FROM outfit_garments WHERE outfit_id = ?`, outfitID); err != nil {
		return fmt.Errorf("failed to clear outfit garments: %w", err)
	}

	if err := attachOwnedGarments(tx, userID, outfitID, garmentIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outfit update: %w", err)
	}

	return nil
}

// attachOwnedGarments links the garment IDs that belong to the user and
// silently drops the rest.
func attachOwnedGarments(tx *sql.Tx, userID, outfitID int, garmentIDs []int) error {
	if len(garmentIDs) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(garmentIDs)), ",")
	args := make([]interface{}, 0, len(garmentIDs)+1)
	for _, id := range garmentIDs {
		args = append(args, id)
	}
	args = append(args, userID)

	rows, err := tx.Query(`SELECT id FROM garments WHERE id IN (`+placeholders+`) AND user_id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to verify garment ownership: %w", err)
	}
	defer rows.Close()

	var ownedIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan garment ID: %w", err)
		}
		ownedIDs = append(ownedIDs, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating garment IDs: %w", err)
	}

	for _, garmentID := range ownedIDs {
		_, err := tx.Exec(`INSERT OR IGNORE INTO outfit_garments (outfit_id, garment_id) VALUES (?, ?)`, outfitID, garmentID)
		if err != nil {
			return fmt.Errorf("failed to attach garment to outfit: %w", err)
		}
	}

	return nil
}

func DeleteOutfit(db *sql.DB, userID, outfitID int) error {
	result, err := db.Exec(`DELETE FROM outfits WHERE id = ? AND user_id = ?`, outfitID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete outfit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("outfit not found")
	}

	return nil
}

func ToggleOutfitFavorite(db *sql.DB, userID, outfitID int) error {
	query := `UPDATE outfits SET is_favorite = NOT is_favorite, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`

	result, err := db.Exec(query, outfitID, userID)
	if err != nil {
		return fmt.Errorf("failed to toggle outfit favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("outfit not found")
	}

	return nil
}

// RecordOutfitWear bumps the outfit's wear count and every member garment's.
func RecordOutfitWear(db *sql.DB, userID, outfitID int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE outfits
		SET wear_count = wear_count + 1, last_worn = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`
	result, err := tx.Exec(query, outfitID, userID)
	if err != nil {
		return fmt.Errorf("failed to record outfit wear: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("outfit not found")
	}

	garmentQuery := `
		UPDATE garments
		SET wear_count = wear_count + 1, last_worn = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id IN (SELECT garment_id FROM outfit_garments WHERE outfit_id = ?)
	`
	if _, err := tx.Exec(garmentQuery, outfitID); err != nil {
		return fmt.Errorf("failed to record garment wears: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outfit wear: %w", err)
	}

	return nil
}
