package database

import (
	"database/sql"
	"fmt"
	"time"

	"garderobe/internal/models"

	"github.com/google/uuid"
)

func verifySuitcaseOwnership(db *sql.DB, userID int, suitcaseID string) error {
	var ownerID int
	err := db.QueryRow(`SELECT user_id FROM suitcases WHERE id = ?`, suitcaseID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("suitcase not found")
		}
		return fmt.Errorf("failed to verify suitcase ownership: %w", err)
	}

	if ownerID != userID {
		return fmt.Errorf("suitcase not found")
	}

	return nil
}

func updateSuitcaseTimestamp(db *sql.DB, suitcaseID string) {
	db.Exec(`UPDATE suitcases SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, suitcaseID)
}

func scanSuitcase(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Suitcase, error) {
	s := &models.Suitcase{}
	var maxWeight sql.NullFloat64

	err := scanner.Scan(
		&s.ID, &s.UserID, &s.Name, &s.Destination, &s.TripType,
		&s.DepartureDate, &s.ReturnDate, &s.Climate, &s.Status,
		&s.ExtraItems, &maxWeight, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if maxWeight.Valid {
		s.MaxWeightKg = &maxWeight.Float64
	}

	return s, nil
}

const suitcaseSelect = `
	SELECT id, user_id, name, destination, trip_type, departure_date, return_date,
	       climate, status, extra_items, max_weight_kg, created_at, updated_at
	FROM suitcases
`

func GetSuitcases(db *sql.DB, userID int) ([]models.Suitcase, error) {
	query := suitcaseSelect + ` WHERE user_id = ? ORDER BY departure_date DESC`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query suitcases: %w", err)
	}
	defer rows.Close()

	var suitcases []models.Suitcase
	for rows.Next() {
		s, err := scanSuitcase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suitcase: %w", err)
		}
		suitcases = append(suitcases, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suitcases: %w", err)
	}

	return suitcases, nil
}

func GetSuitcase(db *sql.DB, userID int, suitcaseID string) (*models.Suitcase, error) {
	query := suitcaseSelect + ` WHERE id = ? AND user_id = ?`

	s, err := scanSuitcase(db.QueryRow(query, suitcaseID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("suitcase not found")
		}
		return nil, fmt.Errorf("failed to query suitcase: %w", err)
	}

	items, err := GetPackingItems(db, suitcaseID)
	if err != nil {
		return nil, err
	}
	s.Items = items

	return s, nil
}

func CountSuitcases(db *sql.DB, userID int) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM suitcases WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count suitcases: %w", err)
	}
	return count, nil
}

func CreateSuitcase(db *sql.DB, userID int, s models.Suitcase) (*models.Suitcase, error) {
	suitcaseID := uuid.New().String()

	query := `
		INSERT INTO suitcases (id, user_id, name, destination, trip_type, departure_date, return_date, climate, status, extra_items, max_weight_kg)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	status := s.Status
	if status == "" {
		status = models.SuitcasePreparing
	}

	_, err := db.Exec(query,
		suitcaseID, userID, s.Name, s.Destination, s.TripType,
		s.DepartureDate, s.ReturnDate, s.Climate, status, s.ExtraItems, s.MaxWeightKg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create suitcase: %w", err)
	}

	return GetSuitcase(db, userID, suitcaseID)
}

func UpdateSuitcase(db *sql.DB, userID int, suitcaseID string, s models.Suitcase) error {
	query := `
		UPDATE suitcases
		SET name = ?, destination = ?, trip_type = ?, departure_date = ?, return_date = ?,
			climate = ?, extra_items = ?, max_weight_kg = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`

	result, err := db.Exec(query,
		s.Name, s.Destination, s.TripType, s.DepartureDate, s.ReturnDate,
		s.Climate, s.ExtraItems, s.MaxWeightKg,
		suitcaseID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update suitcase: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("suitcase not found")
	}

	return nil
}

func UpdateSuitcaseStatus(db *sql.DB, userID int, suitcaseID, status string) error {
	query := `UPDATE suitcases SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`

	result, err := db.Exec(query, status, suitcaseID, userID)
	if err != nil {
		return fmt.Errorf("failed to update suitcase status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("suitcase not found")
	}

	return nil
}

func DeleteSuitcase(db *sql.DB, userID int, suitcaseID string) error {
	result, err := db.Exec(`DELETE FROM suitcases WHERE id = ? AND user_id = ?`, suitcaseID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete suitcase: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("suitcase not found")
	}

	return nil
}

// GetPackingItems returns the checklist ordered for display: grouped by
// packing category, then by explicit order, then by garment name.
func GetPackingItems(db *sql.DB, suitcaseID string) ([]models.PackingItem, error) {
	query := `
		SELECT pi.id, pi.suitcase_id, pi.garment_id, pi.is_packed, pi.category,
		       pi.weight_grams, pi.sort_order, pi.note, pi.created_at,
		       g.name, g.brand, g.image_path, c.name
		FROM packing_items pi
		JOIN garments g ON pi.garment_id = g.id
		JOIN categories c ON g.category_id = c.id
		WHERE pi.suitcase_id = ?
		ORDER BY pi.category ASC, pi.sort_order ASC, g.name ASC
	`

	rows, err := db.Query(query, suitcaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query packing items: %w", err)
	}
	defer rows.Close()

	var items []models.PackingItem
	for rows.Next() {
		var item models.PackingItem
		var garmentName, garmentBrand, garmentImage, categoryName string
		err := rows.Scan(
			&item.ID, &item.SuitcaseID, &item.GarmentID, &item.IsPacked, &item.Category,
			&item.WeightGrams, &item.SortOrder, &item.Note, &item.CreatedAt,
			&garmentName, &garmentBrand, &garmentImage, &categoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan packing item: %w", err)
		}
		item.Garment = &models.Garment{
			ID:        item.GarmentID,
			Name:      garmentName,
			Brand:     garmentBrand,
			ImagePath: garmentImage,
			Category:  &models.Category{Name: categoryName},
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating packing items: %w", err)
	}

	return items, nil
}

// AddPackingItems appends the user's garments to the suitcase, skipping
// garments already present and garments the user does not own.
func AddPackingItems(db *sql.DB, userID int, suitcaseID string, garmentIDs []int, category string) error {
	if err := verifySuitcaseOwnership(db, userID, suitcaseID); err != nil {
		return err
	}

	if category == "" {
		category = models.PackingClothes
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, garmentID := range garmentIDs {
		var ownerID int
		err := tx.QueryRow(`SELECT user_id FROM garments WHERE id = ?`, garmentID).Scan(&ownerID)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return fmt.Errorf("failed to verify garment ownership: %w", err)
		}
		if ownerID != userID {
			continue
		}

		query := `
			INSERT OR IGNORE INTO packing_items (suitcase_id, garment_id, category, weight_grams, sort_order)
			VALUES (?, ?, ?, ?, COALESCE((SELECT MAX(sort_order) FROM packing_items WHERE suitcase_id = ?), -1) + 1)
		`
		if _, err := tx.Exec(query, suitcaseID, garmentID, category, models.DefaultItemWeightG, suitcaseID); err != nil {
			return fmt.Errorf("failed to add packing item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit packing items: %w", err)
	}

	updateSuitcaseTimestamp(db, suitcaseID)
	return nil
}

// ReplaceSuitcaseContents rebuilds the packing list from scratch. The
// content editor submits the full desired state on every save.
func ReplaceSuitcaseContents(db *sql.DB, userID int, suitcaseID string, items []models.PackingItem) error {
	if err := verifySuitcaseOwnership(db, userID, suitcaseID); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM packing_items WHERE suitcase_id = ?`, suitcaseID); err != nil {
		return fmt.Errorf("failed to clear packing items: %w", err)
	}

	for i, item := range items {
		var ownerID int
		err := tx.QueryRow(`SELECT user_id FROM garments WHERE id = ?`, item.GarmentID).Scan(&ownerID)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return fmt.Errorf("failed to verify garment ownership: %w", err)
		}
		if ownerID != userID {
			continue
		}

		category := item.Category
		if category == "" {
			category = models.PackingClothes
		}
		weight := item.WeightGrams
		if weight <= 0 {
			weight = models.DefaultItemWeightG
		}

		query := `
			INSERT OR IGNORE INTO packing_items (suitcase_id, garment_id, is_packed, category, weight_grams, sort_order, note)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.Exec(query, suitcaseID, item.GarmentID, item.IsPacked, category, weight, i, item.Note); err != nil {
			return fmt.Errorf("failed to insert packing item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit suitcase contents: %w", err)
	}

	updateSuitcaseTimestamp(db, suitcaseID)
	return nil
}

// TogglePackingItem flips the packed flag and returns the new state along
// with refreshed aggregates for the checklist UI.
func TogglePackingItem(db *sql.DB, userID int, suitcaseID string, itemID int) (bool, *models.PackingStats, error) {
	if err := verifySuitcaseOwnership(db, userID, suitcaseID); err != nil {
		return false, nil, err
	}

	result, err := db.Exec(`UPDATE packing_items SET is_packed = NOT is_packed WHERE id = ? AND suitcase_id = ?`, itemID, suitcaseID)
	if err != nil {
		return false, nil, fmt.Errorf("failed to toggle packing item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil, fmt.Errorf("packing item not found")
	}

	var isPacked bool
	if err := db.QueryRow(`SELECT is_packed FROM packing_items WHERE id = ?`, itemID).Scan(&isPacked); err != nil {
		return false, nil, fmt.Errorf("failed to read packed state: %w", err)
	}

	stats, err := GetPackingStats(db, suitcaseID)
	if err != nil {
		return false, nil, err
	}

	updateSuitcaseTimestamp(db, suitcaseID)
	return isPacked, stats, nil
}

func RemovePackingItem(db *sql.DB, userID int, suitcaseID string, itemID int) error {
	if err := verifySuitcaseOwnership(db, userID, suitcaseID); err != nil {
		return err
	}

	result, err := db.Exec(`DELETE FROM packing_items WHERE id = ? AND suitcase_id = ?`, itemID, suitcaseID)
	if err != nil {
		return fmt.Errorf("failed to remove packing item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("packing item not found")
	}

	updateSuitcaseTimestamp(db, suitcaseID)
	return nil
}

func GetPackingStats(db *sql.DB, suitcaseID string) (*models.PackingStats, error) {
	stats := &models.PackingStats{}
	var weightGrams int

	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN is_packed THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(weight_grams), 0)
		FROM packing_items
		WHERE suitcase_id = ?
	`

	err := db.QueryRow(query, suitcaseID).Scan(&stats.Total, &stats.Packed, &weightGrams)
	if err != nil {
		return nil, fmt.Errorf("failed to compute packing stats: %w", err)
	}

	stats.Percentage = models.PackingPercentage(stats.Packed, stats.Total)
	stats.WeightKg = float64(weightGrams) / 1000.0

	return stats, nil
}

// CopySuitcase duplicates a suitcase and its packing list. Packed flags are
// reset; category, weight, order and notes are carried over.
func CopySuitcase(db *sql.DB, userID int, sourceID, name string, departure, ret time.Time) (*models.Suitcase, error) {
	source, err := GetSuitcase(db, userID, sourceID)
	if err != nil {
		return nil, err
	}

	newID := uuid.New().String()

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO suitcases (id, user_id, name, destination, trip_type, departure_date, return_date, climate, status, extra_items, max_weight_kg)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		newID, userID, name, source.Destination, source.TripType,
		departure, ret, source.Climate, models.SuitcasePreparing,
		source.ExtraItems, source.MaxWeightKg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to copy suitcase: %w", err)
	}

	copyQuery := `
		INSERT INTO packing_items (suitcase_id, garment_id, is_packed, category, weight_grams, sort_order, note)
		SELECT ?, garment_id, FALSE, category, weight_grams, sort_order, note
		FROM packing_items
		WHERE suitcase_id = ?
	`
	if _, err := tx.Exec(copyQuery, newID, sourceID); err != nil {
		return nil, fmt.Errorf("failed to copy packing items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit suitcase copy: %w", err)
	}

	return GetSuitcase(db, userID, newID)
}
