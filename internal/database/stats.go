package database

import (
	"database/sql"
	"fmt"

	"garderobe/internal/models"
)

// WardrobeStats is the summary shown on the statistics page.
type WardrobeStats struct {
	TotalGarments  int     `json:"total_garments"`
	TotalOutfits   int     `json:"total_outfits"`
	TotalSuitcases int     `json:"total_suitcases"`
	TotalValue     float64 `json:"total_value"`
	WornValue      float64 `json:"worn_value"`
	UnwornValue    float64 `json:"unworn_value"`
	TotalWears     int     `json:"total_wears"`
	FavoriteCount  int     `json:"favorite_count"`
	NeverWornCount int     `json:"never_worn_count"`
}

// GroupCount is one bucket of a grouped breakdown.
type GroupCount struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// MonthlyWears is one month of the wear histogram, keyed YYYY-MM.
type MonthlyWears struct {
	Month string `json:"month"`
	Wears int    `json:"wears"`
}

func GetWardrobeStats(db *sql.DB, userID int) (*WardrobeStats, error) {
	stats := &WardrobeStats{}

	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(purchase_price), 0),
		       COALESCE(SUM(CASE WHEN wear_count > 0 THEN purchase_price ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN wear_count = 0 THEN purchase_price ELSE 0 END), 0),
		       COALESCE(SUM(wear_count), 0),
		       COALESCE(SUM(CASE WHEN is_favorite THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN wear_count = 0 THEN 1 ELSE 0 END), 0)
		FROM garments
		WHERE user_id = ?
	`
	err := db.QueryRow(query, userID).Scan(
		&stats.TotalGarments, &stats.TotalValue, &stats.WornValue, &stats.UnwornValue,
		&stats.TotalWears, &stats.FavoriteCount, &stats.NeverWornCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute wardrobe stats: %w", err)
	}

	if stats.TotalOutfits, err = CountOutfits(db, userID); err != nil {
		return nil, err
	}
	if stats.TotalSuitcases, err = CountSuitcases(db, userID); err != nil {
		return nil, err
	}

	return stats, nil
}

// GetGarmentsByCategory breaks the wardrobe down per category with counts
// and summed purchase value.
func GetGarmentsByCategory(db *sql.DB, userID int) ([]GroupCount, error) {
	query := `
		SELECT c.name, COUNT(*), COALESCE(SUM(g.purchase_price), 0)
		FROM garments g
		JOIN categories c ON g.category_id = c.id
		WHERE g.user_id = ?
		GROUP BY c.id
		ORDER BY COUNT(*) DESC, c.name ASC
	`
	return queryGroupCounts(db, query, userID)
}

func GetGarmentsByColor(db *sql.DB, userID int) ([]GroupCount, error) {
	query := `
		SELECT COALESCE(co.name, 'Sans couleur'), COUNT(*), COALESCE(SUM(g.purchase_price), 0)
		FROM garments g
		LEFT JOIN colors co ON g.color_id = co.id
		WHERE g.user_id = ?
		GROUP BY g.color_id
		ORDER BY COUNT(*) DESC
	`
	return queryGroupCounts(db, query, userID)
}

func GetGarmentsBySeason(db *sql.DB, userID int) ([]GroupCount, error) {
	query := `
		SELECT season, COUNT(*), COALESCE(SUM(purchase_price), 0)
		FROM garments
		WHERE user_id = ?
		GROUP BY season
		ORDER BY COUNT(*) DESC
	`
	return queryGroupCounts(db, query, userID)
}

func queryGroupCounts(db *sql.DB, query string, args ...interface{}) ([]GroupCount, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query breakdown: %w", err)
	}
	defer rows.Close()

	var groups []GroupCount
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Label, &g.Count, &g.Value); err != nil {
			return nil, fmt.Errorf("failed to scan breakdown row: %w", err)
		}
		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating breakdown: %w", err)
	}

	return groups, nil
}

// GetWearHistogram returns garments worn per month over the last twelve
// months, based on last_worn stamps.
func GetWearHistogram(db *sql.DB, userID int) ([]MonthlyWears, error) {
	query := `
		SELECT strftime('%Y-%m', last_worn), COUNT(*)
		FROM garments
		WHERE user_id = ? AND last_worn IS NOT NULL AND last_worn >= date('now', '-12 months')
		GROUP BY strftime('%Y-%m', last_worn)
		ORDER BY strftime('%Y-%m', last_worn) ASC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wear histogram: %w", err)
	}
	defer rows.Close()

	var months []MonthlyWears
	for rows.Next() {
		var m MonthlyWears
		if err := rows.Scan(&m.Month, &m.Wears); err != nil {
			return nil, fmt.Errorf("failed to scan histogram row: %w", err)
		}
		months = append(months, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating histogram: %w", err)
	}

	return months, nil
}

// GetRotationRate returns the share of the wardrobe worn within the last
// thirty days, as a whole percentage.
func GetRotationRate(db *sql.DB, userID int) (int, error) {
	var total, recent int
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN last_worn >= date('now', '-30 days') THEN 1 ELSE 0 END), 0)
		FROM garments
		WHERE user_id = ?
	`
	if err := db.QueryRow(query, userID).Scan(&total, &recent); err != nil {
		return 0, fmt.Errorf("failed to compute rotation rate: %w", err)
	}

	return models.PackingPercentage(recent, total), nil
}

// GetNeverWornGarments lists garments with no recorded wear, most valuable
// first so the advisory surfaces dead money.
func GetNeverWornGarments(db *sql.DB, userID int) ([]models.Garment, error) {
	query := garmentSelect + `
		WHERE g.user_id = ? AND g.wear_count = 0
		ORDER BY g.purchase_price DESC, g.created_at ASC
	`
	return queryGarments(db, query, userID)
}

// GetIdleGarments lists garments worn before but untouched for six months.
func GetIdleGarments(db *sql.DB, userID int) ([]models.Garment, error) {
	query := garmentSelect + `
		WHERE g.user_id = ? AND g.last_worn IS NOT NULL AND g.last_worn < date('now', '-6 months')
		ORDER BY g.last_worn ASC
	`
	return queryGarments(db, query, userID)
}

// GetTopWornGarments lists the most worn garments.
func GetTopWornGarments(db *sql.DB, userID, limit int) ([]models.Garment, error) {
	query := garmentSelect + `
		WHERE g.user_id = ? AND g.wear_count > 0
		ORDER BY g.wear_count DESC, g.name ASC
		LIMIT ?
	`
	return queryGarments(db, query, userID, limit)
}
