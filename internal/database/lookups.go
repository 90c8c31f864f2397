package database

import (
	"database/sql"
	"fmt"

	"garderobe/internal/models"
)

func GetCategories(db *sql.DB) ([]models.Category, error) {
	query := `SELECT id, name, created_at FROM categories ORDER BY name ASC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func GetCategory(db *sql.DB, categoryID int) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT id, name, created_at FROM categories WHERE id = ?`

	err := db.QueryRow(query, categoryID).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return category, nil
}

func CreateCategory(db *sql.DB, name string) (*models.Category, error) {
	query := `INSERT INTO categories (name) VALUES (?)`

	result, err := db.Exec(query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	return GetCategory(db, int(id))
}

func UpdateCategory(db *sql.DB, categoryID int, name string) error {
	query := `UPDATE categories SET name = ? WHERE id = ?`

	result, err := db.Exec(query, name, categoryID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("category not found")
	}

	return nil
}

// DeleteCategory refuses to remove a category that still has garments.
func DeleteCategory(db *sql.DB, categoryID int) error {
	var garmentCount int
	err := db.QueryRow(`SELECT COUNT(*) FROM garments WHERE category_id = ?`, categoryID).Scan(&garmentCount)
	if err != nil {
		return fmt.Errorf("failed to count garments in category: %w", err)
	}

	if garmentCount > 0 {
		return fmt.Errorf("category is still referenced by %d garments", garmentCount)
	}

	result, err := db.Exec(`DELETE FROM categories WHERE id = ?`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("category not found")
	}

	return nil
}

func GetColors(db *sql.DB) ([]models.Color, error) {
	query := `SELECT id, name, hex_code FROM colors ORDER BY name ASC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query colors: %w", err)
	}
	defer rows.Close()

	var colors []models.Color
	for rows.Next() {
		var color models.Color
		if err := rows.Scan(&color.ID, &color.Name, &color.HexCode); err != nil {
			return nil, fmt.Errorf("failed to scan color: %w", err)
		}
		colors = append(colors, color)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating colors: %w", err)
	}

	return colors, nil
}

func GetSizes(db *sql.DB) ([]models.Size, error) {
	query := `SELECT id, name, kind, sort_order FROM sizes ORDER BY sort_order ASC, name ASC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sizes: %w", err)
	}
	defer rows.Close()

	var sizes []models.Size
	for rows.Next() {
		var size models.Size
		if err := rows.Scan(&size.ID, &size.Name, &size.Kind, &size.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan size: %w", err)
		}
		sizes = append(sizes, size)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sizes: %w", err)
	}

	return sizes, nil
}
