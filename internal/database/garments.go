package database

import (
	"database/sql"
	"fmt"
	"strings"

	"garderobe/internal/models"
)

const GarmentsPerPage = 20

// GarmentFilter narrows the wardrobe list. Zero values mean "no filter".
type GarmentFilter struct {
	CategoryID    int
	Gender        string
	Season        string
	Condition     string
	FavoriteOnly  bool
	NeedsWashOnly bool
	Query         string
	Page          int
}

const garmentSelect = `
	SELECT g.id, g.user_id, g.name, g.description, g.category_id, g.color_id, g.size_id,
	       g.brand, g.material, g.gender, g.season, g.condition,
	       g.purchase_price, g.purchase_date, g.purchase_place,
	       g.wear_count, g.last_worn, g.is_favorite,
	       g.needs_wash, g.needs_iron, g.needs_repair,
	       g.is_loaned, g.loaned_to, g.location, g.notes, g.image_path,
	       g.created_at, g.updated_at,
	       c.name, COALESCE(col.name, ''), COALESCE(col.hex_code, ''), COALESCE(s.name, ''), COALESCE(s.kind, '')
	FROM garments g
	JOIN categories c ON g.category_id = c.id
	LEFT JOIN colors col ON g.color_id = col.id
	LEFT JOIN sizes s ON g.size_id = s.id
`

func scanGarment(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Garment, error) {
	g := &models.Garment{}
	var colorID, sizeID sql.NullInt64
	var purchasePrice sql.NullFloat64
	var purchaseDate, lastWorn sql.NullTime
	var categoryName, colorName, colorHex, sizeName, sizeKind string

	err := scanner.Scan(
		&g.ID, &g.UserID, &g.Name, &g.Description, &g.CategoryID, &colorID, &sizeID,
		&g.Brand, &g.Material, &g.Gender, &g.Season, &g.Condition,
		&purchasePrice, &purchaseDate, &g.PurchasePlace,
		&g.WearCount, &lastWorn, &g.IsFavorite,
		&g.NeedsWash, &g.NeedsIron, &g.NeedsRepair,
		&g.IsLoaned, &g.LoanedTo, &g.Location, &g.Notes, &g.ImagePath,
		&g.CreatedAt, &g.UpdatedAt,
		&categoryName, &colorName, &colorHex, &sizeName, &sizeKind,
	)
	if err != nil {
		return nil, err
	}

	g.Category = &models.Category{ID: g.CategoryID, Name: categoryName}
	if colorID.Valid {
		id := int(colorID.Int64)
		g.ColorID = &id
		g.Color = &models.Color{ID: id, Name: colorName, HexCode: colorHex}
	}
	if sizeID.Valid {
		id := int(sizeID.Int64)
		g.SizeID = &id
		g.Size = &models.Size{ID: id, Name: sizeName, Kind: sizeKind}
	}
	if purchasePrice.Valid {
		g.PurchasePrice = &purchasePrice.Float64
	}
	if purchaseDate.Valid {
		g.PurchaseDate = &purchaseDate.Time
	}
	if lastWorn.Valid {
		g.LastWorn = &lastWorn.Time
	}

	return g, nil
}

func garmentFilterClauses(userID int, filter GarmentFilter) (string, []interface{}) {
	conditions := []string{"g.user_id = ?"}
	args := []interface{}{userID}

	if filter.CategoryID > 0 {
		conditions = append(conditions, "g.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.Gender != "" {
		conditions = append(conditions, "g.gender = ?")
		args = append(args, filter.Gender)
	}
	if filter.Season != "" {
		conditions = append(conditions, "g.season = ?")
		args = append(args, filter.Season)
	}
	if filter.Condition != "" {
		conditions = append(conditions, "g.condition = ?")
		args = append(args, filter.Condition)
	}
	if filter.FavoriteOnly {
		conditions = append(conditions, "g.is_favorite = TRUE")
	}
	if filter.NeedsWashOnly {
		conditions = append(conditions, "g.needs_wash = TRUE")
	}
	if filter.Query != "" {
		conditions = append(conditions, "(g.name LIKE ? OR g.description LIKE ? OR g.brand LIKE ?)")
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern, pattern)
	}

	return strings.Join(conditions, " AND "), args
}

// GetGarments returns one page of the owner's garments, most recent first,
// plus the total row count for pagination.
func GetGarments(db *sql.DB, userID int, filter GarmentFilter) ([]models.Garment, int, error) {
	where, args := garmentFilterClauses(userID, filter)

	countQuery := `SELECT COUNT(*) FROM garments g WHERE ` + where
	var total int
	if err := db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count garments: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * GarmentsPerPage

	query := garmentSelect + ` WHERE ` + where + ` ORDER BY g.created_at DESC LIMIT ? OFFSET ?`
	queryArgs := append(args, GarmentsPerPage, offset)

	rows, err := db.Query(query, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query garments: %w", err)
	}
	defer rows.Close()

	var garments []models.Garment
	for rows.Next() {
		g, err := scanGarment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan garment: %w", err)
		}
		garments = append(garments, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating garments: %w", err)
	}

	return garments, total, nil
}

// GetAllGarments returns every garment of the owner without pagination.
// Used by the outfit editor, the suitcase content editor and the stats page.
func GetAllGarments(db *sql.DB, userID int) ([]models.Garment, error) {
	query := garmentSelect + ` WHERE g.user_id = ? ORDER BY c.name ASC, g.name ASC`
	return queryGarments(db, query, userID)
}

func queryGarments(db *sql.DB, query string, args ...interface{}) ([]models.Garment, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query garments: %w", err)
	}
	defer rows.Close()

	var garments []models.Garment
	for rows.Next() {
		g, err := scanGarment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan garment: %w", err)
		}
		garments = append(garments, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating garments: %w", err)
	}

	return garments, nil
}

func GetGarment(db *sql.DB, userID, garmentID int) (*models.Garment, error) {
	query := garmentSelect + ` WHERE g.id = ? AND g.user_id = ?`

	g, err := scanGarment(db.QueryRow(query, garmentID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("garment not found")
		}
		return nil, fmt.Errorf("failed to query garment: %w", err)
	}

	return g, nil
}

// GetGarmentByID loads a garment regardless of owner. Used by marketplace
// listing pages where the viewer is not the owner.
func GetGarmentByID(db *sql.DB, garmentID int) (*models.Garment, error) {
	query := garmentSelect + ` WHERE g.id = ?`

	g, err := scanGarment(db.QueryRow(query, garmentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("garment not found")
		}
		return nil, fmt.Errorf("failed to query garment: %w", err)
	}

	return g, nil
}

func CountGarments(db *sql.DB, userID int) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM garments WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count garments: %w", err)
	}
	return count, nil
}

func CreateGarment(db *sql.DB, userID int, garment models.Garment) (*models.Garment, error) {
	query := `
		INSERT INTO garments (user_id, name, description, category_id, color_id, size_id,
			brand, material, gender, season, condition,
			purchase_price, purchase_date, purchase_place,
			is_favorite, needs_wash, needs_iron, needs_repair,
			is_loaned, loaned_to, location, notes, image_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query,
		userID, garment.Name, garment.Description, garment.CategoryID, garment.ColorID, garment.SizeID,
		garment.Brand, garment.Material, garment.Gender, garment.Season, garment.Condition,
		garment.PurchasePrice, garment.PurchaseDate, garment.PurchasePlace,
		garment.IsFavorite, garment.NeedsWash, garment.NeedsIron, garment.NeedsRepair,
		garment.IsLoaned, garment.LoanedTo, garment.Location, garment.Notes, garment.ImagePath,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create garment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get garment ID: %w", err)
	}

	return GetGarment(db, userID, int(id))
}

func UpdateGarment(db *sql.DB, userID, garmentID int, garment models.Garment) error {
	query := `
		UPDATE garments
		SET name = ?, description = ?, category_id = ?, color_id = ?, size_id = ?,
			brand = ?, material = ?, gender = ?, season = ?, condition = ?,
			purchase_price = ?, purchase_date = ?, purchase_place = ?,
			is_favorite = ?, needs_wash = ?, needs_iron = ?, needs_repair = ?,
			is_loaned = ?, loaned_to = ?, location = ?, notes = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`

	result, err := db.Exec(query,
		garment.Name, garment.Description, garment.CategoryID, garment.ColorID, garment.SizeID,
		garment.Brand, garment.Material, garment.Gender, garment.Season, garment.Condition,
		garment.PurchasePrice, garment.PurchaseDate, garment.PurchasePlace,
		garment.IsFavorite, garment.NeedsWash, garment.NeedsIron, garment.NeedsRepair,
		garment.IsLoaned, garment.LoanedTo, garment.Location, garment.Notes,
		garmentID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update garment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("garment not found")
	}

	return nil
}

func SetGarmentImage(db *sql.DB, userID, garmentID int, imagePath string) error {
	query := `UPDATE garments SET image_path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`

	result, err := db.Exec(query, imagePath, garmentID, userID)
	if err != nil {
		return fmt.Errorf("failed to set garment image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("garment not found")
	}

	return nil
}

func DeleteGarment(db *sql.DB, userID, garmentID int) error {
	result, err := db.Exec(`DELETE FROM garments WHERE id = ? AND user_id = ?`, garmentID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete garment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("garment not found")
	}

	return nil
}

func ToggleGarmentFavorite(db *sql.DB, userID, garmentID int) error {
	query := `UPDATE garments SET is_favorite = NOT is_favorite, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`

	result, err := db.Exec(query, garmentID, userID)
	if err != nil {
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("garment not found")
	}

	return nil
}

// RecordGarmentWear bumps the wear count and stamps last_worn.
func RecordGarmentWear(db *sql.DB, userID, garmentID int) error {
	query := `
		UPDATE garments
		SET wear_count = wear_count + 1, last_worn = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`

	result, err := db.Exec(query, garmentID, userID)
	if err != nil {
		return fmt.Errorf("failed to record wear: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("garment not found")
	}

	return nil
}

// MaintenanceQueue groups garments by pending care task.
type MaintenanceQueue struct {
	ToWash   []models.Garment `json:"to_wash"`
	ToIron   []models.Garment `json:"to_iron"`
	ToRepair []models.Garment `json:"to_repair"`
	Ready    []models.Garment `json:"ready"`
}

func GetMaintenanceQueue(db *sql.DB, userID int) (*MaintenanceQueue, error) {
	garments, err := GetAllGarments(db, userID)
	if err != nil {
		return nil, err
	}

	queue := &MaintenanceQueue{}
	for _, g := range garments {
		switch {
		case g.NeedsWash:
			queue.ToWash = append(queue.ToWash, g)
		case g.NeedsIron:
			queue.ToIron = append(queue.ToIron, g)
		case g.NeedsRepair:
			queue.ToRepair = append(queue.ToRepair, g)
		default:
			queue.Ready = append(queue.Ready, g)
		}
	}

	return queue, nil
}

func MarkGarmentWashed(db *sql.DB, userID, garmentID int) error {
	return clearMaintenanceFlag(db, userID, garmentID, "needs_wash")
}

func MarkGarmentIroned(db *sql.DB, userID, garmentID int) error {
	return clearMaintenanceFlag(db, userID, garmentID, "needs_iron")
}

func MarkGarmentRepaired(db *sql.DB, userID, garmentID int) error {
	return clearMaintenanceFlag(db, userID, garmentID, "needs_repair")
}

func FlagGarmentForWash(db *sql.DB, userID, garmentID int) error {
	query := `UPDATE garments SET needs_wash = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`

	result, err := db.Exec(query, garmentID, userID)
	if err != nil {
		return fmt.Errorf("failed to flag garment for wash: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("garment not found")
	}

	return nil
}

func clearMaintenanceFlag(db *sql.DB, userID, garmentID int, column string) error {
	// column comes from a fixed call site, never from user input
	query := fmt.Sprintf(`UPDATE garments SET %s = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`, column)

	result, err := db.Exec(query, garmentID, userID)
	if err != nil {
		return fmt.Errorf("failed to clear maintenance flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("garment not found")
	}

	return nil
}

// GetFriendGarments returns garments owned by the user's accepted friends.
// Feeds the outfit quick-builder's "friends" source.
func GetFriendGarments(db *sql.DB, userID int) ([]models.Garment, error) {
	query := garmentSelect + `
		WHERE g.user_id IN (
			SELECT CASE WHEN requester_id = ? THEN recipient_id ELSE requester_id END
			FROM friendships
			WHERE (requester_id = ? OR recipient_id = ?) AND status = 'accepted'
		)
		ORDER BY g.name ASC
	`

	rows, err := db.Query(query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friend garments: %w", err)
	}
	defer rows.Close()

	var garments []models.Garment
	for rows.Next() {
		g, err := scanGarment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan garment: %w", err)
		}
		garments = append(garments, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend garments: %w", err)
	}

	return garments, nil
}
