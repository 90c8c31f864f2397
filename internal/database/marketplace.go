package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"garderobe/internal/models"
)

var ErrGarmentAlreadyListed = errors.New("this garment already has a listing")

const ListingsPerPage = 20

// ListingFilter narrows the marketplace browse page.
type ListingFilter struct {
	CategoryID   int
	ColorID      int
	SizeID       int
	Condition    string
	MinPrice     float64
	MaxPrice     float64
	Negotiable   bool
	DeliveryOnly bool
	Query        string
	Page         int
}

const listingSelect = `
	SELECT l.id, l.garment_id, l.seller_id, l.price, l.negotiable, l.delivery_available,
	       l.description, l.status, l.buyer_id, l.published_at, l.sold_at,
	       g.name, g.brand, g.condition, g.image_path, u.username
	FROM listings l
	JOIN garments g ON l.garment_id = g.id
	JOIN users u ON l.seller_id = u.id
`

func scanListing(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Listing, error) {
	l := &models.Listing{}
	var buyerID sql.NullInt64
	var soldAt sql.NullTime
	var garmentName, garmentBrand, garmentCondition, garmentImage, sellerName string

	err := scanner.Scan(
		&l.ID, &l.GarmentID, &l.SellerID, &l.Price, &l.Negotiable, &l.DeliveryAvailable,
		&l.Description, &l.Status, &buyerID, &l.PublishedAt, &soldAt,
		&garmentName, &garmentBrand, &garmentCondition, &garmentImage, &sellerName,
	)
	if err != nil {
		return nil, err
	}

	if buyerID.Valid {
		id := int(buyerID.Int64)
		l.BuyerID = &id
	}
	if soldAt.Valid {
		l.SoldAt = &soldAt.Time
	}
	l.Garment = &models.Garment{
		ID:        l.GarmentID,
		Name:      garmentName,
		Brand:     garmentBrand,
		Condition: garmentCondition,
		ImagePath: garmentImage,
	}
	l.Seller = &models.User{ID: l.SellerID, Username: sellerName}

	return l, nil
}

// CreateListing puts a garment up for sale. A garment can carry at most one
// listing; a second attempt is rejected before touching the table.
func CreateListing(db *sql.DB, sellerID int, listing models.Listing) (*models.Listing, error) {
	var ownerID int
	err := db.QueryRow(`SELECT user_id FROM garments WHERE id = ?`, listing.GarmentID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("garment not found")
		}
		return nil, fmt.Errorf("failed to verify garment ownership: %w", err)
	}
	if ownerID != sellerID {
		return nil, fmt.Errorf("garment not found")
	}

	var existing int
	err = db.QueryRow(`SELECT 1 FROM listings WHERE garment_id = ?`, listing.GarmentID).Scan(&existing)
	if err == nil {
		return nil, ErrGarmentAlreadyListed
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing listing: %w", err)
	}

	query := `
		INSERT INTO listings (garment_id, seller_id, price, negotiable, delivery_available, description, status)
		VALUES (?, ?, ?, ?, ?, ?, 'en_vente')
	`
	result, err := db.Exec(query, listing.GarmentID, sellerID, listing.Price, listing.Negotiable, listing.DeliveryAvailable, listing.Description)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrGarmentAlreadyListed
		}
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get listing ID: %w", err)
	}

	return GetListing(db, int(id))
}

func GetListing(db *sql.DB, listingID int) (*models.Listing, error) {
	l, err := scanListing(db.QueryRow(listingSelect+` WHERE l.id = ?`, listingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("listing not found")
		}
		return nil, fmt.Errorf("failed to query listing: %w", err)
	}
	return l, nil
}

// BrowseListings returns one page of active listings from other sellers.
func BrowseListings(db *sql.DB, userID int, filter ListingFilter) ([]models.Listing, int, error) {
	conditions := []string{"l.status = 'en_vente'", "l.seller_id != ?"}
	args := []interface{}{userID}

	if filter.CategoryID > 0 {
		conditions = append(conditions, "g.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.ColorID > 0 {
		conditions = append(conditions, "g.color_id = ?")
		args = append(args, filter.ColorID)
	}
	if filter.SizeID > 0 {
		conditions = append(conditions, "g.size_id = ?")
		args = append(args, filter.SizeID)
	}
	if filter.Condition != "" {
		conditions = append(conditions, "g.condition = ?")
		args = append(args, filter.Condition)
	}
	if filter.MinPrice > 0 {
		conditions = append(conditions, "l.price >= ?")
		args = append(args, filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		conditions = append(conditions, "l.price <= ?")
		args = append(args, filter.MaxPrice)
	}
	if filter.Negotiable {
		conditions = append(conditions, "l.negotiable = TRUE")
	}
	if filter.DeliveryOnly {
		conditions = append(conditions, "l.delivery_available = TRUE")
	}
	if filter.Query != "" {
		conditions = append(conditions, "(g.name LIKE ? OR g.brand LIKE ? OR l.description LIKE ?)")
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern, pattern)
	}

	where := strings.Join(conditions, " AND ")

	countQuery := `
		SELECT COUNT(*)
		FROM listings l
		JOIN garments g ON l.garment_id = g.id
		WHERE ` + where
	var total int
	if err := db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * ListingsPerPage

	query := listingSelect + ` WHERE ` + where + ` ORDER BY l.published_at DESC LIMIT ? OFFSET ?`
	args = append(args, ListingsPerPage, offset)

	listings, err := queryListings(db, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

func queryListings(db *sql.DB, query string, args ...interface{}) ([]models.Listing, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	return listings, nil
}

func GetMyListings(db *sql.DB, sellerID int) ([]models.Listing, error) {
	query := listingSelect + ` WHERE l.seller_id = ? ORDER BY l.published_at DESC`
	return queryListings(db, query, sellerID)
}

// UpdateListing lets the seller adjust price, flags and description.
func UpdateListing(db *sql.DB, sellerID, listingID int, price float64, negotiable, delivery bool, description, status string) error {
	query := `
		UPDATE listings
		SET price = ?, negotiable = ?, delivery_available = ?, description = ?, status = ?
		WHERE id = ? AND seller_id = ?
	`

	result, err := db.Exec(query, price, negotiable, delivery, description, status, listingID, sellerID)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("listing not found")
	}

	return nil
}

func WithdrawListing(db *sql.DB, sellerID, listingID int) error {
	return setListingStatus(db, sellerID, listingID, models.ListingWithdrawn)
}

func MarkListingReserved(db *sql.DB, sellerID, listingID int) error {
	return setListingStatus(db, sellerID, listingID, models.ListingReserved)
}

func setListingStatus(db *sql.DB, sellerID, listingID int, status string) error {
	query := `UPDATE listings SET status = ? WHERE id = ? AND seller_id = ?`

	result, err := db.Exec(query, status, listingID, sellerID)
	if err != nil {
		return fmt.Errorf("failed to update listing status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("listing not found")
	}

	return nil
}

// MarkListingSold finalizes a sale: the listing records the buyer and sale
// time, and a transaction row is opened at the agreed price (listing price
// unless the seller negotiated another).
func MarkListingSold(db *sql.DB, sellerID, listingID, buyerID int, agreedPrice *float64) (*models.Transaction, error) {
	listing, err := GetListing(db, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, fmt.Errorf("listing not found")
	}
	if buyerID == sellerID {
		return nil, fmt.Errorf("seller cannot be the buyer")
	}

	price := listing.Price
	if agreedPrice != nil {
		price = *agreedPrice
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE listings
		SET status = 'vendue', buyer_id = ?, sold_at = CURRENT_TIMESTAMP
		WHERE id = ? AND seller_id = ?
	`
	if _, err := tx.Exec(updateQuery, buyerID, listingID, sellerID); err != nil {
		return nil, fmt.Errorf("failed to mark listing sold: %w", err)
	}

	insertQuery := `
		INSERT INTO transactions (listing_id, buyer_id, seller_id, agreed_price, status)
		VALUES (?, ?, ?, ?, 'en_cours')
	`
	result, err := tx.Exec(insertQuery, listingID, buyerID, sellerID, price)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}

	return GetTransaction(db, int(id))
}

// ToggleListingFavorite saves or removes the listing from the user's
// favorites and reports the new state.
func ToggleListingFavorite(db *sql.DB, userID, listingID int) (bool, error) {
	result, err := db.Exec(`DELETE FROM listing_favorites WHERE user_id = ? AND listing_id = ?`, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("failed to remove listing favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected > 0 {
		return false, nil
	}

	_, err = db.Exec(`INSERT INTO listing_favorites (user_id, listing_id) VALUES (?, ?)`, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("failed to add listing favorite: %w", err)
	}

	return true, nil
}

// GetFavoriteListings returns the user's saved listings still for sale.
func GetFavoriteListings(db *sql.DB, userID int) ([]models.Listing, error) {
	query := listingSelect + `
		JOIN listing_favorites lf ON lf.listing_id = l.id
		WHERE lf.user_id = ? AND l.status = 'en_vente'
		ORDER BY lf.created_at DESC
	`
	return queryListings(db, query, userID)
}

func IsListingFavorite(db *sql.DB, userID, listingID int) (bool, error) {
	var exists int
	err := db.QueryRow(`SELECT 1 FROM listing_favorites WHERE user_id = ? AND listing_id = ?`, userID, listingID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check listing favorite: %w", err)
	}
	return true, nil
}

const transactionSelect = `
	SELECT t.id, t.listing_id, t.buyer_id, t.seller_id, t.agreed_price, t.delivery_method,
	       t.status, t.notes, t.created_at, t.completed_at,
	       b.username, s.username, g.name
	FROM transactions t
	JOIN users b ON t.buyer_id = b.id
	JOIN users s ON t.seller_id = s.id
	JOIN listings l ON t.listing_id = l.id
	JOIN garments g ON l.garment_id = g.id
`

func scanTransaction(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Transaction, error) {
	t := &models.Transaction{}
	var completedAt sql.NullTime
	var buyerName, sellerName, garmentName string

	err := scanner.Scan(
		&t.ID, &t.ListingID, &t.BuyerID, &t.SellerID, &t.AgreedPrice, &t.DeliveryMethod,
		&t.Status, &t.Notes, &t.CreatedAt, &completedAt,
		&buyerName, &sellerName, &garmentName,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	t.Buyer = &models.User{ID: t.BuyerID, Username: buyerName}
	t.Seller = &models.User{ID: t.SellerID, Username: sellerName}
	t.Listing = &models.Listing{ID: t.ListingID, Garment: &models.Garment{Name: garmentName}}

	return t, nil
}

func GetTransaction(db *sql.DB, transactionID int) (*models.Transaction, error) {
	t, err := scanTransaction(db.QueryRow(transactionSelect+` WHERE t.id = ?`, transactionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("transaction not found")
		}
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return t, nil
}

func GetPurchases(db *sql.DB, buyerID int) ([]models.Transaction, error) {
	return queryTransactions(db, transactionSelect+` WHERE t.buyer_id = ? ORDER BY t.created_at DESC`, buyerID)
}

func GetSales(db *sql.DB, sellerID int) ([]models.Transaction, error) {
	return queryTransactions(db, transactionSelect+` WHERE t.seller_id = ? ORDER BY t.created_at DESC`, sellerID)
}

func queryTransactions(db *sql.DB, query string, args ...interface{}) ([]models.Transaction, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// UpdateTransactionStatus marks a transaction delivered or cancelled. Either
// party may do it; a terminal status stamps completed_at.
func UpdateTransactionStatus(db *sql.DB, userID, transactionID int, status string) error {
	query := `
		UPDATE transactions
		SET status = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ? AND (buyer_id = ? OR seller_id = ?) AND status = 'en_cours'
	`

	result, err := db.Exec(query, status, transactionID, userID, userID)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("transaction not found")
	}

	return nil
}

// CreateSellerReview records the buyer's post-sale rating. One review per
// transaction, and only after delivery.
func CreateSellerReview(db *sql.DB, reviewerID int, review models.SellerReview) (*models.SellerReview, error) {
	t, err := GetTransaction(db, review.TransactionID)
	if err != nil {
		return nil, err
	}
	if t.BuyerID != reviewerID {
		return nil, fmt.Errorf("transaction not found")
	}
	if t.Status != models.TransactionDelivered {
		return nil, fmt.Errorf("transaction is not delivered yet")
	}

	query := `
		INSERT INTO seller_reviews (transaction_id, reviewer_id, seller_id, rating, communication, item_accuracy, shipping, value, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := db.Exec(query,
		review.TransactionID, reviewerID, t.SellerID,
		review.Rating, review.Communication, review.ItemAccuracy, review.Shipping, review.Value,
		review.Comment,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("this transaction was already reviewed")
		}
		return nil, fmt.Errorf("failed to create seller review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get review ID: %w", err)
	}

	review.ID = int(id)
	review.ReviewerID = reviewerID
	review.SellerID = t.SellerID
	return &review, nil
}

// SellerRating aggregates a seller's reviews.
type SellerRating struct {
	ReviewCount      int     `json:"review_count"`
	AvgRating        float64 `json:"avg_rating"`
	AvgCommunication float64 `json:"avg_communication"`
	AvgItemAccuracy  float64 `json:"avg_item_accuracy"`
	AvgShipping      float64 `json:"avg_shipping"`
	AvgValue         float64 `json:"avg_value"`
}

func GetSellerRating(db *sql.DB, sellerID int) (*SellerRating, error) {
	rating := &SellerRating{}
	query := `
		SELECT COUNT(*),
		       COALESCE(AVG(rating), 0),
		       COALESCE(AVG(communication), 0),
		       COALESCE(AVG(item_accuracy), 0),
		       COALESCE(AVG(shipping), 0),
		       COALESCE(AVG(value), 0)
		FROM seller_reviews
		WHERE seller_id = ?
	`

	err := db.QueryRow(query, sellerID).Scan(
		&rating.ReviewCount, &rating.AvgRating, &rating.AvgCommunication,
		&rating.AvgItemAccuracy, &rating.AvgShipping, &rating.AvgValue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute seller rating: %w", err)
	}

	return rating, nil
}

func GetSellerReviews(db *sql.DB, sellerID int) ([]models.SellerReview, error) {
	query := `
		SELECT sr.id, sr.transaction_id, sr.reviewer_id, sr.seller_id, sr.rating,
		       sr.communication, sr.item_accuracy, sr.shipping, sr.value, sr.comment, sr.created_at,
		       u.username
		FROM seller_reviews sr
		JOIN users u ON sr.reviewer_id = u.id
		WHERE sr.seller_id = ?
		ORDER BY sr.created_at DESC
	`

	rows, err := db.Query(query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seller reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.SellerReview
	for rows.Next() {
		var r models.SellerReview
		var reviewerName string
		err := rows.Scan(
			&r.ID, &r.TransactionID, &r.ReviewerID, &r.SellerID, &r.Rating,
			&r.Communication, &r.ItemAccuracy, &r.Shipping, &r.Value, &r.Comment, &r.CreatedAt,
			&reviewerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seller review: %w", err)
		}
		r.Reviewer = &models.User{ID: r.ReviewerID, Username: reviewerName}
		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seller reviews: %w", err)
	}

	return reviews, nil
}

// GetActiveListings powers the quick-builder's "marketplace" source.
func GetActiveListings(db *sql.DB) ([]models.Listing, error) {
	query := listingSelect + ` WHERE l.status = 'en_vente' ORDER BY l.published_at DESC`
	return queryListings(db, query)
}
