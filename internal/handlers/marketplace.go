package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"garderobe/internal/database"
	"garderobe/internal/models"

	"github.com/gin-gonic/gin"
)

func marketplaceEnabled(db *sql.DB) bool {
	settings, err := database.GetSiteSettings(db)
	if err != nil {
		return true
	}
	return settings.MarketplaceEnabled
}

func renderMarketplaceDisabled(c *gin.Context, user interface{}) {
	c.HTML(http.StatusForbidden, "feature_disabled.html", gin.H{
		"Title":   "Vide-dressing désactivé - Ma Garde-Robe",
		"User":    user,
		"Message": "Le vide-dressing est désactivé sur ce site.",
	})
}

func handleMarketplace(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !marketplaceEnabled(db) {
		renderMarketplaceDisabled(c, user)
		return
	}

	filter := database.ListingFilter{
		CategoryID: queryInt(c, "category"),
		ColorID:    queryInt(c, "color"),
		SizeID:     queryInt(c, "size"),
		Condition:  c.Query("condition"),
		Query:      c.Query("q"),
		Page:       queryInt(c, "page"),
	}
	if v, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		filter.MinPrice = v
	}
	if v, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		filter.MaxPrice = v
	}
	filter.Negotiable = c.Query("negotiable") == "1"
	filter.DeliveryOnly = c.Query("delivery") == "1"

	listings, total, err := database.BrowseListings(db, userID, filter)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "marketplace.html", gin.H{
			"Title": "Vide-dressing - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger les annonces",
		})
		return
	}

	refs, err := loadLookups(db)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "marketplace.html", gin.H{
			"Title": "Vide-dressing - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger les références",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "marketplace.html", gin.H{
			"Title": "Vide-dressing - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	totalPages := (total + database.ListingsPerPage - 1) / database.ListingsPerPage

	c.HTML(http.StatusOK, "marketplace.html", gin.H{
		"Title":      "Vide-dressing - Ma Garde-Robe",
		"User":       user,
		"CSRFToken":  csrfToken.Token,
		"Listings":   listings,
		"Total":      total,
		"Page":       page,
		"TotalPages": totalPages,
		"Filter":     filter,
		"Lookups":    refs,
	})
}

func handleMyListings(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !marketplaceEnabled(db) {
		renderMarketplaceDisabled(c, user)
		return
	}

	listings, err := database.GetMyListings(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "my_listings.html", gin.H{
			"Title": "Mes annonces - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger vos annonces",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "my_listings.html", gin.H{
			"Title": "Mes annonces - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "my_listings.html", gin.H{
		"Title":     "Mes annonces - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Listings":  listings,
	})
}

func handleFavoriteListings(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !marketplaceEnabled(db) {
		renderMarketplaceDisabled(c, user)
		return
	}

	listings, err := database.GetFavoriteListings(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "favorite_listings.html", gin.H{
			"Title": "Mes favoris - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger vos favoris",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "favorite_listings.html", gin.H{
			"Title": "Mes favoris - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "favorite_listings.html", gin.H{
		"Title":     "Mes favoris - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Listings":  listings,
	})
}

func handleNewListingPage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !marketplaceEnabled(db) {
		renderMarketplaceDisabled(c, user)
		return
	}

	garmentID, err := strconv.Atoi(c.Param("garmentID"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	garment, err := database.GetGarment(db, userID, garmentID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "listing_form.html", gin.H{
			"Title": "Vendre - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "listing_form.html", gin.H{
		"Title":     "Vendre " + garment.Name + " - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Garment":   garment,
	})
}

func handleCreateListing(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !marketplaceEnabled(db) {
		renderMarketplaceDisabled(c, user)
		return
	}

	garmentID := formInt(c, "garment_id")
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if garmentID == 0 || err != nil || price <= 0 {
		c.HTML(http.StatusBadRequest, "listing_form.html", gin.H{
			"Title": "Vendre - Ma Garde-Robe",
			"User":  user,
			"Error": "Un vêtement et un prix valide sont requis",
		})
		return
	}

	listing := models.Listing{
		GarmentID:         garmentID,
		Price:             price,
		Negotiable:        formBool(c, "negotiable"),
		DeliveryAvailable: formBool(c, "delivery_available"),
		Description:       c.PostForm("description"),
	}

	created, err := database.CreateListing(db, userID, listing)
	if err != nil {
		message := "Impossible de publier l'annonce"
		if errors.Is(err, database.ErrGarmentAlreadyListed) {
			message = "Ce vêtement est déjà en vente"
		}
		c.HTML(http.StatusBadRequest, "listing_form.html", gin.H{
			"Title": "Vendre - Ma Garde-Robe",
			"User":  user,
			"Error": message,
		})
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/marketplace/listings/%d", created.ID))
}

func handleListingDetail(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !marketplaceEnabled(db) {
		renderMarketplaceDisabled(c, user)
		return
	}

	listingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	listing, err := database.GetListing(db, listingID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	isFavorite, err := database.IsListingFavorite(db, userID, listingID)
	if err != nil {
		isFavorite = false
	}

	rating, err := database.GetSellerRating(db, listing.SellerID)
	if err != nil {
		rating = nil
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "listing_detail.html", gin.H{
			"Title": "Annonce - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "listing_detail.html", gin.H{
		"Title":        "Annonce - Ma Garde-Robe",
		"User":         user,
		"CSRFToken":    csrfToken.Token,
		"Listing":      listing,
		"IsFavorite":   isFavorite,
		"SellerRating": rating,
		"IsOwner":      listing.SellerID == userID,
	})
}

func handleUpdateListing(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	listingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price <= 0 {
		c.HTML(http.StatusBadRequest, "listing_form.html", gin.H{
			"Title": "Modifier l'annonce - Ma Garde-Robe",
			"User":  user,
			"Error": "Un prix valide est requis",
		})
		return
	}

	// Sellers can only relist or withdraw through the edit form
	status := c.PostForm("status")
	if status != models.ListingForSale && status != models.ListingWithdrawn {
		status = models.ListingForSale
	}

	err = database.UpdateListing(db, userID, listingID, price,
		formBool(c, "negotiable"), formBool(c, "delivery_available"),
		c.PostForm("description"), status)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/marketplace/listings/%d", listingID))
}

func listingStatusAction(c *gin.Context, action func(*sql.DB, int, int) error) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	listingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := action(db, userID, listingID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/marketplace/mine")
}

func handleWithdrawListing(c *gin.Context) { listingStatusAction(c, database.WithdrawListing) }
func handleReserveListing(c *gin.Context)  { listingStatusAction(c, database.MarkListingReserved) }

func handleMarkListingSold(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	listingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	buyer, err := database.GetUserByUsername(db, c.PostForm("buyer"))
	if err != nil {
		c.HTML(http.StatusBadRequest, "my_listings.html", gin.H{
			"Title": "Mes annonces - Ma Garde-Robe",
			"User":  user,
			"Error": "Acheteur introuvable",
		})
		return
	}

	var agreedPrice *float64
	if v, err := strconv.ParseFloat(c.PostForm("agreed_price"), 64); err == nil && v > 0 {
		agreedPrice = &v
	}

	if _, err := database.MarkListingSold(db, userID, listingID, buyer.ID, agreedPrice); err != nil {
		c.HTML(http.StatusBadRequest, "my_listings.html", gin.H{
			"Title": "Mes annonces - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de finaliser la vente",
		})
		return
	}

	c.Redirect(http.StatusFound, "/marketplace/sales")
}

func handleToggleListingFavorite(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	listingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if _, err := database.ToggleListingFavorite(db, userID, listingID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/marketplace/listings/%d", listingID))
}

func transactionListPage(c *gin.Context, template, title string, load func(*sql.DB, int) ([]models.Transaction, error)) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !marketplaceEnabled(db) {
		renderMarketplaceDisabled(c, user)
		return
	}

	transactions, err := load(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, template, gin.H{
			"Title": title,
			"User":  user,
			"Error": "Impossible de charger les transactions",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, template, gin.H{
			"Title": title,
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, template, gin.H{
		"Title":        title,
		"User":         user,
		"CSRFToken":    csrfToken.Token,
		"Transactions": transactions,
	})
}

func handlePurchases(c *gin.Context) {
	transactionListPage(c, "purchases.html", "Mes achats - Ma Garde-Robe", database.GetPurchases)
}

func handleSales(c *gin.Context) {
	transactionListPage(c, "sales.html", "Mes ventes - Ma Garde-Robe", database.GetSales)
}

func handleUpdateTransactionStatus(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	transactionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	status := c.PostForm("status")
	if status != models.TransactionDelivered && status != models.TransactionCancelled {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := database.UpdateTransactionStatus(db, userID, transactionID, status); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/marketplace/purchases")
}

func handleCreateSellerReview(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	transactionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	review := models.SellerReview{
		TransactionID: transactionID,
		Rating:        formInt(c, "rating"),
		Communication: formInt(c, "communication"),
		ItemAccuracy:  formInt(c, "item_accuracy"),
		Shipping:      formInt(c, "shipping"),
		Value:         formInt(c, "value"),
		Comment:       c.PostForm("comment"),
	}

	if review.Rating < 1 || review.Rating > 5 {
		c.HTML(http.StatusBadRequest, "purchases.html", gin.H{
			"Title": "Mes achats - Ma Garde-Robe",
			"User":  user,
			"Error": "La note globale doit être entre 1 et 5",
		})
		return
	}

	if _, err := database.CreateSellerReview(db, userID, review); err != nil {
		c.HTML(http.StatusBadRequest, "purchases.html", gin.H{
			"Title": "Mes achats - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible d'enregistrer l'évaluation",
		})
		return
	}

	c.Redirect(http.StatusFound, "/marketplace/purchases")
}

func handleSellerProfile(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !marketplaceEnabled(db) {
		renderMarketplaceDisabled(c, user)
		return
	}

	seller, err := database.GetUserByUsername(db, c.Param("username"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	rating, err := database.GetSellerRating(db, seller.ID)
	if err != nil {
		rating = nil
	}

	reviews, err := database.GetSellerReviews(db, seller.ID)
	if err != nil {
		reviews = nil
	}

	listings, err := database.GetMyListings(db, seller.ID)
	if err != nil {
		listings = nil
	}

	// Only show the seller's live listings on their public profile
	active := listings[:0:0]
	for _, l := range listings {
		if l.Status == models.ListingForSale {
			active = append(active, l)
		}
	}

	c.HTML(http.StatusOK, "seller_profile.html", gin.H{
		"Title":    "Profil de " + seller.Username + " - Ma Garde-Robe",
		"User":     user,
		"Seller":   seller,
		"Rating":   rating,
		"Reviews":  reviews,
		"Listings": active,
		"IsSelf":   seller.ID == userID,
	})
}
