package handlers

import (
	"database/sql"
	"mime"
	"net/http"
	"path"

	"garderobe/internal/config"
	"garderobe/internal/database"
	"garderobe/internal/email"
	"garderobe/internal/middleware"
	"garderobe/internal/storage"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, db *sql.DB, cfg *config.Config, emailService *email.Service, store storage.Backend) {
	r.Use(middleware.LogRequests())
	r.Use(middleware.SecurityHeaders(cfg))
	r.Use(middleware.AddDBContext(db))
	r.Use(addConfigContext(cfg))
	r.Use(addEmailServiceContext(emailService))
	r.Use(addStorageContext(store))
	r.Use(middleware.TrimSpaces())

	r.GET("/", middleware.AuthOptional(db, cfg), middleware.MaintenanceGate(db), middleware.AdminRedirect(), handleHome)
	r.GET("/register", middleware.MaintenanceGate(db), handleRegisterPage)
	r.POST("/register", middleware.AuthRateLimit(cfg), middleware.MaintenanceGate(db), handleRegister)
	r.GET("/login", handleLoginPage)
	r.POST("/login", middleware.AuthRateLimit(cfg), handleLogin)
	r.POST("/logout", middleware.AuthRequired(db, cfg), handleLogout)
	r.GET("/activate/:token", middleware.ActivationRateLimit(cfg), middleware.AuthOptional(db, cfg), handleActivate)
	r.POST("/resend-activation", middleware.ActivationRateLimit(cfg), middleware.AuthRequired(db, cfg), handleResendActivation)
	r.GET("/media/*filepath", handleMedia)

	protected := r.Group("/")
	protected.Use(middleware.AuthRequired(db, cfg))
	protected.Use(middleware.MaintenanceGate(db))
	protected.Use(middleware.RequireActivation())
	protected.Use(middleware.CSRF(cfg))
	{
		protected.GET("/dashboard", handleDashboard)

		protected.GET("/wardrobe", handleWardrobe)
		protected.GET("/wardrobe/garments/new", handleNewGarmentPage)
		protected.POST("/wardrobe/garments", handleCreateGarment)
		protected.GET("/wardrobe/garments/:id", handleGarmentDetail)
		protected.GET("/wardrobe/garments/:id/edit", handleEditGarmentPage)
		protected.POST("/wardrobe/garments/:id", handleUpdateGarment)
		protected.POST("/wardrobe/garments/:id/delete", handleDeleteGarment)
		protected.POST("/wardrobe/garments/:id/favorite", handleToggleGarmentFavorite)
		protected.POST("/wardrobe/garments/:id/wear", handleRecordGarmentWear)
		protected.POST("/wardrobe/garments/:id/photo", handleUploadGarmentPhoto)
		protected.GET("/wardrobe/maintenance", handleMaintenanceQueue)
		protected.POST("/wardrobe/garments/:id/washed", handleMarkWashed)
		protected.POST("/wardrobe/garments/:id/ironed", handleMarkIroned)
		protected.POST("/wardrobe/garments/:id/repaired", handleMarkRepaired)
		protected.POST("/wardrobe/garments/:id/to-wash", handleFlagForWash)

		protected.GET("/outfits", handleOutfits)
		protected.GET("/outfits/new", handleNewOutfitPage)
		protected.POST("/outfits", handleCreateOutfit)
		protected.GET("/outfits/builder", handleQuickBuilderPage)
		protected.POST("/outfits/builder", handleQuickBuild)
		protected.GET("/outfits/:id", handleOutfitDetail)
		protected.GET("/outfits/:id/edit", handleEditOutfitPage)
		protected.POST("/outfits/:id", handleUpdateOutfit)
		protected.POST("/outfits/:id/delete", handleDeleteOutfit)
		protected.POST("/outfits/:id/favorite", handleToggleOutfitFavorite)
		protected.POST("/outfits/:id/wear", handleRecordOutfitWear)

		protected.GET("/suitcases", handleSuitcases)
		protected.GET("/suitcases/new", handleNewSuitcasePage)
		protected.POST("/suitcases", handleCreateSuitcase)
		protected.GET("/suitcases/:id", handleSuitcaseDetail)
		protected.GET("/suitcases/:id/edit", handleEditSuitcasePage)
		protected.POST("/suitcases/:id", handleUpdateSuitcase)
		protected.POST("/suitcases/:id/delete", handleDeleteSuitcase)
		protected.POST("/suitcases/:id/status", handleUpdateSuitcaseStatus)
		protected.POST("/suitcases/:id/copy", handleCopySuitcase)
		protected.GET("/suitcases/:id/contents", handleEditSuitcaseContentsPage)
		protected.POST("/suitcases/:id/contents", handleReplaceSuitcaseContents)
		protected.POST("/suitcases/:id/items", handleAddPackingItems)
		protected.POST("/suitcases/:id/items/:itemID/toggle", middleware.CSRFWithRenewal(cfg), handleTogglePackingItem)
		protected.POST("/suitcases/:id/items/:itemID/delete", handleRemovePackingItem)

		protected.GET("/messages", handleInbox)
		protected.GET("/messages/sent", handleSentMessages)
		protected.GET("/messages/archived", handleArchivedMessages)
		protected.GET("/messages/new", handleComposePage)
		protected.POST("/messages", handleSendMessage)
		protected.GET("/messages/:id", handleMessageDetail)
		protected.POST("/messages/:id/archive", handleArchiveMessage)

		protected.GET("/friends", handleFriends)
		protected.POST("/friends/requests", handleSendFriendRequest)
		protected.POST("/friends/requests/:id/accept", handleAcceptFriendRequest)
		protected.POST("/friends/requests/:id/decline", handleDeclineFriendRequest)
		protected.POST("/friends/:id/remove", handleRemoveFriend)
		protected.GET("/friends/:username/wardrobe", handleFriendWardrobe)

		protected.GET("/marketplace", handleMarketplace)
		protected.GET("/marketplace/mine", handleMyListings)
		protected.GET("/marketplace/favorites", handleFavoriteListings)
		protected.GET("/marketplace/sell/:garmentID", handleNewListingPage)
		protected.POST("/marketplace/listings", handleCreateListing)
		protected.GET("/marketplace/listings/:id", handleListingDetail)
		protected.POST("/marketplace/listings/:id", handleUpdateListing)
		protected.POST("/marketplace/listings/:id/withdraw", handleWithdrawListing)
		protected.POST("/marketplace/listings/:id/reserve", handleReserveListing)
		protected.POST("/marketplace/listings/:id/sold", handleMarkListingSold)
		protected.POST("/marketplace/listings/:id/favorite", handleToggleListingFavorite)
		protected.GET("/marketplace/purchases", handlePurchases)
		protected.GET("/marketplace/sales", handleSales)
		protected.POST("/marketplace/transactions/:id/status", handleUpdateTransactionStatus)
		protected.POST("/marketplace/transactions/:id/review", handleCreateSellerReview)
		protected.GET("/marketplace/sellers/:username", handleSellerProfile)

		protected.GET("/calendar", handleCalendar)
		protected.POST("/calendar/events", handleCreateEvent)
		protected.GET("/calendar/events/:id/edit", handleEditEventPage)
		protected.POST("/calendar/events/:id", handleUpdateEvent)
		protected.POST("/calendar/events/:id/delete", handleDeleteEvent)

		protected.GET("/stats", handleStats)

		protected.POST("/reports", handleCreateReport)

		protected.GET("/account", handleAccountPage)
		protected.POST("/account/password", handleChangePassword)
		protected.POST("/account/username", handleChangeUsername)

		protected.GET("/api/csrf-token", handleCSRFToken)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AdminRequired(db, cfg))
	admin.Use(middleware.CSRF(cfg))
	{
		admin.GET("/", handleAdminDashboard)
		admin.GET("/users", handleAdminUsers)
		admin.POST("/users/:id/toggle-admin", handleToggleUserAdmin)
		admin.POST("/users/:id/toggle-activation", handleToggleUserActivation)
		admin.POST("/users/:id/delete", handleAdminDeleteUser)
		admin.POST("/users/:id/sanction", handleSanctionUser)
		admin.POST("/users/:id/lift-sanctions", handleLiftSanctions)
		admin.POST("/bulk", handleAdminBulkAction)
		admin.GET("/settings", handleAdminSettingsPage)
		admin.POST("/settings", handleAdminUpdateSettings)
		admin.GET("/categories", handleAdminCategories)
		admin.POST("/categories", handleAdminCreateCategory)
		admin.POST("/categories/:id", handleAdminUpdateCategory)
		admin.POST("/categories/:id/delete", handleAdminDeleteCategory)
		admin.GET("/moderation", handleModerationQueue)
		admin.POST("/moderation/:id/take", handleTakeOverReport)
		admin.POST("/moderation/:id/resolve", handleResolveReport)
		admin.POST("/moderation/:id/reject", handleRejectReport)
	}
}

func handleHome(c *gin.Context) {
	user, exists := c.Get("user")
	if exists {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	db := c.MustGet("db").(*sql.DB)
	settings, err := database.GetSiteSettings(db)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "home.html", gin.H{
			"Title": "Ma Garde-Robe",
			"Error": "Une erreur est survenue",
		})
		return
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"Title":    settings.SiteName + " - Votre dressing virtuel",
		"Settings": settings,
		"User":     user,
	})
}

func handleDashboard(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "dashboard.html", gin.H{
			"Title": "Tableau de bord - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	stats, err := database.GetWardrobeStats(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "dashboard.html", gin.H{
			"Title": "Tableau de bord - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger les statistiques",
		})
		return
	}

	suitcases, err := database.GetSuitcases(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "dashboard.html", gin.H{
			"Title": "Tableau de bord - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger les valises",
		})
		return
	}

	// Keep only trips still ahead or ongoing for the dashboard widget
	upcoming := suitcases[:0:0]
	for _, s := range suitcases {
		if !s.IsPast() {
			upcoming = append(upcoming, s)
		}
	}
	if len(upcoming) > 3 {
		upcoming = upcoming[:3]
	}

	unread, err := database.UnreadMessageCount(db, userID)
	if err != nil {
		unread = 0
	}

	events, err := database.GetUpcomingEvents(db, userID, 5)
	if err != nil {
		events = nil
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":             "Tableau de bord - Ma Garde-Robe",
		"User":              user,
		"CSRFToken":         csrfToken.Token,
		"Stats":             stats,
		"UpcomingSuitcases": upcoming,
		"UnreadMessages":    unread,
		"UpcomingEvents":    events,
	})
}

func addConfigContext(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	}
}

func addEmailServiceContext(emailService *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("email_service", emailService)
		c.Next()
	}
}

func addStorageContext(store storage.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("storage", store)
		c.Next()
	}
}

// handleMedia streams stored files through the active storage backend, which
// keeps photo URLs working whether files sit on local disk or SFTP.
func handleMedia(c *gin.Context) {
	store := c.MustGet("storage").(storage.Backend)
	name := c.Param("filepath")

	f, err := store.Open(name)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer f.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, contentType, f, nil)
}
