package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"garderobe/internal/database"
	"garderobe/internal/logger"
	"garderobe/internal/models"

	"github.com/gin-gonic/gin"
)

func handleAdminDashboard(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	stats, err := database.GetAdminStats(db)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin_dashboard.html", gin.H{
			"Title": "Administration - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger les statistiques",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin_dashboard.html", gin.H{
			"Title": "Administration - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
		"Title":     "Administration - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Stats":     stats,
	})
}

func handleAdminUsers(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	users, err := database.GetAllUsersWithStats(db)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin_users.html", gin.H{
			"Title": "Utilisateurs - Administration",
			"User":  user,
			"Error": "Impossible de charger les utilisateurs",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin_users.html", gin.H{
			"Title": "Utilisateurs - Administration",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "admin_users.html", gin.H{
		"Title":     "Utilisateurs - Administration",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Users":     users,
	})
}

func adminUserAction(c *gin.Context, action func(*sql.DB, int) error) {
	adminID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	// Admins cannot demote, deactivate or delete themselves
	if targetID == adminID {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := action(db, targetID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/admin/users")
}

func handleToggleUserAdmin(c *gin.Context)      { adminUserAction(c, database.ToggleUserAdmin) }
func handleToggleUserActivation(c *gin.Context) { adminUserAction(c, database.ToggleUserActivation) }

func handleAdminDeleteUser(c *gin.Context) {
	adminID := c.MustGet("user_id").(int)

	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil || targetID == adminID {
		c.Status(http.StatusBadRequest)
		return
	}

	db := c.MustGet("db").(*sql.DB)
	if err := database.DeleteUser(db, targetID); err != nil {
		logger.Error("Failed to delete user", "user_id", targetID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	logger.Info("User deleted by admin", "user_id", targetID, "admin_id", adminID)
	c.Redirect(http.StatusFound, "/admin/users")
}

func handleSanctionUser(c *gin.Context) {
	adminID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil || targetID == adminID {
		c.Status(http.StatusBadRequest)
		return
	}

	actionType := c.PostForm("action_type")
	if actionType != models.ActionSuspension && actionType != models.ActionBan {
		c.Status(http.StatusBadRequest)
		return
	}

	action := models.ModerationAction{
		UserID:     targetID,
		ActionType: actionType,
		Reason:     c.PostForm("reason"),
	}

	// Suspensions carry an end date, bans do not
	if actionType == models.ActionSuspension {
		days, err := strconv.Atoi(c.PostForm("days"))
		if err != nil || days < 1 {
			days = 7
		}
		endsAt := time.Now().AddDate(0, 0, days)
		action.EndsAt = &endsAt
	}

	if reportID := formIntPtr(c, "report_id"); reportID != nil {
		action.ReportID = reportID
	}

	if _, err := database.CreateModerationAction(db, adminID, action); err != nil {
		logger.Error("Failed to sanction user", "user_id", targetID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Redirect(http.StatusFound, "/admin/users")
}

func handleLiftSanctions(c *gin.Context) {
	adminID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.LiftSanctions(db, adminID, targetID, c.PostForm("reason")); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Redirect(http.StatusFound, "/admin/users")
}

func handleAdminSettingsPage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	settings, err := database.GetSiteSettings(db)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin_settings.html", gin.H{
			"Title": "Réglages - Administration",
			"User":  user,
			"Error": "Impossible de charger les réglages",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin_settings.html", gin.H{
			"Title": "Réglages - Administration",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "admin_settings.html", gin.H{
		"Title":     "Réglages - Administration",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Settings":  settings,
	})
}

func handleAdminUpdateSettings(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	settings := models.SiteSettings{
		SiteName:             c.PostForm("site_name"),
		SiteDescription:      c.PostForm("site_description"),
		AdminEmail:           c.PostForm("admin_email"),
		RegistrationOpen:     formBool(c, "registration_open"),
		RegistrationApproval: formBool(c, "registration_approval"),
		MessagesEnabled:      formBool(c, "messages_enabled"),
		MarketplaceEnabled:   formBool(c, "marketplace_enabled"),
		FriendshipsEnabled:   formBool(c, "friendships_enabled"),
		MaxGarmentsPerUser:   formInt(c, "max_garments_per_user"),
		MaxOutfitsPerUser:    formInt(c, "max_outfits_per_user"),
		MaxSuitcasesPerUser:  formInt(c, "max_suitcases_per_user"),
		MaxImageMB:           formInt(c, "max_image_mb"),
		ModerationEnabled:    formBool(c, "moderation_enabled"),
		ModerateMessages:     formBool(c, "moderate_messages"),
		ModerateListings:     formBool(c, "moderate_listings"),
		MaintenanceMode:      formBool(c, "maintenance_mode"),
		MaintenanceMessage:   c.PostForm("maintenance_message"),
	}

	if settings.SiteName == "" {
		c.HTML(http.StatusBadRequest, "admin_settings.html", gin.H{
			"Title":    "Réglages - Administration",
			"User":     user,
			"Error":    "Le nom du site est requis",
			"Settings": settings,
		})
		return
	}

	if err := database.UpdateSiteSettings(db, settings); err != nil {
		logger.Error("Failed to update site settings", "admin_id", userID, "error", err)
		c.HTML(http.StatusInternalServerError, "admin_settings.html", gin.H{
			"Title":    "Réglages - Administration",
			"User":     user,
			"Error":    "Impossible d'enregistrer les réglages",
			"Settings": settings,
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/settings")
}

func handleAdminCategories(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	categories, err := database.GetCategories(db)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin_categories.html", gin.H{
			"Title": "Catégories - Administration",
			"User":  user,
			"Error": "Impossible de charger les catégories",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin_categories.html", gin.H{
			"Title": "Catégories - Administration",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "admin_categories.html", gin.H{
		"Title":      "Catégories - Administration",
		"User":       user,
		"CSRFToken":  csrfToken.Token,
		"Categories": categories,
	})
}

func handleAdminCreateCategory(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.HTML(http.StatusBadRequest, "admin_categories.html", gin.H{
			"Title": "Catégories - Administration",
			"User":  user,
			"Error": "Le nom de la catégorie est requis",
		})
		return
	}

	if _, err := database.CreateCategory(db, name); err != nil {
		message := "Impossible de créer la catégorie"
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			message = "Cette catégorie existe déjà"
		}
		c.HTML(http.StatusBadRequest, "admin_categories.html", gin.H{
			"Title": "Catégories - Administration",
			"User":  user,
			"Error": message,
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/categories")
}

func handleAdminUpdateCategory(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	categoryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := database.UpdateCategory(db, categoryID, name); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/admin/categories")
}

func handleAdminDeleteCategory(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	categoryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.DeleteCategory(db, categoryID); err != nil {
		message := "Impossible de supprimer la catégorie"
		if strings.Contains(err.Error(), "still referenced") {
			message = "Cette catégorie est utilisée par des vêtements et ne peut pas être supprimée"
		}
		c.HTML(http.StatusBadRequest, "admin_categories.html", gin.H{
			"Title": "Catégories - Administration",
			"User":  user,
			"Error": message,
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/categories")
}

// Bulk commands an admin can apply to a selection of rows. Each command
// names its target table; the ids come from the "ids" checkboxes of the
// admin list form.
const (
	BulkMarkWashed      = "marquer_lave"
	BulkAcceptRequests  = "accepter_demande"
	BulkDeclineRequests = "refuser_demande"
	BulkMarkReserved    = "marquer_reservee"
	BulkMarkSold        = "marquer_vendue"
)

var bulkCommands = map[string]func(*sql.DB, []int) (int, error){
	BulkMarkWashed: database.AdminMarkGarmentsWashed,
	BulkAcceptRequests: func(db *sql.DB, ids []int) (int, error) {
		return database.AdminRespondFriendRequests(db, ids, true)
	},
	BulkDeclineRequests: func(db *sql.DB, ids []int) (int, error) {
		return database.AdminRespondFriendRequests(db, ids, false)
	},
	BulkMarkReserved: database.AdminMarkListingsReserved,
	BulkMarkSold:     database.AdminMarkListingsSold,
}

func handleAdminBulkAction(c *gin.Context) {
	adminID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	command := c.PostForm("command")
	run, ok := bulkCommands[command]
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	var ids []int
	for _, raw := range c.PostFormArray("ids") {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		ids = append(ids, id)
	}

	count, err := run(db, ids)
	if err != nil {
		logger.Error("Admin bulk command failed", "admin_id", adminID, "command", command, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	logger.Info("Admin bulk command applied", "admin_id", adminID, "command", command, "selected", len(ids), "changed", count)
	c.Redirect(http.StatusFound, "/admin/")
}

func handleModerationQueue(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	reports, err := database.GetReports(db, c.Query("status"))
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin_moderation.html", gin.H{
			"Title": "Modération - Administration",
			"User":  user,
			"Error": "Impossible de charger les signalements",
		})
		return
	}

	pending, err := database.CountPendingReports(db)
	if err != nil {
		pending = 0
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin_moderation.html", gin.H{
			"Title": "Modération - Administration",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "admin_moderation.html", gin.H{
		"Title":     "Modération - Administration",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Reports":   reports,
		"Pending":   pending,
	})
}

func handleTakeOverReport(c *gin.Context) {
	moderatorID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	reportID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.TakeOverReport(db, moderatorID, reportID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/admin/moderation")
}

func handleResolveReport(c *gin.Context) {
	moderatorID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	reportID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	err = database.ResolveReport(db, moderatorID, reportID,
		c.PostForm("action_taken"), c.PostForm("comment"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/admin/moderation")
}

func handleRejectReport(c *gin.Context) {
	moderatorID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	reportID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.RejectReport(db, moderatorID, reportID, c.PostForm("comment")); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/admin/moderation")
}
