package handlers

import (
	"database/sql"
	"net/http"

	"garderobe/internal/database"
	"garderobe/internal/models"

	"github.com/gin-gonic/gin"
)

// handleCreateReport lets any user flag content. The redirect target comes
// from the form so the reporter lands back where they were.
func handleCreateReport(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	report := models.ModerationReport{
		ContentType: c.PostForm("content_type"),
		ObjectID:    formInt(c, "object_id"),
		Reason:      c.PostForm("reason"),
		Description: c.PostForm("description"),
	}
	if reportedID := formIntPtr(c, "reported_user_id"); reportedID != nil {
		report.ReportedUserID = reportedID
	}

	if report.ContentType == "" || report.Reason == "" {
		c.HTML(http.StatusBadRequest, "report_result.html", gin.H{
			"Title": "Signalement - Ma Garde-Robe",
			"User":  user,
			"Error": "Le type de contenu et le motif sont requis",
		})
		return
	}

	if _, err := database.CreateReport(db, userID, report); err != nil {
		c.HTML(http.StatusInternalServerError, "report_result.html", gin.H{
			"Title": "Signalement - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible d'enregistrer le signalement",
		})
		return
	}

	redirect := c.PostForm("redirect")
	if redirect == "" || redirect[0] != '/' {
		redirect = "/dashboard"
	}
	c.Redirect(http.StatusFound, redirect)
}
