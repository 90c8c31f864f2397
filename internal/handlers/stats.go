package handlers

import (
	"database/sql"
	"net/http"

	"garderobe/internal/database"

	"github.com/gin-gonic/gin"
)

func handleStats(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	stats, err := database.GetWardrobeStats(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "stats.html", gin.H{
			"Title": "Statistiques - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de calculer les statistiques",
		})
		return
	}

	byCategory, err := database.GetGarmentsByCategory(db, userID)
	if err != nil {
		byCategory = nil
	}
	byColor, err := database.GetGarmentsByColor(db, userID)
	if err != nil {
		byColor = nil
	}
	bySeason, err := database.GetGarmentsBySeason(db, userID)
	if err != nil {
		bySeason = nil
	}

	histogram, err := database.GetWearHistogram(db, userID)
	if err != nil {
		histogram = nil
	}

	rotation, err := database.GetRotationRate(db, userID)
	if err != nil {
		rotation = 0
	}

	neverWorn, err := database.GetNeverWornGarments(db, userID)
	if err != nil {
		neverWorn = nil
	}
	idle, err := database.GetIdleGarments(db, userID)
	if err != nil {
		idle = nil
	}
	topWorn, err := database.GetTopWornGarments(db, userID, 10)
	if err != nil {
		topWorn = nil
	}

	c.HTML(http.StatusOK, "stats.html", gin.H{
		"Title":      "Statistiques - Ma Garde-Robe",
		"User":       user,
		"Stats":      stats,
		"ByCategory": byCategory,
		"ByColor":    byColor,
		"BySeason":   bySeason,
		"Histogram":  histogram,
		"Rotation":   rotation,
		"NeverWorn":  neverWorn,
		"Idle":       idle,
		"TopWorn":    topWorn,
	})
}
