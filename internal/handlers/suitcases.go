package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"garderobe/internal/database"
	"garderobe/internal/models"

	"github.com/gin-gonic/gin"
)

var validSuitcaseStatuses = map[string]bool{
	models.SuitcasePreparing: true,
	models.SuitcaseReady:     true,
	models.SuitcaseTraveling: true,
	models.SuitcaseDone:      true,
}

func handleSuitcases(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	suitcases, err := database.GetSuitcases(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "suitcases.html", gin.H{
			"Title": "Mes valises - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger les valises",
		})
		return
	}

	var upcoming, ongoing, past []models.Suitcase
	for _, s := range suitcases {
		switch {
		case s.IsOngoing():
			ongoing = append(ongoing, s)
		case s.IsPast():
			past = append(past, s)
		default:
			upcoming = append(upcoming, s)
		}
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "suitcases.html", gin.H{
			"Title": "Mes valises - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "suitcases.html", gin.H{
		"Title":     "Mes valises - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Upcoming":  upcoming,
		"Ongoing":   ongoing,
		"Past":      past,
	})
}

func handleNewSuitcasePage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "suitcase_form.html", gin.H{
			"Title": "Nouvelle valise - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "suitcase_form.html", gin.H{
		"Title":     "Nouvelle valise - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
	})
}

// suitcaseFromForm parses the shared create/edit form. The error message is
// user-facing and empty when the form is valid.
func suitcaseFromForm(c *gin.Context) (models.Suitcase, string) {
	s := models.Suitcase{
		Name:        c.PostForm("name"),
		Destination: c.PostForm("destination"),
		TripType:    c.DefaultPostForm("trip_type", models.TripHoliday),
		Climate:     c.DefaultPostForm("climate", models.ClimateMild),
		ExtraItems:  c.PostForm("extra_items"),
		MaxWeightKg: formFloatPtr(c, "max_weight_kg"),
	}

	if s.Name == "" {
		return s, "Le nom de la valise est requis"
	}

	departure, err := time.Parse("2006-01-02", c.PostForm("departure_date"))
	if err != nil {
		return s, "La date de départ est invalide"
	}
	ret, err := time.Parse("2006-01-02", c.PostForm("return_date"))
	if err != nil {
		return s, "La date de retour est invalide"
	}
	if !ret.After(departure) {
		return s, "La date de retour doit être après la date de départ"
	}

	s.DepartureDate = departure
	s.ReturnDate = ret
	return s, ""
}

// departureInPast compares the date part of the departure against the local
// date of now. Form dates parse as UTC midnight, so both sides are rebuilt
// from their year/month/day before comparing.
func departureInPast(departure, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dep := time.Date(departure.Year(), departure.Month(), departure.Day(), 0, 0, 0, 0, time.UTC)
	return dep.Before(today)
}

func handleCreateSuitcase(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	s, formErr := suitcaseFromForm(c)
	if formErr == "" && departureInPast(s.DepartureDate, time.Now()) {
		formErr = "La date de départ est déjà passée"
	}
	if formErr != "" {
		c.HTML(http.StatusBadRequest, "suitcase_form.html", gin.H{
			"Title":    "Nouvelle valise - Ma Garde-Robe",
			"User":     user,
			"Error":    formErr,
			"Suitcase": s,
		})
		return
	}

	created, err := database.CreateSuitcase(db, userID, s)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "suitcase_form.html", gin.H{
			"Title":    "Nouvelle valise - Ma Garde-Robe",
			"User":     user,
			"Error":    "Impossible de créer la valise",
			"Suitcase": s,
		})
		return
	}

	c.Redirect(http.StatusFound, "/suitcases/"+created.ID+"/contents")
}

func handleSuitcaseDetail(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	suitcase, err := database.GetSuitcase(db, userID, c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	stats, err := database.GetPackingStats(db, suitcase.ID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "suitcase_detail.html", gin.H{
			"Title": suitcase.Name + " - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de calculer l'avancement",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "suitcase_detail.html", gin.H{
			"Title": suitcase.Name + " - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	overweight := suitcase.MaxWeightKg != nil && stats.WeightKg > *suitcase.MaxWeightKg

	c.HTML(http.StatusOK, "suitcase_detail.html", gin.H{
		"Title":      suitcase.Name + " - Ma Garde-Robe",
		"User":       user,
		"CSRFToken":  csrfToken.Token,
		"Suitcase":   suitcase,
		"Stats":      stats,
		"Overweight": overweight,
	})
}

func handleEditSuitcasePage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	suitcase, err := database.GetSuitcase(db, userID, c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "suitcase_form.html", gin.H{
			"Title": "Modifier - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "suitcase_form.html", gin.H{
		"Title":     "Modifier " + suitcase.Name + " - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Suitcase":  suitcase,
	})
}

func handleUpdateSuitcase(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")
	suitcaseID := c.Param("id")

	s, formErr := suitcaseFromForm(c)
	if formErr != "" {
		c.HTML(http.StatusBadRequest, "suitcase_form.html", gin.H{
			"Title":    "Modifier - Ma Garde-Robe",
			"User":     user,
			"Error":    formErr,
			"Suitcase": s,
		})
		return
	}

	if err := database.UpdateSuitcase(db, userID, suitcaseID, s); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/suitcases/"+suitcaseID)
}

func handleDeleteSuitcase(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	if err := database.DeleteSuitcase(db, userID, c.Param("id")); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/suitcases")
}

func handleUpdateSuitcaseStatus(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	suitcaseID := c.Param("id")

	status := c.PostForm("status")
	if !validSuitcaseStatuses[status] {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := database.UpdateSuitcaseStatus(db, userID, suitcaseID, status); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/suitcases/"+suitcaseID)
}

func handleCopySuitcase(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")
	sourceID := c.Param("id")

	name := c.PostForm("name")
	departure, errD := time.Parse("2006-01-02", c.PostForm("departure_date"))
	ret, errR := time.Parse("2006-01-02", c.PostForm("return_date"))
	if name == "" || errD != nil || errR != nil || !ret.After(departure) {
		c.HTML(http.StatusBadRequest, "suitcases.html", gin.H{
			"Title": "Mes valises - Ma Garde-Robe",
			"User":  user,
			"Error": "Nom et dates valides requis pour dupliquer une valise",
		})
		return
	}

	copied, err := database.CopySuitcase(db, userID, sourceID, name, departure, ret)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/suitcases/"+copied.ID)
}

func handleEditSuitcaseContentsPage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	suitcase, err := database.GetSuitcase(db, userID, c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	garments, err := database.GetAllGarments(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "suitcase_contents.html", gin.H{
			"Title": "Contenu - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger la garde-robe",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "suitcase_contents.html", gin.H{
			"Title": "Contenu - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "suitcase_contents.html", gin.H{
		"Title":     "Contenu de " + suitcase.Name + " - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Suitcase":  suitcase,
		"Garments":  garments,
	})
}

func handleReplaceSuitcaseContents(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	suitcaseID := c.Param("id")

	var items []models.PackingItem
	for i, raw := range c.PostFormArray("garment_ids") {
		garmentID, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		weight, _ := strconv.Atoi(formValueAt(c, "weights", i))
		items = append(items, models.PackingItem{
			GarmentID:   garmentID,
			Category:    formValueAt(c, "categories", i),
			WeightGrams: weight,
			Note:        formValueAt(c, "notes", i),
		})
	}

	if err := database.ReplaceSuitcaseContents(db, userID, suitcaseID, items); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/suitcases/"+suitcaseID)
}

func formValueAt(c *gin.Context, key string, i int) string {
	values := c.PostFormArray(key)
	if i < len(values) {
		return values[i]
	}
	return ""
}

func handleAddPackingItems(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	suitcaseID := c.Param("id")

	var garmentIDs []int
	for _, raw := range c.PostFormArray("garment_ids") {
		if id, err := strconv.Atoi(raw); err == nil {
			garmentIDs = append(garmentIDs, id)
		}
	}

	if err := database.AddPackingItems(db, userID, suitcaseID, garmentIDs, c.PostForm("category")); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/suitcases/"+suitcaseID)
}

// handleTogglePackingItem answers the checklist's AJAX call with the new
// packed state and refreshed aggregates. The renewal token set by the CSRF
// middleware rides along so the client can fire again without a reload.
func handleTogglePackingItem(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	suitcaseID := c.Param("id")

	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Élément introuvable"})
		return
	}

	packed, stats, err := database.TogglePackingItem(db, userID, suitcaseID, itemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Élément introuvable"})
		return
	}

	response := gin.H{
		"success": true,
		"packed":  packed,
		"stats": gin.H{
			"total":      stats.Total,
			"packed":     stats.Packed,
			"percentage": stats.Percentage,
			"weight_kg":  stats.WeightKg,
		},
	}
	if newToken, exists := c.Get("new_csrf_token"); exists {
		response["csrf_token"] = newToken
	}

	c.JSON(http.StatusOK, response)
}

func handleRemovePackingItem(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	suitcaseID := c.Param("id")

	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.RemovePackingItem(db, userID, suitcaseID, itemID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/suitcases/"+suitcaseID+"/contents")
}
