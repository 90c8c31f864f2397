package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"garderobe/internal/database"
	"garderobe/internal/models"

	"github.com/gin-gonic/gin"
)

func handleOutfits(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	outfits, err := database.GetOutfits(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "outfits.html", gin.H{
			"Title": "Mes tenues - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger les tenues",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "outfits.html", gin.H{
			"Title": "Mes tenues - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "outfits.html", gin.H{
		"Title":     "Mes tenues - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Outfits":   outfits,
	})
}

func handleNewOutfitPage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	garments, err := database.GetAllGarments(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "outfit_form.html", gin.H{
			"Title": "Nouvelle tenue - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger la garde-robe",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "outfit_form.html", gin.H{
			"Title": "Nouvelle tenue - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "outfit_form.html", gin.H{
		"Title":     "Nouvelle tenue - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Garments":  garments,
	})
}

func outfitFromForm(c *gin.Context) (models.Outfit, []int) {
	outfit := models.Outfit{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Occasion:    c.DefaultPostForm("occasion", models.OccasionCasual),
		Season:      c.DefaultPostForm("season", models.SeasonAll),
		IsFavorite:  formBool(c, "is_favorite"),
	}

	var garmentIDs []int
	for _, raw := range c.PostFormArray("garment_ids") {
		if id, err := strconv.Atoi(raw); err == nil {
			garmentIDs = append(garmentIDs, id)
		}
	}
	return outfit, garmentIDs
}

func handleCreateOutfit(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	outfit, garmentIDs := outfitFromForm(c)
	if outfit.Name == "" {
		c.HTML(http.StatusBadRequest, "outfit_form.html", gin.H{
			"Title":  "Nouvelle tenue - Ma Garde-Robe",
			"User":   user,
			"Error":  "Le nom de la tenue est requis",
			"Outfit": outfit,
		})
		return
	}

	created, err := database.CreateOutfit(db, userID, outfit, garmentIDs)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "outfit_form.html", gin.H{
			"Title":  "Nouvelle tenue - Ma Garde-Robe",
			"User":   user,
			"Error":  "Impossible d'enregistrer la tenue",
			"Outfit": outfit,
		})
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/outfits/%d", created.ID))
}

func handleOutfitDetail(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	outfitID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	outfit, err := database.GetOutfit(db, userID, outfitID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "outfit_detail.html", gin.H{
			"Title": outfit.Name + " - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "outfit_detail.html", gin.H{
		"Title":     outfit.Name + " - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Outfit":    outfit,
	})
}

func handleEditOutfitPage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	outfitID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	outfit, err := database.GetOutfit(db, userID, outfitID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	garments, err := database.GetAllGarments(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "outfit_form.html", gin.H{
			"Title": "Modifier - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger la garde-robe",
		})
		return
	}

	selected := make(map[int]bool, len(outfit.Garments))
	for _, g := range outfit.Garments {
		selected[g.ID] = true
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "outfit_form.html", gin.H{
			"Title": "Modifier - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "outfit_form.html", gin.H{
		"Title":     "Modifier " + outfit.Name + " - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Outfit":    outfit,
		"Garments":  garments,
		"Selected":  selected,
	})
}

func handleUpdateOutfit(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	outfitID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	outfit, garmentIDs := outfitFromForm(c)
	if outfit.Name == "" {
		c.HTML(http.StatusBadRequest, "outfit_form.html", gin.H{
			"Title":  "Modifier - Ma Garde-Robe",
			"User":   user,
			"Error":  "Le nom de la tenue est requis",
			"Outfit": outfit,
		})
		return
	}

	if err := database.UpdateOutfit(db, userID, outfitID, outfit, garmentIDs); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/outfits/%d", outfitID))
}

func handleDeleteOutfit(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	outfitID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.DeleteOutfit(db, userID, outfitID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/outfits")
}

func handleToggleOutfitFavorite(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	outfitID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.ToggleOutfitFavorite(db, userID, outfitID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/outfits/%d", outfitID))
}

func handleRecordOutfitWear(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	outfitID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.RecordOutfitWear(db, userID, outfitID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/outfits/%d", outfitID))
}

// handleQuickBuilderPage offers one pick per slot from the user's wardrobe,
// their friends' wardrobes and the marketplace.
func handleQuickBuilderPage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	own, err := database.GetAllGarments(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "outfit_builder.html", gin.H{
			"Title": "Créateur express - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger la garde-robe",
		})
		return
	}

	friendGarments, err := database.GetFriendGarments(db, userID)
	if err != nil {
		friendGarments = nil
	}

	listings, err := database.GetActiveListings(db)
	if err != nil {
		listings = nil
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "outfit_builder.html", gin.H{
			"Title": "Créateur express - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "outfit_builder.html", gin.H{
		"Title":          "Créateur express - Ma Garde-Robe",
		"User":           user,
		"CSRFToken":      csrfToken.Token,
		"OwnGarments":    own,
		"FriendGarments": friendGarments,
		"Listings":       listings,
	})
}

// handleQuickBuild creates an outfit from the slot picks. Garments the user
// does not own (a friend's piece, a marketplace find) are skipped without
// failing the build.
func handleQuickBuild(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	name := c.PostForm("name")
	if name == "" {
		name = "Tenue express"
	}

	var garmentIDs []int
	for _, slot := range []string{"top_id", "bottom_id", "footwear_id"} {
		if id, err := strconv.Atoi(c.PostForm(slot)); err == nil && id > 0 {
			garmentIDs = append(garmentIDs, id)
		}
	}

	if len(garmentIDs) == 0 {
		c.HTML(http.StatusBadRequest, "outfit_builder.html", gin.H{
			"Title": "Créateur express - Ma Garde-Robe",
			"User":  user,
			"Error": "Choisissez au moins un vêtement",
		})
		return
	}

	outfit := models.Outfit{
		Name:     name,
		Occasion: c.DefaultPostForm("occasion", models.OccasionCasual),
		Season:   c.DefaultPostForm("season", models.SeasonAll),
	}

	created, err := database.CreateOutfit(db, userID, outfit, garmentIDs)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "outfit_builder.html", gin.H{
			"Title": "Créateur express - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de créer la tenue",
		})
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/outfits/%d", created.ID))
}
