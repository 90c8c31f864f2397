package handlers

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"garderobe/internal/database"
	"garderobe/internal/imaging"
	"garderobe/internal/logger"
	"garderobe/internal/models"
	"garderobe/internal/storage"

	"github.com/gin-gonic/gin"
)

func formInt(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.PostForm(key))
	return v
}

func formIntPtr(c *gin.Context, key string) *int {
	v, err := strconv.Atoi(c.PostForm(key))
	if err != nil || v == 0 {
		return nil
	}
	return &v
}

func formFloatPtr(c *gin.Context, key string) *float64 {
	v, err := strconv.ParseFloat(c.PostForm(key), 64)
	if err != nil {
		return nil
	}
	return &v
}

func formDatePtr(c *gin.Context, key string) *time.Time {
	t, err := time.Parse("2006-01-02", c.PostForm(key))
	if err != nil {
		return nil
	}
	return &t
}

func formBool(c *gin.Context, key string) bool {
	v := c.PostForm(key)
	return v == "on" || v == "true" || v == "1"
}

func queryInt(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.Query(key))
	return v
}

// lookups bundles the shared reference data every garment form needs.
type lookups struct {
	Categories []models.Category
	Colors     []models.Color
	Sizes      []models.Size
}

func loadLookups(db *sql.DB) (*lookups, error) {
	categories, err := database.GetCategories(db)
	if err != nil {
		return nil, err
	}
	colors, err := database.GetColors(db)
	if err != nil {
		return nil, err
	}
	sizes, err := database.GetSizes(db)
	if err != nil {
		return nil, err
	}
	return &lookups{Categories: categories, Colors: colors, Sizes: sizes}, nil
}

func handleWardrobe(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	filter := database.GarmentFilter{
		CategoryID:    queryInt(c, "category"),
		Gender:        c.Query("gender"),
		Season:        c.Query("season"),
		Condition:     c.Query("condition"),
		FavoriteOnly:  c.Query("favorites") == "1",
		NeedsWashOnly: c.Query("to_wash") == "1",
		Query:         c.Query("q"),
		Page:          queryInt(c, "page"),
	}

	garments, total, err := database.GetGarments(db, userID, filter)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "wardrobe.html", gin.H{
			"Title": "Ma garde-robe - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger la garde-robe",
		})
		return
	}

	refs, err := loadLookups(db)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "wardrobe.html", gin.H{
			"Title": "Ma garde-robe - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger les références",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "wardrobe.html", gin.H{
			"Title": "Ma garde-robe - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	totalPages := (total + database.GarmentsPerPage - 1) / database.GarmentsPerPage

	c.HTML(http.StatusOK, "wardrobe.html", gin.H{
		"Title":      "Ma garde-robe - Ma Garde-Robe",
		"User":       user,
		"CSRFToken":  csrfToken.Token,
		"Garments":   garments,
		"Total":      total,
		"Page":       page,
		"TotalPages": totalPages,
		"Filter":     filter,
		"Lookups":    refs,
	})
}

func handleNewGarmentPage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	refs, err := loadLookups(db)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "garment_form.html", gin.H{
			"Title": "Nouveau vêtement - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger les références",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "garment_form.html", gin.H{
			"Title": "Nouveau vêtement - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "garment_form.html", gin.H{
		"Title":     "Nouveau vêtement - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Lookups":   refs,
	})
}

func garmentFromForm(c *gin.Context) models.Garment {
	return models.Garment{
		Name:          c.PostForm("name"),
		Description:   c.PostForm("description"),
		CategoryID:    formInt(c, "category_id"),
		ColorID:       formIntPtr(c, "color_id"),
		SizeID:        formIntPtr(c, "size_id"),
		Brand:         c.PostForm("brand"),
		Material:      c.PostForm("material"),
		Gender:        c.DefaultPostForm("gender", models.GenderUnisex),
		Season:        c.DefaultPostForm("season", models.SeasonAll),
		Condition:     c.DefaultPostForm("condition", models.ConditionGood),
		PurchasePrice: formFloatPtr(c, "purchase_price"),
		PurchaseDate:  formDatePtr(c, "purchase_date"),
		PurchasePlace: c.PostForm("purchase_place"),
		IsFavorite:    formBool(c, "is_favorite"),
		NeedsWash:     formBool(c, "needs_wash"),
		NeedsIron:     formBool(c, "needs_iron"),
		NeedsRepair:   formBool(c, "needs_repair"),
		IsLoaned:      formBool(c, "is_loaned"),
		LoanedTo:      c.PostForm("loaned_to"),
		Location:      c.PostForm("location"),
		Notes:         c.PostForm("notes"),
	}
}

func handleCreateGarment(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	garment := garmentFromForm(c)
	if garment.Name == "" || garment.CategoryID == 0 {
		c.HTML(http.StatusBadRequest, "garment_form.html", gin.H{
			"Title":   "Nouveau vêtement - Ma Garde-Robe",
			"User":    user,
			"Error":   "Le nom et la catégorie sont requis",
			"Garment": garment,
		})
		return
	}

	settings, err := database.GetSiteSettings(db)
	if err == nil && settings.MaxGarmentsPerUser > 0 {
		count, err := database.CountGarments(db, userID)
		if err == nil && count >= settings.MaxGarmentsPerUser {
			c.HTML(http.StatusForbidden, "garment_form.html", gin.H{
				"Title": "Nouveau vêtement - Ma Garde-Robe",
				"User":  user,
				"Error": fmt.Sprintf("Vous avez atteint la limite de %d vêtements", settings.MaxGarmentsPerUser),
			})
			return
		}
	}

	created, err := database.CreateGarment(db, userID, garment)
	if err != nil {
		logger.Error("Failed to create garment", "user_id", userID, "error", err)
		c.HTML(http.StatusInternalServerError, "garment_form.html", gin.H{
			"Title":   "Nouveau vêtement - Ma Garde-Robe",
			"User":    user,
			"Error":   "Impossible d'enregistrer le vêtement",
			"Garment": garment,
		})
		return
	}

	if err := saveGarmentPhoto(c, db, userID, created.ID); err != nil {
		logger.Warn("Failed to store garment photo", "user_id", userID, "error", err)
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/wardrobe/garments/%d", created.ID))
}

// saveGarmentPhoto processes an optional multipart "photo" field and records
// the stored path on the garment. A missing field is not an error.
func saveGarmentPhoto(c *gin.Context, db *sql.DB, userID, garmentID int) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return nil
	}

	store := c.MustGet("storage").(storage.Backend)

	settings, err := database.GetSiteSettings(db)
	maxBytes := int64(5) << 20
	if err == nil && settings.MaxImageMB > 0 {
		maxBytes = int64(settings.MaxImageMB) << 20
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	data, err := imaging.Normalize(src, maxBytes)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("garments/%d/%d.jpg", userID, garmentID)
	stored, err := store.Save(name, bytes.NewReader(data))
	if err != nil {
		return err
	}

	return database.SetGarmentImage(db, userID, garmentID, stored)
}

func handleGarmentDetail(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	garmentID, err := strconv.Atoi(c.Param("id"))
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
		c.HTML(http.StatusInternalServerError, "garment_detail.html", gin.H{
			"Title": garment.Name + " - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "garment_detail.html", gin.H{
		"Title":       garment.Name + " - Ma Garde-Robe",
		"User":        user,
		"CSRFToken":   csrfToken.Token,
		"Garment":     garment,
		"CostPerWear": garment.CostPerWear(),
		"RarelyWorn":  garment.RarelyWorn(),
	})
}

func handleEditGarmentPage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	garmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	garment, err := database.GetGarment(db, userID, garmentID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	refs, err := loadLookups(db)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "garment_form.html", gin.H{
			"Title": "Modifier - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger les références",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "garment_form.html", gin.H{
			"Title": "Modifier - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "garment_form.html", gin.H{
		"Title":     "Modifier " + garment.Name + " - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Garment":   garment,
		"Lookups":   refs,
	})
}

func handleUpdateGarment(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	garmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	garment := garmentFromForm(c)
	if garment.Name == "" || garment.CategoryID == 0 {
		c.HTML(http.StatusBadRequest, "garment_form.html", gin.H{
			"Title":   "Modifier - Ma Garde-Robe",
			"User":    user,
			"Error":   "Le nom et la catégorie sont requis",
			"Garment": garment,
		})
		return
	}

	if err := database.UpdateGarment(db, userID, garmentID, garment); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := saveGarmentPhoto(c, db, userID, garmentID); err != nil {
		logger.Warn("Failed to store garment photo", "user_id", userID, "error", err)
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/wardrobe/garments/%d", garmentID))
}

func handleDeleteGarment(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	garmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	garment, err := database.GetGarment(db, userID, garmentID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.DeleteGarment(db, userID, garmentID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if garment.ImagePath != "" {
		store := c.MustGet("storage").(storage.Backend)
		if err := store.Delete(garment.ImagePath); err != nil {
			logger.Warn("Failed to delete garment photo", "user_id", userID, "error", err)
		}
	}

	c.Redirect(http.StatusFound, "/wardrobe")
}

func handleToggleGarmentFavorite(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	garmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.ToggleGarmentFavorite(db, userID, garmentID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/wardrobe/garments/%d", garmentID))
}

func handleRecordGarmentWear(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	garmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.RecordGarmentWear(db, userID, garmentID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/wardrobe/garments/%d", garmentID))
}

func handleUploadGarmentPhoto(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	garmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if _, err := database.GetGarment(db, userID, garmentID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := saveGarmentPhoto(c, db, userID, garmentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/wardrobe/garments/%d", garmentID))
}

func handleMaintenanceQueue(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	queue, err := database.GetMaintenanceQueue(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "maintenance.html", gin.H{
			"Title": "Entretien - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger la file d'entretien",
		})
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "maintenance.html", gin.H{
			"Title": "Entretien - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "maintenance.html", gin.H{
		"Title":     "Entretien - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Queue":     queue,
	})
}

func maintenanceAction(c *gin.Context, action func(*sql.DB, int, int) error) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	garmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := action(db, userID, garmentID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/wardrobe/maintenance")
}

func handleMarkWashed(c *gin.Context)   { maintenanceAction(c, database.MarkGarmentWashed) }
func handleMarkIroned(c *gin.Context)   { maintenanceAction(c, database.MarkGarmentIroned) }
func handleMarkRepaired(c *gin.Context) { maintenanceAction(c, database.MarkGarmentRepaired) }
func handleFlagForWash(c *gin.Context)  { maintenanceAction(c, database.FlagGarmentForWash) }
