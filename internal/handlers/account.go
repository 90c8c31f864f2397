package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"garderobe/internal/database"
	"garderobe/internal/models"

	"github.com/gin-gonic/gin"
)

func handleAccountPage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "account.html", gin.H{
			"Title": "Mon compte - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "account.html", gin.H{
		"Title":     "Mon compte - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
	})
}

func handleChangePassword(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	currentPassword := strings.TrimSpace(c.PostForm("current_password"))
	newPassword := strings.TrimSpace(c.PostForm("new_password"))
	confirmPassword := strings.TrimSpace(c.PostForm("confirm_password"))

	if currentPassword == "" || newPassword == "" || confirmPassword == "" {
		c.HTML(http.StatusBadRequest, "account.html", gin.H{
			"Title": "Mon compte - Ma Garde-Robe",
			"User":  user,
			"Error": "Tous les champs sont requis",
		})
		return
	}

	if newPassword != confirmPassword {
		c.HTML(http.StatusBadRequest, "account.html", gin.H{
			"Title": "Mon compte - Ma Garde-Robe",
			"User":  user,
			"Error": "Les nouveaux mots de passe ne correspondent pas",
		})
		return
	}

	if len(newPassword) < 8 {
		c.HTML(http.StatusBadRequest, "account.html", gin.H{
			"Title": "Mon compte - Ma Garde-Robe",
			"User":  user,
			"Error": "Le nouveau mot de passe doit contenir au moins 8 caractères",
		})
		return
	}

	err := database.VerifyPassword(db, userID, currentPassword)
	if err != nil {
		c.HTML(http.StatusBadRequest, "account.html", gin.H{
			"Title": "Mon compte - Ma Garde-Robe",
			"User":  user,
			"Error": "Le mot de passe actuel est incorrect",
		})
		return
	}

	err = database.UpdatePassword(db, userID, newPassword)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "account.html", gin.H{
			"Title": "Mon compte - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de mettre à jour le mot de passe",
		})
		return
	}

	c.HTML(http.StatusOK, "account.html", gin.H{
		"Title":   "Mon compte - Ma Garde-Robe",
		"User":    user,
		"Success": "Mot de passe mis à jour",
	})
}

func handleChangeUsername(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	username := strings.TrimSpace(c.PostForm("username"))

	if len(username) < 3 || len(username) > 30 {
		c.HTML(http.StatusBadRequest, "account.html", gin.H{
			"Title": "Mon compte - Ma Garde-Robe",
			"User":  user,
			"Error": "Le nom d'utilisateur doit contenir entre 3 et 30 caractères",
		})
		return
	}

	err := database.UpdateUsername(db, userID, username)
	if err != nil {
		message := "Impossible de mettre à jour le nom d'utilisateur"
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			message = "Ce nom d'utilisateur est déjà pris"
		}
		c.HTML(http.StatusBadRequest, "account.html", gin.H{
			"Title": "Mon compte - Ma Garde-Robe",
			"User":  user,
			"Error": message,
		})
		return
	}

	user.Username = username
	c.HTML(http.StatusOK, "account.html", gin.H{
		"Title":   "Mon compte - Ma Garde-Robe",
		"User":    user,
		"Success": "Nom d'utilisateur mis à jour",
	})
}
