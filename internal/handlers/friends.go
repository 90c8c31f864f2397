package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"garderobe/internal/database"
	emailService "garderobe/internal/email"
	"garderobe/internal/logger"
	"garderobe/internal/models"

	"github.com/gin-gonic/gin"
)

func friendshipsEnabled(db *sql.DB) bool {
	settings, err := database.GetSiteSettings(db)
	if err != nil {
		return true
	}
	return settings.FriendshipsEnabled
}

func renderFriendshipsDisabled(c *gin.Context, user interface{}) {
	c.HTML(http.StatusForbidden, "feature_disabled.html", gin.H{
		"Title":   "Amis désactivés - Ma Garde-Robe",
		"User":    user,
		"Message": "La fonctionnalité d'amis est désactivée sur ce site.",
	})
}

func renderFriendsPage(c *gin.Context, status int, extra gin.H) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	friends, err := database.GetFriends(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "friends.html", gin.H{
			"Title": "Mes amis - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger la liste d'amis",
		})
		return
	}

	incoming, err := database.GetIncomingRequests(db, userID)
	if err != nil {
		incoming = nil
	}
	outgoing, err := database.GetOutgoingRequests(db, userID)
	if err != nil {
		outgoing = nil
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "friends.html", gin.H{
			"Title": "Mes amis - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	data := gin.H{
		"Title":     "Mes amis - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Friends":   friends,
		"Incoming":  incoming,
		"Outgoing":  outgoing,
	}
	for k, v := range extra {
		data[k] = v
	}

	c.HTML(status, "friends.html", data)
}

func handleFriends(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !friendshipsEnabled(db) {
		renderFriendshipsDisabled(c, user)
		return
	}

	renderFriendsPage(c, http.StatusOK, nil)
}

func handleSendFriendRequest(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	if !friendshipsEnabled(db) {
		renderFriendshipsDisabled(c, user)
		return
	}

	username := c.PostForm("username")
	if username == "" {
		renderFriendsPage(c, http.StatusBadRequest, gin.H{"Error": "Saisissez un nom d'utilisateur"})
		return
	}

	recipient, err := database.GetUserByUsername(db, username)
	if err != nil {
		renderFriendsPage(c, http.StatusBadRequest, gin.H{"Error": "Utilisateur introuvable"})
		return
	}

	if recipient.ID == userID {
		renderFriendsPage(c, http.StatusBadRequest, gin.H{"Error": "Vous ne pouvez pas vous ajouter vous-même"})
		return
	}

	_, err = database.SendFriendRequest(db, userID, recipient.ID)
	if err != nil {
		var message string
		switch {
		case errors.Is(err, database.ErrAlreadyFriends):
			message = "Vous êtes déjà amis avec " + recipient.Username
		case errors.Is(err, database.ErrFriendRequestPending):
			message = "Une demande est déjà en attente avec " + recipient.Username
		case errors.Is(err, database.ErrFriendRequestDeclined):
			message = "Une demande précédente a été refusée"
		default:
			message = "Impossible d'envoyer la demande d'ami"
		}
		renderFriendsPage(c, http.StatusBadRequest, gin.H{"Error": message})
		return
	}

	emailSvc, _ := c.Get("email_service")
	if service, ok := emailSvc.(*emailService.Service); ok && service.IsEnabled() {
		if err := service.SendFriendRequestEmail(recipient, user); err != nil {
			logger.Warn("Failed to send friend request email",
				"recipient_id", recipient.ID,
				"error", err)
		}
	}

	renderFriendsPage(c, http.StatusOK, gin.H{"Success": "Demande envoyée à " + recipient.Username})
}

func respondToFriendRequest(c *gin.Context, accept bool) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	friendshipID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.RespondToFriendRequest(db, userID, friendshipID, accept); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/friends")
}

func handleAcceptFriendRequest(c *gin.Context)  { respondToFriendRequest(c, true) }
func handleDeclineFriendRequest(c *gin.Context) { respondToFriendRequest(c, false) }

func handleRemoveFriend(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	friendshipID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.RemoveFriendship(db, userID, friendshipID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/friends")
}

// handleFriendWardrobe shows a friend's garments, read only. Access requires
// an accepted friendship.
func handleFriendWardrobe(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !friendshipsEnabled(db) {
		renderFriendshipsDisabled(c, user)
		return
	}

	friend, err := database.GetUserByUsername(db, c.Param("username"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	areFriends, err := database.AreFriends(db, userID, friend.ID)
	if err != nil || !areFriends {
		c.HTML(http.StatusForbidden, "friend_wardrobe.html", gin.H{
			"Title": "Garde-robe - Ma Garde-Robe",
			"User":  user,
			"Error": "Vous devez être amis pour voir cette garde-robe",
		})
		return
	}

	garments, err := database.GetAllGarments(db, friend.ID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "friend_wardrobe.html", gin.H{
			"Title": "Garde-robe - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de charger la garde-robe",
		})
		return
	}

	c.HTML(http.StatusOK, "friend_wardrobe.html", gin.H{
		"Title":    "Garde-robe de " + friend.Username + " - Ma Garde-Robe",
		"User":     user,
		"Friend":   friend,
		"Garments": garments,
	})
}
