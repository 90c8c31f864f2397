package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"garderobe/internal/database"
	emailService "garderobe/internal/email"
	"garderobe/internal/logger"
	"garderobe/internal/models"

	"github.com/gin-gonic/gin"
)

// messagesEnabled reads the kill switch from the site settings. A read
// failure keeps the feature on rather than locking everyone out.
func messagesEnabled(db *sql.DB) bool {
	settings, err := database.GetSiteSettings(db)
	if err != nil {
		return true
	}
	return settings.MessagesEnabled
}

func renderMessagesDisabled(c *gin.Context, user interface{}) {
	c.HTML(http.StatusForbidden, "feature_disabled.html", gin.H{
		"Title":   "Messagerie désactivée - Ma Garde-Robe",
		"User":    user,
		"Message": "La messagerie est désactivée sur ce site.",
	})
}

func messageListPage(c *gin.Context, template, title string, load func(*sql.DB, int) ([]models.Message, error)) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !messagesEnabled(db) {
		renderMessagesDisabled(c, user)
		return
	}

	messages, err := load(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, template, gin.H{
			"Title": title,
			"User":  user,
			"Error": "Impossible de charger les messages",
		})
		return
	}

	unread, err := database.UnreadMessageCount(db, userID)
	if err != nil {
		unread = 0
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
		"Title":     title,
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Messages":  messages,
		"Unread":    unread,
	})
}

func handleInbox(c *gin.Context) {
	messageListPage(c, "inbox.html", "Messagerie - Ma Garde-Robe", database.GetInbox)
}

func handleSentMessages(c *gin.Context) {
	messageListPage(c, "messages_sent.html", "Messages envoyés - Ma Garde-Robe", database.GetSentMessages)
}

func handleArchivedMessages(c *gin.Context) {
	messageListPage(c, "messages_archived.html", "Messages archivés - Ma Garde-Robe", database.GetArchivedMessages)
}

func handleComposePage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !messagesEnabled(db) {
		renderMessagesDisabled(c, user)
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "message_compose.html", gin.H{
			"Title": "Nouveau message - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	data := gin.H{
		"Title":     "Nouveau message - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Recipient": c.Query("to"),
	}

	// Pre-fill subject and recipient when replying
	if replyTo, err := strconv.Atoi(c.Query("reply_to")); err == nil {
		if original, err := database.GetMessage(db, userID, replyTo); err == nil {
			data["ReplyTo"] = original
			subject := original.Subject
			if len(subject) < 4 || subject[:4] != "Re: " {
				subject = "Re: " + subject
			}
			data["Subject"] = subject
			if original.Sender != nil {
				data["Recipient"] = original.Sender.Username
			}
		}
	}

	c.HTML(http.StatusOK, "message_compose.html", data)
}

func handleSendMessage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	if !messagesEnabled(db) {
		renderMessagesDisabled(c, user)
		return
	}

	recipientName := c.PostForm("recipient")
	subject := c.PostForm("subject")
	body := c.PostForm("body")

	if recipientName == "" || subject == "" || body == "" {
		c.HTML(http.StatusBadRequest, "message_compose.html", gin.H{
			"Title":   "Nouveau message - Ma Garde-Robe",
			"User":    user,
			"Error":   "Destinataire, sujet et message sont requis",
			"Subject": subject,
			"Body":    body,
		})
		return
	}

	recipient, err := database.GetUserByUsername(db, recipientName)
	if err != nil {
		c.HTML(http.StatusBadRequest, "message_compose.html", gin.H{
			"Title":   "Nouveau message - Ma Garde-Robe",
			"User":    user,
			"Error":   "Destinataire introuvable",
			"Subject": subject,
			"Body":    body,
		})
		return
	}

	if recipient.ID == userID {
		c.HTML(http.StatusBadRequest, "message_compose.html", gin.H{
			"Title":   "Nouveau message - Ma Garde-Robe",
			"User":    user,
			"Error":   "Vous ne pouvez pas vous envoyer un message à vous-même",
			"Subject": subject,
			"Body":    body,
		})
		return
	}

	var replyToID *int
	if id, err := strconv.Atoi(c.PostForm("reply_to_id")); err == nil && id > 0 {
		replyToID = &id
	}

	message, err := database.SendMessage(db, userID, recipient.ID, subject, body, replyToID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "message_compose.html", gin.H{
			"Title":   "Nouveau message - Ma Garde-Robe",
			"User":    user,
			"Error":   "Impossible d'envoyer le message",
			"Subject": subject,
			"Body":    body,
		})
		return
	}

	emailSvc, _ := c.Get("email_service")
	if service, ok := emailSvc.(*emailService.Service); ok && service.IsEnabled() {
		if err := service.SendNewMessageEmail(recipient, user, subject); err != nil {
			logger.Warn("Failed to send message notification email",
				"recipient_id", recipient.ID,
				"error", err)
		}
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/messages/%d", message.ID))
}

func handleMessageDetail(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user")

	if !messagesEnabled(db) {
		renderMessagesDisabled(c, user)
		return
	}

	messageID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	message, err := database.GetMessage(db, userID, messageID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	csrfToken, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "message_detail.html", gin.H{
			"Title": message.Subject + " - Ma Garde-Robe",
			"User":  user,
			"Error": "Impossible de générer le jeton de sécurité",
		})
		return
	}

	c.HTML(http.StatusOK, "message_detail.html", gin.H{
		"Title":     message.Subject + " - Ma Garde-Robe",
		"User":      user,
		"CSRFToken": csrfToken.Token,
		"Message":   message,
	})
}

func handleArchiveMessage(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	messageID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := database.ArchiveMessage(db, userID, messageID); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, "/messages")
}
