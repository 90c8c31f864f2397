package handlers

import (
	"database/sql"
	"net/http"
	"regexp"
	"strings"

	"garderobe/internal/config"
	"garderobe/internal/database"
	emailService "garderobe/internal/email"
	"garderobe/internal/logger"
	"garderobe/internal/models"

	"github.com/gin-gonic/gin"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func handleRegisterPage(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	registrationOpen, err := database.IsRegistrationOpen(db)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{
			"Title": "Inscription - Ma Garde-Robe",
			"Error": "Impossible de vérifier l'état des inscriptions",
		})
		return
	}

	c.HTML(http.StatusOK, "register.html", gin.H{
		"Title":            "Inscription - Ma Garde-Robe",
		"RegistrationOpen": registrationOpen,
	})
}

func handleRegister(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	registrationOpen, err := database.IsRegistrationOpen(db)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{
			"Title": "Inscription - Ma Garde-Robe",
			"Error": "Impossible de vérifier l'état des inscriptions",
		})
		return
	}

	if !registrationOpen {
		c.HTML(http.StatusForbidden, "register.html", gin.H{
			"Title":            "Inscription - Ma Garde-Robe",
			"RegistrationOpen": false,
			"Error":            "Les inscriptions sont actuellement fermées",
		})
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirmPassword := c.PostForm("confirm_password")

	errors := make(map[string]string)

	if len(username) < 3 || len(username) > 30 {
		errors["username"] = "Le nom d'utilisateur doit contenir entre 3 et 30 caractères"
	}

	if !emailRegex.MatchString(email) {
		errors["email"] = "Merci de saisir une adresse email valide"
	}

	if len(password) < 8 {
		errors["password"] = "Le mot de passe doit contenir au moins 8 caractères"
	}

	if password != confirmPassword {
		errors["confirm_password"] = "Les mots de passe ne correspondent pas"
	}

	if len(errors) > 0 {
		c.HTML(http.StatusBadRequest, "register.html", gin.H{
			"Title":            "Inscription - Ma Garde-Robe",
			"Errors":           errors,
			"Username":         username,
			"Email":            email,
			"RegistrationOpen": true,
		})
		return
	}

	user, err := database.CreateUser(db, username, email, password)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			errors["general"] = "Un compte existe déjà avec ces identifiants"
		} else {
			errors["general"] = "Impossible de créer le compte. Merci de réessayer."
		}

		c.HTML(http.StatusBadRequest, "register.html", gin.H{
			"Title":            "Inscription - Ma Garde-Robe",
			"Errors":           errors,
			"RegistrationOpen": true,
		})
		return
	}

	activationToken, err := database.CreateActivationToken(db, user.ID)
	if err != nil {
		logger.Error("Failed to create activation token",
			"email", user.Email,
			"user_id", user.ID,
			"error", err)
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{
			"Title":            "Inscription - Ma Garde-Robe",
			"Errors":           map[string]string{"general": "Impossible de finaliser l'inscription. Merci de réessayer."},
			"RegistrationOpen": true,
		})
		return
	}

	emailSvc, _ := c.Get("email_service")
	if service, ok := emailSvc.(*emailService.Service); ok && service.IsEnabled() {
		if err := service.SendActivationEmail(user, activationToken.Token); err != nil {
			logger.Warn("Failed to send activation email",
				"email", user.Email,
				"user_id", user.ID,
				"error", err)
		}
	}

	c.HTML(http.StatusOK, "register.html", gin.H{
		"Title":            "Inscription terminée - Ma Garde-Robe",
		"Success":          "Inscription réussie ! Consultez votre boîte mail et cliquez sur le lien d'activation pour finaliser votre compte.",
		"RegistrationOpen": true,
	})
}

func handleLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Title": "Connexion - Ma Garde-Robe",
	})
}

func handleLogin(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	errors := make(map[string]string)

	if email == "" {
		errors["email"] = "L'adresse email est requise"
	}

	if password == "" {
		errors["password"] = "Le mot de passe est requis"
	}

	if len(errors) > 0 {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"Title":  "Connexion - Ma Garde-Robe",
			"Errors": errors,
			"Email":  email,
		})
		return
	}

	db := c.MustGet("db").(*sql.DB)

	user, err := database.AuthenticateUser(db, email, password)
	if err != nil {
		errors["general"] = "Email ou mot de passe invalide"
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"Title":  "Connexion - Ma Garde-Robe",
			"Errors": errors,
			"Email":  email,
		})
		return
	}

	// A banned or suspended user cannot open a session
	sanction, err := database.ActiveSanction(db, user.ID)
	if err != nil {
		logger.Error("Failed to check sanctions", "user_id", user.ID, "error", err)
	}
	if sanction != nil {
		message := "Votre compte a été banni."
		if sanction.ActionType == models.ActionSuspension && sanction.EndsAt != nil {
			message = "Votre compte est suspendu jusqu'au " + sanction.EndsAt.Format("02/01/2006") + "."
		}
		c.HTML(http.StatusForbidden, "login.html", gin.H{
			"Title":  "Connexion - Ma Garde-Robe",
			"Errors": map[string]string{"general": message},
		})
		return
	}

	cfg := c.MustGet("config").(*config.Config)
	session, err := database.CreateSession(db, user.ID, cfg.SessionDuration)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"Title":  "Connexion - Ma Garde-Robe",
			"Errors": map[string]string{"general": "Impossible de créer la session. Merci de réessayer."},
		})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	// Cookie expiry matches the session duration
	cookieMaxAge := int(cfg.SessionDuration.Seconds())
	c.SetCookie("session_id", session.ID, cookieMaxAge, "/", "", true, true)

	if user.IsAdmin {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

func handleLogout(c *gin.Context) {
	sessionCookie, err := c.Cookie("session_id")
	if err == nil {
		db := c.MustGet("db").(*sql.DB)
		database.DeleteSession(db, sessionCookie)
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("session_id", "", -1, "/", "", true, true)
	c.Redirect(http.StatusFound, "/")
}

func handleCSRFToken(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)

	token, err := database.CreateCSRFToken(db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate CSRF token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token.Token})
}

func handleActivate(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.HTML(http.StatusBadRequest, "activation_result.html", gin.H{
			"Title":   "Lien invalide - Ma Garde-Robe",
			"Success": false,
			"Message": "Lien d'activation invalide. Vérifiez le lien reçu par email et réessayez.",
		})
		return
	}

	db := c.MustGet("db").(*sql.DB)

	user, err := database.ValidateActivationToken(db, token)
	if err != nil {
		logger.Warn("Failed to validate activation token",
			"token", token,
			"error", err)
		c.HTML(http.StatusBadRequest, "activation_result.html", gin.H{
			"Title":   "Activation échouée - Ma Garde-Robe",
			"Success": false,
			"Message": "Ce lien d'activation est invalide ou a expiré. Inscrivez-vous à nouveau ou contactez le support.",
		})
		return
	}

	if user.IsActivated {
		c.HTML(http.StatusOK, "activation_result.html", gin.H{
			"Title":   "Compte déjà activé - Ma Garde-Robe",
			"Success": true,
			"Message": "Votre compte est déjà activé ! Vous pouvez vous connecter.",
		})
		return
	}

	err = database.ActivateUser(db, user.ID, token)
	if err != nil {
		logger.Error("Failed to activate user",
			"user_id", user.ID,
			"token", token,
			"error", err)
		c.HTML(http.StatusInternalServerError, "activation_result.html", gin.H{
			"Title":   "Erreur d'activation - Ma Garde-Robe",
			"Success": false,
			"Message": "Une erreur est survenue pendant l'activation. Réessayez ou contactez le support.",
		})
		return
	}

	logger.Info("User successfully activated",
		"email", user.Email,
		"user_id", user.ID)

	emailSvc, _ := c.Get("email_service")
	if service, ok := emailSvc.(*emailService.Service); ok && service.IsEnabled() {
		if err := service.SendWelcomeEmail(user); err != nil {
			logger.Warn("Failed to send welcome email",
				"email", user.Email,
				"user_id", user.ID,
				"error", err)
		}
	}

	c.HTML(http.StatusOK, "activation_result.html", gin.H{
		"Title":           "Compte activé - Ma Garde-Robe",
		"Success":         true,
		"Message":         "Félicitations ! Votre compte est activé. Vous pouvez maintenant profiter de toutes les fonctionnalités.",
		"ShowLoginButton": true,
	})
}

func handleResendActivation(c *gin.Context) {
	userID := c.MustGet("user_id").(int)
	db := c.MustGet("db").(*sql.DB)
	user := c.MustGet("user").(*models.User)

	if user.IsActivated {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	activationToken, err := database.ResendActivationToken(db, userID)
	if err != nil {
		logger.Error("Failed to resend activation token",
			"user_id", userID,
			"error", err)
		c.HTML(http.StatusInternalServerError, "activation_result.html", gin.H{
			"Title":   "Erreur - Ma Garde-Robe",
			"Success": false,
			"Message": "Impossible de renvoyer le lien d'activation. Merci de réessayer.",
		})
		return
	}

	emailSvc, _ := c.Get("email_service")
	if service, ok := emailSvc.(*emailService.Service); ok && service.IsEnabled() {
		if err := service.SendActivationEmail(user, activationToken.Token); err != nil {
			logger.Warn("Failed to send activation email",
				"email", user.Email,
				"user_id", user.ID,
				"error", err)
		}
	}

	c.HTML(http.StatusOK, "activation_result.html", gin.H{
		"Title":   "Email envoyé - Ma Garde-Robe",
		"Success": true,
		"Message": "Un nouveau lien d'activation vient de vous être envoyé par email.",
	})
}
