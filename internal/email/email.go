package email

import (
	"context"
	"fmt"
	"log"
	"time"

	"garderobe/internal/config"
	"garderobe/internal/models"

	"github.com/mailgun/mailgun-go/v5"
)

type Service struct {
	client      mailgun.Mailgun
	domain      string
	senderEmail string
	senderName  string
	baseURL     string
	enabled     bool
}

func NewService(cfg *config.Config) *Service {
	enabled := cfg.MailgunDomain != "" && cfg.MailgunAPIKey != ""

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.MailgunAPIKey)
	}

	return &Service{
		client:      client,
		domain:      cfg.MailgunDomain,
		senderEmail: cfg.MailgunSenderEmail,
		senderName:  cfg.MailgunSenderName,
		baseURL:     cfg.BaseURL,
		enabled:     enabled,
	}
}

func (s *Service) IsEnabled() bool {
	return s.enabled
}

func (s *Service) send(to, subject, textBody, htmlBody string) error {
	if !s.enabled {
		return fmt.Errorf("email service is not configured")
	}

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		subject,
		textBody,
		to,
	)
	message.SetHTML(htmlBody)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	log.Printf("Email sent to %s (Message ID: %s)", to, resp)
	return nil
}

// SendActivationEmail welcomes the new user and carries the activation link.
func (s *Service) SendActivationEmail(user *models.User, activationToken string) error {
	subject := fmt.Sprintf("Bienvenue sur Ma Garde-Robe, %s !", user.Username)
	return s.send(user.Email, subject,
		s.activationText(user, activationToken),
		s.activationHTML(user, activationToken))
}

// SendWelcomeEmail greets the user once their account is activated.
func (s *Service) SendWelcomeEmail(user *models.User) error {
	subject := fmt.Sprintf("Votre compte Ma Garde-Robe est prêt, %s !", user.Username)
	return s.send(user.Email, subject,
		s.welcomeText(user),
		s.welcomeHTML(user))
}

// SendNewMessageEmail notifies the recipient of a private message.
func (s *Service) SendNewMessageEmail(recipient, sender *models.User, messageSubject string) error {
	subject := fmt.Sprintf("Nouveau message de %s", sender.Username)
	return s.send(recipient.Email, subject,
		s.newMessageText(recipient, sender, messageSubject),
		s.newMessageHTML(recipient, sender, messageSubject))
}

// SendFriendRequestEmail notifies the recipient of a pending friend request.
func (s *Service) SendFriendRequestEmail(recipient, requester *models.User) error {
	subject := fmt.Sprintf("%s souhaite devenir votre ami(e)", requester.Username)
	return s.send(recipient.Email, subject,
		s.friendRequestText(recipient, requester),
		s.friendRequestHTML(recipient, requester))
}
