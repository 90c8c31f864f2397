package email

import (
	"strings"
	"testing"

	"garderobe/internal/models"
)

func TestWelcomeEmailBody(t *testing.T) {
	service := &Service{baseURL: "https://garderobe.example.com"}
	user := &models.User{Username: "claire", Email: "claire@example.com"}

	text := service.welcomeText(user)
	if !strings.Contains(text, "claire") {
		t.Error("Expected the text body to greet the user by name")
	}
	if !strings.Contains(text, "https://garderobe.example.com/dashboard") {
		t.Error("Expected the text body to link to the dashboard")
	}

	html := service.welcomeHTML(user)
	if !strings.Contains(html, "claire@example.com") {
		t.Error("Expected the HTML body to name the recipient address")
	}
	if strings.Contains(html, "/activate/") {
		t.Error("Expected no activation link in the welcome mail")
	}
}

func TestSendWelcomeEmailRequiresConfiguration(t *testing.T) {
	service := &Service{}
	user := &models.User{Username: "claire", Email: "claire@example.com"}

	if err := service.SendWelcomeEmail(user); err == nil {
		t.Error("Expected an error when the service is not configured")
	}
}
