package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"garderobe/internal/config"
	"garderobe/internal/database"
	"garderobe/internal/email"
	"garderobe/internal/handlers"
	"garderobe/internal/middleware"
	"garderobe/internal/models"
	"garderobe/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	emailService := email.NewService(cfg)
	if emailService.IsEnabled() {
		log.Println("Email service enabled with Mailgun")
	} else {
		log.Println("Email service disabled - Mailgun not configured")
	}

	store, err := storage.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage backend:", err)
	}
	log.Printf("Storage backend: %s", cfg.StorageBackend)

	r := gin.Default()

	funcMap := template.FuncMap{
		"jsonify": func(v interface{}) template.JS {
			bytes, _ := json.Marshal(v)
			return template.JS(bytes)
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"groupByPackingCategory": func(items []models.PackingItem) map[string][]models.PackingItem {
			groups := make(map[string][]models.PackingItem)
			for _, item := range items {
				groups[item.Category] = append(groups[item.Category], item)
			}
			return groups
		},
		"groupGarmentsByCategory": func(garments []models.Garment) map[string][]models.Garment {
			groups := make(map[string][]models.Garment)
			for _, garment := range garments {
				name := "Sans catégorie"
				if garment.Category != nil {
					name = garment.Category.Name
				}
				groups[name] = append(groups[name], garment)
			}
			return groups
		},
		"redactEmail": func(email string) string {
			parts := strings.Split(email, "@")
			if len(parts) != 2 {
				return email
			}

			prefix := parts[0]
			if len(prefix) <= 2 {
				return email
			}

			return string(prefix[0]) + "***" + string(prefix[len(prefix)-1]) + "@" + parts[1]
		},
		"sequence": func(n int) []int {
			result := make([]int, n)
			for i := 0; i < n; i++ {
				result[i] = i
			}
			return result
		},
		"euros": func(v float64) string {
			return fmt.Sprintf("%.2f €", v)
		},
		"weightKg": func(grams int) string {
			return fmt.Sprintf("%.1f kg", float64(grams)/1000.0)
		},
		"timeAgo": func(t time.Time) string {
			duration := time.Since(t)

			if duration.Minutes() < 1 {
				return "À l'instant"
			} else if duration.Hours() < 1 {
				minutes := int(duration.Minutes())
				if minutes == 1 {
					return "Il y a 1 minute"
				}
				return fmt.Sprintf("Il y a %d minutes", minutes)
			} else if duration.Hours() < 24 {
				hours := int(duration.Hours())
				if hours == 1 {
					return "Il y a 1 heure"
				}
				return fmt.Sprintf("Il y a %d heures", hours)
			} else if duration.Hours() < 48 {
				return "Hier"
			} else if duration.Hours() < 168 {
				return fmt.Sprintf("Il y a %d jours", int(duration.Hours()/24))
			}
			return t.Format("02/01/2006")
		},
	}

	r.SetFuncMap(funcMap)
	r.LoadHTMLGlob("templates/*.html")
	r.Static("/static", "./static")

	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg))
	r.Use(middleware.IPBlocker(cfg))
	r.Use(middleware.Track404AndBlock(cfg))

	handlers.SetupRoutes(r, db, cfg, emailService, store)

	go cleanupLoop(db)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(r.Run(":" + cfg.Port))
}

// cleanupLoop purges expired sessions and tokens once an hour.
func cleanupLoop(db *sql.DB) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := database.CleanupExpiredSessions(db); err != nil {
			log.Printf("Session cleanup failed: %v", err)
		}
		if err := database.CleanupExpiredCSRFTokens(db); err != nil {
			log.Printf("CSRF token cleanup failed: %v", err)
		}
		if err := database.CleanupExpiredActivationTokens(db); err != nil {
			log.Printf("Activation token cleanup failed: %v", err)
		}
	}
}
