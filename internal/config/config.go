package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabasePath    string
	Port            string
	SecretKey       string
	Environment     string
	BaseURL         string
	AllowedOrigins  string
	SessionDuration time.Duration

	MailgunAPIKey      string
	MailgunDomain      string
	MailgunSenderEmail string
	MailgunSenderName  string

	StorageBackend string
	UploadsDir     string
	MediaURL       string
	SFTPHost       string
	SFTPPort       int
	SFTPUser       string
	SFTPPassword   string
	SFTPKeyPath    string
	SFTPRootPath   string
}

func Load() *Config {
	cfg := &Config{
		DatabasePath:    getEnv("DATABASE_PATH", "garderobe.db"),
		Port:            getEnv("PORT", "8080"),
		SecretKey:       getEnv("SECRET_KEY", "your-secret-key-change-this-in-production"),
		Environment:     getEnv("ENVIRONMENT", "production"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "http://localhost:8080"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 7*24*time.Hour),

		MailgunAPIKey:      getEnv("MAILGUN_API_KEY", ""),
		MailgunDomain:      getEnv("MAILGUN_DOMAIN", ""),
		MailgunSenderEmail: getEnv("MAILGUN_SENDER_EMAIL", "noreply@magarderobe.fr"),
		MailgunSenderName:  getEnv("MAILGUN_SENDER_NAME", "Ma Garde-Robe"),

		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		UploadsDir:     getEnv("UPLOADS_DIR", "uploads"),
		MediaURL:       getEnv("MEDIA_URL", "/media/"),
		SFTPHost:       getEnv("SFTP_HOST", ""),
		SFTPPort:       getEnvInt("SFTP_PORT", 22),
		SFTPUser:       getEnv("SFTP_USER", ""),
		SFTPPassword:   getEnv("SFTP_PASSWORD", ""),
		SFTPKeyPath:    getEnv("SFTP_KEY_PATH", ""),
		SFTPRootPath:   getEnv("SFTP_ROOT_PATH", "/media/garderobe"),
	}
	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
