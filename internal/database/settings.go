package database

import (
	"database/sql"
	"fmt"

	"garderobe/internal/models"
)

// GetSiteSettings reads the singleton settings row.
func GetSiteSettings(db *sql.DB) (*models.SiteSettings, error) {
	s := &models.SiteSettings{}
	query := `
		SELECT id, site_name, site_description, admin_email,
		       registration_open, registration_approval,
		       messages_enabled, marketplace_enabled, friendships_enabled,
		       max_garments_per_user, max_outfits_per_user, max_suitcases_per_user, max_image_mb,
		       moderation_enabled, moderate_messages, moderate_listings,
		       maintenance_mode, maintenance_message, updated_at
		FROM site_settings
		WHERE id = 1
	`

	err := db.QueryRow(query).Scan(
		&s.ID, &s.SiteName, &s.SiteDescription, &s.AdminEmail,
		&s.RegistrationOpen, &s.RegistrationApproval,
		&s.MessagesEnabled, &s.MarketplaceEnabled, &s.FriendshipsEnabled,
		&s.MaxGarmentsPerUser, &s.MaxOutfitsPerUser, &s.MaxSuitcasesPerUser, &s.MaxImageMB,
		&s.ModerationEnabled, &s.ModerateMessages, &s.ModerateListings,
		&s.MaintenanceMode, &s.MaintenanceMessage, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query site settings: %w", err)
	}

	return s, nil
}

// UpdateSiteSettings rewrites the singleton row with the given values.
func UpdateSiteSettings(db *sql.DB, s models.SiteSettings) error {
	query := `
		UPDATE site_settings
		SET site_name = ?, site_description = ?, admin_email = ?,
		    registration_open = ?, registration_approval = ?,
		    messages_enabled = ?, marketplace_enabled = ?, friendships_enabled = ?,
		    max_garments_per_user = ?, max_outfits_per_user = ?, max_suitcases_per_user = ?, max_image_mb = ?,
		    moderation_enabled = ?, moderate_messages = ?, moderate_listings = ?,
		    maintenance_mode = ?, maintenance_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`

	_, err := db.Exec(query,
		s.SiteName, s.SiteDescription, s.AdminEmail,
		s.RegistrationOpen, s.RegistrationApproval,
		s.MessagesEnabled, s.MarketplaceEnabled, s.FriendshipsEnabled,
		s.MaxGarmentsPerUser, s.MaxOutfitsPerUser, s.MaxSuitcasesPerUser, s.MaxImageMB,
		s.ModerationEnabled, s.ModerateMessages, s.ModerateListings,
		s.MaintenanceMode, s.MaintenanceMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to update site settings: %w", err)
	}

	return nil
}

// SetMaintenanceMode flips maintenance mode without touching other settings.
func SetMaintenanceMode(db *sql.DB, enabled bool, message string) error {
	query := `UPDATE site_settings SET maintenance_mode = ?, maintenance_message = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`
	if _, err := db.Exec(query, enabled, message); err != nil {
		return fmt.Errorf("failed to set maintenance mode: %w", err)
	}
	return nil
}

// IsRegistrationOpen is checked on every registration attempt.
func IsRegistrationOpen(db *sql.DB) (bool, error) {
	var open bool
	err := db.QueryRow(`SELECT registration_open FROM site_settings WHERE id = 1`).Scan(&open)
	if err != nil {
		if err == sql.ErrNoRows {
			return true, nil
		}
		return false, fmt.Errorf("failed to check registration setting: %w", err)
	}
	return open, nil
}
