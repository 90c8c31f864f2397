package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

func Initialize(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func Migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			is_admin BOOLEAN DEFAULT FALSE,
			is_activated BOOLEAN DEFAULT FALSE,
			last_seen DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS csrf_tokens (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS activation_tokens (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS colors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			hex_code TEXT NOT NULL DEFAULT '#000000'
		)`,
		`CREATE TABLE IF NOT EXISTS sizes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT 'standard',
			sort_order INTEGER NOT NULL DEFAULT 0,
			UNIQUE(name, kind)
		)`,
		`CREATE TABLE IF NOT EXISTS garments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT DEFAULT '',
			category_id INTEGER NOT NULL,
			color_id INTEGER,
			size_id INTEGER,
			brand TEXT DEFAULT '',
			material TEXT DEFAULT '',
			gender TEXT DEFAULT 'unisexe',
			season TEXT DEFAULT 'toute_saison',
			condition TEXT DEFAULT 'bon',
			purchase_price REAL,
			purchase_date DATETIME,
			purchase_place TEXT DEFAULT '',
			wear_count INTEGER NOT NULL DEFAULT 0,
			last_worn DATETIME,
			is_favorite BOOLEAN DEFAULT FALSE,
			needs_wash BOOLEAN DEFAULT FALSE,
			needs_iron BOOLEAN DEFAULT FALSE,
			needs_repair BOOLEAN DEFAULT FALSE,
			is_loaned BOOLEAN DEFAULT FALSE,
			loaned_to TEXT DEFAULT '',
			location TEXT DEFAULT '',
			notes TEXT DEFAULT '',
			image_path TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE RESTRICT,
			FOREIGN KEY (color_id) REFERENCES colors(id) ON DELETE SET NULL,
			FOREIGN KEY (size_id) REFERENCES sizes(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outfits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT DEFAULT '',
			occasion TEXT DEFAULT 'decontracte',
			season TEXT DEFAULT 'toute_saison',
			is_favorite BOOLEAN DEFAULT FALSE,
			wear_count INTEGER NOT NULL DEFAULT 0,
			last_worn DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS outfit_garments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			outfit_id INTEGER NOT NULL,
			garment_id INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (outfit_id) REFERENCES outfits(id) ON DELETE CASCADE,
			FOREIGN KEY (garment_id) REFERENCES garments(id) ON DELETE CASCADE,
			UNIQUE(outfit_id, garment_id)
		)`,
		`CREATE TABLE IF NOT EXISTS suitcases (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			destination TEXT DEFAULT '',
			trip_type TEXT DEFAULT 'weekend',
			departure_date DATETIME NOT NULL,
			return_date DATETIME NOT NULL,
			climate TEXT DEFAULT 'tempere',
			status TEXT DEFAULT 'preparation',
			extra_items TEXT DEFAULT '',
			max_weight_kg REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS packing_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			suitcase_id TEXT NOT NULL,
			garment_id INTEGER NOT NULL,
			is_packed BOOLEAN DEFAULT FALSE,
			category TEXT DEFAULT 'vetements',
			weight_grams INTEGER NOT NULL DEFAULT 200,
			sort_order INTEGER NOT NULL DEFAULT 0,
			note TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (suitcase_id) REFERENCES suitcases(id) ON DELETE CASCADE,
			FOREIGN KEY (garment_id) REFERENCES garments(id) ON DELETE CASCADE,
			UNIQUE(suitcase_id, garment_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_id INTEGER NOT NULL,
			recipient_id INTEGER NOT NULL,
			subject TEXT NOT NULL,
			body TEXT NOT NULL,
			is_read BOOLEAN DEFAULT FALSE,
			read_at DATETIME,
			archived_by_sender BOOLEAN DEFAULT FALSE,
			archived_by_recipient BOOLEAN DEFAULT FALSE,
			reply_to_id INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (sender_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (recipient_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (reply_to_id) REFERENCES messages(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS friendships (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			requester_id INTEGER NOT NULL,
			recipient_id INTEGER NOT NULL,
			status TEXT DEFAULT 'pending',
			requested_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			responded_at DATETIME,
			FOREIGN KEY (requester_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (recipient_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE(requester_id, recipient_id)
		)`,
		`CREATE TABLE IF NOT EXISTS listings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			garment_id INTEGER UNIQUE NOT NULL,
			seller_id INTEGER NOT NULL,
			price REAL NOT NULL,
			negotiable BOOLEAN DEFAULT FALSE,
			delivery_available BOOLEAN DEFAULT FALSE,
			description TEXT DEFAULT '',
			status TEXT DEFAULT 'en_vente',
			buyer_id INTEGER,
			published_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			sold_at DATETIME,
			FOREIGN KEY (garment_id) REFERENCES garments(id) ON DELETE CASCADE,
			FOREIGN KEY (seller_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (buyer_id) REFERENCES users(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS listing_favorites (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			listing_id INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (listing_id) REFERENCES listings(id) ON DELETE CASCADE,
			UNIQUE(user_id, listing_id)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			listing_id INTEGER NOT NULL,
			buyer_id INTEGER NOT NULL,
			seller_id INTEGER NOT NULL,
			agreed_price REAL NOT NULL,
			delivery_method TEXT DEFAULT '',
			status TEXT DEFAULT 'en_cours',
			notes TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME,
			FOREIGN KEY (listing_id) REFERENCES listings(id) ON DELETE CASCADE,
			FOREIGN KEY (buyer_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (seller_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS seller_reviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			transaction_id INTEGER UNIQUE NOT NULL,
			reviewer_id INTEGER NOT NULL,
			seller_id INTEGER NOT NULL,
			rating INTEGER NOT NULL,
			communication INTEGER NOT NULL,
			item_accuracy INTEGER NOT NULL,
			shipping INTEGER NOT NULL,
			value INTEGER NOT NULL,
			comment TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (transaction_id) REFERENCES transactions(id) ON DELETE CASCADE,
			FOREIGN KEY (reviewer_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (seller_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS calendar_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			event_type TEXT DEFAULT 'port_tenue',
			date DATETIME NOT NULL,
			start_time TEXT DEFAULT '',
			end_time TEXT DEFAULT '',
			all_day BOOLEAN DEFAULT FALSE,
			outfit_id INTEGER,
			location TEXT DEFAULT '',
			reminder BOOLEAN DEFAULT FALSE,
			reminder_minutes INTEGER DEFAULT 60,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (outfit_id) REFERENCES outfits(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS site_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			site_name TEXT DEFAULT 'Ma Garde-Robe',
			site_description TEXT DEFAULT '',
			admin_email TEXT DEFAULT '',
			registration_open BOOLEAN DEFAULT TRUE,
			registration_approval BOOLEAN DEFAULT FALSE,
			messages_enabled BOOLEAN DEFAULT TRUE,
			marketplace_enabled BOOLEAN DEFAULT TRUE,
			friendships_enabled BOOLEAN DEFAULT TRUE,
			max_garments_per_user INTEGER DEFAULT 500,
			max_outfits_per_user INTEGER DEFAULT 100,
			max_suitcases_per_user INTEGER DEFAULT 50,
			max_image_mb INTEGER DEFAULT 5,
			moderation_enabled BOOLEAN DEFAULT TRUE,
			moderate_messages BOOLEAN DEFAULT FALSE,
			moderate_listings BOOLEAN DEFAULT FALSE,
			maintenance_mode BOOLEAN DEFAULT FALSE,
			maintenance_message TEXT DEFAULT '',
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS moderation_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reporter_id INTEGER NOT NULL,
			content_type TEXT NOT NULL,
			object_id INTEGER NOT NULL,
			reported_user_id INTEGER,
			reason TEXT NOT NULL,
			description TEXT DEFAULT '',
			status TEXT DEFAULT 'en_attente',
			moderator_id INTEGER,
			action_taken TEXT DEFAULT '',
			moderator_comment TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			handled_at DATETIME,
			FOREIGN KEY (reporter_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (reported_user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (moderator_id) REFERENCES users(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS moderation_actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			moderator_id INTEGER NOT NULL,
			action_type TEXT NOT NULL,
			reason TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			ends_at DATETIME,
			report_id INTEGER,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (moderator_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (report_id) REFERENCES moderation_reports(id) ON DELETE SET NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_csrf_tokens_user_id ON csrf_tokens(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_csrf_tokens_expires_at ON csrf_tokens(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_activation_tokens_user_id ON activation_tokens(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_garments_user_id ON garments(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_garments_category_id ON garments(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outfits_user_id ON outfits(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outfit_garments_outfit_id ON outfit_garments(outfit_id)`,
		`CREATE INDEX IF NOT EXISTS idx_suitcases_user_id ON suitcases(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_packing_items_suitcase_id ON packing_items(suitcase_id)`,
		`CREATE INDEX IF NOT EXISTS idx_packing_items_garment_id ON packing_items(garment_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_recipient_id ON messages(recipient_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender_id ON messages(sender_id)`,
		`CREATE INDEX IF NOT EXISTS idx_friendships_recipient_id ON friendships(recipient_id)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_seller_id ON listings(seller_id)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_listing_favorites_user_id ON listing_favorites(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_buyer_id ON transactions(buyer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_seller_id ON transactions(seller_id)`,
		`CREATE INDEX IF NOT EXISTS idx_calendar_events_user_id ON calendar_events(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_calendar_events_date ON calendar_events(date)`,
		`CREATE INDEX IF NOT EXISTS idx_moderation_reports_status ON moderation_reports(status)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	if err := seedLookups(db); err != nil {
		return fmt.Errorf("failed to seed lookups: %w", err)
	}

	if err := seedSiteSettings(db); err != nil {
		return fmt.Errorf("failed to seed site settings: %w", err)
	}

	// Add loan columns for databases created before loan tracking existed
	if err := addGarmentLoanColumns(db); err != nil {
		return fmt.Errorf("failed to add loan columns: %w", err)
	}

	return nil
}

func seedLookups(db *sql.DB) error {
	categories := []string{
		"Hauts", "Bas", "Robes", "Vestes et manteaux", "Chaussures",
		"Sous-vêtements", "Accessoires", "Sport", "Pyjamas",
	}
	for _, name := range categories {
		if _, err := db.Exec(`INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
			return err
		}
	}

	colors := []struct {
		name string
		hex  string
	}{
		{"Noir", "#000000"},
		{"Blanc", "#ffffff"},
		{"Gris", "#808080"},
		{"Bleu", "#0000ff"},
		{"Bleu marine", "#000080"},
		{"Rouge", "#ff0000"},
		{"Vert", "#008000"},
		{"Jaune", "#ffff00"},
		{"Rose", "#ffc0cb"},
		{"Beige", "#f5f5dc"},
		{"Marron", "#8b4513"},
		{"Violet", "#800080"},
		{"Orange", "#ffa500"},
	}
	for _, c := range colors {
		if _, err := db.Exec(`INSERT OR IGNORE INTO colors (name, hex_code) VALUES (?, ?)`, c.name, c.hex); err != nil {
			return err
		}
	}

	sizes := []struct {
		name string
		kind string
		ord  int
	}{
		{"XS", "standard", 1},
		{"S", "standard", 2},
		{"M", "standard", 3},
		{"L", "standard", 4},
		{"XL", "standard", 5},
		{"XXL", "standard", 6},
		{"36", "numerique", 10},
		{"38", "numerique", 11},
		{"40", "numerique", 12},
		{"42", "numerique", 13},
		{"44", "numerique", 14},
		{"46", "numerique", 15},
		{"Taille unique", "autre", 99},
	}
	for _, s := range sizes {
		if _, err := db.Exec(`INSERT OR IGNORE INTO sizes (name, kind, sort_order) VALUES (?, ?, ?)`, s.name, s.kind, s.ord); err != nil {
			return err
		}
	}

	return nil
}

func seedSiteSettings(db *sql.DB) error {
	_, err := db.Exec(`INSERT OR IGNORE INTO site_settings (id) VALUES (1)`)
	return err
}

func addGarmentLoanColumns(db *sql.DB) error {
	rows, err := db.Query("PRAGMA table_info(garments)")
	if err != nil {
		return err
	}
	defer rows.Close()

	hasLoaned := false
	hasLoanedTo := false
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull, dfltValue, pk interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == "is_loaned" {
			hasLoaned = true
		}
		if name == "loaned_to" {
			hasLoanedTo = true
		}
	}

	if !hasLoaned {
		if _, err := db.Exec("ALTER TABLE garments ADD COLUMN is_loaned BOOLEAN DEFAULT FALSE"); err != nil {
			return err
		}
	}
	if !hasLoanedTo {
		if _, err := db.Exec("ALTER TABLE garments ADD COLUMN loaned_to TEXT DEFAULT ''"); err != nil {
			return err
		}
	}

	return nil
}
