package store

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"cyberguard-portal/core/utils"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS crime_categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category_name TEXT UNIQUE NOT NULL,
		category_icon TEXT NOT NULL DEFAULT '🔍',
		category_color TEXT NOT NULL DEFAULT '#718096',
		description TEXT NOT NULL DEFAULT '',
		severity_level TEXT NOT NULL DEFAULT 'Medium',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT 'Unknown',
		region TEXT NOT NULL DEFAULT 'Unknown',
		country TEXT NOT NULL DEFAULT 'Tanzania',
		postal_code TEXT NOT NULL DEFAULT '',
		location_type TEXT NOT NULL DEFAULT 'exact',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE INDEX IF NOT EXISTS idx_locations_coordinates ON locations(latitude, longitude);`,
	`CREATE INDEX IF NOT EXISTS idx_locations_city_region ON locations(city, region);`,
	`CREATE TABLE IF NOT EXISTS reference_places (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		region TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name TEXT NOT NULL,
		email TEXT UNIQUE,
		phone TEXT,
		user_type TEXT NOT NULL DEFAULT 'reporter',
		is_verified INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		last_login TIMESTAMP,
		password_hash TEXT,
		verification_token TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE INDEX IF NOT EXISTS idx_users_user_type ON users(user_type);`,
	`CREATE TABLE IF NOT EXISTS incident_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_number TEXT UNIQUE NOT NULL,
		reporter_name TEXT NOT NULL,
		reporter_email TEXT,
		reporter_phone TEXT,
		user_id INTEGER,
		crime_category_id INTEGER NOT NULL,
		custom_crime_type TEXT,
		incident_title TEXT,
		incident_description TEXT NOT NULL,
		incident_date DATE,
		incident_time TIME,
		location_id INTEGER NOT NULL,
		estimated_loss REAL NOT NULL DEFAULT 0.0,
		currency TEXT NOT NULL DEFAULT 'TZS',
		evidence_description TEXT,
		has_screenshots INTEGER NOT NULL DEFAULT 0,
		has_documents INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		priority TEXT NOT NULL DEFAULT 'medium',
		assigned_to INTEGER,
		investigation_notes TEXT,
		resolution_notes TEXT,
		resolution_date TIMESTAMP,
		ip_address TEXT,
		user_agent TEXT,
		submission_source TEXT NOT NULL DEFAULT 'web_form',
		is_anonymous INTEGER NOT NULL DEFAULT 0,
		is_verified INTEGER NOT NULL DEFAULT 0,
		is_public INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (crime_category_id) REFERENCES crime_categories(id) ON DELETE RESTRICT,
		FOREIGN KEY (location_id) REFERENCES locations(id) ON DELETE RESTRICT,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL,
		FOREIGN KEY (assigned_to) REFERENCES users(id) ON DELETE SET NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON incident_reports(status);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON incident_reports(created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_crime_category ON incident_reports(crime_category_id);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_public ON incident_reports(is_public, status);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_ip_created ON incident_reports(ip_address, created_at);`,
	`CREATE TABLE IF NOT EXISTS report_number_counters (
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		PRIMARY KEY (year, month)
	);`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		action TEXT NOT NULL,
		details TEXT,
		ip_address TEXT,
		user_agent TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE INDEX IF NOT EXISTS idx_activity_action ON activity_log(action);`,
	`CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity_log(created_at);`,
}

func ApplyMigrations(ctx context.Context, db *DB, logger *utils.Logger) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	logger.Infof("db: schema up to date (%d statements)", len(migrations))
	return nil
}

type seedCategory struct {
	name, icon, color, description, severity string
}

var seedCategories = []seedCategory{
	{"Identity Theft", "🆔", "#e53e3e", "Unauthorized use of personal information", "High"},
	{"Online Fraud", "💳", "#dd6b20", "Financial fraud conducted online", "High"},
	{"Phishing", "🎣", "#d69e2e", "Fraudulent attempts to obtain sensitive information", "Medium"},
	{"Ransomware", "🔒", "#9f7aea", "Malicious software that encrypts files for ransom", "Critical"},
	{"Cyberbullying", "😢", "#ed64a6", "Harassment or bullying using digital platforms", "Medium"},
	{"Data Breach", "📊", "#38b2ac", "Unauthorized access to confidential data", "Critical"},
	{"Social Engineering", "🕵️", "#4299e1", "Manipulation to divulge confidential information", "High"},
	{"Malware", "🦠", "#f56565", "Malicious software designed to damage systems", "High"},
	{"DDoS Attack", "⚡", "#48bb78", "Distributed Denial of Service attacks", "Medium"},
	{"Other", "🔍", "#718096", "Other types of cybercrime not listed above", "Medium"},
}

type seedPlace struct {
	name, region string
	lat, lng     float64
}

var seedPlaces = []seedPlace{
	{"Dar es Salaam", "Dar es Salaam", -6.7924, 39.2083},
	{"Arusha", "Arusha", -3.3869, 36.6830},
	{"Mbeya", "Mbeya", -8.7832, 34.5085},
	{"Tanga", "Tanga", -5.0893, 39.2658},
	{"Malindi", "Kilifi", -4.0435, 39.6682},
	{"Dodoma", "Dodoma", -6.1659, 35.7497},
}

const (
	seedAdminName     = "System Administrator"
	seedAdminEmail    = "admin@cyberguard.co.tz"
	seedAdminPassword = "admin123"
)

// SeedReferenceData inserts the fixed crime categories, the nearest-match
// reference places, and the default admin account. Every insert is
// conflict-tolerant, so seeding is idempotent across restarts.
func SeedReferenceData(ctx context.Context, db *DB, logger *utils.Logger) error {
	for _, c := range seedCategories {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO crime_categories (category_name, category_icon, category_color, description, severity_level)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(category_name) DO NOTHING`,
			c.name, c.icon, c.color, c.description, c.severity); err != nil {
			return fmt.Errorf("seed category %q: %w", c.name, err)
		}
	}
	for _, p := range seedPlaces {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO reference_places (name, region, latitude, longitude)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO NOTHING`,
			p.name, p.region, p.lat, p.lng); err != nil {
			return fmt.Errorf("seed reference place %q: %w", p.name, err)
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := NewUsersStore(db).Create(ctx, &User{
		FullName:     seedAdminName,
		Email:        seedAdminEmail,
		UserType:     "admin",
		PasswordHash: string(hash),
		IsVerified:   true,
		IsActive:     true,
	}); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	logger.Infof("db: reference data seeded (%d categories, %d places)", len(seedCategories), len(seedPlaces))
	return nil
}
