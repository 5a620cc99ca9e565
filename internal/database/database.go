package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sqlx.DB
}

// NewDB creates a new database connection
func NewDB(databaseURL string) (*DB, error) {
	if databaseURL == "" {
		databaseURL = "habitforge.db" // Default SQLite file
	}

	separator := "?"
	if strings.Contains(databaseURL, "?") {
		separator = "&"
	}

	db, err := sqlx.Connect("sqlite3", databaseURL+separator+"_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dbWrapper := &DB{DB: db}

	// Initialize database schema
	if err := dbWrapper.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("Database connection established and tables initialized")
	return dbWrapper, nil
}

// createTables creates the necessary database tables
func (db *DB) createTables() error {
	// Users table: all gamification counters live here
	usersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		avatar TEXT DEFAULT '',
		xp INTEGER DEFAULT 0,
		xp_week INTEGER DEFAULT 0,
		level INTEGER DEFAULT 1,
		coins INTEGER DEFAULT 0,
		streak INTEGER DEFAULT 0,
		max_streak INTEGER DEFAULT 0,
		week_start_date DATETIME DEFAULT CURRENT_TIMESTAMP,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	// Habits table
	habitsTable := `
	CREATE TABLE IF NOT EXISTS habits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT DEFAULT '',
		category TEXT NOT NULL,
		frequency TEXT NOT NULL,
		goal INTEGER DEFAULT 1,
		difficulty TEXT DEFAULT 'medium',
		color TEXT DEFAULT '#6366f1',
		icon TEXT DEFAULT '📝',
		xp_reward INTEGER NOT NULL,
		is_active BOOLEAN DEFAULT TRUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);`

	// Habit completions: append-only facts
	completionsTable := `
	CREATE TABLE IF NOT EXISTS habit_completions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		habit_id INTEGER NOT NULL,
		note TEXT DEFAULT '',
		xp_earned INTEGER DEFAULT 0,
		completed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (habit_id) REFERENCES habits(id) ON DELETE CASCADE
	);`

	// Achievement definitions (static reference data, seeded at startup)
	achievementsTable := `
	CREATE TABLE IF NOT EXISTS achievements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT UNIQUE NOT NULL,
		description TEXT NOT NULL,
		icon TEXT DEFAULT '🏆',
		category TEXT NOT NULL,
		requirement INTEGER NOT NULL,
		xp_reward INTEGER DEFAULT 50,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	// Unlock facts: one row per (user, achievement), ever
	userAchievementsTable := `
	CREATE TABLE IF NOT EXISTS user_achievements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		achievement_id INTEGER NOT NULL,
		unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, achievement_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (achievement_id) REFERENCES achievements(id) ON DELETE CASCADE
	);`

	// Create indexes for better performance
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);`,
		`CREATE INDEX IF NOT EXISTS idx_users_ranking ON users(xp_week DESC, xp DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_habits_user_id ON habits(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_habit_id ON habit_completions(habit_id);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_completed_at ON habit_completions(completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_user_achievements_user_id ON user_achievements(user_id);`,
	}

	// Execute table creation
	tables := []string{usersTable, habitsTable, completionsTable, achievementsTable, userAchievementsTable}
	for _, query := range tables {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Create indexes
	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
