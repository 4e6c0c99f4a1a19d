package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE user (
			username VARCHAR(100) NOT NULL PRIMARY KEY,
			password_hash VARCHAR(128) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE session (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			username VARCHAR(100) NOT NULL,
			token TEXT NOT NULL,
			issued_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL,
			revoked_at DATETIME,
			FOREIGN KEY(username) REFERENCES user(username) ON DELETE CASCADE
		);

		CREATE TABLE asset (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(100) NOT NULL,
			name VARCHAR(100) NOT NULL,
			category VARCHAR(20) NOT NULL DEFAULT 'other',
			indexer_kind VARCHAR(20) NOT NULL,
			reference_index VARCHAR(10),
			rate_percent FLOAT NOT NULL DEFAULT 0,
			ticker VARCHAR(20),
			market VARCHAR(10),
			tax_exempt BOOLEAN NOT NULL DEFAULT FALSE,
			status VARCHAR(10) NOT NULL DEFAULT 'active',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES user(username) ON DELETE CASCADE
		);

		CREATE TABLE asset_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset_id VARCHAR(36) NOT NULL,
			kind VARCHAR(12) NOT NULL,
			timestamp DATETIME NOT NULL,
			gross_amount FLOAT NOT NULL,
			quantity FLOAT NOT NULL DEFAULT 0,
			net_amount FLOAT NOT NULL DEFAULT 0,
			income_tax FLOAT NOT NULL DEFAULT 0,
			transaction_tax FLOAT NOT NULL DEFAULT 0,
			realized_gain FLOAT NOT NULL DEFAULT 0,
			seq INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(asset_id) REFERENCES asset(id) ON DELETE CASCADE
		);

		CREATE TABLE liability (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(100) NOT NULL,
			name VARCHAR(100) NOT NULL,
			type VARCHAR(50),
			original_amount FLOAT NOT NULL DEFAULT 0,
			outstanding_balance FLOAT NOT NULL DEFAULT 0,
			annual_rate FLOAT NOT NULL DEFAULT 0,
			term_months INTEGER NOT NULL DEFAULT 0,
			installment_amount FLOAT NOT NULL DEFAULT 0,
			start_date DATETIME NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'active',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES user(username) ON DELETE CASCADE
		);

		CREATE TABLE installment (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			liability_id VARCHAR(36) NOT NULL,
			sequence_number INTEGER NOT NULL,
			due_date DATETIME NOT NULL,
			amount FLOAT NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'pending',
			paid_at DATETIME,
			FOREIGN KEY(liability_id) REFERENCES liability(id) ON DELETE CASCADE,
			CONSTRAINT unique_liability_sequence UNIQUE (liability_id, sequence_number)
		);

		CREATE TABLE net_worth_snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(100) NOT NULL,
			snapshot_date DATE NOT NULL,
			gross_total FLOAT NOT NULL DEFAULT 0,
			invested_total FLOAT NOT NULL DEFAULT 0,
			daily_contributions FLOAT NOT NULL DEFAULT 0,
			daily_withdrawals FLOAT NOT NULL DEFAULT 0,
			FOREIGN KEY(user_id) REFERENCES user(username) ON DELETE CASCADE,
			CONSTRAINT unique_user_snapshot_date UNIQUE (user_id, snapshot_date)
		);

		CREATE TABLE quote (
			ticker VARCHAR(20) NOT NULL PRIMARY KEY,
			price FLOAT NOT NULL,
			as_of DATETIME NOT NULL
		);

		CREATE TABLE index_rate (
			reference VARCHAR(10) NOT NULL,
			date DATE NOT NULL,
			annual_rate FLOAT NOT NULL,
			PRIMARY KEY (reference, date)
		);
	`

	_, err := db.Exec(schema)
	return err
}
