package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/model"
)

// SnapshotRepository provides data access methods for the net_worth_snapshot table.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// GetSnapshots retrieves a user's net-worth history ordered by date.
func (s *SnapshotRepository) GetSnapshots(userID string) ([]model.NetWorthSnapshot, error) {
	query := `
		SELECT id, user_id, snapshot_date, gross_total, invested_total,
			daily_contributions, daily_withdrawals
		FROM net_worth_snapshot
		WHERE user_id = ?
		ORDER BY snapshot_date ASC
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query net_worth_snapshot table: %w", err)
	}
	defer rows.Close()

	snapshots := []model.NetWorthSnapshot{}
	for rows.Next() {
		var snap model.NetWorthSnapshot
		var dateStr string

		err := rows.Scan(
			&snap.ID,
			&snap.UserID,
			&dateStr,
			&snap.GrossTotal,
			&snap.InvestedTotal,
			&snap.DailyContributions,
			&snap.DailyWithdrawals,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan net_worth_snapshot results: %w", err)
		}
		snap.SnapshotDate, err = ParseTime(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse snapshot date: %w", err)
		}

		snapshots = append(snapshots, snap)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating net_worth_snapshot table: %w", err)
	}

	return snapshots, nil
}

// UpsertSnapshot inserts or replaces the snapshot for (user, date).
// The snapshot rebuild recomputes rows wholesale, so last write wins.
func (s *SnapshotRepository) UpsertSnapshot(ctx context.Context, snap *model.NetWorthSnapshot) error {
	query := `
		INSERT INTO net_worth_snapshot (id, user_id, snapshot_date, gross_total,
			invested_total, daily_contributions, daily_withdrawals)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, snapshot_date) DO UPDATE SET
			gross_total = excluded.gross_total,
			invested_total = excluded.invested_total,
			daily_contributions = excluded.daily_contributions,
			daily_withdrawals = excluded.daily_withdrawals
	`

	_, err := s.db.ExecContext(ctx, query,
		snap.ID,
		snap.UserID,
		FormatDate(snap.SnapshotDate),
		snap.GrossTotal,
		snap.InvestedTotal,
		snap.DailyContributions,
		snap.DailyWithdrawals,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// HasSnapshotForDate reports whether a snapshot already exists for (user, date).
func (s *SnapshotRepository) HasSnapshotForDate(userID string, day time.Time) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM net_worth_snapshot WHERE user_id = ? AND snapshot_date = ?`,
		userID, FormatDate(day)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot existence: %w", err)
	}
	return true, nil
}

// DeleteSnapshots clears a user's history ahead of a full rebuild.
func (s *SnapshotRepository) DeleteSnapshots(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM net_worth_snapshot WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}
