package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
)

// TransactionRepository provides data access methods for the asset_transaction table.
// Replay order is (timestamp, seq); seq is assigned from a per-database counter
// at insert time so edits never disturb the original creation order.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, asset_id, kind, timestamp, gross_amount, quantity,
	net_amount, income_tax, transaction_tax, realized_gain, seq, created_at`

func scanTransaction(scan func(dest ...any) error) (model.Transaction, error) {
	var t model.Transaction
	var timestampStr, createdAtStr string

	err := scan(
		&t.ID,
		&t.AssetID,
		&t.Kind,
		&timestampStr,
		&t.GrossAmount,
		&t.Quantity,
		&t.NetAmount,
		&t.IncomeTax,
		&t.TransactionTax,
		&t.RealizedGain,
		&t.Seq,
		&createdAtStr,
	)
	if err != nil {
		return model.Transaction{}, err
	}

	t.Timestamp, err = ParseTime(timestampStr)
	if err != nil {
		return model.Transaction{}, err
	}
	t.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}

// GetTransactions retrieves all transactions of an asset in replay order.
func (s *TransactionRepository) GetTransactions(assetID string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM asset_transaction
		WHERE asset_id = ?
		ORDER BY timestamp ASC, seq ASC
	`

	rows, err := s.db.Query(query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset_transaction results: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset_transaction table: %w", err)
	}

	return transactions, nil
}

// GetTransactionsForUser retrieves every transaction across all of a user's
// assets in replay order. Used by the net-worth history rebuild.
func (s *TransactionRepository) GetTransactionsForUser(userID string) ([]model.Transaction, error) {
	query := `
		SELECT t.id, t.asset_id, t.kind, t.timestamp, t.gross_amount, t.quantity,
			t.net_amount, t.income_tax, t.transaction_tax, t.realized_gain, t.seq, t.created_at
		FROM asset_transaction t
		JOIN asset a ON t.asset_id = a.id
		WHERE a.user_id = ?
		ORDER BY t.timestamp ASC, t.seq ASC
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset_transaction results: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset_transaction table: %w", err)
	}

	return transactions, nil
}

// GetTransaction retrieves a single transaction by its ID.
// Returns apperrors.ErrTransactionNotFound when no row matches.
func (s *TransactionRepository) GetTransaction(transactionID string) (model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM asset_transaction
		WHERE id = ?
	`

	t, err := scanTransaction(s.db.QueryRow(query, transactionID).Scan)
	if err == sql.ErrNoRows {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan asset_transaction results: %w", err)
	}

	return t, nil
}

// InsertTransaction stores a new transaction, assigning the next seq value
// atomically with the insert.
func (s *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO asset_transaction (id, asset_id, kind, timestamp, gross_amount,
			quantity, net_amount, income_tax, transaction_tax, realized_gain, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM asset_transaction), ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		t.ID,
		t.AssetID,
		t.Kind,
		FormatTime(t.Timestamp),
		t.GrossAmount,
		t.Quantity,
		t.NetAmount,
		t.IncomeTax,
		t.TransactionTax,
		t.RealizedGain,
		FormatTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return s.db.QueryRowContext(ctx,
		`SELECT seq FROM asset_transaction WHERE id = ?`, t.ID).Scan(&t.Seq)
}

// UpdateTransaction replaces the mutable fields of a transaction. The seq
// column is left untouched so replay ties keep their original creation order.
func (s *TransactionRepository) UpdateTransaction(ctx context.Context, t *model.Transaction) error {
	return updateTransactionOn(ctx, s.db, t)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateTransactionOn(ctx context.Context, ex execer, t *model.Transaction) error {
	query := `
		UPDATE asset_transaction
		SET timestamp = ?, gross_amount = ?, quantity = ?, net_amount = ?,
			income_tax = ?, transaction_tax = ?, realized_gain = ?
		WHERE id = ?
	`

	result, err := ex.ExecContext(ctx, query,
		FormatTime(t.Timestamp),
		t.GrossAmount,
		t.Quantity,
		t.NetAmount,
		t.IncomeTax,
		t.TransactionTax,
		t.RealizedGain,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	return nil
}

// UpdateTransactionWithRewrites applies an edit together with the recomputed
// derived fields of the withdrawals it affects, in a single database
// transaction. Any failure rolls the whole batch back.
func (s *TransactionRepository) UpdateTransactionWithRewrites(ctx context.Context, t *model.Transaction, rewrites []model.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updateTransactionOn(ctx, tx, t); err != nil {
		return err
	}
	// Rewrites may include the edited row itself; its recomputed figures win.
	for i := range rewrites {
		if err := updateTransactionOn(ctx, tx, &rewrites[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteTransaction removes a transaction.
func (s *TransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM asset_transaction WHERE id = ?`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// DeleteTransactionWithRewrites removes a transaction and applies the
// recomputed derived fields of the withdrawals the removal affects, in a
// single database transaction. Any failure rolls the whole batch back.
func (s *TransactionRepository) DeleteTransactionWithRewrites(ctx context.Context, transactionID string, rewrites []model.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM asset_transaction WHERE id = ?`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	for i := range rewrites {
		if err := updateTransactionOn(ctx, tx, &rewrites[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DailyFlows sums contributions and withdrawals stamped on the given date
// across all of a user's assets.
func (s *TransactionRepository) DailyFlows(userID string, day time.Time) (contributions, withdrawals float64, err error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN t.kind = 'contribution' THEN t.gross_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.kind = 'withdrawal' THEN t.gross_amount ELSE 0 END), 0)
		FROM asset_transaction t
		JOIN asset a ON t.asset_id = a.id
		WHERE a.user_id = ? AND date(t.timestamp) = ?
	`

	err = s.db.QueryRow(query, userID, FormatDate(day)).Scan(&contributions, &withdrawals)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum daily flows: %w", err)
	}
	return contributions, withdrawals, nil
}
