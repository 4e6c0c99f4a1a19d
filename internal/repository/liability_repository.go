package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
)

// LiabilityRepository provides data access methods for the liability and
// installment tables.
type LiabilityRepository struct {
	db *sql.DB
}

// NewLiabilityRepository creates a new LiabilityRepository with the provided database connection.
func NewLiabilityRepository(db *sql.DB) *LiabilityRepository {
	return &LiabilityRepository{db: db}
}

const liabilityColumns = `id, user_id, name, type, original_amount, outstanding_balance,
	annual_rate, term_months, installment_amount, start_date, status, created_at`

func scanLiability(scan func(dest ...any) error) (model.Liability, error) {
	var l model.Liability
	var typ sql.NullString
	var startDateStr, createdAtStr string

	err := scan(
		&l.ID,
		&l.UserID,
		&l.Name,
		&typ,
		&l.OriginalAmount,
		&l.OutstandingBalance,
		&l.AnnualRate,
		&l.TermMonths,
		&l.InstallmentAmount,
		&startDateStr,
		&l.Status,
		&createdAtStr,
	)
	if err != nil {
		return model.Liability{}, err
	}

	if typ.Valid {
		l.Type = typ.String
	}
	l.StartDate, err = ParseTime(startDateStr)
	if err != nil {
		return model.Liability{}, err
	}
	l.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Liability{}, err
	}

	return l, nil
}

// GetLiabilities retrieves all liabilities owned by the given user.
func (s *LiabilityRepository) GetLiabilities(userID string) ([]model.Liability, error) {
	query := `
		SELECT ` + liabilityColumns + `
		FROM liability
		WHERE user_id = ?
		ORDER BY created_at ASC
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query liability table: %w", err)
	}
	defer rows.Close()

	liabilities := []model.Liability{}
	for rows.Next() {
		l, err := scanLiability(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan liability table results: %w", err)
		}
		liabilities = append(liabilities, l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating liability table: %w", err)
	}

	return liabilities, nil
}

// GetLiability retrieves a single liability by its ID.
// Returns apperrors.ErrLiabilityNotFound when no row matches.
func (s *LiabilityRepository) GetLiability(liabilityID string) (model.Liability, error) {
	query := `
		SELECT ` + liabilityColumns + `
		FROM liability
		WHERE id = ?
	`

	l, err := scanLiability(s.db.QueryRow(query, liabilityID).Scan)
	if err == sql.ErrNoRows {
		return model.Liability{}, apperrors.ErrLiabilityNotFound
	}
	if err != nil {
		return model.Liability{}, fmt.Errorf("failed to scan liability table results: %w", err)
	}

	return l, nil
}

// InsertLiability stores a liability together with its generated installments
// in a single database transaction.
func (s *LiabilityRepository) InsertLiability(ctx context.Context, l *model.Liability, installments []model.Installment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO liability (id, user_id, name, type, original_amount, outstanding_balance,
			annual_rate, term_months, installment_amount, start_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		l.ID, l.UserID, l.Name, nullString(l.Type), l.OriginalAmount, l.OutstandingBalance,
		l.AnnualRate, l.TermMonths, l.InstallmentAmount, FormatTime(l.StartDate), l.Status,
		FormatTime(l.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert liability: %w", err)
	}

	for i := range installments {
		inst := &installments[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO installment (id, liability_id, sequence_number, due_date, amount, status)
			VALUES (?, ?, ?, ?, ?, ?)
		`, inst.ID, inst.LiabilityID, inst.SequenceNumber, FormatTime(inst.DueDate), inst.Amount, inst.Status)
		if err != nil {
			return fmt.Errorf("failed to insert installment %d: %w", inst.SequenceNumber, err)
		}
	}

	return tx.Commit()
}

// UpdateOutstandingBalance sets the user-maintained balance of a liability.
func (s *LiabilityRepository) UpdateOutstandingBalance(ctx context.Context, liabilityID string, balance float64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE liability SET outstanding_balance = ? WHERE id = ?`, balance, liabilityID)
	if err != nil {
		return fmt.Errorf("failed to update outstanding balance: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrLiabilityNotFound
	}
	return nil
}

// DeleteLiability removes a liability. Installments cascade at the schema level.
func (s *LiabilityRepository) DeleteLiability(ctx context.Context, liabilityID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM liability WHERE id = ?`, liabilityID)
	if err != nil {
		return fmt.Errorf("failed to delete liability: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrLiabilityNotFound
	}
	return nil
}

func scanInstallment(scan func(dest ...any) error) (model.Installment, error) {
	var inst model.Installment
	var dueDateStr string
	var paidAtStr sql.NullString

	err := scan(
		&inst.ID,
		&inst.LiabilityID,
		&inst.SequenceNumber,
		&dueDateStr,
		&inst.Amount,
		&inst.Status,
		&paidAtStr,
	)
	if err != nil {
		return model.Installment{}, err
	}

	inst.DueDate, err = ParseTime(dueDateStr)
	if err != nil {
		return model.Installment{}, err
	}
	if paidAtStr.Valid {
		paidAt, err := ParseTime(paidAtStr.String)
		if err != nil {
			return model.Installment{}, err
		}
		inst.PaidAt = &paidAt
	}

	return inst, nil
}

// GetInstallments retrieves the full schedule of a liability ordered by sequence.
func (s *LiabilityRepository) GetInstallments(liabilityID string) ([]model.Installment, error) {
	query := `
		SELECT id, liability_id, sequence_number, due_date, amount, status, paid_at
		FROM installment
		WHERE liability_id = ?
		ORDER BY sequence_number ASC
	`

	rows, err := s.db.Query(query, liabilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installment table: %w", err)
	}
	defer rows.Close()

	installments := []model.Installment{}
	for rows.Next() {
		inst, err := scanInstallment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment table results: %w", err)
		}
		installments = append(installments, inst)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating installment table: %w", err)
	}

	return installments, nil
}

// GetInstallment retrieves a single installment by its ID.
// Returns apperrors.ErrInstallmentNotFound when no row matches.
func (s *LiabilityRepository) GetInstallment(installmentID string) (model.Installment, error) {
	query := `
		SELECT id, liability_id, sequence_number, due_date, amount, status, paid_at
		FROM installment
		WHERE id = ?
	`

	inst, err := scanInstallment(s.db.QueryRow(query, installmentID).Scan)
	if err == sql.ErrNoRows {
		return model.Installment{}, apperrors.ErrInstallmentNotFound
	}
	if err != nil {
		return model.Installment{}, fmt.Errorf("failed to scan installment table results: %w", err)
	}

	return inst, nil
}

// UpdateInstallmentStatus persists a paid/pending flip. It touches nothing else;
// in particular the owning liability's outstanding balance stays as the user set it.
func (s *LiabilityRepository) UpdateInstallmentStatus(ctx context.Context, inst *model.Installment) error {
	var paidAt any
	if inst.PaidAt != nil {
		paidAt = FormatTime(*inst.PaidAt)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE installment SET status = ?, paid_at = ? WHERE id = ?`,
		inst.Status, paidAt, inst.ID)
	if err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrInstallmentNotFound
	}
	return nil
}
