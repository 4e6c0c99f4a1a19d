package repository_test

import (
	"errors"
	"testing"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
	"github.com/OnlyTachi/personal-finance-manager/internal/testutil"
)

func TestRewriteBatchRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	asset := testutil.NewAsset(userID).Build(t, db)
	repo := repository.NewTransactionRepository(db)
	now := time.Now().UTC()

	c1 := testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -2), 1000, 0)
	c2 := testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -1), 500, 0)

	// A rewrite targeting a row that does not exist fails the batch.
	ghost := c2
	ghost.ID = testutil.MakeID()

	t.Run("failed rewrite rolls back the primary edit", func(t *testing.T) {
		edited := c1
		edited.GrossAmount = 2000

		err := repo.UpdateTransactionWithRewrites(t.Context(), &edited, []model.Transaction{ghost})
		if !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Fatalf("expected ErrTransactionNotFound, got %v", err)
		}

		stored, err := repo.GetTransaction(c1.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if stored.GrossAmount != 1000 {
			t.Errorf("gross amount = %v, want the edit rolled back to 1000", stored.GrossAmount)
		}
	})

	t.Run("failed rewrite rolls back the delete", func(t *testing.T) {
		err := repo.DeleteTransactionWithRewrites(t.Context(), c1.ID, []model.Transaction{ghost})
		if !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Fatalf("expected ErrTransactionNotFound, got %v", err)
		}

		if _, err := repo.GetTransaction(c1.ID); err != nil {
			t.Errorf("deleted row should be restored by the rollback: %v", err)
		}
	})

	t.Run("batch applies primary and rewrites together", func(t *testing.T) {
		edited := c1
		edited.GrossAmount = 1500
		rewrite := c2
		rewrite.NetAmount = 499

		if err := repo.UpdateTransactionWithRewrites(t.Context(), &edited, []model.Transaction{rewrite}); err != nil {
			t.Fatalf("UpdateTransactionWithRewrites failed: %v", err)
		}

		stored1, err := repo.GetTransaction(c1.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if stored1.GrossAmount != 1500 {
			t.Errorf("gross amount = %v, want 1500", stored1.GrossAmount)
		}
		stored2, err := repo.GetTransaction(c2.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if stored2.NetAmount != 499 {
			t.Errorf("net amount = %v, want rewritten 499", stored2.NetAmount)
		}
	})
}
