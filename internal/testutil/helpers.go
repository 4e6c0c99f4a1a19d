package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
	"github.com/OnlyTachi/personal-finance-manager/internal/service"
)

// NewTestValuationService builds a ValuationService reading rates and quotes
// from the test database.
func NewTestValuationService(t *testing.T, db *sql.DB, staleness time.Duration) *service.ValuationService {
	t.Helper()

	marketDataRepo := repository.NewMarketDataRepository(db)
	return service.NewValuationService(
		service.NewStoredRateSource(marketDataRepo),
		service.NewStoredQuoteSource(marketDataRepo),
		staleness,
	)
}

func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()

	return service.NewLedgerService(
		repository.NewAssetRepository(db),
		repository.NewTransactionRepository(db),
		NewTestValuationService(t, db, 48*time.Hour),
		5*time.Minute,
	)
}

func NewTestWithdrawalService(t *testing.T, db *sql.DB) *service.WithdrawalService {
	t.Helper()

	return service.NewWithdrawalService(
		NewTestLedgerService(t, db),
		NewTestValuationService(t, db, 48*time.Hour),
		repository.NewTransactionRepository(db),
	)
}

func NewTestAssetService(t *testing.T, db *sql.DB) *service.AssetService {
	t.Helper()

	return service.NewAssetService(
		repository.NewAssetRepository(db),
		NewTestLedgerService(t, db),
		NewTestValuationService(t, db, 48*time.Hour),
	)
}

func NewTestLiabilityService(t *testing.T, db *sql.DB) *service.LiabilityService {
	t.Helper()

	return service.NewLiabilityService(repository.NewLiabilityRepository(db))
}

func NewTestSnapshotService(t *testing.T, db *sql.DB) *service.SnapshotService {
	t.Helper()

	return service.NewSnapshotService(
		repository.NewAssetRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewSnapshotRepository(db),
		NewTestLedgerService(t, db),
		NewTestValuationService(t, db, 48*time.Hour),
	)
}

func NewTestSessionService(t *testing.T, db *sql.DB, ttl time.Duration) *service.SessionService {
	t.Helper()

	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate session key: %v", err)
	}
	svc, err := service.NewSessionService(repository.NewUserRepository(db), key.Encode(), ttl)
	if err != nil {
		t.Fatalf("Failed to create session service: %v", err)
	}
	return svc
}

func NewTestProjectionService(t *testing.T, db *sql.DB) *service.ProjectionService {
	t.Helper()

	return service.NewProjectionService(
		service.NewStoredRateSource(repository.NewMarketDataRepository(db)),
	)
}
