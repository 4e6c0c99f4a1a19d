package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
)

// SnapshotService maintains the daily net-worth history. Each snapshot is a
// full replay of every asset's ledger as of that day, so the history can be
// dropped and rebuilt at any time, for example after editing old entries.
type SnapshotService struct {
	assets       *repository.AssetRepository
	transactions *repository.TransactionRepository
	snapshots    *repository.SnapshotRepository
	ledger       *LedgerService
	valuation    *ValuationService
	now          func() time.Time
}

// NewSnapshotService creates a new SnapshotService with the provided dependencies.
func NewSnapshotService(
	assets *repository.AssetRepository,
	transactions *repository.TransactionRepository,
	snapshots *repository.SnapshotRepository,
	ledger *LedgerService,
	valuation *ValuationService,
) *SnapshotService {
	return &SnapshotService{
		assets:       assets,
		transactions: transactions,
		snapshots:    snapshots,
		ledger:       ledger,
		valuation:    valuation,
		now:          time.Now,
	}
}

// EnsureDailySnapshot writes today's snapshot if it does not exist yet.
// Called by the scheduler; safe to call repeatedly within the same day.
func (s *SnapshotService) EnsureDailySnapshot(ctx context.Context, userID string) error {
	today := s.now()
	exists, err := s.snapshots.HasSnapshotForDate(userID, today)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.SnapshotDay(ctx, userID, today)
}

// SnapshotDay computes and upserts the snapshot for one calendar day. Assets
// are valued concurrently; valuation warnings are tolerated since a degraded
// figure is better than a hole in the history.
func (s *SnapshotService) SnapshotDay(ctx context.Context, userID string, day time.Time) error {
	assets, err := s.assets.GetAssets(userID)
	if err != nil {
		return err
	}

	asOf := endOfDay(day)
	gross := make([]float64, len(assets))
	invested := make([]float64, len(assets))

	g, _ := errgroup.WithContext(ctx)
	for i, asset := range assets {
		g.Go(func() error {
			lots, err := s.ledger.OpenLots(asset, asOf)
			if err != nil {
				return err
			}
			values, _, err := s.valuation.LotValues(asset, lots, asOf)
			if err != nil {
				return err
			}
			for j, lot := range lots {
				gross[i] += values[j]
				invested[i] += lot.RemainingPrincipal
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	contributions, withdrawals, err := s.transactions.DailyFlows(userID, day)
	if err != nil {
		return err
	}

	snap := model.NetWorthSnapshot{
		ID:                 uuid.New().String(),
		UserID:             userID,
		SnapshotDate:       day,
		DailyContributions: RoundCents(contributions),
		DailyWithdrawals:   RoundCents(withdrawals),
	}
	for i := range assets {
		snap.GrossTotal += gross[i]
		snap.InvestedTotal += invested[i]
	}
	snap.GrossTotal = RoundCents(snap.GrossTotal)
	snap.InvestedTotal = RoundCents(snap.InvestedTotal)

	return s.snapshots.UpsertSnapshot(ctx, &snap)
}

// RebuildHistory drops the user's stored history and recomputes one snapshot
// per day from the earliest ledger entry through today. Market-priced assets
// are valued with the latest stored quote for every day; per-day quote
// history is not kept.
func (s *SnapshotService) RebuildHistory(ctx context.Context, userID string) error {
	txs, err := s.transactions.GetTransactionsForUser(userID)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		return s.snapshots.DeleteSnapshots(ctx, userID)
	}

	earliest := txs[0].Timestamp
	for _, t := range txs {
		if t.Timestamp.Before(earliest) {
			earliest = t.Timestamp
		}
	}

	if err := s.snapshots.DeleteSnapshots(ctx, userID); err != nil {
		return err
	}

	for day := startOfDay(earliest); !day.After(s.now()); day = day.AddDate(0, 0, 1) {
		if err := s.SnapshotDay(ctx, userID, day); err != nil {
			return err
		}
	}
	return nil
}

// History returns the stored snapshots, oldest first.
func (s *SnapshotService) History(userID string) ([]model.NetWorthSnapshot, error) {
	return s.snapshots.GetSnapshots(userID)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Second)
}
