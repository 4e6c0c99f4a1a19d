package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
)

// AssetRepository provides data access methods for the asset table.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository creates a new AssetRepository with the provided database connection.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = `id, user_id, name, category, indexer_kind, reference_index,
	rate_percent, ticker, market, tax_exempt, status, created_at`

func scanAsset(scan func(dest ...any) error) (model.Asset, error) {
	var a model.Asset
	var reference, ticker, market sql.NullString
	var createdAt string

	err := scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&a.Category,
		&a.Indexer.Kind,
		&reference,
		&a.Indexer.RatePercent,
		&ticker,
		&market,
		&a.TaxExempt,
		&a.Status,
		&createdAt,
	)
	if err != nil {
		return model.Asset{}, err
	}

	if reference.Valid {
		a.Indexer.Reference = model.ReferenceIndex(reference.String)
	}
	if ticker.Valid {
		a.Indexer.Ticker = ticker.String
	}
	if market.Valid {
		a.Indexer.Market = model.Market(market.String)
	}
	a.CreatedAt, err = ParseTime(createdAt)
	if err != nil {
		return model.Asset{}, err
	}

	return a, nil
}

// GetAssets retrieves all assets owned by the given user, ordered by creation.
// Returns an empty slice when the user has no assets.
func (s *AssetRepository) GetAssets(userID string) ([]model.Asset, error) {
	query := `
		SELECT ` + assetColumns + `
		FROM asset
		WHERE user_id = ?
		ORDER BY created_at ASC
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset table: %w", err)
	}
	defer rows.Close()

	assets := []model.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset table results: %w", err)
		}
		assets = append(assets, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset table: %w", err)
	}

	return assets, nil
}

// GetAsset retrieves a single asset by its ID.
// Returns apperrors.ErrAssetNotFound when no row matches.
func (s *AssetRepository) GetAsset(assetID string) (model.Asset, error) {
	query := `
		SELECT ` + assetColumns + `
		FROM asset
		WHERE id = ?
	`

	a, err := scanAsset(s.db.QueryRow(query, assetID).Scan)
	if err == sql.ErrNoRows {
		return model.Asset{}, apperrors.ErrAssetNotFound
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to scan asset table results: %w", err)
	}

	return a, nil
}

// InsertAsset stores a new asset.
func (s *AssetRepository) InsertAsset(ctx context.Context, a *model.Asset) error {
	query := `
		INSERT INTO asset (id, user_id, name, category, indexer_kind, reference_index,
			rate_percent, ticker, market, tax_exempt, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.Name,
		a.Category,
		a.Indexer.Kind,
		nullString(string(a.Indexer.Reference)),
		a.Indexer.RatePercent,
		nullString(a.Indexer.Ticker),
		nullString(string(a.Indexer.Market)),
		a.TaxExempt,
		a.Status,
		FormatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}

	return nil
}

// UpdateAssetStatus flips an asset between active and closed.
func (s *AssetRepository) UpdateAssetStatus(ctx context.Context, assetID string, status model.AssetStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE asset SET status = ? WHERE id = ?`, status, assetID)
	if err != nil {
		return fmt.Errorf("failed to update asset status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrAssetNotFound
	}
	return nil
}

// GetActiveTickers returns the distinct tickers of active market-priced
// assets across all users, mapped to their market.
func (s *AssetRepository) GetActiveTickers() (map[string]model.Market, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT ticker, market FROM asset
		WHERE indexer_kind = ? AND status = ? AND ticker IS NOT NULL
	`, model.IndexerMarketPriced, model.AssetActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset table: %w", err)
	}
	defer rows.Close()

	tickers := make(map[string]model.Market)
	for rows.Next() {
		var ticker string
		var market model.Market
		if err := rows.Scan(&ticker, &market); err != nil {
			return nil, fmt.Errorf("failed to scan asset results: %w", err)
		}
		tickers[ticker] = market
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset table: %w", err)
	}
	return tickers, nil
}

// DeleteAsset removes an asset. Owned transactions cascade at the schema level.
func (s *AssetRepository) DeleteAsset(ctx context.Context, assetID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM asset WHERE id = ?`, assetID)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrAssetNotFound
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
