package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAssetNotFound indicates that an asset with the given ID does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrLiabilityNotFound indicates that a liability with the given ID does not exist.
	ErrLiabilityNotFound = errors.New("liability not found")

	// ErrInstallmentNotFound indicates that an installment with the given ID does not exist.
	ErrInstallmentNotFound = errors.New("installment not found")

	// ErrUserNotFound indicates that no user exists for the given username.
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound indicates that a session token is unknown or already revoked.
	ErrSessionNotFound = errors.New("session not found")

	// ErrQuoteNotFound indicates no stored quote exists for a ticker.
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrIndexRateNotFound indicates no stored rate exists for a reference index.
	ErrIndexRateNotFound = errors.New("index rate not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInsufficientBalance indicates that a withdrawal exceeds the value of the
	// asset's open lots. The ledger is left untouched when this is returned.
	ErrInsufficientBalance = errors.New("insufficient balance for withdrawal")

	// ErrConflict indicates that the open-lot state changed between preview and
	// commit, or that a concurrent mutation was detected on the same asset.
	ErrConflict = errors.New("conflicting concurrent mutation")

	// ErrFutureTimestamp indicates a transaction timestamp beyond the allowed
	// clock-skew tolerance.
	ErrFutureTimestamp = errors.New("timestamp is in the future")

	// ErrQuantityRequired indicates a transaction on a market-priced asset was
	// submitted without a quantity.
	ErrQuantityRequired = errors.New("quantity is required for market-priced assets")

	// ErrTickerRequired indicates a market-priced asset has no ticker.
	ErrTickerRequired = errors.New("ticker is required for market-priced assets")

	// ErrTickerForbidden indicates a ticker was supplied for an asset whose
	// indexer does not use one.
	ErrTickerForbidden = errors.New("ticker is not allowed for this indexer")

	// ErrAssetClosed indicates a mutation was attempted on a closed asset.
	ErrAssetClosed = errors.New("asset is closed")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrNegativeAmount indicates that an amount field has an invalid non-positive value.
	ErrNegativeAmount = errors.New("amount must be positive")

	// ErrInvalidCredentials indicates a failed username/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired indicates a session token past its expiry.
	ErrSessionExpired = errors.New("session expired")
)

// Degraded-mode conditions are returned alongside successful results, never
// silently dropped. Callers surface them; they do not fail the read.
var (
	// ErrStaleQuote indicates the latest quote is older than the configured
	// staleness window. The valuation is still returned.
	ErrStaleQuote = errors.New("quote is stale")

	// ErrProviderUnavailable indicates the external quote or index source was
	// unreachable; the valuation degraded to the last stored value.
	ErrProviderUnavailable = errors.New("external provider unavailable")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	ErrFailedToRetrieveAssets       = errors.New("failed to retrieve assets")
	ErrFailedToRetrieveAsset        = errors.New("failed to retrieve asset")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveLiabilities  = errors.New("failed to retrieve liabilities")
	ErrFailedToRetrieveHistory      = errors.New("failed to retrieve history")
	ErrFailedToRetrieveSummary      = errors.New("failed to retrieve asset summary")
)
