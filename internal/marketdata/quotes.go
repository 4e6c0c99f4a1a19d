// Package marketdata wraps the external quote and reference-index providers.
// All calls carry a timeout; callers degrade to the last stored value when a
// provider is unreachable.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
)

// QuoteClient fetches market prices for equities (Yahoo Finance chart API)
// and crypto assets (CoinGecko simple-price API).
type QuoteClient struct {
	httpClient    *http.Client
	equityBaseURL string
	cryptoBaseURL string
}

// NewQuoteClient creates a QuoteClient with the given endpoints and request timeout.
func NewQuoteClient(equityBaseURL, cryptoBaseURL string, timeout time.Duration) *QuoteClient {
	return &QuoteClient{
		httpClient:    &http.Client{Timeout: timeout},
		equityBaseURL: strings.TrimRight(equityBaseURL, "/"),
		cryptoBaseURL: strings.TrimRight(cryptoBaseURL, "/"),
	}
}

// chartResponse is the subset of the Yahoo chart payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// FetchQuote retrieves the latest price for a ticker from the market matching
// the asset's indexer. Failures are wrapped in apperrors.ErrProviderUnavailable
// so callers can fall back to the last stored quote.
func (c *QuoteClient) FetchQuote(ctx context.Context, ticker string, market model.Market) (model.Quote, error) {
	switch market {
	case model.MarketCrypto:
		return c.fetchCryptoQuote(ctx, ticker)
	default:
		return c.fetchEquityQuote(ctx, ticker)
	}
}

func (c *QuoteClient) fetchEquityQuote(ctx context.Context, ticker string) (model.Quote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.equityBaseURL, ticker)

	body, err := c.get(ctx, url)
	if err != nil {
		return model.Quote{}, err
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.Quote{}, fmt.Errorf("%w: decoding chart response: %v", apperrors.ErrProviderUnavailable, err)
	}
	if len(parsed.Chart.Result) == 0 {
		return model.Quote{}, fmt.Errorf("%w: no chart result for %s", apperrors.ErrProviderUnavailable, ticker)
	}

	result := parsed.Chart.Result[0]
	if len(result.Timestamp) == 0 ||
		len(result.Indicators.Quote) == 0 ||
		len(result.Indicators.Quote[0].Close) != len(result.Timestamp) {
		return model.Quote{}, fmt.Errorf("%w: malformed chart data for %s", apperrors.ErrProviderUnavailable, ticker)
	}

	last := len(result.Timestamp) - 1
	return model.Quote{
		Ticker: ticker,
		Price:  result.Indicators.Quote[0].Close[last],
		AsOf:   time.Unix(result.Timestamp[last], 0).UTC(),
	}, nil
}

func (c *QuoteClient) fetchCryptoQuote(ctx context.Context, ticker string) (model.Quote, error) {
	// CoinGecko IDs are lowercase (e.g. "bitcoin").
	id := strings.ToLower(strings.TrimSpace(ticker))
	url := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=brl", c.cryptoBaseURL, id)

	body, err := c.get(ctx, url)
	if err != nil {
		return model.Quote{}, err
	}

	var parsed map[string]map[string]float64
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.Quote{}, fmt.Errorf("%w: decoding price response: %v", apperrors.ErrProviderUnavailable, err)
	}

	entry, ok := parsed[id]
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: unknown crypto id %s", apperrors.ErrProviderUnavailable, id)
	}

	return model.Quote{
		Ticker: ticker,
		Price:  entry["brl"],
		AsOf:   time.Now().UTC(),
	}, nil
}

func (c *QuoteClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", apperrors.ErrProviderUnavailable, err)
	}
	req.Header.Set("User-Agent", "personal-finance-manager/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d from %s", apperrors.ErrProviderUnavailable, resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}
