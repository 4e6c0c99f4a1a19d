package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
)

// Banco Central SGS series codes for the supported reference indexes.
var sgsSeries = map[model.ReferenceIndex]int{
	model.IndexCDI:  12,  // daily CDI
	model.IndexIPCA: 433, // monthly IPCA
}

// IndexClient fetches reference-index series from the Banco Central SGS API.
type IndexClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewIndexClient creates an IndexClient with the given endpoint and request timeout.
func NewIndexClient(baseURL string, timeout time.Duration) *IndexClient {
	return &IndexClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type sgsEntry struct {
	Date  string `json:"data"`
	Value string `json:"valor"`
}

// FetchIndexRates retrieves the series entries between two dates. SGS returns
// the daily CDI as a per-day percentage; it is annualized here over 252
// business days so stored rates are always annual percentages.
// Failures are wrapped in apperrors.ErrProviderUnavailable.
func (c *IndexClient) FetchIndexRates(ctx context.Context, reference model.ReferenceIndex, from, to time.Time) ([]model.IndexRate, error) {
	series, ok := sgsSeries[reference]
	if !ok {
		return nil, fmt.Errorf("no SGS series for reference index %q", reference)
	}

	url := fmt.Sprintf(
		"%s/dados/serie/bcdata.sgs.%d/dados?formato=json&dataInicial=%s&dataFinal=%s",
		c.baseURL, series, from.Format("02/01/2006"), to.Format("02/01/2006"),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", apperrors.ErrProviderUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d from SGS", apperrors.ErrProviderUnavailable, resp.StatusCode)
	}

	var entries []sgsEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: decoding SGS response: %v", apperrors.ErrProviderUnavailable, err)
	}

	rates := make([]model.IndexRate, 0, len(entries))
	for _, e := range entries {
		date, err := time.Parse("02/01/2006", e.Date)
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.Replace(e.Value, ",", ".", 1), 64)
		if err != nil {
			continue
		}

		annual := value
		if reference == model.IndexCDI {
			annual = annualizeDaily(value)
		}

		rates = append(rates, model.IndexRate{
			Reference:  reference,
			Date:       date.UTC(),
			AnnualRate: annual,
		})
	}

	return rates, nil
}

// annualizeDaily converts a daily percentage rate to its annual equivalent on
// the 252 business-day convention.
func annualizeDaily(daily float64) float64 {
	return (math.Pow(1+daily/100, 252) - 1) * 100
}
