package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/greenstack-labs/ghgmart/internal/staging"
)

// DefaultWorldBankBaseURL is the production World Bank API endpoint.
const DefaultWorldBankBaseURL = "https://api.worldbank.org/v2"

// WorldBankClient fetches GDP series from the World Bank indicator API.
type WorldBankClient struct {
	baseURL string
	http    *http.Client
	cache   *Cache
	logger  *slog.Logger
}

// NewWorldBankClient creates a client. baseURL may be overridden for tests;
// cache is required (use PolicyRefresh to bypass reuse).
func NewWorldBankClient(baseURL string, cache *Cache, logger *slog.Logger) *WorldBankClient {
	if baseURL == "" {
		baseURL = DefaultWorldBankBaseURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &WorldBankClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		cache:   cache,
		logger:  logger,
	}
}

// wbRow is one observation in the World Bank JSON response.
type wbRow struct {
	CountryISO3 string `json:"countryiso3code"`
	Country     struct {
		Value string `json:"value"`
	} `json:"country"`
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// FetchGDP returns GDP observations for all countries for the given
// indicator (e.g. NY.GDP.MKTP.KD) and date range (e.g. "1990:2024").
// Observations with a null value are dropped. Results go through the cache
// keyed by (indicator, dateRange).
func (c *WorldBankClient) FetchGDP(ctx context.Context, indicator, dateRange string) ([]staging.GdpRecord, error) {
	key := fmt.Sprintf("worldbank:%s:%s", indicator, dateRange)
	payload, err := c.cache.Fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, indicator, dateRange)
	})
	if err != nil {
		return nil, err
	}
	return parseGDP(payload)
}

func (c *WorldBankClient) get(ctx context.Context, indicator, dateRange string) ([]byte, error) {
	url := fmt.Sprintf("%s/country/all/indicator/%s?date=%s&format=json&per_page=20000",
		c.baseURL, indicator, dateRange)
	c.logger.Info("fetching world bank gdp", "indicator", indicator, "date_range", dateRange)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build world bank request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("world bank request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("world bank request returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read world bank response: %w", err)
	}
	return body, nil
}

// parseGDP decodes the [metadata, rows] response shape.
func parseGDP(payload []byte) ([]staging.GdpRecord, error) {
	var envelope []json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected world bank response: %w", err)
	}
	if len(envelope) < 2 {
		return nil, fmt.Errorf("unexpected world bank response: %d elements", len(envelope))
	}

	var rows []wbRow
	if err := json.Unmarshal(envelope[1], &rows); err != nil {
		return nil, fmt.Errorf("failed to decode world bank rows: %w", err)
	}

	recs := make([]staging.GdpRecord, 0, len(rows))
	for _, row := range rows {
		if row.Value == nil || row.CountryISO3 == "" {
			continue
		}
		year, err := strconv.Atoi(row.Date)
		if err != nil {
			continue // aggregate periods like "2020Q1" are not year series
		}
		recs = append(recs, staging.GdpRecord{
			ISO3:       row.CountryISO3,
			Country:    row.Country.Value,
			Year:       year,
			GdpUSD2015: *row.Value,
		})
	}
	return recs, nil
}
