package rateprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rental-backend/internal/domain/rate"
	"rental-backend/internal/domain/stay"
	"rental-backend/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const maxResponseBytes = 16 << 20

var (
	ErrProviderDisabled = errs.New("rate provider api key is not configured")
	ErrProviderStatus   = errs.New("rate provider returned non-success status")
	ErrMalformedPayload = errs.New("rate provider response is not a sequence of day records")
)

type PriceLabsClient struct {
	baseURL    string
	apiKey     string
	listingID  string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewPriceLabsClient(baseURL, apiKey, listingID string, timeout time.Duration, logger *slog.Logger) *PriceLabsClient {
	return &PriceLabsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		listingID:  listingID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *PriceLabsClient) Enabled() bool {
	return c.apiKey != ""
}

type dayRecord struct {
	Date    string           `json:"date"`
	Price   *decimal.Decimal `json:"price"`
	MinStay *int             `json:"min_stay"`
}

// FetchRates returns the provider's forward calendar. Records without a date or a positive price are skipped.
func (c *PriceLabsClient) FetchRates(ctx context.Context) ([]rate.DailyRate, error) {
	if !c.Enabled() {
		return nil, ErrProviderDisabled
	}

	endpoint := c.baseURL + "/v1/listing_prices?" + url.Values{"listing_id": {c.listingID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errs.Wrap(err, "build rate provider request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "fetch rates")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errs.Wrap(err, "read rate provider response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("rate provider error response",
			"status", resp.StatusCode,
			"body", truncate(string(body), 512))
		return nil, errs.Mark(errs.Newf("rate provider status %d", resp.StatusCode), ErrProviderStatus)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}

	rates := make([]rate.DailyRate, 0, len(records))
	for _, rec := range records {
		dr, ok := c.toDailyRate(rec)
		if ok {
			rates = append(rates, dr)
		}
	}
	return rates, nil
}

// decodeRecords accepts either a bare array or an object wrapping it under "data".
func decodeRecords(body []byte) ([]dayRecord, error) {
	trimmed := bytes.TrimSpace(body)

	var raw json.RawMessage = trimmed
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, errs.Mark(err, ErrMalformedPayload)
		}
		raw = bytes.TrimSpace(envelope.Data)
	}

	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrMalformedPayload
	}

	var records []dayRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errs.Mark(err, ErrMalformedPayload)
	}
	return records, nil
}

func (c *PriceLabsClient) toDailyRate(rec dayRecord) (rate.DailyRate, bool) {
	if rec.Date == "" || rec.Price == nil {
		return rate.DailyRate{}, false
	}
	date, err := stay.ParseDate(rec.Date)
	if err != nil {
		c.logger.Debug("skipping rate with malformed date", "date", rec.Date)
		return rate.DailyRate{}, false
	}
	dr, err := rate.NewDailyRate(date, *rec.Price, rec.MinStay)
	if err != nil {
		c.logger.Debug("skipping invalid rate", "date", rec.Date, "error", err.Error())
		return rate.DailyRate{}, false
	}
	return dr, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
