package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"trainpulse/pkg/contracts/domain"
)

// SourceRef addresses one sheet tab: the spreadsheet document, the tab's
// numeric GID (CSV export path), and the tab title (Sheets API path).
// Name labels the table in logs, stats, and schema errors.
type SourceRef struct {
	Name          string `yaml:"name" validate:"required"`
	SpreadsheetID string `yaml:"spreadsheet_id" validate:"required"`
	GID           string `yaml:"gid"`
	SheetTitle    string `yaml:"sheet_title"`
}

// Source fetches one raw table. Implementations: CSVExportClient,
// APIClient.
type Source interface {
	Fetch(ctx context.Context, ref SourceRef) (*domain.RawTable, error)
}

// CSVExportClient fetches a tab through the spreadsheet CSV export
// endpoint. Each fetch is time-boxed and retried exactly once after a
// short backoff; this sits on the user-facing refresh path and must not
// hang on a slow origin.
type CSVExportClient struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	retryWait  time.Duration
	onRetry    func(table string)
	logger     *slog.Logger
}

// CSVExportOption configures a CSVExportClient.
type CSVExportOption func(*CSVExportClient)

// WithBaseURL overrides the export endpoint origin, for tests.
func WithBaseURL(url string) CSVExportOption {
	return func(c *CSVExportClient) { c.baseURL = url }
}

// WithTimeout sets the per-attempt time box.
func WithTimeout(d time.Duration) CSVExportOption {
	return func(c *CSVExportClient) { c.timeout = d }
}

// WithRetryWait sets the backoff before the single retry.
func WithRetryWait(d time.Duration) CSVExportOption {
	return func(c *CSVExportClient) { c.retryWait = d }
}

// WithRetryNotify registers a callback invoked once per retry attempt,
// used to feed the fetch retry counter.
func WithRetryNotify(fn func(table string)) CSVExportOption {
	return func(c *CSVExportClient) { c.onRetry = fn }
}

// NewCSVExportClient creates a CSV export fetcher.
func NewCSVExportClient(logger *slog.Logger, opts ...CSVExportOption) *CSVExportClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &CSVExportClient{
		httpClient: &http.Client{},
		baseURL:    "https://docs.google.com",
		timeout:    30 * time.Second,
		retryWait:  2 * time.Second,
		logger:     logger.With(slog.String("component", "csv_export_client")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads and parses the tab's CSV export. Transport failures
// and non-2xx statuses surface as ErrSourceUnavailable after one retry.
func (c *CSVExportClient) Fetch(ctx context.Context, ref SourceRef) (*domain.RawTable, error) {
	url := fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv&gid=%s", c.baseURL, ref.SpreadsheetID, ref.GID)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			c.logger.WarnContext(ctx, "retrying source fetch",
				slog.String("table", ref.Name),
				slog.String("error", lastErr.Error()),
			)
			if c.onRetry != nil {
				c.onRetry(ref.Name)
			}
			select {
			case <-time.After(c.retryWait):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, ref.Name, ctx.Err())
			}
		}

		table, err := c.fetchOnce(ctx, ref, url)
		if err == nil {
			return table, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, ref.Name, lastErr)
}

func (c *CSVExportClient) fetchOnce(ctx context.Context, ref SourceRef, url string) (*domain.RawTable, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch %s: unexpected status %d", ref.Name, resp.StatusCode)
	}

	table, err := parseCSV(ref.Name, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", ref.Name, err)
	}

	c.logger.InfoContext(ctx, "source fetched",
		slog.String("table", ref.Name),
		slog.Int("rows", len(table.Rows)),
		slog.String("duration", time.Since(start).String()),
	)
	return table, nil
}

// parseCSV reads delimited text into a RawTable. Ragged rows are
// tolerated; the header row is required.
func parseCSV(name string, r io.Reader) (*domain.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return domain.NewRawTable(name, nil, nil), nil
	}
	return domain.NewRawTable(name, records[0], records[1:]), nil
}
