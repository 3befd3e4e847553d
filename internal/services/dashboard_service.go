package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"trainpulse/internal/analytics"
	"trainpulse/internal/config"
	"trainpulse/internal/dataprocessing"
	"trainpulse/internal/infrastructure"
	"trainpulse/internal/sheets"
	"trainpulse/pkg/contracts/domain"
)

// dataset is one immutable refresh result. A new refresh swaps in a new
// dataset; readers holding the old one keep a consistent view.
type dataset struct {
	snapshotID  string
	generatedAt time.Time
	orders      []domain.EnrichedOrder
	years       []int    // descending
	cities      []string // ascending
	clean       []dataprocessing.CleanStats
	join        dataprocessing.JoinStats
}

// RefreshResult summarizes one refresh cycle for API responses and logs.
type RefreshResult struct {
	SnapshotID  string                      `json:"snapshot_id"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Orders      int                         `json:"orders"`
	CleanStats  []dataprocessing.CleanStats `json:"clean_stats"`
	JoinStats   dataprocessing.JoinStats    `json:"join_stats"`
}

// FilterOptions lists the selectable filter values of the current
// dataset.
type FilterOptions struct {
	Years       []int    `json:"years"`
	Cities      []string `json:"cities"`
	DefaultYear int      `json:"default_year"`
}

// Status reports dataset freshness for health checks. Stale is set when
// the most recent refresh failed and readers are being served the last
// good dataset.
type Status struct {
	Refreshed   bool      `json:"refreshed"`
	Stale       bool      `json:"stale"`
	SnapshotID  string    `json:"snapshot_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
	Orders      int       `json:"orders"`
}

// DashboardService owns the refresh cycle and serves computed snapshots
// over the most recent dataset.
type DashboardService struct {
	loader  *sheets.Loader
	sources config.SourcesConfig
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics

	mu      sync.RWMutex
	current *dataset
	stale   bool
}

// NewDashboardService creates the service. metrics may be nil in tests.
func NewDashboardService(loader *sheets.Loader, sources config.SourcesConfig, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		loader:  loader,
		sources: sources,
		logger:  logger.With(slog.String("component", "dashboard_service")),
		metrics: metrics,
	}
}

// Refresh runs one full pipeline cycle: fetch all three tables, clean
// them, join, and atomically swap in the new dataset. On failure the
// previous dataset stays in place, so readers keep getting the stale
// view until a later refresh succeeds.
func (s *DashboardService) Refresh(ctx context.Context, force bool) (*RefreshResult, error) {
	start := time.Now()

	result, err := s.refresh(ctx, force)

	if err != nil {
		s.mu.Lock()
		if s.current != nil {
			s.stale = true
		}
		s.mu.Unlock()
	}

	if s.metrics != nil {
		elapsed := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "failure"
			s.metrics.RefreshFailures.Add(ctx, 1)
			if s.HasData() {
				s.metrics.StaleServesTotal.Add(ctx, 1)
			}
		}
		s.metrics.RefreshesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
		s.metrics.RefreshDuration.Record(ctx, elapsed)
	}

	return result, err
}

func (s *DashboardService) refresh(ctx context.Context, force bool) (*RefreshResult, error) {
	tables, err := s.loader.LoadAll(ctx, force)
	if err != nil {
		s.logger.ErrorContext(ctx, "source fetch failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("refresh: %w", err)
	}

	catalog, catalogStats, err := dataprocessing.NormalizeCatalog(tables.Catalog, s.logger)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	dedupKey := dataprocessing.CustomerKey(s.sources.CustomerDedupKey)
	customers, customerStats, err := dataprocessing.NormalizeCustomers(tables.Customers, dedupKey, s.logger)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	orders, orderStats, err := dataprocessing.NormalizeOrders(tables.Orders, s.logger)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("refresh: %w", ErrEmptyDataset)
	}

	enriched, joinStats := dataprocessing.Enrich(orders, catalog, customers, s.logger)

	clean := []dataprocessing.CleanStats{catalogStats, orderStats, customerStats}
	s.recordCleanMetrics(ctx, clean)

	ds := &dataset{
		snapshotID:  uuid.New().String(),
		generatedAt: time.Now().UTC(),
		orders:      enriched,
		years:       availableYears(enriched),
		cities:      availableCities(enriched, s.sources.UnknownCityBucket),
		clean:       clean,
		join:        joinStats,
	}

	s.mu.Lock()
	s.current = ds
	s.stale = false
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset refreshed",
		slog.String("snapshot_id", ds.snapshotID),
		slog.Int("orders", len(enriched)),
		slog.Int("years", len(ds.years)),
		slog.Int("cities", len(ds.cities)),
		slog.Int("unmatched_catalog", joinStats.UnmatchedCatalog),
		slog.Int("unmatched_customer", joinStats.UnmatchedCustomer),
	)

	return &RefreshResult{
		SnapshotID:  ds.snapshotID,
		GeneratedAt: ds.generatedAt,
		Orders:      len(enriched),
		CleanStats:  clean,
		JoinStats:   joinStats,
	}, nil
}

func (s *DashboardService) recordCleanMetrics(ctx context.Context, stats []dataprocessing.CleanStats) {
	if s.metrics == nil {
		return
	}
	for _, st := range stats {
		attrs := metric.WithAttributes(attribute.String("table", st.Table))
		if st.CoercedValues > 0 {
			s.metrics.CoercedValuesTotal.Add(ctx, int64(st.CoercedValues), attrs)
		}
		if dropped := st.DroppedNoDate + st.DroppedDuplicate; dropped > 0 {
			s.metrics.DroppedRowsTotal.Add(ctx, int64(dropped), attrs)
		}
	}
}

// Dashboard computes a metrics snapshot for the given filter over the
// current dataset. An empty city list selects all available cities.
func (s *DashboardService) Dashboard(ctx context.Context, f analytics.Filter) (*analytics.Snapshot, error) {
	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	if !containsInt(ds.years, f.Year) {
		return nil, fmt.Errorf("%w: %d", ErrYearNotAvailable, f.Year)
	}

	if len(f.Cities) == 0 {
		f.Cities = ds.cities
	} else {
		available := make(map[string]bool, len(ds.cities))
		for _, c := range ds.cities {
			available[c] = true
		}
		for _, c := range f.Cities {
			if !available[c] {
				return nil, fmt.Errorf("%w: %s", ErrCityNotAvailable, c)
			}
		}
	}

	snap := analytics.Compute(ds.orders, f)

	s.logger.DebugContext(ctx, "snapshot computed",
		slog.Int("year", f.Year),
		slog.Int("cities", len(f.Cities)),
		slog.Bool("empty", snap.Empty),
	)
	return snap, nil
}

// Filters returns the selectable filter values. DefaultYear is the most
// recent year with data.
func (s *DashboardService) Filters(ctx context.Context) (*FilterOptions, error) {
	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	opts := &FilterOptions{
		Years:  ds.years,
		Cities: ds.cities,
	}
	if len(ds.years) > 0 {
		opts.DefaultYear = ds.years[0]
	}
	return opts, nil
}

// Status reports whether data has been loaded and how fresh it is.
func (s *DashboardService) Status(ctx context.Context) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Status{}
	}
	return Status{
		Refreshed:   true,
		Stale:       s.stale,
		SnapshotID:  s.current.snapshotID,
		GeneratedAt: s.current.generatedAt,
		Orders:      len(s.current.orders),
	}
}

// HasData reports whether at least one refresh has succeeded.
func (s *DashboardService) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

func (s *DashboardService) snapshot() (*dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNotRefreshed
	}
	return s.current, nil
}

// availableYears collects the distinct order years, newest first.
func availableYears(orders []domain.EnrichedOrder) []int {
	seen := make(map[int]bool)
	for i := range orders {
		seen[orders[i].Year] = true
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// availableCities collects the distinct matched customer cities sorted
// ascending. When includeUnknown is set and any order has no matched
// city, the unknown bucket is appended last.
func availableCities(orders []domain.EnrichedOrder, includeUnknown bool) []string {
	seen := make(map[string]bool)
	unknown := false
	for i := range orders {
		if orders[i].CustomerMatched && orders[i].City != "" {
			seen[orders[i].City] = true
		} else {
			unknown = true
		}
	}
	cities := make([]string, 0, len(seen)+1)
	for c := range seen {
		cities = append(cities, c)
	}
	sort.Strings(cities)
	if includeUnknown && unknown {
		cities = append(cities, analytics.UnknownCity)
	}
	return cities
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
