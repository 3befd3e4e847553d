package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainpulse/internal/analytics"
	"trainpulse/internal/config"
	"trainpulse/internal/dataprocessing"
	"trainpulse/internal/sheets"
	"trainpulse/pkg/contracts/domain"
)

// fakeSource serves canned tables per table name and can be flipped to
// fail every fetch.
type fakeSource struct {
	tables map[string]*domain.RawTable
	fail   bool
}

func (f *fakeSource) Fetch(ctx context.Context, ref sheets.SourceRef) (*domain.RawTable, error) {
	if f.fail {
		return nil, fmt.Errorf("%w: %s: connection refused", sheets.ErrSourceUnavailable, ref.Name)
	}
	table, ok := f.tables[ref.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s: not configured", sheets.ErrSourceUnavailable, ref.Name)
	}
	return table, nil
}

func testTables() map[string]*domain.RawTable {
	return map[string]*domain.RawTable{
		"catalog": domain.NewRawTable("catalog",
			[]string{"training_id", "training_name", "trainer", "price_per_pax"},
			[][]string{
				{"T1", "Leadership 101", "Amin", "500"},
				{"T2", "Data Basics", "Sara", "100"},
			}),
		"orders": domain.NewRawTable("orders",
			[]string{"order_id", "order_date", "training_name", "customer_id", "qty", "price_per_pax"},
			[][]string{
				{"O1", "10/01/2024", "Leadership 101", "C1", "10", "500"},
				{"O2", "05/02/2024", "Data Basics", "C2", "20", "100"},
				{"O3", "01/06/2023", "Leadership 101", "C1", "10", "400"},
				{"O4", "01/03/2024", "Data Basics", "C9", "2", "50"},
			}),
		"customers": domain.NewRawTable("customers",
			[]string{"customer_id", "company_name", "industry", "city"},
			[][]string{
				{"C1", "Acme", "Manufacturing", "Berlin"},
				{"C2", "Beta", "Retail", "Munich"},
			}),
	}
}

func newTestService(t *testing.T, source sheets.Source, sources config.SourcesConfig) *DashboardService {
	t.Helper()
	loader := sheets.NewLoader(source, sheets.NewCache(0),
		sheets.SourceRef{Name: "catalog", SpreadsheetID: "s", GID: "0"},
		sheets.SourceRef{Name: "orders", SpreadsheetID: "s", GID: "1"},
		sheets.SourceRef{Name: "customers", SpreadsheetID: "s", GID: "2"},
		nil,
	)
	return NewDashboardService(loader, sources, nil, nil)
}

func TestDashboardService_Refresh(t *testing.T) {
	svc := newTestService(t, &fakeSource{tables: testTables()}, config.SourcesConfig{CustomerDedupKey: "customer_id"})

	result, err := svc.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.NotEmpty(t, result.SnapshotID)
	assert.Equal(t, 4, result.Orders)
	require.Len(t, result.CleanStats, 3)
	assert.Equal(t, 1, result.JoinStats.UnmatchedCustomer)

	assert.True(t, svc.HasData())

	status := svc.Status(context.Background())
	assert.True(t, status.Refreshed)
	assert.Equal(t, result.SnapshotID, status.SnapshotID)
	assert.Equal(t, 4, status.Orders)
}

func TestDashboardService_Filters(t *testing.T) {
	svc := newTestService(t, &fakeSource{tables: testTables()}, config.SourcesConfig{})

	_, err := svc.Filters(context.Background())
	assert.ErrorIs(t, err, ErrNotRefreshed)

	_, err = svc.Refresh(context.Background(), false)
	require.NoError(t, err)

	opts, err := svc.Filters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2023}, opts.Years)
	assert.Equal(t, []string{"Berlin", "Munich"}, opts.Cities)
	assert.Equal(t, 2024, opts.DefaultYear)
}

func TestDashboardService_UnknownCityBucket(t *testing.T) {
	svc := newTestService(t, &fakeSource{tables: testTables()},
		config.SourcesConfig{UnknownCityBucket: true})

	_, err := svc.Refresh(context.Background(), false)
	require.NoError(t, err)

	opts, err := svc.Filters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Berlin", "Munich", analytics.UnknownCity}, opts.Cities)
}

func TestDashboardService_Dashboard(t *testing.T) {
	svc := newTestService(t, &fakeSource{tables: testTables()}, config.SourcesConfig{})

	_, err := svc.Dashboard(context.Background(), analytics.Filter{Year: 2024})
	assert.ErrorIs(t, err, ErrNotRefreshed)

	_, err = svc.Refresh(context.Background(), false)
	require.NoError(t, err)

	t.Run("empty city list selects all cities", func(t *testing.T) {
		snap, err := svc.Dashboard(context.Background(), analytics.Filter{Year: 2024})
		require.NoError(t, err)
		require.False(t, snap.Empty)
		assert.InDelta(t, 7000.0, snap.KPIs.TotalRevenue, 1e-9)
		assert.Equal(t, 2, snap.KPIs.TotalOrders)
	})

	t.Run("explicit city filter", func(t *testing.T) {
		snap, err := svc.Dashboard(context.Background(), analytics.Filter{Year: 2024, Cities: []string{"Munich"}})
		require.NoError(t, err)
		assert.Equal(t, 1, snap.KPIs.TotalOrders)
		assert.InDelta(t, 2000.0, snap.KPIs.TotalRevenue, 1e-9)
	})

	t.Run("year not available", func(t *testing.T) {
		_, err := svc.Dashboard(context.Background(), analytics.Filter{Year: 1999})
		assert.ErrorIs(t, err, ErrYearNotAvailable)
	})

	t.Run("city not available", func(t *testing.T) {
		_, err := svc.Dashboard(context.Background(), analytics.Filter{Year: 2024, Cities: []string{"Paris"}})
		assert.ErrorIs(t, err, ErrCityNotAvailable)
	})
}

func TestDashboardService_RefreshFailureKeepsPreviousDataset(t *testing.T) {
	source := &fakeSource{tables: testTables()}
	svc := newTestService(t, source, config.SourcesConfig{})

	first, err := svc.Refresh(context.Background(), false)
	require.NoError(t, err)

	source.fail = true
	_, err = svc.Refresh(context.Background(), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, sheets.ErrSourceUnavailable)

	// Stale dataset still serves.
	assert.True(t, svc.HasData())
	status := svc.Status(context.Background())
	assert.Equal(t, first.SnapshotID, status.SnapshotID)
	assert.True(t, status.Stale)

	snap, err := svc.Dashboard(context.Background(), analytics.Filter{Year: 2024})
	require.NoError(t, err)
	assert.False(t, snap.Empty)

	// A later successful refresh clears the stale flag.
	source.fail = false
	_, err = svc.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, svc.Status(context.Background()).Stale)
}

func TestDashboardService_SchemaMismatch(t *testing.T) {
	tables := testTables()
	tables["orders"] = domain.NewRawTable("orders",
		[]string{"order_id", "training_name"},
		[][]string{{"O1", "Leadership 101"}})

	svc := newTestService(t, &fakeSource{tables: tables}, config.SourcesConfig{})

	_, err := svc.Refresh(context.Background(), false)
	require.Error(t, err)

	var schemaErr *dataprocessing.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
	assert.False(t, svc.HasData())
}

func TestDashboardService_EmptyDataset(t *testing.T) {
	tables := testTables()
	tables["orders"] = domain.NewRawTable("orders",
		[]string{"order_id", "order_date", "training_name", "customer_id", "qty", "price_per_pax"},
		[][]string{{"O1", "not a date", "T", "C", "1", "1"}})

	svc := newTestService(t, &fakeSource{tables: tables}, config.SourcesConfig{})

	_, err := svc.Refresh(context.Background(), false)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}
