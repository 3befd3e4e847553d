package sheets

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"trainpulse/pkg/contracts/domain"
)

// RawTables bundles the three source tables of one load.
type RawTables struct {
	Catalog   *domain.RawTable
	Orders    *domain.RawTable
	Customers *domain.RawTable
}

// Loader fetches the catalog, orders, and customers tabs through one
// Source, consulting the TTL cache first.
type Loader struct {
	source    Source
	cache     *Cache
	catalog   SourceRef
	orders    SourceRef
	customers SourceRef
	logger    *slog.Logger
}

// NewLoader wires a loader for the three configured source tabs.
func NewLoader(source Source, cache *Cache, catalog, orders, customers SourceRef, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		source:    source,
		cache:     cache,
		catalog:   catalog,
		orders:    orders,
		customers: customers,
		logger:    logger.With(slog.String("component", "sheet_loader")),
	}
}

// LoadAll fetches all three tables, in parallel for the ones not served
// from cache. force bypasses the cache. The first fetch error cancels
// the remaining fetches and is returned as-is (ErrSourceUnavailable
// wrapped with table detail).
func (l *Loader) LoadAll(ctx context.Context, force bool) (*RawTables, error) {
	out := &RawTables{}
	targets := []struct {
		ref  SourceRef
		dest **domain.RawTable
	}{
		{l.catalog, &out.Catalog},
		{l.orders, &out.Orders},
		{l.customers, &out.Customers},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		ref, dest := t.ref, t.dest
		if !force {
			if cached, ok := l.cache.Get(ref); ok {
				l.logger.DebugContext(ctx, "source served from cache", slog.String("table", ref.Name))
				*dest = cached
				continue
			}
		}
		g.Go(func() error {
			table, err := l.source.Fetch(gctx, ref)
			if err != nil {
				return err
			}
			l.cache.Put(ref, table)
			*dest = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
