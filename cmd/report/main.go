package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trainpulse/internal/analytics"
	"trainpulse/internal/config"
	"trainpulse/internal/exporter"
	"trainpulse/internal/infrastructure"
	"trainpulse/internal/services"
	"trainpulse/internal/sheets"
)

func main() {
	outputDir := flag.String("out", "reports", "output directory for report files")
	year := flag.Int("year", 0, "report year (defaults to the most recent year with data)")
	cities := flag.String("cities", "", "comma-separated city filter (defaults to all cities)")
	format := flag.String("format", "xlsx", "report format: xlsx or csv")
	flag.Parse()

	if *format != "xlsx" && *format != "csv" {
		slog.Error("Invalid format", "format", *format, "hint", "use xlsx or csv")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	service, err := buildService(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to build pipeline", "error", err)
		os.Exit(1)
	}

	logger.Info("Fetching source data...")
	if _, err := service.Refresh(ctx, true); err != nil {
		logger.Error("Refresh failed", "error", err)
		os.Exit(1)
	}

	filter, err := buildFilter(ctx, service, *year, *cities)
	if err != nil {
		logger.Error("Invalid filter", "error", err)
		os.Exit(1)
	}

	snap, err := service.Dashboard(ctx, filter)
	if err != nil {
		logger.Error("Snapshot computation failed", "error", err)
		os.Exit(1)
	}
	if snap.Empty {
		logger.Warn("No orders matched the filter; report will be empty",
			"year", filter.Year)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		logger.Error("Failed to create output directory", "error", err)
		os.Exit(1)
	}

	filename := fmt.Sprintf("training-dashboard-%d.%s", filter.Year, *format)
	path := filepath.Join(*outputDir, filename)
	if err := writeReport(path, *format, snap); err != nil {
		logger.Error("Failed to write report", "error", err, "path", path)
		os.Exit(1)
	}

	logger.Info("Report written",
		"path", path,
		"year", filter.Year,
		"orders", snap.KPIs.TotalOrders,
		"revenue", snap.KPIs.TotalRevenue)
}

func buildService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services.DashboardService, error) {
	var source sheets.Source
	if cfg.Sources.APIKey != "" {
		client, err := sheets.NewAPIClient(ctx, cfg.Sources.APIKey, logger)
		if err != nil {
			return nil, err
		}
		source = client
	} else {
		source = sheets.NewCSVExportClient(logger,
			sheets.WithTimeout(cfg.Fetch.Timeout),
			sheets.WithRetryWait(cfg.Fetch.RetryWait),
		)
	}

	cache := sheets.NewCache(cfg.Fetch.CacheTTL)
	loader := sheets.NewLoader(source, cache,
		sheets.SourceRef{Name: "catalog", SpreadsheetID: cfg.Sources.Catalog.SpreadsheetID, GID: cfg.Sources.Catalog.GID, SheetTitle: cfg.Sources.Catalog.SheetTitle},
		sheets.SourceRef{Name: "orders", SpreadsheetID: cfg.Sources.Orders.SpreadsheetID, GID: cfg.Sources.Orders.GID, SheetTitle: cfg.Sources.Orders.SheetTitle},
		sheets.SourceRef{Name: "customers", SpreadsheetID: cfg.Sources.Customers.SpreadsheetID, GID: cfg.Sources.Customers.GID, SheetTitle: cfg.Sources.Customers.SheetTitle},
		logger,
	)

	return services.NewDashboardService(loader, cfg.Sources, logger, nil), nil
}

func buildFilter(ctx context.Context, service *services.DashboardService, year int, cities string) (analytics.Filter, error) {
	var filter analytics.Filter

	if year == 0 {
		opts, err := service.Filters(ctx)
		if err != nil {
			return filter, err
		}
		year = opts.DefaultYear
	}
	filter.Year = year

	if cities != "" {
		for _, c := range strings.Split(cities, ",") {
			if c = strings.TrimSpace(c); c != "" {
				filter.Cities = append(filter.Cities, c)
			}
		}
	}
	return filter, nil
}

func writeReport(path, format string, snap *analytics.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if format == "csv" {
		return exporter.WriteSnapshotCSV(f, snap)
	}
	return exporter.WriteSnapshotXLSX(f, snap)
}
