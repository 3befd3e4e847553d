package http

import (
	"context"

	"trainpulse/internal/analytics"
	"trainpulse/internal/services"
)

// DashboardServiceInterface defines the service operations the handlers
// depend on.
type DashboardServiceInterface interface {
	Refresh(ctx context.Context, force bool) (*services.RefreshResult, error)
	Dashboard(ctx context.Context, f analytics.Filter) (*analytics.Snapshot, error)
	Filters(ctx context.Context) (*services.FilterOptions, error)
	Status(ctx context.Context) services.Status
	HasData() bool
}
