package domain

import (
	"context"
	"errors"
	"time"
)

// ErrTiersNotCached is returned by a TierCache when no tier list is stored.
var ErrTiersNotCached = errors.New("pricing tiers not cached")

// DeliverySource fetches a driver's delivery records, including nested
// parcels and status history.
type DeliverySource interface {
	DeliveriesForDriver(ctx context.Context, driverID string) ([]DeliveryRecord, error)
}

// TierSource fetches the active driver pricing tiers.
type TierSource interface {
	ActiveTiers(ctx context.Context) ([]DriverPricingTier, error)
}

// TierCache stores the pricing-tier list between poll ticks. The tier
// table changes rarely, so dashboards polling every 30-60s should not
// refetch it every cycle.
type TierCache interface {
	GetTiers(ctx context.Context) ([]DriverPricingTier, error)
	SetTiers(ctx context.Context, tiers []DriverPricingTier) error
}

// EarningsService exposes the business operations used by adapters.
// "now" is passed explicitly so windows are reproducible in tests.
type EarningsService interface {
	EarningsSummary(ctx context.Context, driverID string, now time.Time) (*EarningsSummary, error)
	PerformanceMetrics(ctx context.Context, driverID string, days int, now time.Time) (*PerformanceMetrics, error)
}

// DashboardPusher delivers refreshed summaries to connected driver
// dashboards between their poll ticks.
type DashboardPusher interface {
	SendToDriver(driverID string, message interface{}) error
	IsDriverConnected(driverID string) bool
}
